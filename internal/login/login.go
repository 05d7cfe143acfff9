// Package login implements the remote-cache credential flow used by the
// `login`/`logout`/`status` CLI commands, persisting to the per-user
// config file via internal/config.
package login

import (
	"context"

	survey "github.com/AlecAivazis/survey/v2"
	"github.com/cenkalti/backoff/v4"
	"github.com/pkg/errors"
	"github.com/spf13/afero"

	"github.com/neex-build/neex/internal/config"
	"github.com/neex-build/neex/internal/runcache"
)

// Prompter abstracts survey's interactive prompting so tests can supply
// answers without a real terminal.
type Prompter interface {
	Ask(questions []*survey.Question, response interface{}) error
}

type surveyPrompter struct{}

func (surveyPrompter) Ask(questions []*survey.Question, response interface{}) error {
	return survey.Ask(questions, response)
}

// DefaultPrompter is the interactive survey-backed Prompter used outside tests.
var DefaultPrompter Prompter = surveyPrompter{}

// Verify checks that a freshly entered RemoteCacheConfig is reachable.
// Swappable so tests can exercise Login's prompting/persistence without
// making a real network call.
var Verify = verifyReachable

type answers struct {
	Endpoint  string
	Bucket    string
	Region    string
	AccessKey string
	SecretKey string
	Secure    bool
}

// Login interactively collects Remote Cache credentials, verifies
// reachability with a short exponential-backoff retry (transient network
// hiccups during first setup are common), and persists them to the
// per-user config file.
func Login(fsys afero.Fs, prompter Prompter) (*config.RemoteCacheConfig, error) {
	if prompter == nil {
		prompter = DefaultPrompter
	}

	qs := []*survey.Question{
		{Name: "Endpoint", Prompt: &survey.Input{Message: "Remote cache endpoint URL:"}},
		{Name: "Bucket", Prompt: &survey.Input{Message: "Bucket name:"}},
		{Name: "Region", Prompt: &survey.Input{Message: "Region:", Default: "us-east-1"}},
		{Name: "AccessKey", Prompt: &survey.Password{Message: "Access key:"}},
		{Name: "SecretKey", Prompt: &survey.Password{Message: "Secret key:"}},
		{Name: "Secure", Prompt: &survey.Confirm{Message: "Use TLS?", Default: true}},
	}

	var a answers
	if err := prompter.Ask(qs, &a); err != nil {
		return nil, errors.Wrap(err, "collecting remote cache credentials")
	}

	cfg := config.RemoteCacheConfig{
		Endpoint:  a.Endpoint,
		Bucket:    a.Bucket,
		Region:    a.Region,
		AccessKey: a.AccessKey,
		SecretKey: a.SecretKey,
		Secure:    a.Secure,
		Enabled:   true,
	}

	if err := Verify(context.Background(), cfg); err != nil {
		return nil, errors.Wrap(err, "verifying remote cache reachability")
	}

	existing, err := config.Load(fsys, "")
	if err != nil {
		return nil, err
	}
	existing.Remote = cfg
	if err := config.SaveUser(fsys, existing); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// verifyReachable pings the remote cache with a short bounded backoff,
// since a misconfigured endpoint during interactive setup is exactly the
// failure a user wants surfaced immediately rather than on first build.
func verifyReachable(ctx context.Context, cfg config.RemoteCacheConfig) error {
	remote, err := runcache.NewRemote(runcache.RemoteConfig{
		Endpoint:  cfg.Endpoint,
		Bucket:    cfg.Bucket,
		Region:    cfg.Region,
		AccessKey: cfg.AccessKey,
		SecretKey: cfg.SecretKey,
		Secure:    cfg.Secure,
		Enabled:   cfg.Enabled,
	}, nil)
	if err != nil {
		return err
	}

	policy := backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 3)
	return backoff.Retry(func() error {
		return remote.Ping(ctx)
	}, backoff.WithContext(policy, ctx))
}
