package util

import (
	"fmt"
	"math"
	"runtime"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
)

var runtimeNumCPU = runtime.NumCPU

// ParseConcurrency accepts either a bare positive integer or a percentage
// of available CPUs (e.g. "50%") and returns the resolved worker count.
func ParseConcurrency(raw string) (int, error) {
	if strings.HasSuffix(raw, "%") {
		percent, err := strconv.ParseFloat(strings.TrimSuffix(raw, "%"), 64)
		if err != nil || percent <= 0 || math.IsInf(percent, 1) {
			return 0, fmt.Errorf("invalid percentage value %q for --concurrency, expected e.g. 50%%", raw)
		}
		return int(math.Max(1, float64(runtimeNumCPU())*percent/100)), nil
	}

	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid value %q for --concurrency, expected a positive integer or a percentage", raw)
	}
	return n, nil
}

// ConcurrencyValue is a pflag.Value that accepts either a number or a
// percentage of available CPUs as the value for a --concurrency flag.
type ConcurrencyValue struct {
	Value *int
	raw   string
}

var _ pflag.Value = &ConcurrencyValue{}

func (cv *ConcurrencyValue) String() string { return cv.raw }

func (cv *ConcurrencyValue) Set(value string) error {
	parsed, err := ParseConcurrency(value)
	if err != nil {
		return err
	}
	cv.raw = value
	*cv.Value = parsed
	return nil
}

func (cv *ConcurrencyValue) Type() string { return "number|percentage" }
