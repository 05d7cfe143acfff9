package symbols

import "testing"

func TestBuildConsumerIndex(t *testing.T) {
	sources := []PackageSource{
		{
			Package: "utils",
			File: FileSymbols{
				Path: "utils/index.ts",
				Exports: []Symbol{
					{Name: "helper", Kind: KindFunction, Digest: "d1"},
				},
			},
		},
		{
			Package: "ui",
			File: FileSymbols{
				Path: "ui/button.ts",
				Imports: []Import{
					{Source: "utils", Symbols: []string{"helper"}},
				},
			},
		},
	}
	workspaces := map[string]struct{}{"utils": {}, "ui": {}}

	g := Build(sources, workspaces)

	key := Key{Package: "utils", Symbol: "helper"}
	consumers := g.Consumers[key]
	if _, ok := consumers["ui/button.ts"]; !ok {
		t.Fatalf("expected ui/button.ts to be a recorded consumer of utils.helper")
	}
}

func TestChangedSymbolsDetectsDigestChangeAndNewSymbol(t *testing.T) {
	g := &Graph{
		Exports: map[string][]Symbol{
			"utils": {
				{Name: "helper", Digest: "d2"},
				{Name: "newThing", Digest: "d3"},
			},
		},
		Consumers: ConsumerIndex{},
	}
	prev := SymbolCache{
		Key{Package: "utils", Symbol: "helper"}: "d1",
	}

	changed := g.ChangedSymbols(prev)
	if len(changed) != 2 {
		t.Fatalf("expected 2 changed symbols (changed + new), got %d: %+v", len(changed), changed)
	}
}

func TestChangedSymbolsIgnoresUnchanged(t *testing.T) {
	g := &Graph{
		Exports: map[string][]Symbol{
			"utils": {{Name: "helper", Digest: "d1"}},
		},
	}
	prev := SymbolCache{Key{Package: "utils", Symbol: "helper"}: "d1"}

	changed := g.ChangedSymbols(prev)
	if len(changed) != 0 {
		t.Fatalf("expected no changed symbols, got %+v", changed)
	}
}

func TestAffectedFilesUnionsConsumerSets(t *testing.T) {
	g := &Graph{
		Consumers: ConsumerIndex{
			Key{Package: "utils", Symbol: "a"}: {"f1.ts": {}, "f2.ts": {}},
			Key{Package: "utils", Symbol: "b"}: {"f2.ts": {}, "f3.ts": {}},
		},
	}
	changed := []Key{{Package: "utils", Symbol: "a"}, {Package: "utils", Symbol: "b"}}

	files := g.AffectedFiles(changed)
	if len(files) != 3 {
		t.Fatalf("expected union of 3 files, got %v", files)
	}
}
