package main

import (
	"flag"
	"testing"

	"github.com/cognicore/textlab/pkg/textlab/topicsim"
)

func parseSimFlags(t *testing.T, args ...string) (*simFlags, *flag.FlagSet) {
	t.Helper()
	var sim simFlags
	fs := flag.NewFlagSet("topicsim", flag.ContinueOnError)
	sim.register(fs)
	if err := fs.Parse(args); err != nil {
		t.Fatalf("Parse(%v) failed: %v", args, err)
	}
	return &sim, fs
}

func TestExplicitZeroSeedOverridesConfig(t *testing.T) {
	sim, fs := parseSimFlags(t, "-seed", "0", "-documents", "0")

	p := sim.apply(fs, topicsim.DefaultParams())
	if p.Seed != 0 {
		t.Errorf("Expected seed 0, got %d", p.Seed)
	}
	if p.Documents != 0 {
		t.Errorf("Expected 0 documents, got %d", p.Documents)
	}
	if err := p.Validate(); err != nil {
		t.Errorf("Expected valid params, got %v", err)
	}
}

func TestUnsetFlagsKeepConfig(t *testing.T) {
	sim, fs := parseSimFlags(t, "-topics", "7")

	want := topicsim.DefaultParams()
	want.Topics = 7
	if got := sim.apply(fs, topicsim.DefaultParams()); got != want {
		t.Errorf("Expected %+v, got %+v", want, got)
	}
}

func TestExplicitZeroTopicsIsRejected(t *testing.T) {
	sim, fs := parseSimFlags(t, "-topics", "0")

	if err := sim.apply(fs, topicsim.DefaultParams()).Validate(); err == nil {
		t.Error("Expected zero topics to fail validation")
	}
}
