package app

import (
	"flag"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestBindAndSimOptions(t *testing.T) {
	cfg := NewConfig()
	fs := flag.NewFlagSet("ca", flag.ContinueOnError)
	cfg.Bind(fs)
	if err := fs.Parse([]string{"-sim", "markov-path", "-seed", "7", "-w", "31", "-model", "cave.yaml"}); err != nil {
		t.Fatal(err)
	}
	if cfg.Sim != "markov-path" {
		t.Fatalf("sim = %q", cfg.Sim)
	}
	want := map[string]string{"seed": "7", "w": "31", "model": "cave.yaml"}
	if diff := cmp.Diff(want, cfg.SimOptions()); diff != "" {
		t.Fatalf("options mismatch (-want +got):\n%s", diff)
	}
}

func TestDefaults(t *testing.T) {
	cfg := NewConfig()
	want := map[string]string{"seed": "42"}
	if diff := cmp.Diff(want, cfg.SimOptions()); diff != "" {
		t.Fatalf("default options mismatch (-want +got):\n%s", diff)
	}
}
