package core

import (
	"testing"
	"time"
)

func TestFixedStepAccumulates(t *testing.T) {
	clock := time.Unix(0, 0)
	fs := NewFixedStep(10)
	fs.now = func() time.Time { return clock }

	if !fs.ShouldStep() {
		t.Fatal("expected the first poll to step")
	}
	clock = clock.Add(50 * time.Millisecond)
	if fs.ShouldStep() {
		t.Fatal("stepped before a full interval elapsed")
	}
	clock = clock.Add(60 * time.Millisecond)
	if !fs.ShouldStep() {
		t.Fatal("expected a step after 110ms at 10 TPS")
	}
	if got := fs.Interval(); got != 100*time.Millisecond {
		t.Fatalf("interval = %v", got)
	}
	fs.SetTPS(0)
	if got := fs.Interval(); got != time.Second/60 {
		t.Fatalf("fallback interval = %v", got)
	}
}

func TestRNGDeterministic(t *testing.T) {
	a, b := NewRNG(7), NewRNG(7)
	for i := 0; i < 32; i++ {
		if x, y := a.Pick(100), b.Pick(100); x != y {
			t.Fatalf("draw %d diverged: %d vs %d", i, x, y)
		}
	}
}

func TestRegistryNamesSorted(t *testing.T) {
	Register("zz-test", func(map[string]string) Sim { return nil })
	Register("aa-test", func(map[string]string) Sim { return nil })
	Register("", func(map[string]string) Sim { return nil })
	defer delete(sims, "zz-test")
	defer delete(sims, "aa-test")

	names := SimNames()
	if len(names) < 2 || names[0] != "aa-test" {
		t.Fatalf("unexpected order %v", names)
	}
	if _, ok := Sims()[""]; ok {
		t.Fatal("empty name must not register")
	}
}

func TestSnapshotLookupAndClamp(t *testing.T) {
	snap := ParameterSnapshot{Groups: []ParameterGroup{
		{Name: "Run", Params: []Parameter{IntParam("steps", "Steps", 12)}},
		{Name: "Inference", Params: []Parameter{FloatParam("temperature", "Temperature", 0.5)}},
	}}
	p, ok := snap.Lookup("temperature")
	if !ok || p.Value != "0.5" || p.Type != ParamTypeFloat {
		t.Fatalf("lookup temperature: %+v %v", p, ok)
	}
	if _, ok := snap.Lookup("missing"); ok {
		t.Fatal("unexpected hit")
	}

	ctrl := ParameterControl{Min: 0, Max: 2, HasMin: true, HasMax: true}
	if got := ctrl.Clamp(3); got != 2 {
		t.Fatalf("clamp high = %v", got)
	}
	if got := ctrl.Clamp(-1); got != 0 {
		t.Fatalf("clamp low = %v", got)
	}
}
