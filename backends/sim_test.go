// ABOUTME: Tests for the simulated data source and model backend
// ABOUTME: Validates determinism, concavity of the accuracy response, and scripted failures

package backends

import (
	"context"
	"errors"
	"testing"
)

func TestSimDataSource_ScriptedGap(t *testing.T) {
	ds := NewSimDataSource(10)
	ds.MarkUnavailable("zurich", 3)

	ok, err := ds.Available("zurich", 3)
	if err != nil {
		t.Fatalf("Expected no error for a gap, got %v", err)
	}
	if ok {
		t.Error("Expected task 3 to be unavailable")
	}

	// Other tasks unaffected
	ok, err = ds.Available("zurich", 4)
	if err != nil || !ok {
		t.Errorf("Expected task 4 available, got ok=%v err=%v", ok, err)
	}

	// Fetch on a gap reports transient
	_, err = ds.Fetch("zurich", 3)
	if !errors.Is(err, ErrTransient) {
		t.Errorf("Expected ErrTransient from Fetch on a gap, got %v", err)
	}
}

func TestSimDataSource_Exhaustion(t *testing.T) {
	ds := NewSimDataSource(10)
	ds.ExhaustedAt["vegas"] = 5

	_, err := ds.Available("vegas", 5)
	if !errors.Is(err, ErrPermanent) {
		t.Errorf("Expected ErrPermanent past exhaustion, got %v", err)
	}

	ok, err := ds.Available("vegas", 4)
	if err != nil || !ok {
		t.Errorf("Expected task 4 still available, got ok=%v err=%v", ok, err)
	}
}

func TestSimBackend_Deterministic(t *testing.T) {
	req := RunRequest{
		JobID: "zurich", ConfigID: "resnet18_e5", Mode: ModeTrain,
		Resource: 0.5, Scale: 15, Handle: DataHandle{JobID: "zurich", Task: 1, Chunks: 10},
	}

	a, err := NewSimBackend(42).Run(context.Background(), req)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	b, err := NewSimBackend(42).Run(context.Background(), req)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if a.AccuracyDelta != b.AccuracyDelta {
		t.Errorf("Expected identical deltas across runs, got %g and %g", a.AccuracyDelta, b.AccuracyDelta)
	}
}

func TestSimBackend_ConcaveInResource(t *testing.T) {
	// Doubling the resource must gain less than double the delta.
	b := NewSimBackend(42)
	base := RunRequest{JobID: "zurich", ConfigID: "resnet18_e5", Mode: ModeTrain, Scale: 15}

	base.Resource = 0.25
	low, _ := b.Run(context.Background(), base)
	base.Resource = 0.5
	high, _ := b.Run(context.Background(), base)

	if high.AccuracyDelta <= low.AccuracyDelta {
		t.Errorf("Expected more resource to gain more, got %g then %g", low.AccuracyDelta, high.AccuracyDelta)
	}
	if high.AccuracyDelta >= 2*low.AccuracyDelta {
		t.Errorf("Expected diminishing returns, got %g vs 2x%g", high.AccuracyDelta, low.AccuracyDelta)
	}
}

func TestSimBackend_ScriptedTransientFailure(t *testing.T) {
	b := NewSimBackend(42)
	b.FailTask("zurich", 2)

	_, err := b.Run(context.Background(), RunRequest{
		JobID: "zurich", Mode: ModeTrain, Resource: 0.5, Scale: 15,
		Handle: DataHandle{JobID: "zurich", Task: 2},
	})
	if !errors.Is(err, ErrTransient) {
		t.Errorf("Expected ErrTransient for scripted failure, got %v", err)
	}
}

func TestSimBackend_CanceledContext(t *testing.T) {
	b := NewSimBackend(42)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := b.Run(ctx, RunRequest{JobID: "zurich", Mode: ModeTrain, Resource: 0.5})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestSimBackend_InferenceBoundedByChunks(t *testing.T) {
	b := NewSimBackend(42)
	res, err := b.Run(context.Background(), RunRequest{
		JobID: "zurich", ConfigID: "resnet18_e5", Mode: ModeInfer,
		Resource: 100, Scale: 10, Handle: DataHandle{Chunks: 5},
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if res.Processed > 50 {
		t.Errorf("Expected processed bounded by chunks*scale=50, got %g", res.Processed)
	}
}
