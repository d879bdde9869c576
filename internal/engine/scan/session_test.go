package scan

import (
	"context"
	"sync"
	"testing"
	"time"

	"a11yscan/internal/atree"
	apperrors "a11yscan/internal/core/errors"
	"a11yscan/internal/engine/pattern"
)

const sessionFixture = `<html><body>
<div id="scope">
  <div role="dialog" aria-label="Inner" hidden><button>Close</button></div>
</div>
<div role="dialog" hidden><button>Close</button></div>
</body></html>`

func fixtureRoot(t *testing.T) *atree.Node {
	t.Helper()
	doc, err := atree.Parse("session.html", []byte(sessionFixture))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return doc.Root()
}

func newFastSession() *Session {
	s := NewSession(pattern.NewAnalyzer(pattern.DefaultRegistry()))
	s.SetMinDuration(time.Millisecond)
	return s
}

// blockingDetector parks until released, so a test can hold the session in
// the Scanning state.
type blockingDetector struct {
	started chan struct{}
	release chan struct{}
}

func (d *blockingDetector) DetectAll(root *atree.Node) []*pattern.Match {
	close(d.started)
	<-d.release
	return nil
}

type panicDetector struct{}

func (d *panicDetector) DetectAll(root *atree.Node) []*pattern.Match {
	panic("detector exploded")
}

func passValidator() pattern.Validator {
	return pattern.NewRuleValidator(nil)
}

func TestRunProducesResult(t *testing.T) {
	s := newFastSession()

	result, err := s.Run(context.Background(), fixtureRoot(t), pattern.DefaultOptions())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Summary.PatternsFound != 2 {
		t.Errorf("expected 2 patterns, got %d", result.Summary.PatternsFound)
	}
	if s.State() != StateIdle {
		t.Error("session should return to Idle")
	}
}

func TestRunSingleFlight(t *testing.T) {
	detector := &blockingDetector{started: make(chan struct{}), release: make(chan struct{})}
	registry := pattern.NewRegistry()
	registry.Register("blocking", detector, passValidator())

	s := NewSession(pattern.NewAnalyzer(registry))
	s.SetMinDuration(time.Millisecond)
	root := fixtureRoot(t)

	done := make(chan struct{})
	go func() {
		defer close(done)
		if _, err := s.Run(context.Background(), root, pattern.DefaultOptions()); err != nil {
			t.Errorf("first run failed: %v", err)
		}
	}()

	<-detector.started
	if s.State() != StateScanning {
		t.Error("session should be Scanning while the detector is held")
	}

	// Second call on the same instance: empty result, no error, no queuing.
	result, err := s.Run(context.Background(), root, pattern.DefaultOptions())
	if err != nil {
		t.Errorf("busy run returned error: %v", err)
	}
	if result.Summary.PatternsFound != 0 || len(result.Patterns) != 0 {
		t.Errorf("busy run must yield the empty result, got %+v", result.Summary)
	}

	scoped, err := s.RunWithin(context.Background(), root, root, pattern.DefaultOptions())
	if err != nil {
		t.Errorf("busy scoped run returned error: %v", err)
	}
	if len(scoped.Patterns) != 0 {
		t.Error("busy scoped run must yield the empty result")
	}

	close(detector.release)
	<-done

	if s.State() != StateIdle {
		t.Error("session should be Idle after the first run resolves")
	}
}

func TestRunEnforcesMinimumDuration(t *testing.T) {
	s := NewSession(pattern.NewAnalyzer(pattern.DefaultRegistry()))
	s.SetMinDuration(120 * time.Millisecond)
	root := fixtureRoot(t)

	start := time.Now()
	if _, err := s.Run(context.Background(), root, pattern.DefaultOptions()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 120*time.Millisecond {
		t.Errorf("full run returned after %v, want at least the 120ms floor", elapsed)
	}

	// Scoped runs skip the floor.
	start = time.Now()
	if _, err := s.RunWithin(context.Background(), root, root, pattern.DefaultOptions()); err != nil {
		t.Fatalf("RunWithin: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Errorf("scoped run took %v, floor should not apply", elapsed)
	}
}

func TestRunWithinScopesToTarget(t *testing.T) {
	doc, err := atree.Parse("session.html", []byte(sessionFixture))
	if err != nil {
		t.Fatal(err)
	}
	s := newFastSession()

	target := doc.ByID("scope")
	result, err := s.RunWithin(context.Background(), doc.Root(), target, pattern.DefaultOptions())
	if err != nil {
		t.Fatalf("RunWithin: %v", err)
	}
	if result.Summary.PatternsFound != 1 {
		t.Fatalf("expected 1 scoped pattern, got %d", result.Summary.PatternsFound)
	}
	for _, m := range result.Patterns {
		if !target.Contains(m.Anchor) {
			t.Error("anchor escaped the target subtree")
		}
	}
	if result.Summary.PatternsFound != len(result.Patterns) {
		t.Error("summary must match the filtered set")
	}
}

func TestNotifyFiresTwicePerRun(t *testing.T) {
	s := newFastSession()

	var mu sync.Mutex
	var calls []bool
	s.SetNotify(func(busy bool) {
		mu.Lock()
		calls = append(calls, busy)
		mu.Unlock()
	})

	if _, err := s.Run(context.Background(), fixtureRoot(t), pattern.DefaultOptions()); err != nil {
		t.Fatal(err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(calls) != 2 || !calls[0] || calls[1] {
		t.Errorf("expected [true false], got %v", calls)
	}
}

func TestRunRecoversDetectorPanic(t *testing.T) {
	registry := pattern.NewRegistry()
	registry.Register("panicky", &panicDetector{}, passValidator())

	s := NewSession(pattern.NewAnalyzer(registry))
	s.SetMinDuration(time.Millisecond)

	busyEvents := 0
	s.SetNotify(func(busy bool) { busyEvents++ })

	result, err := s.Run(context.Background(), fixtureRoot(t), pattern.DefaultOptions())
	if err == nil {
		t.Fatal("expected an error from a panicking detector")
	}
	if !apperrors.IsCode(err, apperrors.CodeScanFailed) {
		t.Errorf("expected SCAN_FAILED code, got %v", err)
	}
	if len(result.Patterns) != 0 || result.Summary.PatternsFound != 0 {
		t.Error("failed run must yield the empty result")
	}
	if busyEvents != 2 {
		t.Errorf("notify must fire twice even on failure, got %d events", busyEvents)
	}
	if s.State() != StateIdle {
		t.Error("session must return to Idle after a failure")
	}

	// The session stays usable.
	registry.Register("panicky", &stubOkDetector{}, passValidator())
	if _, err := s.Run(context.Background(), fixtureRoot(t), pattern.DefaultOptions()); err != nil {
		t.Errorf("session unusable after recovered failure: %v", err)
	}
}

type stubOkDetector struct{}

func (d *stubOkDetector) DetectAll(root *atree.Node) []*pattern.Match { return nil }

func TestRejectedRunLeavesStateIdle(t *testing.T) {
	s := newFastSession()
	root := fixtureRoot(t)

	if _, err := s.Run(context.Background(), root, pattern.DefaultOptions()); err != nil {
		t.Fatal(err)
	}
	// After completion the next run is accepted again.
	result, err := s.Run(context.Background(), root, pattern.DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	if result.Summary.PatternsFound != 2 {
		t.Errorf("re-issued run should succeed, got %d patterns", result.Summary.PatternsFound)
	}
}
