package scan

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"a11yscan/internal/atree"
	apperrors "a11yscan/internal/core/errors"
	"a11yscan/internal/engine/pattern"
	"a11yscan/internal/shared/observability"
)

// State is the session's lifecycle position. The only legal cycle is
// Idle -> Scanning -> Idle.
type State int

const (
	StateIdle State = iota
	StateScanning
)

// Notify receives the busy flag exactly twice per accepted run: true before
// work starts, false after it ends, failures included.
type Notify func(busy bool)

// DefaultMinDuration is the wall-clock floor for full-document runs. The
// floor keeps interactive callers from flickering through instant rescans.
const DefaultMinDuration = 500 * time.Millisecond

// Session wraps one analyzer with single-flight execution. Each instance
// guards only itself; two sessions can scan concurrently.
//
// A run issued while the session is scanning returns an empty result
// immediately, without queuing and without error. Callers re-issue once the
// in-flight run resolves. Cancellation of a started run is not supported.
type Session struct {
	analyzer    *pattern.Analyzer
	notify      Notify
	minDuration time.Duration

	mu    sync.Mutex
	state State
}

func NewSession(analyzer *pattern.Analyzer) *Session {
	if analyzer == nil {
		analyzer = pattern.NewAnalyzer(nil)
	}
	return &Session{
		analyzer:    analyzer,
		minDuration: DefaultMinDuration,
	}
}

// SetNotify installs the busy-state listener. Call before the first run.
func (s *Session) SetNotify(fn Notify) { s.notify = fn }

// SetMinDuration overrides the full-run floor.
func (s *Session) SetMinDuration(d time.Duration) { s.minDuration = d }

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Run scans a whole document. It enforces the minimum duration floor and
// returns a typed error when the analysis itself fails; the result is then
// empty so callers can tell a failed scan from a clean one.
func (s *Session) Run(ctx context.Context, root *atree.Node, opts pattern.Options) (pattern.Result, error) {
	if !s.begin() {
		observability.ScansRejectedTotal.Inc()
		slog.Debug("scan rejected, session busy")
		return pattern.EmptyResult(), nil
	}
	defer s.end()

	scanID := uuid.NewString()
	_, span := observability.Tracer.Start(ctx, "session.Run",
		trace.WithAttributes(attribute.String("scan.id", scanID)))
	defer span.End()

	s.fireNotify(true)
	defer s.fireNotify(false)

	start := time.Now()
	result, err := s.runAnalysis(func() pattern.Result {
		return s.analyzer.Analyze(root, opts)
	})

	// The floor applies even to failed runs; callers see uniform pacing.
	if remaining := s.minDuration - time.Since(start); remaining > 0 {
		time.Sleep(remaining)
	}

	s.record("full", scanID, start, result, err)
	return result, err
}

// RunWithin scans the document but keeps only matches anchored inside
// target's subtree. Scoped runs skip the duration floor.
func (s *Session) RunWithin(ctx context.Context, root, target *atree.Node, opts pattern.Options) (pattern.Result, error) {
	if !s.begin() {
		observability.ScansRejectedTotal.Inc()
		slog.Debug("scoped scan rejected, session busy")
		return pattern.EmptyResult(), nil
	}
	defer s.end()

	scanID := uuid.NewString()
	_, span := observability.Tracer.Start(ctx, "session.RunWithin",
		trace.WithAttributes(attribute.String("scan.id", scanID)))
	defer span.End()

	s.fireNotify(true)
	defer s.fireNotify(false)

	start := time.Now()
	result, err := s.runAnalysis(func() pattern.Result {
		return s.analyzer.AnalyzeWithin(root, target, opts)
	})

	s.record("scoped", scanID, start, result, err)
	return result, err
}

// begin attempts the Idle -> Scanning transition.
func (s *Session) begin() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateIdle {
		return false
	}
	s.state = StateScanning
	return true
}

func (s *Session) end() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateIdle
}

func (s *Session) fireNotify(busy bool) {
	if s.notify != nil {
		s.notify(busy)
	}
}

// runAnalysis is the recovery boundary: a panicking detector or validator is
// converted into a typed scan failure rather than crashing the process or
// being silently swallowed.
func (s *Session) runAnalysis(fn func() pattern.Result) (result pattern.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = pattern.EmptyResult()
			err = apperrors.Wrap(fmt.Errorf("%v", r), apperrors.CodeScanFailed, "analysis aborted")
		}
	}()
	return fn(), nil
}

func (s *Session) record(mode, scanID string, start time.Time, result pattern.Result, err error) {
	duration := time.Since(start)
	observability.ScanDuration.WithLabelValues(mode).Observe(duration.Seconds())

	if err != nil {
		observability.ScanFailuresTotal.Inc()
		slog.Error("scan failed", "scan_id", scanID, "mode", mode, "error", err)
		return
	}

	observability.PatternsFound.Set(float64(result.Summary.PatternsFound))
	observability.IssuesTotal.WithLabelValues(string(pattern.SeverityError)).Add(float64(result.Summary.Errors))
	observability.IssuesTotal.WithLabelValues(string(pattern.SeverityWarning)).Add(float64(result.Summary.Warnings))
	observability.IssuesTotal.WithLabelValues(string(pattern.SeverityInfo)).Add(float64(result.Summary.Info))

	slog.Debug("scan completed",
		"scan_id", scanID,
		"mode", mode,
		"patterns", result.Summary.PatternsFound,
		"errors", result.Summary.Errors,
		"duration", duration,
	)
}
