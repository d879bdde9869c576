// # cmd/a11yscan/app.go
package main

import (
	"a11yscan/internal/atree"
	"a11yscan/internal/config"
	"a11yscan/internal/data/history"
	"a11yscan/internal/engine/pattern"
	"a11yscan/internal/engine/scan"
	"a11yscan/internal/output"
	"a11yscan/internal/shared/observability"
	"a11yscan/internal/shared/util"
	"a11yscan/internal/watcher"
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gobwas/glob"
	"github.com/google/uuid"
)

type App struct {
	Config  *config.Config
	Session *scan.Session

	store      *history.Store
	obsServer  *observability.Server
	stopTraces func(context.Context) error
	teaProgram *tea.Program
	limiter    *util.Limiter

	// Per-document scan results keyed by source path.
	mu      sync.Mutex
	results map[string]pattern.Result
	reports map[string]output.Report
}

func NewApp(cfg *config.Config) (*App, error) {
	analyzer := pattern.NewAnalyzer(pattern.DefaultRegistry())

	a := &App{
		Config:  cfg,
		Session: scan.NewSession(analyzer),
		limiter: util.NewLimiter(cfg.Watch.RescansPerSecond, cfg.Watch.RescanBurst),
		results: make(map[string]pattern.Result),
		reports: make(map[string]output.Report),
	}

	if cfg.History.Path != "" {
		store, err := history.Open(cfg.History.Path)
		if err != nil {
			return nil, fmt.Errorf("open history store: %w", err)
		}
		a.store = store
	}

	return a, nil
}

func (a *App) StartObservability(ctx context.Context) error {
	if a.Config.Observability.OTLPEndpoint != "" {
		shutdown, err := observability.SetupTracing(ctx, a.Config.Observability.OTLPEndpoint)
		if err != nil {
			return err
		}
		a.stopTraces = shutdown
	}

	if a.Config.Observability.Listen != "" {
		a.obsServer = observability.NewServer(a.Config.Observability.Listen, func() any {
			return a.snapshotReports()
		})
		if err := a.obsServer.Start(ctx); err != nil {
			return err
		}
	}

	return nil
}

func (a *App) Shutdown(ctx context.Context) {
	if a.obsServer != nil {
		if err := a.obsServer.Stop(ctx); err != nil {
			slog.Warn("failed to stop observability server", "error", err)
		}
		a.obsServer = nil
	}
	if a.stopTraces != nil {
		if err := a.stopTraces(ctx); err != nil {
			slog.Warn("failed to flush traces", "error", err)
		}
		a.stopTraces = nil
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			slog.Warn("failed to close history store", "error", err)
		}
		a.store = nil
	}
}

func (a *App) InitialScan(ctx context.Context) error {
	files, err := a.ScanDirectories(a.Config.ScanPaths, a.Config.Exclude.Dirs, a.Config.Exclude.Files)
	if err != nil {
		return err
	}

	for _, filePath := range files {
		if err := a.ScanDocument(ctx, filePath); err != nil {
			slog.Warn("failed to scan document", "path", filePath, "error", err)
		}
	}
	return nil
}

func (a *App) ScanDirectories(paths []string, excludeDirs, excludeFiles []string) ([]string, error) {
	var files []string

	dirGlobs := make([]glob.Glob, 0, len(excludeDirs))
	for _, p := range excludeDirs {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid exclude dir pattern %q: %w", p, err)
		}
		dirGlobs = append(dirGlobs, g)
	}

	fileGlobs := make([]glob.Glob, 0, len(excludeFiles))
	for _, p := range excludeFiles {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid exclude file pattern %q: %w", p, err)
		}
		fileGlobs = append(fileGlobs, g)
	}

	for _, root := range paths {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}

			base := filepath.Base(path)

			if d.IsDir() {
				for _, g := range dirGlobs {
					if g.Match(base) {
						return filepath.SkipDir
					}
				}
				return nil
			}

			if !watcher.IsMarkupFile(base) {
				return nil
			}

			for _, g := range fileGlobs {
				if g.Match(base) {
					return nil
				}
			}

			files = append(files, path)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	return files, nil
}

// ScanDocument parses one markup file and runs a full scan session over it.
func (a *App) ScanDocument(ctx context.Context, path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	parseStart := time.Now()
	doc, err := atree.Parse(path, content)
	observability.DocumentParseDuration.Observe(time.Since(parseStart).Seconds())
	if err != nil {
		return err
	}

	scanStart := time.Now()
	result, err := a.Session.Run(ctx, doc.Root(), a.scanOptions())
	if err != nil {
		return err
	}

	a.mu.Lock()
	a.results[path] = result
	a.reports[path] = output.BuildReport(result)
	a.mu.Unlock()

	a.saveSnapshot(path, result, time.Since(scanStart))
	return nil
}

func (a *App) scanOptions() pattern.Options {
	return pattern.Options{
		EnabledTypes:       a.Config.Patterns.Enabled,
		MinConfidence:      pattern.ParseConfidence(a.Config.Patterns.MinConfidence),
		IncludeSuggestions: a.Config.Patterns.IncludeSuggestions,
	}
}

func (a *App) saveSnapshot(path string, result pattern.Result, duration time.Duration) {
	if a.store == nil {
		return
	}

	err := a.store.SaveSnapshot(a.projectKey(), history.Snapshot{
		ScanID:        uuid.NewString(),
		SchemaVersion: history.SchemaVersion,
		Timestamp:     time.Now().UTC(),
		Document:      path,
		PatternsFound: result.Summary.PatternsFound,
		ErrorCount:    result.Summary.Errors,
		WarningCount:  result.Summary.Warnings,
		InfoCount:     result.Summary.Info,
		DurationMS:    duration.Milliseconds(),
	})
	if err != nil {
		slog.Warn("failed to persist scan snapshot", "path", path, "error", err)
	}
}

func (a *App) projectKey() string {
	if len(a.Config.ScanPaths) == 0 {
		return "."
	}
	abs, err := filepath.Abs(a.Config.ScanPaths[0])
	if err != nil {
		return a.Config.ScanPaths[0]
	}
	return abs
}

func (a *App) HandleChanges(paths []string) {
	slog.Info("detected changes", "count", len(paths))

	if !a.limiter.Allow(1) {
		slog.Debug("rescan suppressed by rate limit", "count", len(paths))
		return
	}

	start := time.Now()
	ctx := context.Background()

	for _, path := range paths {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			a.mu.Lock()
			delete(a.results, path)
			delete(a.reports, path)
			a.mu.Unlock()
			continue
		}

		if err := a.ScanDocument(ctx, path); err != nil {
			slog.Warn("failed to re-scan document", "path", path, "error", err)
		}
	}

	if err := a.GenerateOutputs(); err != nil {
		slog.Error("failed to generate outputs", "error", err)
	}

	a.PrintSummary(time.Since(start))

	if a.teaProgram != nil {
		a.teaProgram.Send(a.buildUpdateMsg())
	}

	summary := a.aggregateSummary()
	if a.Config.Alerts.Beep && (summary.Errors > 0 || summary.Warnings > 0) {
		fmt.Print("\a")
	}
}

func (a *App) GenerateOutputs() error {
	reports := a.snapshotReports()

	if a.Config.Output.JSON != "" {
		if err := output.WriteReports(a.Config.Output.JSON, reports); err != nil {
			return err
		}
	}

	if a.Config.Output.Markdown != "" {
		if err := output.WriteMarkdown(a.Config.Output.Markdown, reports); err != nil {
			return err
		}
	}

	return nil
}

func (a *App) snapshotReports() map[string]output.Report {
	a.mu.Lock()
	defer a.mu.Unlock()

	reports := make(map[string]output.Report, len(a.reports))
	for path, r := range a.reports {
		reports[path] = r
	}
	return reports
}

func (a *App) aggregateSummary() pattern.Summary {
	a.mu.Lock()
	defer a.mu.Unlock()

	var total pattern.Summary
	for _, r := range a.results {
		total.PatternsFound += r.Summary.PatternsFound
		total.Errors += r.Summary.Errors
		total.Warnings += r.Summary.Warnings
		total.Info += r.Summary.Info
	}
	return total
}

func (a *App) DocumentCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.results)
}

// ExitCode is 1 when any error-severity issue remains, for CI use.
func (a *App) ExitCode() int {
	if a.aggregateSummary().Errors > 0 {
		return 1
	}
	return 0
}

func (a *App) PrintSummary(duration time.Duration) {
	if !a.Config.Alerts.Terminal {
		return
	}

	summary := a.aggregateSummary()
	docCount := a.DocumentCount()

	fmt.Println(strings.Repeat("-", 40))
	if duration > 0 {
		fmt.Printf("Update: %d documents, %d patterns in %v\n", docCount, summary.PatternsFound, duration)
	} else {
		fmt.Printf("Scanned %d documents, %d patterns\n", docCount, summary.PatternsFound)
	}

	if summary.Errors > 0 {
		fmt.Printf("⚠️  FOUND %d ACCESSIBILITY ERRORS:\n", summary.Errors)
		a.printIssues(pattern.SeverityError)
	} else {
		fmt.Println("✅ No accessibility errors found.")
	}

	if summary.Warnings > 0 {
		fmt.Printf("❗ FOUND %d WARNINGS:\n", summary.Warnings)
		a.printIssues(pattern.SeverityWarning)
	} else {
		fmt.Println("✅ No warnings found.")
	}

	if summary.Info > 0 {
		fmt.Printf("ℹ️  %d informational notes.\n", summary.Info)
	}
	fmt.Println(strings.Repeat("-", 40))
}

func (a *App) printIssues(severity pattern.Severity) {
	a.mu.Lock()
	defer a.mu.Unlock()

	for _, path := range util.SortedStringKeys(a.results) {
		for _, m := range a.results[path].Patterns {
			for _, issue := range m.Issues {
				if issue.Severity != severity {
					continue
				}
				fmt.Printf("   [%s] %s at %s (%s)\n", issue.RuleID, issue.Message, m.Anchor.Path(), path)
			}
		}
	}
}

func (a *App) RunUI() error {
	m := initialModel()
	p := tea.NewProgram(m, tea.WithAltScreen())
	a.teaProgram = p

	// Trigger initial UI update once the program is running.
	go func() {
		a.teaProgram.Send(a.buildUpdateMsg())
	}()

	_, err := p.Run()
	return err
}

func (a *App) buildUpdateMsg() updateMsg {
	a.mu.Lock()
	defer a.mu.Unlock()

	msg := updateMsg{docCount: len(a.results)}
	for _, path := range util.SortedStringKeys(a.results) {
		for _, m := range a.results[path].Patterns {
			msg.patternCount++
			for _, issue := range m.Issues {
				switch issue.Severity {
				case pattern.SeverityError:
					msg.errorCount++
				case pattern.SeverityWarning:
					msg.warningCount++
				}
				msg.issues = append(msg.issues, issueEntry{
					RuleID:   issue.RuleID,
					Severity: string(issue.Severity),
					Message:  issue.Message,
					Element:  m.Anchor.Path(),
					Source:   path,
				})
			}
		}
	}
	return msg
}

func (a *App) StartWatcher(ctx context.Context) error {
	w, err := watcher.NewWatcher(
		a.Config.Watch.Debounce,
		a.Config.Exclude.Dirs,
		a.Config.Exclude.Files,
		a.HandleChanges,
	)
	if err != nil {
		return err
	}
	// Note: We don't close here, it should run forever
	return w.Watch(a.Config.ScanPaths)
}
