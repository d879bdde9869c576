package integration

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"a11yscan/internal/atree"
	"a11yscan/internal/data/history"
	"a11yscan/internal/engine/pattern"
	"a11yscan/internal/engine/scan"
	"a11yscan/internal/output"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestDocument(t *testing.T, tmpDir string) string {
	markup := `<!DOCTYPE html>
<html>
<body>
  <button aria-controls="settings">Open settings</button>
  <div class="backdrop"></div>
  <div id="settings" role="dialog" aria-labelledby="settings-title" hidden>
    <h2 id="settings-title">Settings</h2>
    <button data-dismiss class="icon-only"></button>
    <input type="text" placeholder="Search settings">
  </div>
  <dialog id="confirm"><p>Are you sure?</p></dialog>
</body>
</html>`
	path := filepath.Join(tmpDir, "page.html")
	err := os.WriteFile(path, []byte(markup), 0644)
	require.NoError(t, err)
	return path
}

func TestFullScanPipeline(t *testing.T) {
	tmpDir := t.TempDir()
	path := createTestDocument(t, tmpDir)

	content, err := os.ReadFile(path)
	require.NoError(t, err)

	doc, err := atree.Parse(path, content)
	require.NoError(t, err)

	session := scan.NewSession(pattern.NewAnalyzer(pattern.DefaultRegistry()))
	session.SetMinDuration(time.Millisecond)

	result, err := session.Run(context.Background(), doc.Root(), pattern.DefaultOptions())
	require.NoError(t, err)

	// Two dialogs: the explicit role marker and the native element.
	require.Equal(t, 2, result.Summary.PatternsFound)

	byAnchor := map[string]*pattern.Match{}
	for _, m := range result.Patterns {
		byAnchor[m.Anchor.ID()] = m
	}

	settings, ok := byAnchor["settings"]
	require.True(t, ok, "settings dialog should be detected")
	assert.Equal(t, pattern.MethodExplicitMarker, settings.Method)
	assert.Equal(t, pattern.ConfidenceHigh, settings.Confidence)
	assert.Len(t, settings.Related[pattern.RelatedTriggers], 1)

	// The settings dialog is labeled and hidden, but its icon-only dismiss
	// button is unlabeled and it sits next to a backdrop without aria-modal.
	ids := issueRuleIDs(settings)
	assert.Contains(t, ids, "dismiss-control-labeled")
	assert.Contains(t, ids, "modal-flag-consistency")
	assert.NotContains(t, ids, "accessible-name")

	confirm, ok := byAnchor["confirm"]
	require.True(t, ok, "native dialog should be detected")
	assert.Equal(t, pattern.MethodNativeConstruct, confirm.Method)
	ids = issueRuleIDs(confirm)
	assert.Contains(t, ids, "accessible-name")
	assert.Contains(t, ids, "focusable-content")
	assert.Contains(t, ids, "dismiss-control-present")
}

func TestScanToReportAndHistory(t *testing.T) {
	tmpDir := t.TempDir()
	path := createTestDocument(t, tmpDir)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	doc, err := atree.Parse(path, content)
	require.NoError(t, err)

	session := scan.NewSession(pattern.NewAnalyzer(pattern.DefaultRegistry()))
	session.SetMinDuration(time.Millisecond)
	result, err := session.Run(context.Background(), doc.Root(), pattern.DefaultOptions())
	require.NoError(t, err)

	// Report generation.
	report := output.BuildReport(result)
	jsonPath := filepath.Join(tmpDir, "out", "report.json")
	require.NoError(t, output.WriteJSON(jsonPath, report))
	mdPath := filepath.Join(tmpDir, "out", "report.md")
	require.NoError(t, output.WriteMarkdown(mdPath, map[string]output.Report{path: report}))

	data, err := os.ReadFile(jsonPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"patternsFound": 2`)

	// History persistence round-trip.
	store, err := history.Open(filepath.Join(tmpDir, "history.db"))
	require.NoError(t, err)
	defer store.Close()

	snapshot := history.Snapshot{
		ScanID:        "scan-1",
		SchemaVersion: history.SchemaVersion,
		Timestamp:     time.Now().UTC(),
		Document:      path,
		PatternsFound: result.Summary.PatternsFound,
		ErrorCount:    result.Summary.Errors,
		WarningCount:  result.Summary.Warnings,
		InfoCount:     result.Summary.Info,
		DurationMS:    5,
	}
	require.NoError(t, store.SaveSnapshot(tmpDir, snapshot))

	loaded, err := store.LoadSnapshots(tmpDir, time.Time{})
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, result.Summary.PatternsFound, loaded[0].PatternsFound)
	assert.Equal(t, path, loaded[0].Document)
}

func TestScopedScanIntegration(t *testing.T) {
	markup := `<html><body>
<section id="left"><div role="dialog" aria-label="L" hidden><button>Close</button></div></section>
<section id="right"><div role="dialog" aria-label="R" hidden><button>Close</button></div></section>
</body></html>`
	doc, err := atree.Parse("scoped.html", []byte(markup))
	require.NoError(t, err)

	session := scan.NewSession(pattern.NewAnalyzer(pattern.DefaultRegistry()))
	session.SetMinDuration(time.Millisecond)

	left := doc.ByID("left")
	result, err := session.RunWithin(context.Background(), doc.Root(), left, pattern.DefaultOptions())
	require.NoError(t, err)

	require.Equal(t, 1, result.Summary.PatternsFound)
	assert.True(t, left.Contains(result.Patterns[0].Anchor))
}

func issueRuleIDs(m *pattern.Match) []string {
	ids := make([]string, 0, len(m.Issues))
	for _, issue := range m.Issues {
		ids = append(ids, issue.RuleID)
	}
	return ids
}
