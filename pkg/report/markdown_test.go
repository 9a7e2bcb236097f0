package report

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syahmiabbas/scangate/pkg/config"
	"github.com/syahmiabbas/scangate/pkg/engine"
)

func sampleInputs() (*engine.ScanResult, engine.ScanSummary, config.Config, Meta) {
	findings := []engine.Finding{
		{Path: "pkg/db/query.go", UnitName: "BuildQuery", StartLine: 42, EndLine: 57,
			IsVulnerable: true, Score: 0.91, Severity: engine.SeverityHigh,
			Message: "string concatenation reaches the SQL driver",
			Confidence: 87.5, VulnType: "SQL Injection", CWE: "CWE-89"},
		{Path: "pkg/api/routes.go", UnitName: "Routes", StartLine: 5, EndLine: 30,
			Score: 0.12, Severity: engine.SeverityLow, Message: "no tainted input"},
		{Path: "pkg/auth/token.go", UnitName: "Sign", StartLine: 12, EndLine: 40,
			IsVulnerable: true, Score: 0.77, Severity: engine.SeverityMedium,
			Message: "hardcoded key material"},
	}
	result := &engine.ScanResult{
		Job:         engine.ScanJob{ID: "grp-1", State: engine.JobCompleted},
		Findings:    findings,
		FailedUnits: 1,
	}
	summary := engine.ComputeSummary(findings, 1)

	cfg := config.Default()
	cfg.APIBaseURL = "https://scan.example"
	cfg.ExcludePatterns = []string{"vendor/*"}

	meta := Meta{
		RunID:       "run-0001",
		GeneratedAt: time.Date(2026, 2, 14, 9, 30, 0, 0, time.UTC),
		Endpoint:    "https://scan.example",
		Repository:  "https://github.com/acme/repo",
		Mode:        "poll",
	}
	return result, summary, cfg, meta
}

func TestRenderMarkdownDeterministic(t *testing.T) {
	result, summary, cfg, meta := sampleInputs()
	first := RenderMarkdown(result, summary, cfg, meta)
	second := RenderMarkdown(result, summary, cfg, meta)
	assert.Equal(t, first, second)
}

func TestRenderMarkdownMetadata(t *testing.T) {
	result, summary, cfg, meta := sampleInputs()
	out := RenderMarkdown(result, summary, cfg, meta)

	assert.Contains(t, out, "# Security Scan Report")
	assert.Contains(t, out, "| Generated | 2026-02-14T09:30:00Z |")
	assert.Contains(t, out, "| Run ID | run-0001 |")
	assert.Contains(t, out, "| Endpoint | https://scan.example |")
	assert.Contains(t, out, "| Repository | https://github.com/acme/repo |")
	assert.Contains(t, out, "| Job ID | grp-1 |")
	assert.Contains(t, out, "| Units scanned | 3 |")
	assert.Contains(t, out, "| Vulnerable units | 2 |")
	assert.Contains(t, out, "| Clean units | 1 |")
	assert.Contains(t, out, "| Failed units | 1 |")
	assert.Contains(t, out, "| Vulnerable percentage | 66% |")
	assert.Contains(t, out, "| Risk level | CRITICAL |")
	assert.Contains(t, out, "| Block threshold | 50% |")
	assert.Contains(t, out, "| Excluded patterns | vendor/* |")
}

func TestRenderMarkdownOrderingAndFields(t *testing.T) {
	result, summary, cfg, meta := sampleInputs()
	out := RenderMarkdown(result, summary, cfg, meta)

	vulnSection := strings.Index(out, "## Vulnerable Findings (2)")
	cleanSection := strings.Index(out, "## Clean Findings (1)")
	require.Greater(t, vulnSection, -1)
	require.Greater(t, cleanSection, -1)
	assert.Less(t, vulnSection, cleanSection)

	// Vulnerable findings keep backend order and precede the clean ones.
	query := strings.Index(out, "pkg/db/query.go:42-57 (BuildQuery)")
	token := strings.Index(out, "pkg/auth/token.go:12-40 (Sign)")
	routes := strings.Index(out, "pkg/api/routes.go:5-30 (Routes)")
	require.Greater(t, query, -1)
	require.Greater(t, token, -1)
	require.Greater(t, routes, -1)
	assert.Less(t, query, token)
	assert.Less(t, token, routes)

	// Backend fields land in the artifact verbatim.
	assert.Contains(t, out, "- Severity: HIGH")
	assert.Contains(t, out, "- Score: 0.91")
	assert.Contains(t, out, "- Confidence: 87.5%")
	assert.Contains(t, out, "- Vulnerability type: SQL Injection")
	assert.Contains(t, out, "- CWE: CWE-89")
	assert.Contains(t, out, "string concatenation reaches the SQL driver")
}

func TestRenderMarkdownTruncatesLongMessages(t *testing.T) {
	result, _, cfg, meta := sampleInputs()
	long := strings.Repeat("z", 900)
	result.Findings = []engine.Finding{{
		Path: "big.go", IsVulnerable: true, Severity: engine.SeverityHigh, Message: long,
	}}
	summary := engine.ComputeSummary(result.Findings, 0)

	out := RenderMarkdown(result, summary, cfg, meta)
	assert.Contains(t, out, strings.Repeat("z", 800)+truncationMarker)
	assert.NotContains(t, out, strings.Repeat("z", 801))
}

func TestRenderMarkdownEmptyScan(t *testing.T) {
	result, _, cfg, meta := sampleInputs()
	result.Findings = nil
	result.FailedUnits = 0
	summary := engine.ComputeSummary(nil, 0)

	out := RenderMarkdown(result, summary, cfg, meta)
	assert.Contains(t, out, "The scan returned no analyzable units.")
	assert.Contains(t, out, "| Vulnerable percentage | 0% |")
	assert.Contains(t, out, "| Risk level | LOW |")
	assert.Contains(t, out, "No vulnerable units were detected")
	assert.NotContains(t, out, "## Vulnerable Findings")
}
