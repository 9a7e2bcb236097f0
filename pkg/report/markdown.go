package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/syahmiabbas/scangate/pkg/config"
	"github.com/syahmiabbas/scangate/pkg/engine"
)

// RenderMarkdown builds the Markdown report. Vulnerable findings come before
// clean ones; inside each group the backend ordering is preserved. Output is
// deterministic for a given input.
func RenderMarkdown(result *engine.ScanResult, summary engine.ScanSummary, cfg config.Config, meta Meta) string {
	var sb strings.Builder

	sb.WriteString("# Security Scan Report\n\n")

	sb.WriteString("## Scan Metadata\n\n")
	sb.WriteString("| Field | Value |\n")
	sb.WriteString("| --- | --- |\n")
	writeRow(&sb, "Generated", meta.GeneratedAt.UTC().Format(time.RFC3339))
	writeRow(&sb, "Run ID", meta.RunID)
	writeRow(&sb, "Endpoint", meta.Endpoint)
	writeRow(&sb, "Repository", meta.Repository)
	writeRow(&sb, "Scan mode", meta.Mode)
	writeRow(&sb, "Job ID", result.Job.ID)
	writeRow(&sb, "Units scanned", fmt.Sprintf("%d", summary.Total))
	writeRow(&sb, "Vulnerable units", fmt.Sprintf("%d", summary.VulnerableCount))
	writeRow(&sb, "Clean units", fmt.Sprintf("%d", summary.CleanCount))
	writeRow(&sb, "Failed units", fmt.Sprintf("%d", summary.FailedUnits))
	writeRow(&sb, "Vulnerable percentage", fmt.Sprintf("%d%%", summary.PercentVulnerable))
	writeRow(&sb, "Risk level", summary.RiskLevel())
	writeRow(&sb, "Blocking", fmt.Sprintf("%t", cfg.Blocking))
	writeRow(&sb, "Block threshold", fmt.Sprintf("%d%%", cfg.BlockPercentage))
	writeRow(&sb, "Excluded patterns", formatPatterns(cfg.ExcludePatterns))
	sb.WriteString("\n")

	vulnerable, clean := splitFindings(result.Findings)

	if summary.Total == 0 {
		sb.WriteString("## Findings\n\n")
		sb.WriteString("The scan returned no analyzable units.\n\n")
	} else {
		sb.WriteString(fmt.Sprintf("## Vulnerable Findings (%d)\n\n", len(vulnerable)))
		if len(vulnerable) == 0 {
			sb.WriteString("None.\n\n")
		}
		for i, f := range vulnerable {
			writeFinding(&sb, i+1, f)
		}

		sb.WriteString(fmt.Sprintf("## Clean Findings (%d)\n\n", len(clean)))
		if len(clean) == 0 {
			sb.WriteString("None.\n\n")
		}
		for i, f := range clean {
			writeFinding(&sb, i+1, f)
		}
	}

	sb.WriteString("## Recommendation\n\n")
	sb.WriteString(summary.Recommendation())
	sb.WriteString("\n")

	return sb.String()
}

func writeRow(sb *strings.Builder, field, value string) {
	sb.WriteString(fmt.Sprintf("| %s | %s |\n", field, value))
}

func formatPatterns(patterns []string) string {
	if len(patterns) == 0 {
		return "(none)"
	}
	return strings.Join(patterns, ", ")
}

// splitFindings partitions by verdict, keeping the backend order in each group
func splitFindings(findings []engine.Finding) (vulnerable, clean []engine.Finding) {
	for _, f := range findings {
		if f.IsVulnerable {
			vulnerable = append(vulnerable, f)
		} else {
			clean = append(clean, f)
		}
	}
	return vulnerable, clean
}

func writeFinding(sb *strings.Builder, n int, f engine.Finding) {
	sb.WriteString(fmt.Sprintf("### %d. %s\n\n", n, f.Location()))
	sb.WriteString(fmt.Sprintf("- Severity: %s\n", f.Severity))
	sb.WriteString(fmt.Sprintf("- Score: %.2f\n", f.Score))
	if f.Confidence > 0 {
		sb.WriteString(fmt.Sprintf("- Confidence: %.1f%%\n", f.Confidence))
	}
	if f.VulnType != "" {
		sb.WriteString(fmt.Sprintf("- Vulnerability type: %s\n", f.VulnType))
	}
	if f.CWE != "" {
		sb.WriteString(fmt.Sprintf("- CWE: %s\n", f.CWE))
	}
	if f.Message != "" {
		sb.WriteString("\n")
		sb.WriteString(truncateMessage(f.Message))
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
}
