package report

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/syahmiabbas/scangate/pkg/config"
	"github.com/syahmiabbas/scangate/pkg/engine"
	"github.com/syahmiabbas/scangate/pkg/logging"
	"github.com/syahmiabbas/scangate/pkg/wrappers"
)

// Meta carries the run facts stamped into every report. The generation time
// is an input, so rendering the same result twice yields identical bytes.
type Meta struct {
	RunID       string
	GeneratedAt time.Time
	Endpoint    string
	Repository  string
	Mode        string
}

const (
	markdownArtifact = "security_report.md"
	xmlArtifact      = "security_report.xml"
	htmlArtifact     = "security_report.html"
	pdfArtifact      = "security_report.pdf"
)

// Display cap for backend analysis text. The model keeps the full message;
// only rendered output is truncated.
const maxMessageChars = 800

const truncationMarker = "... [truncated]"

func truncateMessage(msg string) string {
	runes := []rune(msg)
	if len(runes) <= maxMessageChars {
		return msg
	}
	return string(runes[:maxMessageChars]) + truncationMarker
}

// Write renders the artifact for the configured format and returns its path.
// PDF is best effort: when no renderer is usable the styled HTML stays on
// disk as the artifact and the run carries on, the gate alone decides the
// exit code.
func Write(ctx context.Context, result *engine.ScanResult, summary engine.ScanSummary, cfg config.Config, meta Meta) (string, error) {
	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		return "", fmt.Errorf("creating output directory: %v", err)
	}

	md := RenderMarkdown(result, summary, cfg, meta)

	switch cfg.Format {
	case "md":
		path := filepath.Join(cfg.OutputDir, markdownArtifact)
		if err := os.WriteFile(path, []byte(md), 0644); err != nil {
			return "", fmt.Errorf("writing markdown report: %v", err)
		}
		return path, nil

	case "xml":
		data, err := RenderXML(result, summary, cfg, meta)
		if err != nil {
			return "", fmt.Errorf("rendering xml report: %v", err)
		}
		path := filepath.Join(cfg.OutputDir, xmlArtifact)
		if err := os.WriteFile(path, data, 0644); err != nil {
			return "", fmt.Errorf("writing xml report: %v", err)
		}
		return path, nil

	case "pdf":
		html, err := RenderHTML(md, "Security Scan Report")
		if err != nil {
			return "", fmt.Errorf("rendering html report: %v", err)
		}
		htmlPath := filepath.Join(cfg.OutputDir, htmlArtifact)
		if err := os.WriteFile(htmlPath, []byte(html), 0644); err != nil {
			return "", fmt.Errorf("writing html report: %v", err)
		}
		pdfPath := filepath.Join(cfg.OutputDir, pdfArtifact)
		if err := wrappers.RenderPDF(ctx, htmlPath, pdfPath); err != nil {
			logging.GetSugaredLogger().Warnf("PDF rendering unavailable, keeping HTML artifact: %v", err)
			return htmlPath, nil
		}
		_ = os.Remove(htmlPath)
		return pdfPath, nil

	default:
		return "", fmt.Errorf("unsupported report format: %s", cfg.Format)
	}
}
