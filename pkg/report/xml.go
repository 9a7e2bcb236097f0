package report

import (
	"encoding/xml"
	"time"

	"github.com/syahmiabbas/scangate/pkg/config"
	"github.com/syahmiabbas/scangate/pkg/engine"
)

type xmlReport struct {
	XMLName       xml.Name   `xml:"securityReport"`
	Metadata      xmlMeta    `xml:"metadata"`
	Configuration xmlConfig  `xml:"configuration"`
	Findings      xmlListing `xml:"findings"`
	Summary       xmlSummary `xml:"summary"`
}

type xmlMeta struct {
	GeneratedAt string `xml:"generatedAt"`
	RunID       string `xml:"runId"`
	Endpoint    string `xml:"endpoint"`
	Repository  string `xml:"repository"`
	ScanMode    string `xml:"scanMode"`
	JobID       string `xml:"jobId"`
}

type xmlConfig struct {
	Format          string   `xml:"format"`
	TimeoutSeconds  int      `xml:"timeoutSeconds"`
	Blocking        bool     `xml:"blocking"`
	BlockPercentage int      `xml:"blockPercentage"`
	ExcludePatterns []string `xml:"excludePatterns>pattern"`
}

type xmlListing struct {
	Vulnerable []xmlFinding `xml:"vulnerableFinding"`
	Clean      []xmlFinding `xml:"cleanFinding"`
}

type xmlFinding struct {
	Path       string  `xml:"path"`
	Unit       string  `xml:"unit,omitempty"`
	StartLine  int     `xml:"startLine,omitempty"`
	EndLine    int     `xml:"endLine,omitempty"`
	Severity   string  `xml:"severity"`
	Score      float64 `xml:"score"`
	Confidence float64 `xml:"confidence,omitempty"`
	VulnType   string  `xml:"vulnType,omitempty"`
	CWE        string  `xml:"cweId,omitempty"`
	Message    string  `xml:"message,omitempty"`
}

type xmlSummary struct {
	TotalUnits        int    `xml:"totalUnits"`
	VulnerableUnits   int    `xml:"vulnerableUnits"`
	CleanUnits        int    `xml:"cleanUnits"`
	FailedUnits       int    `xml:"failedUnits"`
	PercentVulnerable int    `xml:"percentVulnerable"`
	RiskLevel         string `xml:"riskLevel"`
	Recommendation    string `xml:"recommendation"`
}

// RenderXML marshals the report for XML consumers such as CI dashboards
func RenderXML(result *engine.ScanResult, summary engine.ScanSummary, cfg config.Config, meta Meta) ([]byte, error) {
	vulnerable, clean := splitFindings(result.Findings)

	r := xmlReport{
		Metadata: xmlMeta{
			GeneratedAt: meta.GeneratedAt.UTC().Format(time.RFC3339),
			RunID:       meta.RunID,
			Endpoint:    meta.Endpoint,
			Repository:  meta.Repository,
			ScanMode:    meta.Mode,
			JobID:       result.Job.ID,
		},
		Configuration: xmlConfig{
			Format:          cfg.Format,
			TimeoutSeconds:  cfg.TimeoutSeconds,
			Blocking:        cfg.Blocking,
			BlockPercentage: cfg.BlockPercentage,
			ExcludePatterns: cfg.ExcludePatterns,
		},
		Findings: xmlListing{
			Vulnerable: toXMLFindings(vulnerable),
			Clean:      toXMLFindings(clean),
		},
		Summary: xmlSummary{
			TotalUnits:        summary.Total,
			VulnerableUnits:   summary.VulnerableCount,
			CleanUnits:        summary.CleanCount,
			FailedUnits:       summary.FailedUnits,
			PercentVulnerable: summary.PercentVulnerable,
			RiskLevel:         summary.RiskLevel(),
			Recommendation:    summary.Recommendation(),
		},
	}

	data, err := xml.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), data...), nil
}

func toXMLFindings(findings []engine.Finding) []xmlFinding {
	out := make([]xmlFinding, 0, len(findings))
	for _, f := range findings {
		out = append(out, xmlFinding{
			Path:       f.Path,
			Unit:       f.UnitName,
			StartLine:  f.StartLine,
			EndLine:    f.EndLine,
			Severity:   f.Severity,
			Score:      f.Score,
			Confidence: f.Confidence,
			VulnType:   f.VulnType,
			CWE:        f.CWE,
			Message:    truncateMessage(f.Message),
		})
	}
	return out
}
