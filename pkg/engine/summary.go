package engine

// ScanSummary holds the derived counts for one scan run. It is computed from
// the findings list on demand and never stored.
type ScanSummary struct {
	Total             int `json:"total"`
	VulnerableCount   int `json:"vulnerable_count"`
	CleanCount        int `json:"clean_count"`
	FailedUnits       int `json:"failed_units"`
	PercentVulnerable int `json:"percent_vulnerable"`
}

// ComputeSummary tallies the findings. Percentage uses integer division, so
// 1 vulnerable out of 3 reports 33, and an empty scan reports 0. Failed units
// are carried for display only and never enter the denominator.
func ComputeSummary(findings []Finding, failedUnits int) ScanSummary {
	s := ScanSummary{Total: len(findings), FailedUnits: failedUnits}
	for _, f := range findings {
		if f.IsVulnerable {
			s.VulnerableCount++
		} else {
			s.CleanCount++
		}
	}
	if s.Total > 0 {
		s.PercentVulnerable = s.VulnerableCount * 100 / s.Total
	}
	return s
}

// RiskLevel buckets the vulnerability percentage for report consumers
func (s ScanSummary) RiskLevel() string {
	switch {
	case s.PercentVulnerable == 0:
		return SeverityLow
	case s.PercentVulnerable < 25:
		return SeverityMedium
	case s.PercentVulnerable < 50:
		return SeverityHigh
	default:
		return SeverityCritical
	}
}

// Recommendation returns the fixed advice line for report footers
func (s ScanSummary) Recommendation() string {
	if s.VulnerableCount == 0 {
		return "No vulnerable units were detected. No immediate action is required."
	}
	return "Review the vulnerable units listed in this report and remediate before merging."
}
