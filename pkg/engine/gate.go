package engine

import "fmt"

// Decision is the gate outcome for one scan run. Fail maps to process exit 1;
// it is a policy verdict, not an error, so callers report it and exit cleanly.
type Decision struct {
	Fail   bool   `json:"fail"`
	Reason string `json:"reason"`
}

// Decide applies the blocking policy: the run fails when blocking is enabled
// and the vulnerability percentage meets or exceeds the configured gate.
// A non-blocking run never fails, whatever the findings say.
func Decide(s ScanSummary, blocking bool, blockPercentage int) Decision {
	if !blocking {
		return Decision{
			Fail:   false,
			Reason: fmt.Sprintf("blocking disabled, %d%% vulnerable reported for information only", s.PercentVulnerable),
		}
	}
	if s.PercentVulnerable >= blockPercentage {
		return Decision{
			Fail:   true,
			Reason: fmt.Sprintf("%d%% of scanned units are vulnerable, at or above the %d%% gate", s.PercentVulnerable, blockPercentage),
		}
	}
	return Decision{
		Fail:   false,
		Reason: fmt.Sprintf("%d%% of scanned units are vulnerable, below the %d%% gate", s.PercentVulnerable, blockPercentage),
	}
}
