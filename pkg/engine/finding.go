package engine

import (
	"fmt"
	"strings"
	"time"
)

// Severity labels understood by the report layer. The backend is free to send
// anything; NormalizeSeverity folds unknown values into SeverityUnknown.
const (
	SeverityLow      = "LOW"
	SeverityMedium   = "MEDIUM"
	SeverityHigh     = "HIGH"
	SeverityCritical = "CRITICAL"
	SeverityUnknown  = "UNKNOWN"
)

// Finding represents one analyzed code unit as reported by the scan API
type Finding struct {
	Path         string  `json:"path"`
	UnitName     string  `json:"unit_name,omitempty"`
	StartLine    int     `json:"start_line,omitempty"`
	EndLine      int     `json:"end_line,omitempty"`
	IsVulnerable bool    `json:"is_vulnerable"`
	Score        float64 `json:"score"`
	Severity     string  `json:"severity"`
	Message      string  `json:"message,omitempty"`

	// Optional enrichments; not every backend payload carries them.
	VulnType   string  `json:"vuln_type,omitempty"`
	CWE        string  `json:"cwe_id,omitempty"`
	Confidence float64 `json:"confidence_percent,omitempty"`
}

// NormalizeSeverity maps a backend severity string onto the known labels.
// Matching is case-insensitive; empty or unrecognized values become UNKNOWN.
func NormalizeSeverity(s string) string {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case SeverityLow:
		return SeverityLow
	case SeverityMedium:
		return SeverityMedium
	case SeverityHigh:
		return SeverityHigh
	case SeverityCritical:
		return SeverityCritical
	default:
		return SeverityUnknown
	}
}

// Normalize fixes up decoded fields: severity labels and reversed line ranges.
// Findings are identified by (Path, UnitName, StartLine, EndLine); duplicates
// are legitimate repeat reports and are never merged.
func (f *Finding) Normalize() {
	f.Severity = NormalizeSeverity(f.Severity)
	if f.StartLine > 0 && f.EndLine > 0 && f.StartLine > f.EndLine {
		f.StartLine, f.EndLine = f.EndLine, f.StartLine
	}
}

// Location renders the finding identity as path[:start-end][ (unit)]
func (f Finding) Location() string {
	loc := f.Path
	if f.StartLine > 0 {
		if f.EndLine > 0 && f.EndLine != f.StartLine {
			loc = fmt.Sprintf("%s:%d-%d", loc, f.StartLine, f.EndLine)
		} else {
			loc = fmt.Sprintf("%s:%d", loc, f.StartLine)
		}
	}
	if f.UnitName != "" {
		loc = fmt.Sprintf("%s (%s)", loc, f.UnitName)
	}
	return loc
}

// JobState tracks the lifecycle of a scan job on the backend
type JobState string

const (
	JobPending   JobState = "pending"
	JobRunning   JobState = "running"
	JobCompleted JobState = "completed"
	JobFailed    JobState = "failed"
)

// Terminal reports whether the state admits no further transitions
func (s JobState) Terminal() bool {
	return s == JobCompleted || s == JobFailed
}

// ScanJob is the client-side view of one backend scan job
type ScanJob struct {
	ID         string    `json:"id"`
	State      JobState  `json:"state"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at,omitempty"`
}

// NewScanJob creates a job in the pending state
func NewScanJob(id string) *ScanJob {
	return &ScanJob{ID: id, State: JobPending, StartedAt: time.Now().UTC()}
}

// Transition moves the job to the next state. Leaving a terminal state is an
// error; orchestrators treat that as a programming bug, not a backend fault.
func (j *ScanJob) Transition(next JobState) error {
	if j.State.Terminal() {
		return fmt.Errorf("job %s is already %s, cannot move to %s", j.ID, j.State, next)
	}
	switch next {
	case JobRunning:
		if j.State != JobPending {
			return fmt.Errorf("job %s cannot move from %s to %s", j.ID, j.State, next)
		}
	case JobCompleted, JobFailed:
		if j.State != JobRunning {
			return fmt.Errorf("job %s cannot move from %s to %s", j.ID, j.State, next)
		}
		j.FinishedAt = time.Now().UTC()
	default:
		return fmt.Errorf("job %s cannot move from %s to %s", j.ID, j.State, next)
	}
	j.State = next
	return nil
}

// ScanResult is the orchestrator output handed to the report and gate layer.
// FailedUnits counts backend jobs that never completed; they contribute no
// Finding and are excluded from every percentage denominator.
type ScanResult struct {
	Job         ScanJob   `json:"job"`
	Findings    []Finding `json:"findings"`
	FailedUnits int       `json:"failed_units"`
}
