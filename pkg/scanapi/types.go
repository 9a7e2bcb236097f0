package scanapi

import "github.com/syahmiabbas/scangate/pkg/engine"

// Wire shapes for the scan backend. Field names follow the backend contract
// exactly; mapping onto engine.Finding happens here and nowhere else.

type initiateRequest struct {
	URL string `json:"url"`
}

type initiateResponse struct {
	GroupID string `json:"groupId"`
	Error   string `json:"error"`
}

type chatRequest struct {
	Content string `json:"content"`
}

type groupSummary struct {
	Completed int `json:"completed"`
	Failed    int `json:"failed"`
	Total     int `json:"total"`
}

type unitInput struct {
	FilePath     string `json:"filePath"`
	FunctionName string `json:"functionName"`
	StartLine    int    `json:"startLine"`
	EndLine      int    `json:"endLine"`
	Code         string `json:"code"`
}

type unitResult struct {
	IsVulnerable         bool    `json:"is_vulnerable"`
	Score                float64 `json:"score"`
	ConfidencePercent    float64 `json:"confidence_percent"`
	Severity             string  `json:"severity"`
	InferenceTimeSeconds float64 `json:"inference_time_seconds"`
	CodeLength           int     `json:"code_length"`
	Analysis             string  `json:"analysis"`
	Prediction           int     `json:"prediction"`
	Threshold            float64 `json:"threshold"`
}

type groupJob struct {
	Status string      `json:"status"`
	Input  unitInput   `json:"input"`
	Result *unitResult `json:"result"`
}

// groupResults uses a pointer summary so a payload that lacks one entirely
// is caught as malformed instead of reading as an instantly complete scan.
type groupResults struct {
	Summary *groupSummary `json:"summary"`
	Jobs    []groupJob    `json:"jobs"`
}

// done reports the literal completion condition: every unit accounted for.
// A zero-unit group is complete on its first poll.
func (g groupResults) done() bool {
	return g.Summary.Completed+g.Summary.Failed >= g.Summary.Total
}

// toFinding maps one completed polling job onto the engine model
func (j groupJob) toFinding() engine.Finding {
	f := engine.Finding{
		Path:      j.Input.FilePath,
		UnitName:  j.Input.FunctionName,
		StartLine: j.Input.StartLine,
		EndLine:   j.Input.EndLine,
	}
	if j.Result != nil {
		f.IsVulnerable = j.Result.IsVulnerable
		f.Score = j.Result.Score
		f.Severity = j.Result.Severity
		f.Message = j.Result.Analysis
		f.Confidence = j.Result.ConfidencePercent
	}
	f.Normalize()
	return f
}

// wireFinding is the element shape used by the streaming batches and by the
// fetch-by-job-id endpoint. There is no is_vulnerable flag here; the model's
// binary prediction (1 = vulnerable) stands in for it.
type wireFinding struct {
	FindingID    string  `json:"finding_id"`
	FilePath     string  `json:"file_path"`
	FunctionName string  `json:"function_name"`
	StartLine    int     `json:"start_line"`
	EndLine      int     `json:"end_line"`
	Prediction   int     `json:"prediction"`
	Score        float64 `json:"score"`
	Severity     string  `json:"severity"`
	VulnType     string  `json:"vuln_type"`
	CWEID        string  `json:"cwe_id"`
	Message      string  `json:"message"`
}

func (w wireFinding) toFinding() engine.Finding {
	f := engine.Finding{
		Path:         w.FilePath,
		UnitName:     w.FunctionName,
		StartLine:    w.StartLine,
		EndLine:      w.EndLine,
		IsVulnerable: w.Prediction == 1,
		Score:        w.Score,
		Severity:     w.Severity,
		Message:      w.Message,
		VulnType:     w.VulnType,
		CWE:          w.CWEID,
	}
	f.Normalize()
	return f
}

type jobResults struct {
	Count    int           `json:"count"`
	Findings []wireFinding `json:"findings"`
}

// streamEvent is the superset of every payload the event stream emits:
// progress messages, findings batches, and the completion marker.
type streamEvent struct {
	Message  string        `json:"message"`
	Status   string        `json:"status"`
	JobID    string        `json:"job_id"`
	Count    int           `json:"count"`
	Findings []wireFinding `json:"findings"`
}
