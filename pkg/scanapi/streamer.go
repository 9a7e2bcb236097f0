package scanapi

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/syahmiabbas/scangate/pkg/engine"
	"github.com/syahmiabbas/scangate/pkg/logging"
)

// StreamingOrchestrator drives a scan over a single server-sent event stream.
// Findings arrive in batches or, for some backends, only after completion via
// the stored-results endpoint; callers see one uniform ScanResult either way.
type StreamingOrchestrator struct {
	Client  *Client
	RepoURL string
}

func NewStreamingOrchestrator(client *Client, repoURL string) *StreamingOrchestrator {
	return &StreamingOrchestrator{Client: client, RepoURL: repoURL}
}

// Run reads events until the completion marker. A stream that closes before
// completion is fatal and its partial findings are discarded; the stream is
// never reopened.
func (o *StreamingOrchestrator) Run(ctx context.Context) (*engine.ScanResult, error) {
	log := logging.GetSugaredLogger()

	body, err := o.Client.OpenStream(ctx, o.RepoURL)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	job := engine.NewScanJob("")
	if err := job.Transition(engine.JobRunning); err != nil {
		return nil, err
	}
	log.Infow("scan initiated", "mode", "stream")

	var findings []engine.Finding
	batches := 0
	completed := false
	jobID := ""

	scanner := bufio.NewScanner(body)
	// Finding batches can be large; the default 64K line cap is not enough.
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if payload == "" {
			continue
		}

		var ev streamEvent
		if err := json.Unmarshal([]byte(payload), &ev); err != nil {
			_ = job.Transition(engine.JobFailed)
			return nil, fmt.Errorf("%w: undecodable stream event: %v", ErrMalformedResponse, err)
		}
		if ev.JobID != "" {
			jobID = ev.JobID
		}

		switch {
		case len(ev.Findings) > 0:
			for _, w := range ev.Findings {
				findings = append(findings, w.toFinding())
			}
			batches++
			log.Infof("[stream] batch %d: %d findings", batches, len(ev.Findings))
		case ev.Status == "completed":
			completed = true
		case ev.Message != "":
			log.Infof("[stream] %s", ev.Message)
		}

		if completed {
			break
		}
	}

	if err := scanner.Err(); err != nil {
		_ = job.Transition(engine.JobFailed)
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: stream cut off by the run budget", ErrTimeout)
		}
		return nil, fmt.Errorf("%w: read failed after %d batches: %v", ErrStreamTerminated, batches, err)
	}
	if !completed {
		_ = job.Transition(engine.JobFailed)
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: stream cut off by the run budget", ErrTimeout)
		}
		return nil, fmt.Errorf("%w: stream closed after %d batches without a completion event", ErrStreamTerminated, batches)
	}

	job.ID = jobID
	// Some backends stream nothing but progress and store the findings for
	// retrieval after the completion event.
	if batches == 0 && jobID != "" {
		log.Infow("no streamed batches, fetching stored results", "job_id", jobID)
		findings, err = o.Client.JobFindings(ctx, jobID)
		if err != nil {
			_ = job.Transition(engine.JobFailed)
			return nil, err
		}
	}

	if err := job.Transition(engine.JobCompleted); err != nil {
		return nil, err
	}
	log.Infow("scan complete", "job_id", job.ID, "findings", len(findings), "batches", batches)
	return &engine.ScanResult{Job: *job, Findings: findings, FailedUnits: 0}, nil
}
