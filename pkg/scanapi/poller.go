package scanapi

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/syahmiabbas/scangate/pkg/engine"
	"github.com/syahmiabbas/scangate/pkg/logging"
)

// pollInterval is the fixed wait between result checks. No backoff: the
// results endpoint is cheap and the run budget is the real limiter.
const pollInterval = 10 * time.Second

// PollingOrchestrator drives a scan through the initiate and group-results
// endpoints until the backend accounts for every unit.
type PollingOrchestrator struct {
	Client   *Client
	RepoURL  string
	Interval time.Duration
}

func NewPollingOrchestrator(client *Client, repoURL string) *PollingOrchestrator {
	return &PollingOrchestrator{Client: client, RepoURL: repoURL, Interval: pollInterval}
}

// Run blocks until every unit is completed or failed, then maps the final
// snapshot. Any poll failure is fatal; partial results are discarded.
func (o *PollingOrchestrator) Run(ctx context.Context) (*engine.ScanResult, error) {
	log := logging.GetSugaredLogger()

	groupID, err := o.Client.Initiate(ctx, o.RepoURL)
	if err != nil {
		return nil, err
	}
	job := engine.NewScanJob(groupID)
	if err := job.Transition(engine.JobRunning); err != nil {
		return nil, err
	}
	log.Infow("scan initiated", "mode", "poll", "group_id", groupID)

	for {
		snapshot, err := o.Client.GroupResults(ctx, groupID)
		if err != nil {
			_ = job.Transition(engine.JobFailed)
			return nil, err
		}
		done := snapshot.Summary.Completed + snapshot.Summary.Failed
		log.Infof("[poll] %d/%d units done, %d failed", done, snapshot.Summary.Total, snapshot.Summary.Failed)

		if snapshot.done() {
			return o.collect(job, snapshot)
		}

		select {
		case <-ctx.Done():
			_ = job.Transition(engine.JobFailed)
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				pending := snapshot.Summary.Total - done
				return nil, fmt.Errorf("%w: budget elapsed with %d units still pending", ErrTimeout, pending)
			}
			return nil, ctx.Err()
		case <-time.After(o.Interval):
		}
	}
}

// collect maps the terminal snapshot onto the engine model. Units that never
// completed produce no finding and are tallied separately.
func (o *PollingOrchestrator) collect(job *engine.ScanJob, snapshot *groupResults) (*engine.ScanResult, error) {
	findings := make([]engine.Finding, 0, len(snapshot.Jobs))
	failed := 0
	for _, u := range snapshot.Jobs {
		if u.Status != "completed" {
			failed++
			continue
		}
		findings = append(findings, u.toFinding())
	}
	if err := job.Transition(engine.JobCompleted); err != nil {
		return nil, err
	}
	logging.GetSugaredLogger().Infow("scan complete",
		"group_id", job.ID, "findings", len(findings), "failed_units", failed)
	return &engine.ScanResult{Job: *job, Findings: findings, FailedUnits: failed}, nil
}
