package scanapi

import (
	"context"
	"fmt"

	"github.com/syahmiabbas/scangate/pkg/config"
	"github.com/syahmiabbas/scangate/pkg/engine"
)

// Orchestrator drives one scan job to a terminal state
type Orchestrator interface {
	Run(ctx context.Context) (*engine.ScanResult, error)
}

// New selects the transport variant for the configured scan mode
func New(cfg config.Config, repoURL string) (Orchestrator, error) {
	client := NewClient(cfg.APIBaseURL)
	switch cfg.Mode {
	case "poll":
		return NewPollingOrchestrator(client, repoURL), nil
	case "stream":
		return NewStreamingOrchestrator(client, repoURL), nil
	default:
		return nil, fmt.Errorf("unknown scan mode: %s", cfg.Mode)
	}
}
