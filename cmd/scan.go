package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/syahmiabbas/scangate/pkg/config"
	"github.com/syahmiabbas/scangate/pkg/engine"
	"github.com/syahmiabbas/scangate/pkg/logging"
	"github.com/syahmiabbas/scangate/pkg/report"
	"github.com/syahmiabbas/scangate/pkg/scanapi"
)

// renderBudget bounds the report stage separately from the scan budget, so a
// scan that finishes near its deadline still gets its PDF rendered.
const renderBudget = 2 * time.Minute

var scanCmd = &cobra.Command{
	Use:   "scan <repository-url>",
	Short: "Scan a repository and gate the pipeline on the verdicts",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		os.Exit(runScan(cmd, args[0]))
	},
}

func init() {
	scanCmd.Flags().String("api-url", "", "Scan API base URL (env API_BASE_URL)")
	scanCmd.Flags().String("format", "", "Report format: md, pdf or xml (env REPORT_FORMAT)")
	scanCmd.Flags().Int("timeout", 0, "Overall scan budget in seconds (env TIMEOUT_SECONDS)")
	scanCmd.Flags().StringSlice("exclude", nil, "Informational exclude patterns (env EXCLUDE_FILES)")
	scanCmd.Flags().Bool("blocking", true, "Fail the pipeline when the gate trips (env BLOCKING)")
	scanCmd.Flags().Int("block-percentage", 0, "Vulnerable percentage that trips the gate (env BLOCK_PERCENTAGE)")
	scanCmd.Flags().String("mode", "", "Transport: poll or stream (env SCAN_MODE)")
	scanCmd.Flags().String("out", "", "Artifact output directory (env OUTPUT_DIR)")
	rootCmd.AddCommand(scanCmd)
}

// resolveConfig layers explicit flags over the file and environment values
func resolveConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(ConfigFile)
	if err != nil {
		return cfg, err
	}
	flags := cmd.Flags()
	if flags.Changed("api-url") {
		cfg.APIBaseURL, _ = flags.GetString("api-url")
	}
	if flags.Changed("format") {
		v, _ := flags.GetString("format")
		cfg.Format = strings.ToLower(v)
	}
	if flags.Changed("timeout") {
		cfg.TimeoutSeconds, _ = flags.GetInt("timeout")
	}
	if flags.Changed("exclude") {
		cfg.ExcludePatterns, _ = flags.GetStringSlice("exclude")
	}
	if flags.Changed("blocking") {
		cfg.Blocking, _ = flags.GetBool("blocking")
	}
	if flags.Changed("block-percentage") {
		cfg.BlockPercentage, _ = flags.GetInt("block-percentage")
	}
	if flags.Changed("mode") {
		v, _ := flags.GetString("mode")
		cfg.Mode = strings.ToLower(v)
	}
	if flags.Changed("out") {
		cfg.OutputDir, _ = flags.GetString("out")
	}
	return cfg, nil
}

// runScan returns the process exit code: 0 for pass or non-blocking, 1 for
// any fatal error or a tripped gate. A timed-out or terminated scan writes
// no report at all.
func runScan(cmd *cobra.Command, repoURL string) int {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		return 1
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		return 1
	}

	logging.Init(DebugMode, cfg.LogFile)
	defer logging.Sync()
	log := logging.GetSugaredLogger()

	meta := report.Meta{
		RunID:       uuid.NewString(),
		GeneratedAt: time.Now().UTC(),
		Endpoint:    cfg.APIBaseURL,
		Repository:  repoURL,
		Mode:        cfg.Mode,
	}
	log.Infow("starting scan",
		"run_id", meta.RunID, "repository", repoURL, "endpoint", cfg.APIBaseURL, "mode", cfg.Mode)

	orch, err := scanapi.New(cfg, repoURL)
	if err != nil {
		log.Errorw("scan setup failed", "error", err)
		return 1
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.TimeoutSeconds)*time.Second)
	defer cancel()

	result, err := orch.Run(ctx)
	if err != nil {
		log.Errorw("scan failed", "run_id", meta.RunID, "error", err)
		return 1
	}

	summary := engine.ComputeSummary(result.Findings, result.FailedUnits)
	log.Infow("scan summary",
		"total", summary.Total,
		"vulnerable", summary.VulnerableCount,
		"clean", summary.CleanCount,
		"failed_units", summary.FailedUnits,
		"percent_vulnerable", summary.PercentVulnerable,
		"risk_level", summary.RiskLevel(),
	)

	renderCtx, renderCancel := context.WithTimeout(context.Background(), renderBudget)
	defer renderCancel()

	artifact, err := report.Write(renderCtx, result, summary, cfg, meta)
	if err != nil {
		log.Errorw("report rendering failed", "error", err)
		return 1
	}
	log.Infow("report written", "artifact", artifact, "format", cfg.Format)

	decision := engine.Decide(summary, cfg.Blocking, cfg.BlockPercentage)
	if decision.Fail {
		log.Errorw("gate failed", "reason", decision.Reason)
		return 1
	}
	log.Infow("gate passed", "reason", decision.Reason)
	return 0
}
