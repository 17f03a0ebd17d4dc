package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/truthguard/internal/model"
	"github.com/ppiankov/truthguard/internal/pipeline"
	"github.com/ppiankov/truthguard/internal/worker"
)

var (
	batchTimeout time.Duration
	batchOutput  string
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Analyze many texts from a file in parallel",
	Long: `Batch analyzes one text per line:
- Blank lines and lines starting with # are skipped
- Duplicate lines are analyzed once
- Texts are processed by a bounded worker pool
- LLM calls are rate limited across workers

Example:
  truthguard batch claims.txt
  truthguard batch claims.txt --workers 8 --rps 2 --output results.jsonl`,
	Args: cobra.ExactArgs(1),
	PreRunE: bindFlags(map[string]string{
		"workers": "concurrency.workers",
		"rps":     "rate_limiting.requests_per_second",
	}),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().Int("workers", 0, "number of concurrent workers (default 4)")
	batchCmd.Flags().Float64("rps", 0, "LLM requests per second across workers (default 5)")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 10*time.Minute, "total timeout for the batch")
	batchCmd.Flags().StringVar(&batchOutput, "output", "", "write one JSON result per line to this file")
}

// batchRecord is one line of --output
type batchRecord struct {
	Text   string                `json:"text"`
	Result *model.AnalysisResult `json:"result,omitempty"`
	Error  string                `json:"error,omitempty"`
}

func runBatch(cmd *cobra.Command, args []string) error {
	file := args[0]

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Truth Guard Batch\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Input file:   %s\n", file)
	fmt.Fprintf(os.Stderr, "  Workers:      %d\n", cfg.Concurrency.Workers)
	fmt.Fprintf(os.Stderr, "  LLM:          %s/%s\n", cfg.LLM.Provider, cfg.LLM.Model)
	fmt.Fprintf(os.Stderr, "  Timeout:      %v\n", batchTimeout)
	fmt.Fprintf(os.Stderr, "\n")

	p, err := pipeline.NewPipeline(cfg)
	if err != nil {
		return err
	}

	processor := worker.NewBatchProcessor(p, cfg.Concurrency.Workers, cfg.RateLimiting.RequestsPerSecond, cfg.RateLimiting.BurstSize)

	results, err := processor.ProcessFile(ctx, file)
	if err != nil {
		return fmt.Errorf("process file: %w", err)
	}

	var out *json.Encoder
	if batchOutput != "" {
		f, err := os.Create(batchOutput)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer func() { _ = f.Close() }()
		out = json.NewEncoder(f)
	}

	successCount := 0
	failureCount := 0

	for _, r := range results {
		rec := batchRecord{Text: r.Text}
		if r.Error != nil {
			failureCount++
			rec.Error = r.Error.Error()
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", preview(r.Text), r.Error)
		} else {
			successCount++
			r.Result.NormalizeWarnings()
			rec.Result = r.Result
			fmt.Fprintf(os.Stderr, "✓ %3d/100 %-6s %s (%v)\n",
				r.Result.Credibility, pipeline.Band(r.Result.Credibility), preview(r.Text), r.Duration.Round(time.Millisecond))
		}

		if out != nil {
			if err := out.Encode(rec); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
		}
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Batch Complete\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Total:     %d texts\n", len(results))
	fmt.Fprintf(os.Stderr, "  Success:   %d\n", successCount)
	fmt.Fprintf(os.Stderr, "  Failures:  %d\n", failureCount)
	if batchOutput != "" {
		fmt.Fprintf(os.Stderr, "  Output:    %s\n", batchOutput)
	}
	fmt.Fprintf(os.Stderr, "\n")

	return nil
}

// preview shortens text for one-line progress output
func preview(s string) string {
	runes := []rune(s)
	if len(runes) <= 60 {
		return s
	}
	return string(runes[:57]) + "..."
}
