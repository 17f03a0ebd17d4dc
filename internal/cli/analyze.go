package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ppiankov/truthguard/internal/pipeline"
)

var (
	analyzeFile string
	analyzeURL  string
	analyzeJSON bool
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze [text]",
	Short: "Score one piece of text, a file, or an article URL",
	Long: `Analyze runs the same pipeline as POST /api/analyze locally:
- Truncate the content to 1000 characters
- Ask the LLM for a labeled fact-check narrative
- Derive the credibility score and warnings from the narrative

Text is taken from the arguments, --file, --url, or stdin.

Example:
  truthguard analyze "The Great Wall of China is visible from space"
  truthguard analyze --file claim.txt --json
  truthguard analyze --url https://example.com/article -v`,
	PreRunE: bindFlags(map[string]string{
		"timeout":  "llm.timeout",
		"provider": "llm.provider",
		"model":    "llm.model",
	}),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringVar(&analyzeFile, "file", "", "read content from a file")
	analyzeCmd.Flags().StringVar(&analyzeURL, "url", "", "fetch an article and analyze its visible text")
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "print the API JSON response instead of text")
	analyzeCmd.Flags().Int("timeout", 0, "LLM timeout in seconds (default 30)")
	analyzeCmd.Flags().String("provider", "", "LLM provider (openai, anthropic, ollama)")
	analyzeCmd.Flags().String("model", "", "LLM model name")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	p, err := pipeline.NewPipeline(cfg)
	if err != nil {
		return err
	}

	ctx := context.Background()
	var analysis *pipeline.Analysis

	if analyzeURL != "" {
		fmt.Fprintf(os.Stderr, "⚙️  Fetching %s\n", analyzeURL)
		a, page, err := p.AnalyzeURL(ctx, analyzeURL)
		if err != nil {
			return err
		}
		if page.Title != "" {
			fmt.Fprintf(os.Stderr, "✓ %s\n", page.Title)
		}
		analysis = a
	} else {
		content, err := readContent(args, analyzeFile, cmd.InOrStdin())
		if err != nil {
			return err
		}
		analysis, err = p.AnalyzeDetailed(ctx, content)
		if err != nil {
			if errors.Is(err, pipeline.ErrEmptyContent) {
				return fmt.Errorf("nothing to analyze: pass text, --file, --url or pipe to stdin")
			}
			return err
		}
	}

	renderer := pipeline.NewRenderer(cfg.Output.Verbose)
	if analyzeJSON {
		return renderer.RenderJSON(cmd.OutOrStdout(), analysis.Result)
	}
	return renderer.RenderText(cmd.OutOrStdout(), analysis.Result, &analysis.Breakdown)
}

// readContent picks the text source: arguments, then --file, then stdin
func readContent(args []string, file string, stdin io.Reader) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}

	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("read %s: %w", file, err)
		}
		return string(data), nil
	}

	if stdin == nil {
		return "", nil
	}
	if f, ok := stdin.(*os.File); ok {
		if info, err := f.Stat(); err == nil && info.Mode()&os.ModeCharDevice != 0 {
			// Interactive terminal with nothing piped
			return "", nil
		}
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return string(data), nil
}
