package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ppiankov/truthguard/internal/pipeline"
	"github.com/ppiankov/truthguard/internal/relay"
)

var checkJSON bool

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check [text]",
	Short: "Analyze text through a running server, the way the extension does",
	Long: `Check drives the extension relay against a running truthguard server:
the text is truncated, relayed to the background client, posted to
/api/analyze, and retried on messaging failures. When the server cannot
be reached the fallback result is printed instead of an error.

Example:
  truthguard check "Vaccines cause autism according to a 1998 study"
  truthguard check --server http://localhost:8080 < article.txt`,
	PreRunE: bindFlags(map[string]string{"server": "relay.server_url"}),
	RunE:    runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().String("server", "", "truthguard server URL (default http://localhost:3000)")
	checkCmd.Flags().BoolVar(&checkJSON, "json", false, "print the result as JSON")
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	text, err := readContent(args, "", cmd.InOrStdin())
	if err != nil {
		return err
	}

	client := relay.NewClient(cfg.Relay.ServerURL, cfg.Relay.Timeout)
	messenger := relay.NewLocalMessenger(relay.NewBackground(client))
	controller := relay.NewController(relay.ControllerConfigFromModel(cfg.Relay), messenger)

	result, ok := controller.HandleCommand(context.Background(), relay.Command{Action: relay.ActionAnalyzeSelection, Text: text}, "", relay.Rect{})
	if !ok {
		return fmt.Errorf("nothing to analyze: pass text or pipe to stdin")
	}

	fmt.Fprintf(os.Stderr, "Server: %s\n", client.BaseURL())

	renderer := pipeline.NewRenderer(false)
	if checkJSON {
		return renderer.RenderJSON(cmd.OutOrStdout(), result)
	}
	return renderer.RenderText(cmd.OutOrStdout(), result, nil)
}
