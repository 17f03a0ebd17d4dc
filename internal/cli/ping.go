package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/truthguard/internal/relay"
)

// pingCmd represents the ping command
var pingCmd = &cobra.Command{
	Use:     "ping",
	Short:   "Check that a truthguard server is reachable",
	Args:    cobra.NoArgs,
	PreRunE: bindFlags(map[string]string{"server": "relay.server_url"}),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		client := relay.NewClient(cfg.Relay.ServerURL, cfg.Relay.Timeout)
		start := time.Now()
		if err := client.Ping(ctx); err != nil {
			return fmt.Errorf("ping %s: %w", client.BaseURL(), err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "✓ %s is up (%v)\n", client.BaseURL(), time.Since(start).Round(time.Millisecond))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(pingCmd)

	pingCmd.Flags().String("server", "", "truthguard server URL (default http://localhost:3000)")
}
