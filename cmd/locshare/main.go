// Command locshare reads the positions of accounts sharing their location
// with a signed-in session.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"locshare/internal/app"
)

var (
	configPath string
	jsonOutput bool
)

var rootCmd = &cobra.Command{
	Use:   "locshare",
	Short: "Read shared locations from a signed-in session",
	Long: `locshare fetches the location-sharing payload for a signed-in session
(exported browser cookies) and decodes it into people and positions.

One-shot commands fetch once and print. "serve" keeps a registry fresh in
the background and exposes it over HTTP and WebSocket.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: configs/config.yaml or OS config dir)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Print JSON instead of a table")

	whoisCmd.Flags().StringVar(&whoisNickname, "nickname", "", "Match on nickname")
	whoisCmd.Flags().StringVar(&whoisFullName, "fullname", "", "Match on full name")
	whoisCmd.MarkFlagsMutuallyExclusive("nickname", "fullname")
	whoisCmd.MarkFlagsOneRequired("nickname", "fullname")

	rootCmd.AddCommand(peopleCmd)
	rootCmd.AddCommand(selfCmd)
	rootCmd.AddCommand(whoisCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(replayCmd)
}

// bootstrap loads config, logger and client for the current invocation.
func bootstrap() (*app.Bootstrap, error) {
	b := app.NewBootstrap(configPath)
	if err := b.Initialize(); err != nil {
		return nil, err
	}
	return b, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
