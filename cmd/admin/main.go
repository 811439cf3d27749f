package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	opts := &rootOptions{}
	rootCmd := &cobra.Command{
		Use:           "ardiland-admin",
		Short:         "Admin tools for the ardiland.com API",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.init()
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.apiURL, "api", envOr("ARDILAND_API_URL", "http://localhost:3000"), "API base URL")
	rootCmd.PersistentFlags().StringVar(&opts.tokenPath, "token-file", "", "token file (default: user config dir)")

	rootCmd.AddCommand(
		newLoginCommand(opts),
		newLogoutCommand(opts),
		newStatusCommand(opts),
		newMessagesCommand(opts),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
