package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"albumbot/config"
	"albumbot/logger"
	"albumbot/resolver"
)

// resolveCmd is a one-shot lookup for checking the resolver configuration
// without talking to Telegram.
var resolveCmd = &cobra.Command{
	Use:   "resolve <url>",
	Short: "Resolve a release link against the lookup service",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.Load()
		logger.Init(logger.Config{Level: "warn"})

		client := resolver.NewClient(cfg.ResolverAPIURL, cfg.ResolverCountry, cfg.ResolverPlatform)

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		res, err := client.Resolve(ctx, args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "resolve failed: %v\n", err)
			os.Exit(1)
		}

		out, _ := json.MarshalIndent(res, "", "  ")
		fmt.Println(string(out))
	},
}

func init() {
	rootCmd.AddCommand(resolveCmd)
}
