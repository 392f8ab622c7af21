package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var cfgFile string

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "skilltrends",
		Short: "Print current demand for in-demand technical skills as JSON",
		Long: `Fetches search interest for a fixed set of skills, normalizes it into a
40-100 demand score and prints the top skills as JSON. When the provider
is unreachable the last cached result (if younger than the cache max age)
or a built-in default list is printed instead.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrends(cmd.Context(), cmd.OutOrStdout())
		},
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./config.yaml)")

	root.AddCommand(cacheCmd())

	return root
}

func cacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or reset the cached snapshot",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the cached snapshot with its metadata",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCacheShow(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Remove the cached snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCacheClear(cmd.Context(), cmd.ErrOrStderr())
		},
	})

	return cmd
}
