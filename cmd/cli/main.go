package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/kubescape/go-logger"
	"github.com/kubescape/go-logger/helpers"
	v1 "github.com/kubescape/vulnintel/adapters/v1"
	"github.com/kubescape/vulnintel/config"
	"github.com/kubescape/vulnintel/core/services"
	"github.com/kubescape/vulnintel/repositories"
	"github.com/spf13/cobra"
)

var version = "dev"

func noArgs(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return nil
	}
	if cmd.HasSubCommands() {
		return errors.New("\n" + strings.TrimRight(cmd.UsageString(), "\n"))
	}
	return fmt.Errorf("%q accepts no argument(s).\nSee '%s --help'.\n\nUsage:  %s\n\n%s",
		cmd.CommandPath(),
		cmd.CommandPath(),
		cmd.UseLine(),
		cmd.Short)
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "vulnintel [OPTIONS]",
		Short:         "Vulnerability intelligence reports",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	var (
		configDir string
		opts      reportOptions
	)
	reportCmd := &cobra.Command{
		Use:   "report",
		Short: "Load the CVE feed and print the dashboard summary",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := config.LoadConfig(configDir)
			if err != nil {
				return err
			}
			rule, err := c.Rule()
			if err != nil {
				return err
			}
			feed := v1.NewFeedAdapter(c.APIURL, c.FeedTimeout, c.DetailTimeout, c.MaxRetries)
			service := services.NewDashboardService(feed, repositories.NewNoCache(), rule, c.PageSize, c.MaxPages)
			return runReport(cmd.Context(), cmd.OutOrStdout(), service, opts)
		},
	}
	reportCmd.Flags().StringVar(&configDir, "config-dir", defaultConfigDir(), "directory holding config.json")
	reportCmd.Flags().IntVarP(&opts.pages, "pages", "p", 1, "number of feed pages to load")
	reportCmd.Flags().StringVarP(&opts.search, "search", "s", "", "feed search term")
	reportCmd.Flags().BoolVar(&opts.highRisk, "high-risk", false, "list high risk vulnerabilities only")
	reportCmd.Flags().IntVarP(&opts.limit, "limit", "n", 20, "number of vulnerabilities to list, 0 for all")
	reportCmd.Flags().BoolVar(&opts.demo, "demo", false, "fill empty days with placeholder data")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information and quit",
		Args:  noArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	}

	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(versionCmd)
	return rootCmd
}

func defaultConfigDir() string {
	if envPath := os.Getenv("CONFIG_DIR"); envPath != "" {
		return envPath
	}
	return "/etc/config"
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		logger.L().Error("vulnintel failed", helpers.Error(err))
		os.Exit(1)
	}
}
