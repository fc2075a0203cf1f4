package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pthm/shipform/internal/config"
	"github.com/pthm/shipform/internal/logging"
	"github.com/pthm/shipform/internal/region"
	"github.com/pthm/shipform/internal/server"
)

var (
	configPath string
	verbose    bool
	addr       string

	cfg    config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:           "shipform",
	Short:         "Shipping address form with a cascading city/ward selector",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("verbose") {
			cfg.Verbose = verbose
		}
		logger, err = logging.New(cfg.Verbose)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the shipping form over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("addr") {
			cfg.Addr = addr
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		return server.New(cfg, logger).Run(cmd.Context())
	},
}

var regionsCmd = &cobra.Command{
	Use:   "regions",
	Short: "Inspect the reference data",
}

var regionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List cities/provinces in document order",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		records, err := region.Open(cfg.PrimaryURL, cfg.FetchTimeout).Fetch(cmd.Context())
		if err != nil {
			return fmt.Errorf("load cities: %w", err)
		}
		return printRecords(cmd, records)
	},
}

var regionsWardsCmd = &cobra.Command{
	Use:   "wards <city-code>",
	Short: "List the wards of a city/province",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		records, err := region.Open(cfg.SecondaryURL, cfg.FetchTimeout).Fetch(cmd.Context())
		if err != nil {
			return fmt.Errorf("load wards: %w", err)
		}
		return printRecords(cmd, region.FilterByParent(records, args[0]))
	},
}

func printRecords(cmd *cobra.Command, records []region.Record) error {
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CODE\tNAME")
	for _, r := range records {
		fmt.Fprintf(tw, "%s\t%s\n", r.Code, r.Name)
	}
	return tw.Flush()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	serveCmd.Flags().StringVar(&addr, "addr", config.DefaultAddr, "listen address")

	regionsCmd.AddCommand(regionsListCmd, regionsWardsCmd)
	rootCmd.AddCommand(serveCmd, regionsCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}
