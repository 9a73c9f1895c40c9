package main

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"longbox/internal/config"
	"longbox/internal/lookup"
	"longbox/internal/queue"
	"longbox/internal/sync"
)

func newSyncCommand(ctx *commandContext) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Import every archive from the import directory into the library",
		RunE: func(cmd *cobra.Command, args []string) error {
			orch, cleanup, err := buildOrchestrator(ctx, force)
			if err != nil {
				return err
			}
			defer cleanup()

			report, err := orch.Run(cmd.Context())
			if report != nil {
				printReport(cmd.OutOrStdout(), report)
			}
			return err
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Process archives even when their markers are fresh")
	return cmd
}

func newConvertCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "convert",
		Short: "Rewrite import archives into the configured output format in place",
		RunE: func(cmd *cobra.Command, args []string) error {
			orch, cleanup, err := buildOrchestrator(ctx, false)
			if err != nil {
				return err
			}
			defer cleanup()

			report, err := orch.Convert(cmd.Context())
			if report != nil {
				printReport(cmd.OutOrStdout(), report)
			}
			return err
		},
	}
}

func buildOrchestrator(ctx *commandContext, force bool) (*sync.Orchestrator, func(), error) {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return nil, nil, err
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, nil, err
	}
	logger, err := ctx.ensureLogger()
	if err != nil {
		return nil, nil, err
	}

	templates, err := cfg.CompiledTemplates()
	if err != nil {
		return nil, nil, err
	}

	store, err := queue.Open(cfg.Paths.StateDB)
	if err != nil {
		return nil, nil, fmt.Errorf("open state database: %w", err)
	}

	gateway, closeGateway, err := buildGateway(cfg, logger)
	if err != nil {
		store.Close()
		return nil, nil, err
	}

	cleanup := func() {
		closeGateway()
		store.Close()
	}

	orch, err := sync.New(sync.Options{
		ImportDir:     cfg.Paths.ImportDir,
		LibraryDir:    cfg.Paths.LibraryDir,
		OutputKind:    cfg.OutputKind(),
		Templates:     templates,
		RenamePages:   cfg.Output.RenamePages,
		CleanupExtras: cfg.Output.CleanupExtras,
		KeepSource:    cfg.Output.KeepSource,
		WriteMetron:   cfg.Output.WriteMetron,
		WriteComic:    cfg.Output.WriteComic,
		Workers:       cfg.Sync.Workers,
		Force:         force,
		LockPath:      filepath.Join(cfg.Paths.LogDir, "longbox.lock"),
		Store:         store,
		Markers:       store,
		Gateway:       gateway,
		Logger:        logger,
	})
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return orch, cleanup, nil
}

// buildGateway assembles the configured lookup chain. No services means
// no remote lookup; archives then stand on their own metadata.
func buildGateway(cfg *config.Config, logger *slog.Logger) (lookup.Gateway, func(), error) {
	if len(cfg.Lookup.Services) == 0 {
		return nil, func() {}, nil
	}

	var gateways []lookup.Gateway
	var closers []func()
	closeAll := func() {
		for _, closer := range closers {
			closer()
		}
	}
	for _, service := range cfg.Lookup.Services {
		switch service {
		case "metron":
			var gw lookup.Gateway = lookup.NewMetron(lookup.MetronOptions{
				BaseURL:  cfg.Lookup.Metron.BaseURL,
				Username: cfg.Lookup.Metron.Username,
				Password: cfg.Lookup.Metron.Password,
				Timeout:  lookupTimeout(cfg.Lookup.Metron.TimeoutSeconds),
				Retries:  cfg.Lookup.Metron.Retries,
				Logger:   logger,
			})
			if cfg.Lookup.CacheEnabled {
				cache, err := lookup.NewCache(cfg.Paths.LookupCacheDB, gw,
					time.Duration(cfg.Lookup.CacheTTLDays)*24*time.Hour)
				if err != nil {
					closeAll()
					return nil, nil, fmt.Errorf("open lookup cache: %w", err)
				}
				closers = append(closers, func() { cache.Close() })
				gw = cache
			}
			gateways = append(gateways, gw)
		default:
			closeAll()
			return nil, nil, fmt.Errorf("unknown lookup service %q", service)
		}
	}

	if len(gateways) == 1 {
		return gateways[0], closeAll, nil
	}
	return lookup.NewOrdered(logger, gateways...), closeAll, nil
}

func printReport(out io.Writer, report *sync.Report) {
	rows := make([][]string, 0, len(report.Results))
	for _, result := range report.Results {
		detail := result.DestinationPath
		if result.Err != nil {
			detail = result.Err.Error()
		}
		rows = append(rows, []string{
			string(result.Status),
			result.SourcePath,
			detail,
		})
	}
	if len(rows) > 0 {
		fmt.Fprintln(out, renderTable([]string{"STATUS", "SOURCE", "DETAIL"}, rows))
	}

	written, skipped, failed := report.Counts()
	fmt.Fprintf(out, "%d written, %d skipped, %d failed\n", written, skipped, failed)
}

func lookupTimeout(seconds int) time.Duration {
	return time.Duration(seconds) * time.Second
}
