package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"parking-payments/internal/config"
	"parking-payments/internal/logging"
	"parking-payments/internal/parking"
	"parking-payments/internal/server"
)

var (
	Version   = "dev"
	Commit    = "none"
	BuildTime = "unknown"
)

type rootOptions struct {
	envFiles []string
	httpAddr string
	logLevel string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "parking-payments [file]",
		Short: "Validate and record parking payments from a stream of commands",
		Long: `Reads one command per line from file, or standard input when no file is
given. "REG START END" registers a payment, "REG TIME" checks whether the
vehicle's parking is paid at TIME. Results go to standard output as
OK n, YES n or NO n; rejected lines go to standard error as ERROR n.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, args)
		},
	}

	flags := cmd.Flags()
	flags.StringSliceVar(&opts.envFiles, "env-file", nil, "environment files to load before reading configuration")
	flags.StringVar(&opts.httpAddr, "http-addr", "", "serve health, metrics and session stats on this address")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn or error")

	cmd.AddCommand(newVersionCmd())
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "parking-payments %s (commit %s, built %s)\n", Version, Commit, BuildTime)
		},
	}
}

func run(cmd *cobra.Command, opts *rootOptions, args []string) (err error) {
	cfg, err := config.Load(opts.envFiles...)
	if err != nil {
		return err
	}
	if opts.httpAddr != "" {
		cfg.HTTPAddr = opts.httpAddr
	}
	if opts.logLevel != "" {
		cfg.LogLevel = opts.logLevel
	}
	cfg.OTelConfig.ServiceVersion = Version

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logCloser, err := logging.Init(logging.Options{
		ServiceName: cfg.OTelConfig.ServiceName,
		Environment: cfg.Environment,
		Level:       cfg.LogLevel,
		Output:      cfg.LogOutput,
	})
	if err != nil {
		return fmt.Errorf("initialize logging: %w", err)
	}
	defer logCloser.Close()
	defer func() {
		if err != nil {
			logging.Error(ctx, "parking-payments failed", "err", err)
		}
	}()

	telemetryProvider, err := parking.NewTelemetryProvider(ctx, cfg.OTelConfig)
	if err != nil {
		return fmt.Errorf("initialize telemetry: %w", err)
	}
	defer shutdownTelemetry(telemetryProvider, cfg.ShutdownTimeout)

	input, err := openInput(cmd, args)
	if err != nil {
		return err
	}
	defer input.Close()

	instrumentation, err := parking.NewTelemetryInstrumentation(telemetryProvider)
	if err != nil {
		return fmt.Errorf("initialize instrumentation: %w", err)
	}
	tally := parking.NewTally()
	observers := []parking.Observer{instrumentation, tally}

	if cfg.HTTPAddr != "" {
		registry := prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		sessionCollectors := parking.NewCollectors()
		if err := sessionCollectors.Register(registry); err != nil {
			return fmt.Errorf("register collectors: %w", err)
		}
		observers = append(observers, sessionCollectors)

		srv, err := server.NewServer(server.Options{
			Addr:        cfg.HTTPAddr,
			ServiceName: cfg.OTelConfig.ServiceName,
			Stats:       tally,
			Registry:    registry,
		})
		if err != nil {
			return fmt.Errorf("create server: %w", err)
		}
		ln, err := net.Listen("tcp", cfg.HTTPAddr)
		if err != nil {
			return fmt.Errorf("listen %s: %w", cfg.HTTPAddr, err)
		}
		go func() {
			if err := srv.Serve(ln); err != nil {
				logging.Error(ctx, "HTTP server failed", "err", err)
			}
		}()
		defer shutdownServer(srv, cfg.ShutdownTimeout)
	}

	session := parking.NewSession(cmd.OutOrStdout(), cmd.ErrOrStderr(),
		parking.WithObserver(parking.Observers(observers...)))

	logging.Info(ctx, "session started", "http_addr", cfg.HTTPAddr, "telemetry", telemetryProvider.Enabled())
	err = session.Run(ctx, input)
	stats := tally.Snapshot()
	logging.Info(ctx, "session ended", "lines", stats.Lines, "rollovers", stats.Rollovers)

	switch {
	case err == nil, errors.Is(err, context.Canceled):
		return nil
	default:
		return err
	}
}

func openInput(cmd *cobra.Command, args []string) (io.ReadCloser, error) {
	if len(args) == 0 || args[0] == "-" {
		return io.NopCloser(cmd.InOrStdin()), nil
	}
	f, err := os.Open(args[0])
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	return f, nil
}

func shutdownServer(srv *server.Server, timeout time.Duration) {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.Error(shutdownCtx, "server shutdown error", "err", err)
	}
}

func shutdownTelemetry(telemetryProvider *parking.TelemetryProvider, timeout time.Duration) {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := telemetryProvider.Shutdown(shutdownCtx); err != nil {
		logging.Error(shutdownCtx, "error shutting down telemetry", "err", err)
	}
}
