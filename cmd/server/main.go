package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/iliamunaev/quote-wizard/internal/app"
	"github.com/iliamunaev/quote-wizard/internal/config"
	"github.com/iliamunaev/quote-wizard/internal/logging"
	"github.com/iliamunaev/quote-wizard/internal/options"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// flags are the overrides accepted by every subcommand.
type flags struct {
	configPath string
	addr       string
	logLevel   string
	backendURL string
}

func newRootCmd() *cobra.Command {
	f := &flags{}

	root := &cobra.Command{
		Use:          "quote-wizard",
		Short:        "Quote and signup wizard service",
		SilenceUsage: true,
	}
	pf := root.PersistentFlags()
	pf.StringVar(&f.configPath, "config", "", "path to the YAML config file")
	pf.StringVar(&f.addr, "addr", "", "listen address, overrides server.addr")
	pf.StringVar(&f.logLevel, "log-level", "", "log level, overrides logging.level")
	pf.StringVar(&f.backendURL, "backend-url", "", "collaborator base URL, overrides backend.base_url")

	root.AddCommand(newServeCmd(f), newOptionsCmd(f))
	return root
}

// load reads the config file, then applies flags over it.
func (f *flags) load() (*config.Config, error) {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return nil, err
	}
	if f.addr != "" {
		cfg.Server.Addr = f.addr
	}
	if f.logLevel != "" {
		cfg.Logging.Level = f.logLevel
	}
	if f.backendURL != "" {
		cfg.Backend.BaseURL = f.backendURL
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newServeCmd(f *flags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the wizard HTTP service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := f.load()
			if err != nil {
				return err
			}
			log, err := logging.New(cfg.Logging)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			ln, err := net.Listen("tcp", cfg.Server.Addr)
			if err != nil {
				return fmt.Errorf("listen %s: %w", cfg.Server.Addr, err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return serve(ctx, ln, cfg, app.New(cfg, log), log)
		},
	}
}

// serve runs the HTTP server and the session sweeper on ln until ctx
// ends, then shuts down gracefully: in-flight requests first, then
// pending quote leads.
func serve(ctx context.Context, ln net.Listener, cfg *config.Config, a *app.App, log *zap.Logger) error {
	srv := &http.Server{
		Handler:           a.Handler(),
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("listening", zap.String("addr", ln.Addr().String()))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return a.Sweep(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()

		sctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		err := srv.Shutdown(sctx)
		if lerr := a.Shutdown(sctx); lerr != nil {
			log.Warn("quote leads still pending at shutdown", zap.Error(lerr))
		}
		log.Info("stopped")
		return err
	})

	return g.Wait()
}

func newOptionsCmd(f *flags) *cobra.Command {
	return &cobra.Command{
		Use:   "options",
		Short: "Print the resolved form options",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := f.load()
			if err != nil {
				return err
			}
			log, err := logging.New(cfg.Logging)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			set := app.New(cfg, log).Options(cmd.Context())
			return printOptions(cmd, set)
		},
	}
}

func printOptions(cmd *cobra.Command, set options.Set) error {
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CATEGORY\tVALUE\tLABEL")
	for _, c := range options.Categories {
		for _, o := range set[c] {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", c, o.Value, o.Label)
		}
	}
	return tw.Flush()
}
