package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Brownie44l1/staticd/internal/files"
	"github.com/Brownie44l1/staticd/internal/router"
	"github.com/Brownie44l1/staticd/internal/server"
)

type config struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Root            string        `mapstructure:"root"`
	Index           string        `mapstructure:"index"`
	BadRequestPage  string        `mapstructure:"bad-request-page"`
	NotFoundPage    string        `mapstructure:"not-found-page"`
	ReceiveTimeout  time.Duration `mapstructure:"receive-timeout"`
	Backlog         int           `mapstructure:"backlog"`
	MaxRequestBytes int           `mapstructure:"max-request-bytes"`
	LogLevel        string        `mapstructure:"log-level"`
}

func (c config) serverConfig() server.Config {
	return server.Config{
		Host:            c.Host,
		Port:            c.Port,
		Backlog:         c.Backlog,
		ReceiveTimeout:  c.ReceiveTimeout,
		MaxRequestBytes: c.MaxRequestBytes,
	}
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd(run).ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// newRootCmd builds the command line. runFn receives the merged
// configuration once flags, environment and config file are loaded.
func newRootCmd(runFn func(context.Context, config) error) *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:          "staticd",
		Short:        "Serve files from a directory, one connection at a time",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(v)
			if err != nil {
				return err
			}
			return runFn(cmd.Context(), cfg)
		},
	}

	def := server.DefaultConfig()
	flags := cmd.Flags()
	flags.String("config", "", "config file (yaml, toml or json)")
	flags.String("host", def.Host, "address to bind, empty for every local address")
	flags.Int("port", def.Port, "port to listen on")
	flags.String("root", ".", "directory to serve")
	flags.String("index", files.DefaultIndex, "document served for /")
	flags.String("bad-request-page", router.DefaultBadRequestPage, "document sent with 400 responses")
	flags.String("not-found-page", "", "document sent with 404 responses")
	flags.Duration("receive-timeout", def.ReceiveTimeout, "timeout for receiving a request")
	flags.Int("backlog", def.Backlog, "pending connection queue length")
	flags.Int("max-request-bytes", def.MaxRequestBytes, "receive buffer size")
	flags.String("log-level", "info", "debug, info, warn or error")

	// BindPFlags only fails on a nil flag set
	_ = v.BindPFlags(flags)
	v.SetEnvPrefix("STATICD")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	return cmd
}

// loadConfig merges the config file, environment and flags. Flags that
// were set explicitly win over everything else.
func loadConfig(v *viper.Viper) (config, error) {
	if path := v.GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg config
	if err := v.Unmarshal(&cfg); err != nil {
		return config{}, fmt.Errorf("decode config: %w", err)
	}
	if cfg.Port < 0 || cfg.Port > 65535 {
		return config{}, fmt.Errorf("invalid port %d", cfg.Port)
	}
	return cfg, nil
}

func run(ctx context.Context, cfg config) error {
	logger, err := server.NewDefaultLogger(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer logger.Sync()

	resolver, err := files.New(cfg.Root, cfg.Index)
	if err != nil {
		logger.Error("failed to open serving root", server.Field{Key: "error", Value: err})
		return err
	}
	defer resolver.Close()

	d := router.NewStatic(resolver, router.StaticOptions{
		BadRequestPage: cfg.BadRequestPage,
		NotFoundPage:   cfg.NotFoundPage,
	})
	srv := server.New(cfg.serverConfig(), d, logger)
	d.Use(server.LoggingMiddleware(logger), server.MetricsMiddleware(srv.Metrics))

	logger.Info("serving files",
		server.Field{Key: "root", Value: resolver.Dir()},
		server.Field{Key: "index", Value: cfg.Index},
		server.Field{Key: "methods", Value: strings.Join(d.Methods(), ",")},
	)

	err = srv.ListenAndServe(ctx)
	if errors.Is(err, server.ErrServerClosed) {
		logger.Info("server stopped", srv.Metrics.Snapshot().Fields()...)
		return nil
	}
	if err != nil {
		logger.Error("server failed", server.Field{Key: "error", Value: err})
	}
	return err
}
