// Constellation serves an aggregated view over every garden and the letters
// left for humans.
//
// Configuration is loaded from an optional YAML or TOML file, then from
// environment variables. See internal/config for details.
//
// Usage:
//
//	# Start server with defaults
//	constellation
//
//	# Use a config file and override the port
//	SERVER_HTTP_PORT=8080 constellation --config ~/.config/constellation/config.yaml
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	natsserver "github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/fyrsmithlabs/constellation/internal/config"
	"github.com/fyrsmithlabs/constellation/internal/constellation"
	"github.com/fyrsmithlabs/constellation/internal/garden"
	httpapi "github.com/fyrsmithlabs/constellation/internal/http"
	"github.com/fyrsmithlabs/constellation/internal/letters"
	"github.com/fyrsmithlabs/constellation/internal/logging"
	"github.com/fyrsmithlabs/constellation/internal/notify"
	"github.com/fyrsmithlabs/constellation/internal/telemetry"
)

// Version information (set via ldflags during build)
var (
	version   = "dev"
	gitCommit = "unknown"
	buildDate = "unknown"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML or TOML config file")
	flag.Parse()
	args := flag.Args()

	if len(args) > 0 {
		switch args[0] {
		case "version":
			printVersion()
			os.Exit(0)
		default:
			fmt.Fprintf(os.Stderr, "Unknown command: %s\n", args[0])
			fmt.Fprintf(os.Stderr, "\nUsage:\n")
			fmt.Fprintf(os.Stderr, "  constellation [--config FILE]   Start the constellation server\n")
			fmt.Fprintf(os.Stderr, "  constellation version           Show version information\n")
			os.Exit(1)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *configPath); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

func printVersion() {
	fmt.Printf("constellation by Fyrsmith Labs\n")
	fmt.Printf("Version:    %s\n", version)
	fmt.Printf("Commit:     %s\n", gitCommit)
	fmt.Printf("Build Date: %s\n", buildDate)
}

// run wires the stores, aggregator, live update channel and HTTP server,
// then blocks until ctx is cancelled and everything has shut down.
func run(ctx context.Context, configPath string) error {
	cfg, err := config.LoadWithFile(configPath)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	tel, err := telemetry.New(ctx, telemetry.FromAppConfig(cfg, version))
	if err != nil {
		return fmt.Errorf("initializing telemetry: %w", err)
	}

	logger, err := initLogger(cfg, tel)
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	if health := tel.Health(); !health.Healthy {
		logger.Warn(ctx, "telemetry degraded", zap.Strings("problems", health.Problems))
	}

	logger.Info(ctx, "starting constellation",
		zap.String("version", version),
		zap.String("addr", cfg.Server.Addr()),
		zap.String("gardens_dir", cfg.Gardens.Dir),
		zap.String("letters_path", cfg.Letters.Path))

	deps, err := initDependencies(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("initializing dependencies: %w", err)
	}
	defer deps.Close()

	agg := constellation.NewAggregator(
		garden.NewFileStore(cfg.Gardens.Dir),
		letters.NewFileStore(cfg.Letters.Path, logger.Underlying().Named("letters")),
		logger.Underlying().Named("aggregator"),
		constellation.Options{
			Concurrency: cfg.Aggregation.Concurrency,
			LoadTimeout: cfg.Aggregation.LoadTimeout.Duration(),
			Metrics:     constellation.NewMetrics(),
			Tracer:      tel.Tracer("github.com/fyrsmithlabs/constellation"),
		},
	)

	srv, err := httpapi.NewServer(agg, deps.natsConn, logger, &httpapi.Config{
		Host:              cfg.Server.Host,
		Port:              cfg.Server.Port,
		ServiceName:       cfg.Telemetry.ServiceName,
		Subject:           cfg.Stream.Subject,
		Heartbeat:         cfg.Stream.Heartbeat.Duration(),
		RequestsPerMinute: cfg.RateLimit.RequestsPerMinute,
		Burst:             cfg.RateLimit.Burst,
		MeterProvider:     tel.MeterProvider(),
	})
	if err != nil {
		return fmt.Errorf("creating http server: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(srv.Start)

	if cfg.Gardens.Watch && deps.natsConn != nil {
		watcher, err := notify.NewWatcher(notify.WatcherConfig{
			GardensDir:  cfg.Gardens.Dir,
			LettersPath: cfg.Letters.Path,
			Debounce:    cfg.Stream.Debounce.Duration(),
		}, agg, notify.NewPublisher(deps.natsConn, cfg.Stream.Subject, logger.Underlying()), logger.Underlying().Named("watcher"))
		if err != nil {
			logger.Warn(ctx, "file watching disabled", zap.Error(err))
		} else {
			logger.Info(ctx, "watching for changes", zap.Strings("dirs", watcher.Watched()))
			g.Go(func() error { return watcher.Run(gctx) })
		}
	}

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout.Duration())
		defer cancel()

		var errs []error
		if err := srv.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("http shutdown: %w", err))
		}
		if err := tel.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("telemetry shutdown: %w", err))
		}
		return errors.Join(errs...)
	})

	err = g.Wait()
	logger.Info(context.Background(), "server shutdown complete")
	return err
}

func initLogger(cfg *config.Config, tel *telemetry.Telemetry) (*logging.Logger, error) {
	logCfg, err := logging.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	return logging.NewLogger(logCfg, tel.LoggerProvider())
}

// dependencies holds the live update infrastructure.
type dependencies struct {
	natsServer *natsserver.Server
	natsConn   *nats.Conn
}

// Close releases all infrastructure resources.
func (d *dependencies) Close() {
	if d.natsConn != nil {
		d.natsConn.Close()
	}
	if d.natsServer != nil {
		d.natsServer.Shutdown()
		d.natsServer.WaitForShutdown()
	}
}

// initDependencies starts or connects to NATS when streaming is enabled.
// A connection failure disables live updates without stopping the server.
func initDependencies(ctx context.Context, cfg *config.Config, logger *logging.Logger) (*dependencies, error) {
	deps := &dependencies{}
	if !cfg.Stream.Enabled {
		logger.Info(ctx, "live updates disabled")
		return deps, nil
	}

	url := cfg.Stream.NATSURL
	if cfg.Stream.Embedded {
		ns, err := notify.StartEmbedded("127.0.0.1", cfg.Stream.EmbeddedPort)
		if err != nil {
			return nil, err
		}
		deps.natsServer = ns
		url = ns.ClientURL()
		logger.Info(ctx, "embedded nats server started", zap.String("url", url))
	}

	nc, err := nats.Connect(url,
		nats.Name("constellation"),
		nats.MaxReconnects(5),
		nats.ReconnectWait(1*time.Second),
	)
	if err != nil {
		logger.Warn(ctx, "nats unavailable, live updates disabled", zap.String("url", url), zap.Error(err))
		return deps, nil
	}
	deps.natsConn = nc

	logger.Info(ctx, "connected to nats", zap.String("url", url))
	return deps, nil
}
