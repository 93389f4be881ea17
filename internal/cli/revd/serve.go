package revd

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli/v2"
	"gitlab.com/gitlab-org/labkit/monitoring"
	labkittracing "gitlab.com/gitlab-org/labkit/tracing"
	"golang.org/x/sync/errgroup"

	"gitlab.com/revstore/revd/internal/log"
	"gitlab.com/revstore/revd/internal/revd/config"
	"gitlab.com/revstore/revd/internal/revd/service"
	"gitlab.com/revstore/revd/internal/revd/storage"
	"gitlab.com/revstore/revd/internal/version"
)

func newServeCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "launch the server daemon",
		UsageText: `revd serve <revd_config_file>

Example: revd serve revd.config.toml`,
		Description:     "Launch the revd server daemon.",
		Action:          serveAction,
		HideHelpCommand: true,
	}
}

func serveAction(ctx *cli.Context) error {
	if ctx.NArg() != 1 || ctx.Args().First() == "" {
		cli.ShowSubcommandHelpAndExit(ctx, 2)
	}

	cfg, logger, err := configure(ctx.Args().First())
	if err != nil {
		return cli.Exit(err, 1)
	}

	logger.WithField("version", version.GetVersion()).Info("starting revd")

	if err := run(cfg, logger); err != nil {
		return cli.Exit(fmt.Errorf("unclean revd shutdown: %w", err), 1)
	}

	logger.Info("revd shutdown")

	return nil
}

func loadConfig(configPath string) (config.Cfg, error) {
	cfgFile, err := os.Open(configPath)
	if err != nil {
		return config.Cfg{}, err
	}
	defer cfgFile.Close()

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return config.Cfg{}, err
	}

	if err := cfg.Validate(); err != nil {
		return config.Cfg{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func configure(configPath string) (config.Cfg, log.Logger, error) {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return config.Cfg{}, nil, fmt.Errorf("load config: config_path %q: %w", configPath, err)
	}

	logger, err := log.Configure(os.Stdout, cfg.Logging.Format, cfg.Logging.Level)
	if err != nil {
		return config.Cfg{}, nil, fmt.Errorf("configuring logger failed: %w", err)
	}

	labkittracing.Initialize(labkittracing.WithServiceName("revd"))

	return cfg, logger, nil
}

func run(cfg config.Cfg, logger log.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics := storage.NewMetrics()
	prometheus.MustRegister(metrics)

	store, err := storage.New(cfg.Storage.Root, logger, metrics)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}

	if addr := cfg.PrometheusListenAddr; addr != "" {
		l, err := net.Listen("tcp", addr)
		if err != nil {
			return fmt.Errorf("prometheus listener: %w", err)
		}

		logger.WithField("address", addr).Info("starting prometheus listener")

		go func() {
			opts := []monitoring.Option{
				monitoring.WithListener(l),
			}

			if buildInfo, ok := debug.ReadBuildInfo(); ok {
				opts = append(opts, monitoring.WithGoBuildInformation(buildInfo))
			}

			if err := monitoring.Start(opts...); err != nil {
				logger.WithError(err).Error("unable to serve prometheus")
			}
		}()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return service.NewServer(store, logger).Start(gctx, cfg.ListenAddr)
	})

	return g.Wait()
}
