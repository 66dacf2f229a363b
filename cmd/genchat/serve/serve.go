package servecmder

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/SAMRAT47/genchat/pkg/config"
	"github.com/SAMRAT47/genchat/pkg/logger"
	"github.com/SAMRAT47/genchat/server"
)

const serveLongDesc string = `Run the genchat HTTP server.

Exposes the chat API (/api/chat, /api/providers, /api/sessions) and a
health check. Provider API keys are read from the environment; edits to
the config file are picked up without a restart.

Examples:
  genchat serve
  genchat serve --listen :9090 --db ~/.genchat/sessions.db`

const serveShortDesc string = "Run the chat API server"

type serveCommander struct {
	configPath string
	listen     string
	dbPath     string
	debug      bool
}

func NewServeCmd() *cobra.Command {
	cmder := &serveCommander{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run()
		},
	}

	cmd.Flags().StringVarP(&cmder.configPath, "config", "c", "", "Path to config file (default: ~/.genchat/config.toml)")
	cmd.Flags().StringVar(&cmder.listen, "listen", "", "Address to listen on (overrides config)")
	cmd.Flags().StringVar(&cmder.dbPath, "db", "", "Path to SQLite session database (default: in-memory)")
	cmd.Flags().BoolVar(&cmder.debug, "debug", false, "Enable debug logging and pprof")

	return cmd
}

func (c *serveCommander) run() error {
	log := logger.New(c.debug)
	defer log.Sync()

	cfgPath := c.configPath
	if cfgPath == "" {
		cfgPath = config.DefaultPath()
	}

	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	if c.listen != "" {
		cfg.Server.Listen = c.listen
	}
	if c.dbPath != "" {
		cfg.Server.DBPath = c.dbPath
	}

	log.Info("genchat server starting",
		zap.String("listen", cfg.Server.Listen),
		zap.String("default_provider", cfg.Defaults.Provider),
		zap.Bool("debug", c.debug),
	)

	s, err := server.New(cfg, log, c.debug)
	if err != nil {
		return err
	}
	defer s.Close()

	watcher, err := config.Watch(cfgPath, log, func(next config.Config) {
		// Flags still win over the reloaded file.
		if c.listen != "" {
			next.Server.Listen = c.listen
		}
		if c.dbPath != "" {
			next.Server.DBPath = c.dbPath
		}
		s.Reload(next)
	})
	if err != nil {
		log.Warn("config watching disabled", zap.Error(err))
	} else {
		defer watcher.Close()
	}

	errCh := make(chan error, 1)
	go func() { errCh <- s.Run() }()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("shutting down", zap.String("signal", sig.String()))
		return nil
	case err := <-errCh:
		return err
	}
}
