package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/loopwork/actiond/actions"
	"github.com/loopwork/actiond/config"
	"github.com/loopwork/actiond/db"
	"github.com/loopwork/actiond/docstore"
	"github.com/loopwork/actiond/logger"
	"github.com/loopwork/actiond/scheduler"
	"github.com/loopwork/actiond/server"
)

// ServeCmd runs the scheduler daemon
var ServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the scheduler daemon",
	Long: `Run the action scheduler daemon in foreground mode.

The daemon will:
- Load persisted jobs and reconcile any interrupted executions
- Arm timers for pending jobs and sweep for due jobs every minute
- Execute due actions via the configured action commands
- Serve the HTTP API for job management
- Run until interrupted (Ctrl+C) with graceful shutdown

Action commands come from the [actions] table in actiond.toml:

  [actions]
  backup = "/usr/local/bin/backup.sh"
  report = "python3 /opt/reports/daily.py"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		port, _ := cmd.Flags().GetInt("port")
		return runServe(port)
	},
}

func init() {
	ServeCmd.Flags().Int("port", 0, "HTTP API port (overrides config)")
}

func runServe(portOverride int) error {
	log := logger.Logger

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	database, err := db.Open(cfg.Database.Path, log)
	if err != nil {
		return err
	}
	defer database.Close()

	if err := db.Migrate(database, log); err != nil {
		return err
	}

	registry := actions.RegistryFromConfig(cfg.Actions, log)
	if len(registry.Names()) == 0 {
		log.Warnw("No actions configured; scheduled jobs will fail until [actions] entries exist")
	} else {
		log.Infow("Registered action handlers", "actions", registry.Names())
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sched := scheduler.New(ctx,
		docstore.NewStore(database),
		registry,
		nil,
		scheduler.SettingsFromConfig(cfg.Scheduler),
		log,
		scheduler.WithSweepInterval(time.Duration(cfg.Scheduler.SweepIntervalSeconds)*time.Second),
		scheduler.WithCleanupInterval(time.Duration(cfg.Scheduler.CleanupIntervalSeconds)*time.Second),
	)
	if err := sched.Start(); err != nil {
		return err
	}

	port := cfg.Server.Port
	if portOverride != 0 {
		port = portOverride
	}

	srv := server.New(sched, cfg.Server.AllowedOrigins, log)

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.Start(ctx, port)
	}()

	fmt.Printf("actiond started\n")
	fmt.Printf("  Database: %s\n", cfg.Database.Path)
	fmt.Printf("  API:      http://localhost:%d/api/scheduler\n", port)
	fmt.Printf("\nPress Ctrl+C for graceful shutdown\n\n")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		log.Infow("Received signal, shutting down", "signal", sig)
		cancel()
		if err := <-serveErr; err != nil {
			log.Warnw("HTTP server shutdown error", "error", err)
		}
	case err := <-serveErr:
		sched.Stop()
		return err
	}

	sched.Stop()

	fmt.Println("actiond stopped")
	return nil
}
