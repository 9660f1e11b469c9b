// PulseMind daemon - stress scoring, journaling and the companion bridge.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mobigaurav/pulsemind/internal/api"
	"github.com/mobigaurav/pulsemind/internal/bridge"
	"github.com/mobigaurav/pulsemind/internal/config"
	"github.com/mobigaurav/pulsemind/internal/core"
	"github.com/mobigaurav/pulsemind/internal/logging"
	"github.com/mobigaurav/pulsemind/internal/readings"
	"github.com/mobigaurav/pulsemind/internal/scheduler"
	"github.com/mobigaurav/pulsemind/internal/score"
	"github.com/mobigaurav/pulsemind/internal/storage"
)

var (
	configPath string
	dataDir    string
	port       int
	bridgePort int
	debug      bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "pulsemind",
		Short: "PulseMind daemon - wellness tracking for your desk",
		RunE:  runDaemon,
	}

	rootCmd.Flags().StringVar(&configPath, "config", "", "Config file path")
	rootCmd.Flags().StringVar(&dataDir, "data-dir", "", "Data directory (overrides config)")
	rootCmd.Flags().IntVar(&port, "port", 0, "HTTP server port (overrides config)")
	rootCmd.Flags().IntVar(&bridgePort, "bridge-port", 0, "Companion bridge port (overrides config)")
	rootCmd.Flags().BoolVar(&debug, "debug", false, "Enable debug logging")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runDaemon(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if dataDir != "" {
		cfg.DataDir = dataDir
	}
	if port != 0 {
		cfg.Server.Port = port
	}
	if bridgePort != 0 {
		cfg.Bridge.Port = bridgePort
	}
	if debug || cfg.Features.DebugMode {
		logging.SetLevel(logging.DEBUG)
	}

	log := logging.WithComponent("daemon")
	log.Info("starting PulseMind")

	// Open database
	if err := os.MkdirAll(cfg.DataDir, 0700); err != nil {
		return fmt.Errorf("failed to create data dir: %w", err)
	}
	dbPath := filepath.Join(cfg.DataDir, "pulsemind.db")
	db, err := storage.Open(storage.Config{Path: dbPath})
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	scoreStore := storage.NewScoreStore(db)
	journalStore := storage.NewJournalStore(db)

	// Scoring pipeline
	agg := readings.New()
	engineCfg := score.DefaultEngineConfig()
	if cfg.Scoring.OxygenPenaltyCap > 0 {
		engineCfg.OxygenPenaltyCap = cfg.Scoring.OxygenPenaltyCap
	}
	svc := score.NewService(agg, score.NewEngine(engineCfg), score.NewGate(scoreStore), score.ServiceConfig{
		SettleDelay: cfg.Scoring.SettleDelay,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("failed to start scoring pipeline: %w", err)
	}

	// Companion device bridge
	var bridgeHub *bridge.Hub
	if cfg.Features.EnableBridge {
		bridgeHub = bridge.NewHub(bridge.DefaultHubConfig())
		bridgeHub.OnReport(func(rep core.DeviceReport) {
			svc.ApplyDeviceReport(rep)

			// Moods relayed from the watch become journal entries
			if rep.Mood != "" {
				entry := core.NewJournalEntry("", rep.Mood)
				if err := journalStore.Create(entry); err != nil {
					log.Warn("failed to store relayed mood: %v", err)
				}
			}
		})
		if err := bridgeHub.Start(fmt.Sprintf(":%d", cfg.Bridge.Port)); err != nil {
			log.Warn("failed to start companion bridge: %v", err)
			bridgeHub = nil
		}
	}

	// Reminder scheduler
	var sched *scheduler.Scheduler
	if cfg.Features.EnableReminder && cfg.Reminder.Enabled {
		sched = scheduler.New("Local")
	}

	// API server
	server := api.New(api.Config{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		Aggregator:   agg,
		ScoreService: svc,
		ScoreStore:   scoreStore,
		JournalStore: journalStore,
		BridgeHub:    bridgeHub,
		Scheduler:    sched,
	})

	// Push freshly computed scores to connected UIs
	svc.OnScore(func(value int, snap core.Snapshot) {
		server.Broadcast(api.EventScoreUpdated, map[string]interface{}{
			"score":    value,
			"snapshot": snap,
		})
	})

	if sched != nil {
		err := sched.Register(scheduler.DailyJob("journal-reminder", "Journal reminder",
			cfg.Reminder.At, func(ctx context.Context) error {
				server.Broadcast(api.EventReminderDue, map[string]string{
					"message": "Take a minute to journal how today felt",
				})
				return nil
			}))
		if err != nil {
			log.Warn("failed to register reminder: %v", err)
		} else if err := sched.Start(); err != nil {
			log.Warn("failed to start scheduler: %v", err)
		} else {
			log.Info("journal reminder scheduled daily at %s", cfg.Reminder.At)
		}
	}

	// Handle shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		<-sigCh

		log.Info("shutting down")
		if sched != nil {
			sched.Stop()
		}
		if bridgeHub != nil {
			bridgeHub.Stop()
		}
		svc.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		server.Stop(shutdownCtx)
		cancel()
	}()

	// Start server (blocks)
	return server.Start()
}
