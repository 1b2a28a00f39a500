package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ibeckermayer/tastemap/internal/app"
	"github.com/ibeckermayer/tastemap/internal/config"
	"github.com/ibeckermayer/tastemap/internal/scheduler"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	// Credentials first: nothing runs without them
	creds, err := config.LoadCredentials()
	if err != nil {
		log.Fatalf("Failed to load credentials: %v", err)
	}

	// Load or create configuration
	cfg, err := config.Load()
	if err != nil {
		if os.IsNotExist(err) {
			// First run - create default config
			cfg = config.Default()
			if err := cfg.Save(); err != nil {
				log.Printf("Warning: could not save default config: %v", err)
			} else {
				path, _ := config.ConfigPath()
				log.Printf("Created default config at: %s", path)
			}
		} else {
			log.Fatalf("Failed to load config: %v", err)
		}
	}

	cacheDir, err := config.CacheDir()
	if err != nil {
		log.Printf("Warning: no cache directory, step snapshots and reports disabled: %v", err)
		cacheDir = ""
	}

	a, err := app.FromConfig(cfg, creds, cacheDir)
	if err != nil {
		log.Fatalf("Failed to initialize: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Println("tastemap starting...")

	if cfg.Schedule.Cron == "" {
		if _, err := a.Run(ctx); err != nil {
			log.Fatalf("Run failed: %v", err)
		}
		return
	}

	sched, err := scheduler.New(cfg.Schedule.Timezone)
	if err != nil {
		log.Fatalf("Failed to create scheduler: %v", err)
	}
	run := func(jobCtx context.Context) error {
		// pick up config edits between runs
		if err := a.ReloadConfig(); err != nil {
			log.Printf("Keeping previous config: %v", err)
		}
		_, err := a.Run(jobCtx)
		return err
	}
	if err := sched.AddRunJob(cfg.Schedule.Cron, run); err != nil {
		log.Fatalf("Failed to schedule run: %v", err)
	}

	if cfg.Schedule.RunOnStart {
		// failures are logged by the scheduler; the schedule still starts
		_ = sched.RunNow(ctx, "run", run)
	}

	sched.Start()
	for _, j := range sched.ListJobs() {
		log.Printf("Next %s at %s", j.Name, j.NextRun.Format(time.RFC1123))
	}

	<-ctx.Done()
	<-sched.Stop().Done()
	log.Println("tastemap stopped")
}
