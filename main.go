package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"focustrack/adapters/llm"
	"focustrack/adapters/sampler"
	"focustrack/adapters/sqlite"
	"focustrack/app"
	"focustrack/internal"
	"focustrack/internal/config"
	"focustrack/internal/migration"
	"focustrack/ui"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := internal.NewDefaultLogger()

	db, err := sqlite.Open(appConfig.Database.Path)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	migrator := migration.NewRunner()
	if err := migrator.Run(ctx, db); err != nil {
		log.Fatalf("Database migration failed: %v", err)
	}

	activities := sqlite.NewActivityRepository(db)
	projects := sqlite.NewProjectRepository(db)
	rules := sqlite.NewRuleRepository(db)

	classifier := llm.NewOpenAIClassifier(llm.Config{
		APIKey:  appConfig.AI.OpenAIKey,
		BaseURL: appConfig.AI.BaseURL,
		Model:   appConfig.AI.OpenAIModel,
		Timeout: appConfig.AI.Timeout,
	}, logger)

	categorizer := app.NewCategorizer(projects, rules, classifier, logger)
	categorizer.MinConfidence = appConfig.AI.MinConfidence
	if err := categorizer.Refresh(ctx); err != nil {
		logger.Warn("initial cache load failed: %v", err)
	}

	source := sampler.NewCommandSource(appConfig.Tracker.SamplerCommand, appConfig.Tracker.SampleInterval/2, logger)

	trackerOpts := app.DefaultTrackerOptions()
	trackerOpts.SampleInterval = appConfig.Tracker.SampleInterval
	trackerOpts.HeartbeatInterval = appConfig.Tracker.HeartbeatInterval
	trackerOpts.CheckpointSeconds = appConfig.Tracker.CheckpointSeconds

	tracker := app.NewTracker(source, activities, categorizer, trackerOpts, logger)
	summaries := app.NewSummaryService(activities, projects)

	server := ui.NewServer(tracker, categorizer, summaries, activities, projects, rules, logger)

	tracker.Start(ctx)

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return server.Run(groupCtx, "127.0.0.1:"+appConfig.Server.Port)
	})
	group.Go(func() error {
		<-groupCtx.Done()
		tracker.Stop(context.Background())
		return nil
	})

	if err := group.Wait(); err != nil && ctx.Err() == nil {
		log.Fatalf("Server error: %v", err)
	}
}
