package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bleedforlife/internal/db"
	"bleedforlife/internal/notify"
	"bleedforlife/internal/reminder"
	"bleedforlife/internal/server"
	"bleedforlife/internal/storage"
	"bleedforlife/internal/store"

	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/lestrrat-go/httprc/v3"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var serveCommand = &cli.Command{
	Name:   "serve",
	Usage:  "Start the HTTP server",
	Action: serve,
}

func serve(cCtx *cli.Context) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	config, err := loadConfig()
	if err != nil {
		return err
	}

	awsConfig, err := loadAWSConfig(ctx)
	if err != nil {
		return err
	}

	cognitoClient := cognitoidentityprovider.NewFromConfig(awsConfig)

	objects, err := storage.New(config, awsConfig)
	if err != nil {
		return err
	}

	pool, err := db.Connect(ctx, config)
	if err != nil {
		return err
	}
	defer pool.Close()

	profileRepo := store.NewProfileRepository(pool)
	donationRepo := store.NewDonationRepository(pool)
	requestRepo := store.NewBloodRequestRepository(pool)
	notificationRepo := store.NewNotificationRepository(pool)

	engine := newEngine(config)
	notifier := notify.New(logger, notificationRepo)

	jwkCache, err := jwk.NewCache(context.Background(), httprc.NewClient())
	if err != nil {
		return fmt.Errorf("failed to initilaize jwk cache: %w", err)
	}

	jwksURL := fmt.Sprintf("%s/.well-known/jwks.json", config.CognitoIssuerURL)

	err = jwkCache.Register(context.Background(), jwksURL)
	if err != nil {
		return fmt.Errorf("failed to register cognito jwk with cache: %w", err)
	}

	srv, err := server.New(
		config,
		logger,
		cognitoClient,
		objects,
		engine,
		notifier,
		profileRepo,
		donationRepo,
		requestRepo,
		notificationRepo,
		jwkCache,
		jwksURL,
	)
	if err != nil {
		return err
	}

	scheduler := cron.New(cron.WithLocation(time.UTC))
	if config.ReminderSchedule != "" {
		sweeper := reminder.NewSweeper(logger, donationRepo, notifier, engine)
		if err := sweeper.Schedule(ctx, scheduler, config.ReminderSchedule); err != nil {
			return err
		}
		scheduler.Start()
		logger.WithField("schedule", config.ReminderSchedule).Info("eligibility reminders scheduled")
	}

	go func() {
		logger.WithField("port", config.ServerPort).Infof("server starting http://localhost:%d", config.ServerPort)
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("server failed")
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received")

	<-scheduler.Stop().Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.Stop(shutdownCtx)
}
