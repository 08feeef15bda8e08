/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/nathanchica/life-event-logger/config"
	"github.com/nathanchica/life-event-logger/internal/alert"
	"github.com/nathanchica/life-event-logger/internal/db"
	"github.com/nathanchica/life-event-logger/internal/mq"
	"github.com/nathanchica/life-event-logger/internal/services"
	"github.com/nathanchica/life-event-logger/internal/store"
	"github.com/spf13/cobra"
)

// checkThresholdsCmd runs the overdue-event check once and exits, for cron
// setups or manual runs. The report is printed to stdout as JSON and
// dispatched to any configured alert sinks.
var checkThresholdsCmd = &cobra.Command{
	Use:   "check-thresholds",
	Short: "Run the overdue-event check once and dispatch alerts",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.LoadConfig()
		ctx := cmd.Context()

		logger, err := newLogger()
		if err != nil {
			return fmt.Errorf("failed to create logger: %w", err)
		}
		defer logger.Sync()

		dbConn, err := db.Open(ctx, cfg)
		if err != nil {
			return fmt.Errorf("failed to connect database: %w", err)
		}
		defer dbConn.Close()

		userRepo := store.NewUserRepository(dbConn)
		eventRepo := store.NewEventRepository(dbConn)
		evaluator := services.NewThresholdEvaluator(userRepo, eventRepo, logger)

		report, err := evaluator.CheckEventThresholds(ctx, services.CheckConfig{
			TargetUserEmail: cfg.Alerts.TargetUserEmail,
		})
		if err != nil {
			return err
		}

		mqClient, err := mq.NewFromConfig(ctx, cfg.MQ)
		if err != nil {
			return fmt.Errorf("failed to connect message queue: %w", err)
		}
		if mqClient != nil {
			defer mqClient.Close()
		}

		var publisher alert.Publisher
		if mqClient != nil {
			publisher = mqClient
		}
		dispatcher := alert.NewDispatcher(cfg.Alerts, publisher, logger)
		if err := dispatcher.Dispatch(ctx, report); err != nil {
			return err
		}

		return json.NewEncoder(os.Stdout).Encode(report)
	},
}

func init() {
	rootCmd.AddCommand(checkThresholdsCmd)
}
