package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"NewsVerifier/internal/app"
	"NewsVerifier/internal/config"
	"NewsVerifier/internal/logging"
)

const drainTimeout = 2 * time.Minute

var (
	configPath string
	logLevel   string
	jsonOutput bool
)

var rootCmd = &cobra.Command{
	Use:           "newsverifier",
	Short:         "Ingest news, verify claims and assess images",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the scheduled ingestion and the HTTP API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.Application) error {
			return a.Serve(ctx)
		})
	},
}

var ingestCmd = &cobra.Command{
	Use:   "ingest [sector...]",
	Short: "Ingest articles once for the given or configured sectors",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.Application) error {
			sectors := args
			if len(sectors) == 0 {
				sectors = loadConfig().Scheduler.Sectors
			}
			total, err := a.Pipeline.IngestAll(ctx, sectors)
			cmd.Printf("stored %d new articles across %d sectors\n", total, len(sectors))
			return err
		})
	},
}

var verifyCmd = &cobra.Command{
	Use:   "verify [claim]",
	Short: "Fact-check a free-text claim",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		claim := strings.Join(args, " ")
		return withApp(cmd, func(ctx context.Context, a *app.Application) error {
			v := a.Verifier.Verify(ctx, claim)
			if jsonOutput {
				return printJSON(cmd, v)
			}
			cmd.Printf("%s (%d%%, %s)\n%s\n", strings.ToUpper(string(v.Status)), v.Confidence, v.Tier, v.Reasoning)
			for _, c := range v.Citations {
				cmd.Printf("  - %s\n", c)
			}
			return nil
		})
	},
}

var assessCmd = &cobra.Command{
	Use:   "assess [image-url]",
	Short: "Score the authenticity of an image",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.Application) error {
			res := a.Images.Assess(ctx, args[0])
			if jsonOutput {
				return printJSON(cmd, res)
			}
			cmd.Printf("%s: score %d, %d matches\n%s\n", res.Status, res.AuthenticityScore, res.MatchCount, res.Reasoning)
			return nil
		})
	},
}

var timelineCmd = &cobra.Command{
	Use:   "timeline [topic]",
	Short: "Build a chronology for a topic",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		topic := strings.Join(args, " ")
		return withApp(cmd, func(ctx context.Context, a *app.Application) error {
			t := a.Timeline.Build(ctx, topic)
			if jsonOutput {
				return printJSON(cmd, t)
			}
			for _, e := range t.Events {
				date := "undated"
				if !e.Date.IsZero() {
					date = e.Date.Format("2006-01-02")
				}
				cmd.Printf("%s  %.2f  %s (%s)\n", date, e.Relevance, e.Title, e.URL)
			}
			for _, p := range t.Analysis.Patterns {
				cmd.Printf("pattern: %s\n", p)
			}
			return nil
		})
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a YAML config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override the configured log level")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "print results as JSON")

	rootCmd.AddCommand(serveCmd, ingestCmd, verifyCmd, assessCmd, timelineCmd)
}

func loadConfig() config.Config {
	cfg := config.LoadFile(configPath)
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	return cfg
}

// withApp builds the application, runs fn and drains background work before
// returning.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app.Application) error) error {
	cfg := loadConfig()
	logger := logging.NewWithWriter(os.Stderr, cfg.Logging.Level)
	ctx := cmd.Context()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		return err
	}

	runErr := fn(ctx, a)

	drainCtx, cancel := context.WithTimeout(context.Background(), drainTimeout)
	defer cancel()
	if err := a.Close(drainCtx); err != nil {
		logger.Warn("shutdown incomplete", slog.Any("error", err))
		runErr = errors.Join(runErr, err)
	}
	return runErr
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}
	cmd.Println(string(data))
	return nil
}
