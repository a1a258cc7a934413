package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/jobtrail/internal"
	pkgconfig "github.com/starford/jobtrail/pkg/config"
)

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.LoadWithDefaults(cmd.String("config"), "", cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

func run(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	opts := []internal.Option{
		internal.WithConfig(cfg),
	}

	if err := internal.Run(ctx, opts...); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}

	return nil
}

func runMCP(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	if err := internal.RunMCP(ctx, internal.WithConfig(cfg), internal.WithLogOutput(os.Stderr)); err != nil {
		return fmt.Errorf("mcp run error: %w", err)
	}

	return nil
}

func main() {
	cmd := &cli.Command{
		Name:   "jobtrail",
		Usage:  "Personal job-application tracker with follow-up reminders, outreach links and resume storage",
		Action: run,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP API (default)",
				Action: run,
			},
			{
				Name:   "mcp",
				Usage:  "Serve the MCP tools on stdin/stdout",
				Action: runMCP,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
