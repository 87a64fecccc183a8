package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/gantt/internal"
	"github.com/starford/gantt/internal/apperr"
	"github.com/starford/gantt/internal/generator"
	"github.com/starford/gantt/internal/models"
	pkgconfig "github.com/starford/gantt/pkg/config"
)

// errAllFailed is returned when a batch attempted files and none rendered.
var errAllFailed = errors.New("every file failed to render")

func loadOptions(cmd *cli.Command) ([]internal.Option, error) {
	configPath := cmd.String("config")

	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.Load(configPath, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return []internal.Option{
		internal.WithConfig(cfg),
	}, nil
}

func render(ctx context.Context, cmd *cli.Command) error {
	opts, err := loadOptions(cmd)
	if err != nil {
		return err
	}

	sum, err := internal.Render(ctx, generator.BatchOptions{
		Force: cmd.Bool("force"),
		Only:  cmd.StringSlice("only"),
	}, opts...)
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}

	fmt.Fprintf(os.Stdout, "rendered %d, skipped %d, failed %d, unmatched %d, removed %d\n",
		sum.Rendered, sum.Skipped, sum.Failed, sum.Unmatched, sum.Removed)
	for _, rec := range sum.Results {
		if rec.Status != models.StatusRendered {
			fmt.Fprintf(os.Stdout, "  %s: %s\n", rec.Source, rec.Error)
		}
	}
	if sum.Total() > 0 && sum.Rendered == 0 {
		return errAllFailed
	}
	return nil
}

func validate(ctx context.Context, cmd *cli.Command) error {
	opts, err := loadOptions(cmd)
	if err != nil {
		return err
	}

	profiles, err := internal.Validate(ctx, opts...)
	if err != nil {
		return fmt.Errorf("validate: %w", err)
	}
	for _, p := range profiles {
		fmt.Fprintf(os.Stdout, "%s\t%s\t%s -> %s\tfilters=%d milestones=%d sort=%s\n",
			p.Name, p.ConfigPath, p.Config.CSVDirectory, p.Config.TargetDirectory,
			len(p.Config.Filters), len(p.Config.Milestones), p.Config.SortBy)
	}
	return nil
}

func serve(ctx context.Context, cmd *cli.Command) error {
	opts, err := loadOptions(cmd)
	if err != nil {
		return err
	}
	if err := internal.Run(ctx, opts...); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func serveMCP(ctx context.Context, cmd *cli.Command) error {
	opts, err := loadOptions(cmd)
	if err != nil {
		return err
	}
	if err := internal.ServeMCP(ctx, opts...); err != nil {
		return fmt.Errorf("mcp: %w", err)
	}
	return nil
}

func main() {
	cmd := &cli.Command{
		Name:  "gantt",
		Usage: "Render Gantt timeline charts from issue-tracker CSV and XLSX exports",
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
				Name:   "render",
				Usage:  "Render every export once and exit",
				Action: render,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "force",
						Aliases: []string{"f"},
						Usage:   "Re-render files whose inputs did not change",
						Sources: cli.EnvVars("GANTT_FORCE"),
					},
					&cli.StringSliceFlag{
						Name:  "only",
						Usage: "Render only these workspace-relative files",
					},
				},
			},
			{
				Name:   "validate",
				Usage:  "Load and check every chart profile",
				Action: validate,
			},
			{
				Name:   "serve",
				Usage:  "Render, then serve the HTTP API and re-render on file changes",
				Action: serve,
			},
			{
				Name:   "mcp",
				Usage:  "Serve the MCP tools on stdin/stdout",
				Action: serveMCP,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		attrs := []any{slog.String("error", err.Error())}
		if apperr.IsConfig(err) {
			attrs = append(attrs, slog.Bool("config_error", true))
		}
		slog.Error("application error", attrs...)
		os.Exit(1)
	}
}
