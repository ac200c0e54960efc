package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/mauropereiira/Moldavite-sub001/internal"
	"github.com/mauropereiira/Moldavite-sub001/internal/document"
	"github.com/mauropereiira/Moldavite-sub001/internal/markup"
	pkgconfig "github.com/mauropereiira/Moldavite-sub001/pkg/config"
)

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.LoadOptional(cmd.String("config"), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := internal.Run(ctx, internal.WithConfig(cfg)); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func serveMCP(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := internal.RunMCP(ctx, internal.WithConfig(cfg)); err != nil {
		return fmt.Errorf("mcp run error: %w", err)
	}
	return nil
}

// convert reads a note (file argument or stdin) and prints it converted.
func convert(_ context.Context, cmd *cli.Command) error {
	var in io.Reader = os.Stdin
	if name := cmd.Args().First(); name != "" && name != "-" {
		f, err := os.Open(name)
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}
	src, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	var out string
	switch to := cmd.String("to"); to {
	case "html":
		out = markup.Decode(string(src)).HTML()
	case "markdown":
		out = markup.Encode(document.ParseHTML(string(src)))
	default:
		return fmt.Errorf("unknown target %q (html or markdown)", to)
	}
	_, err = io.WriteString(os.Stdout, out)
	return err
}

func main() {
	configFlag := &cli.StringFlag{
		Name:        "config",
		Aliases:     []string{"c"},
		Usage:       "Path to config file",
		DefaultText: "config/config.yaml",
		Value:       "config/config.yaml",
		Sources:     cli.EnvVars("APP_CONFIG_FILE"),
	}

	cmd := &cli.Command{
		Name:   "moldavite",
		Usage:  "Local-first notes: daily, weekly and linked notes in plain Markdown",
		Flags:  []cli.Flag{configFlag},
		Action: serve,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP API for an editor shell",
				Flags:  []cli.Flag{configFlag},
				Action: serve,
			},
			{
				Name:   "mcp",
				Usage:  "Serve the vault to LLM clients over MCP stdio",
				Flags:  []cli.Flag{configFlag},
				Action: serveMCP,
			},
			{
				Name:      "convert",
				Usage:     "Convert a note between Markdown and editor HTML",
				ArgsUsage: "[file]",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "to",
						Usage: "Target format: html or markdown",
						Value: "html",
					},
				},
				Action: convert,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
