package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/klippa-app/go-pdfium/requests"
	"github.com/klippa-app/go-pdfium/webassembly"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v3"

	"github.com/drawsheet/drawsheet"
)

func main() {
	cmd := &cli.Command{
		Name:  "drawsheet",
		Usage: "Reconstruct draw records from a lottery bulletin PDF",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "input",
				Aliases:  []string{"i"},
				Usage:    "Input bulletin PDF file path",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "game",
				Aliases:  []string{"g"},
				Usage:    "Game preset: " + strings.Join(drawsheet.GameNames(), ", "),
				Required: true,
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output file path (default: stdout)",
			},
			&cli.StringFlag{
				Name:  "format",
				Usage: "Output format: csv or json",
				Value: "csv",
			},
			&cli.StringFlag{
				Name:  "dump-tokens",
				Usage: "Write the classified-token diagnostic dump to this CSV file",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Log parse metrics",
			},
		},
		Action: parseBulletin,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func parseBulletin(_ context.Context, cmd *cli.Command) error {
	inputPath := cmd.String("input")
	dumpPath := cmd.String("dump-tokens")

	game, err := drawsheet.GameByName(cmd.String("game"))
	if err != nil {
		return err
	}

	// Initialise pdfium
	pool, err := webassembly.Init(webassembly.Config{
		MinIdle:  1,
		MaxIdle:  1,
		MaxTotal: 1,
	})
	if err != nil {
		return fmt.Errorf("failed to initialise pdfium: %w", err)
	}
	defer pool.Close()

	instance, err := pool.GetInstance(time.Second * 30)
	if err != nil {
		return fmt.Errorf("failed to get pdfium instance: %w", err)
	}

	doc, err := instance.OpenDocument(&requests.OpenDocument{
		FilePath: &inputPath,
	})
	if err != nil {
		return errors.Wrap(err, "failed to open bulletin PDF")
	}
	defer instance.FPDF_CloseDocument(&requests.FPDF_CloseDocument{
		Document: doc.Document,
	})

	tokens, err := drawsheet.ExtractTokens(instance, doc.Document)
	if err != nil {
		return err
	}

	config := drawsheet.DefaultConfig()
	config.CollectTrace = dumpPath != ""
	config.EnableMetricsLogging = cmd.Bool("verbose")

	result, parseErr := drawsheet.NewParserWithConfig(game, config).Parse(tokens)

	// The dump is most valuable exactly when parsing failed.
	if dumpPath != "" && result != nil {
		if err := writeDump(dumpPath, result.Trace); err != nil {
			return err
		}
	}
	if parseErr != nil {
		return parseErr
	}

	out := os.Stdout
	if outputPath := cmd.String("output"); outputPath != "" {
		f, err := os.Create(outputPath)
		if err != nil {
			return errors.Wrap(err, "failed to create output file")
		}
		defer f.Close()
		out = f
	}

	switch cmd.String("format") {
	case "csv":
		return drawsheet.WriteCSV(out, result.Records, game)
	case "json":
		return drawsheet.WriteJSON(out, result.Records)
	default:
		return fmt.Errorf("unknown format %q (want csv or json)", cmd.String("format"))
	}
}

func writeDump(path string, trace []drawsheet.PositionedToken) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "failed to create token dump file")
	}
	defer f.Close()
	return drawsheet.WriteTraceCSV(f, trace)
}
