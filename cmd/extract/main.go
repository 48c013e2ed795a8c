// Command extract builds an annotated opening repertoire from a PGN file.
//
//	extract <input.pgn[.zst]> <output.pgn[.zst]|output.json> --color white|black [--depth N] [--player NAME] [--format pgn|json]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/freeeve/repertoire/internal/config"
	"github.com/freeeve/repertoire/internal/corpus"
	"github.com/freeeve/repertoire/internal/export"
	"github.com/freeeve/repertoire/internal/logx"
	"github.com/freeeve/repertoire/internal/notation"
	"github.com/freeeve/repertoire/internal/repertoire"
)

const usage = "Usage: extract <input.pgn> <output.pgn> --color white|black [--depth N] [--player NAME] [--format pgn|json]"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

// run returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cfg, err := config.Load(ctx)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	fs := flag.NewFlagSet("extract", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		color    = fs.String("color", cfg.Color, "side to extract: white or black")
		depth    = fs.Int("depth", cfg.Depth, "plies kept from each game")
		player   = fs.String("player", "", "player name (default: most frequent)")
		format   = fs.String("format", "", "output format: pgn or json (default: from output name)")
		logLevel = fs.String("log-level", cfg.LogLevel, "debug, info, warn or error")
	)
	fs.Usage = func() {
		fmt.Fprintln(stderr, usage)
		fs.PrintDefaults()
	}

	flagArgs, positional := splitArgs(args)
	if err := fs.Parse(flagArgs); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	positional = append(positional, fs.Args()...)
	if len(positional) != 2 {
		fs.Usage()
		return 2
	}
	input, output := positional[0], positional[1]

	side, err := repertoire.ParseColor(*color)
	if err != nil {
		fmt.Fprintln(stderr, err)
		fs.Usage()
		return 2
	}
	if *depth < 1 {
		fmt.Fprintf(stderr, "depth must be at least 1, got %d\n", *depth)
		return 2
	}
	outFormat, err := outputFormat(*format, output, cfg.Format)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}

	logger := logx.NewLoggerTo(stdout, *logLevel).With().Str("run_id", uuid.NewString()).Logger()
	logger.Info().
		Str("input", input).
		Str("output", output).
		Str("color", side.String()).
		Int("depth", *depth).
		Str("format", string(outFormat)).
		Msg("starting extraction")
	start := time.Now()

	games, err := corpus.Load(ctx, input, logger)
	if err != nil {
		logger.Error().Err(err).Msg("load games")
		return 1
	}

	rep, err := repertoire.Extract(games, repertoire.Options{
		Color:  side,
		Depth:  *depth,
		Player: *player,
	}, notation.SAN{}, logger)
	switch {
	case errors.Is(err, repertoire.ErrEmptyFilteredSet), errors.Is(err, repertoire.ErrEmptyOpeningSet):
		logger.Info().Err(err).Msg("nothing to write")
		return 0
	case err != nil:
		logger.Error().Err(err).Msg("extract repertoire")
		return 1
	}

	opts := export.Options{
		Opponent:  cfg.Opponent,
		Annotator: cfg.Annotator,
		LineWidth: cfg.LineWidth,
	}
	if err := export.WriteFile(output, outFormat, rep, opts); err != nil {
		logger.Error().Err(err).Msg("write repertoire")
		return 1
	}

	logger.Info().
		Str("player", rep.Player).
		Int("games", rep.Games).
		Int("skipped_branches", len(rep.Diagnostics)).
		Dur("elapsed", time.Since(start)).
		Str("output", output).
		Msg("repertoire written")
	return 0
}

// splitArgs separates flags from positional arguments so flags may appear
// on either side of them. Every flag except help takes a value, either
// inline with "=" or as the next argument. Everything after "--" is
// positional.
func splitArgs(args []string) (flags, positional []string) {
	for i := 0; i < len(args); i++ {
		a := args[i]
		switch {
		case a == "--":
			return flags, append(positional, args[i+1:]...)
		case len(a) > 1 && a[0] == '-':
			flags = append(flags, a)
			if !isHelp(a) && !strings.Contains(a, "=") && i+1 < len(args) {
				i++
				flags = append(flags, args[i])
			}
		default:
			positional = append(positional, a)
		}
	}
	return flags, positional
}

func isHelp(arg string) bool {
	switch strings.TrimLeft(arg, "-") {
	case "h", "help":
		return true
	}
	return false
}

// outputFormat picks the explicit format, else one implied by the output
// name, else the configured default.
func outputFormat(explicit, output, fallback string) (export.Format, error) {
	if explicit != "" {
		return export.ParseFormat(explicit)
	}
	name := strings.TrimSuffix(strings.ToLower(output), ".zst")
	switch {
	case strings.HasSuffix(name, ".json"):
		return export.FormatJSON, nil
	case strings.HasSuffix(name, ".pgn"):
		return export.FormatPGN, nil
	}
	return export.ParseFormat(fallback)
}
