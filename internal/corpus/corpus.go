// Package corpus reads PGN files into game records.
package corpus

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/freeeve/pgn/v3"
	"github.com/rs/zerolog"

	"github.com/freeeve/repertoire/internal/repertoire"
)

var (
	// ErrInputNotFound is returned when the input file does not exist.
	ErrInputNotFound = errors.New("input file not found")
	// ErrNotPGN is returned for a path without a .pgn or .pgn.zst suffix.
	ErrNotPGN = errors.New("not a pgn file")
)

// Load parses every game in path (plain or .zst compressed PGN). Only the
// main line of each game is kept.
func Load(ctx context.Context, path string, log zerolog.Logger) ([]repertoire.Game, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrInputNotFound, path)
		}
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}
	if !IsPGNFile(path) {
		return nil, fmt.Errorf("%w: %s", ErrNotPGN, path)
	}

	log.Info().Str("path", path).Msg("loading games")
	start := time.Now()

	var games []repertoire.Game
	parser := pgn.Games(path)

	stopped := false
gameLoop:
	for game := range parser.Games {
		select {
		case <-ctx.Done():
			if !stopped {
				parser.Stop()
				stopped = true
			}
			break gameLoop
		default:
		}

		tags := make(map[string]string, len(game.Tags))
		for k, v := range game.Tags {
			tags[k] = v
		}
		games = append(games, repertoire.Game{
			Tags:  tags,
			Moves: append([]pgn.Mv(nil), game.Moves...),
		})
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := parser.Err(); err != nil {
		return nil, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}

	log.Info().
		Int("games", len(games)).
		Dur("elapsed", time.Since(start)).
		Msg("loaded games")
	return games, nil
}

// IsPGNFile reports whether name looks like a PGN file, compressed or not.
func IsPGNFile(name string) bool {
	name = strings.ToLower(name)
	return strings.HasSuffix(name, ".pgn") || strings.HasSuffix(name, ".pgn.zst")
}
