package repertoire

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/freeeve/repertoire/internal/notation"
)

// Options select whose repertoire to extract.
type Options struct {
	Color  Color
	Depth  int    // plies kept per game
	Player string // empty = most frequent player
}

// Repertoire is the result of one extraction.
type Repertoire struct {
	Player      string
	Color       Color
	Depth       int
	Filtered    int // games matching player and color
	Games       int // filtered games contributing at least one move
	Lines       []*Variation
	Diagnostics []Diagnostic

	Tree        *Tree
	Annotations *Annotations
}

// Extract runs the pipeline over games. It returns ErrNoPlayersFound,
// ErrEmptyFilteredSet or ErrEmptyOpeningSet when there is nothing to emit.
func Extract(games []Game, opts Options, svc notation.Service, log zerolog.Logger) (*Repertoire, error) {
	pc, err := IdentifyPlayer(games, opts.Player)
	if err != nil {
		return nil, err
	}
	if opts.Player == "" {
		log.Info().Str("player", pc.Name).Int("games", pc.Count).Msg("most frequent player")
	}

	filtered := FilterGames(games, pc.Name, opts.Color)
	log.Info().
		Str("player", pc.Name).
		Str("color", opts.Color.String()).
		Int("games", len(filtered)).
		Msg("filtered games")
	if len(filtered) == 0 {
		return nil, fmt.Errorf("%w: %s as %s", ErrEmptyFilteredSet, pc.Name, opts.Color)
	}

	tree := BuildTree(filtered, svc, opts.Depth, log)
	if tree.Empty() {
		return nil, ErrEmptyOpeningSet
	}
	log.Info().
		Int("lines", tree.Lines()).
		Int("nodes", tree.Len()-1).
		Int("games", tree.Total()).
		Msg("built opening tree")

	ann := Annotate(tree, pc.Name, opts.Color)
	lines, diags := Serialize(tree, ann, svc, log)
	if len(lines) == 0 {
		return nil, fmt.Errorf("%w: every first move was skipped", ErrEmptyOpeningSet)
	}

	return &Repertoire{
		Player:      pc.Name,
		Color:       opts.Color,
		Depth:       opts.Depth,
		Filtered:    len(filtered),
		Games:       tree.Total(),
		Lines:       lines,
		Diagnostics: diags,
		Tree:        tree,
		Annotations: ann,
	}, nil
}
