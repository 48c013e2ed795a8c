// Package repertoire merges the openings of one player's games into an
// annotated move tree.
package repertoire

import (
	"fmt"
	"strings"

	"github.com/freeeve/pgn/v3"
)

// Color is the side a player held in a game.
type Color uint8

const (
	White Color = iota
	Black
)

// ParseColor accepts "white" or "black" in any case, or the short forms "w" and "b".
func ParseColor(s string) (Color, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "white", "w":
		return White, nil
	case "black", "b":
		return Black, nil
	}
	return White, fmt.Errorf("invalid color %q: want white or black", s)
}

// String returns "white" or "black".
func (c Color) String() string {
	if c == Black {
		return "black"
	}
	return "white"
}

// Tag returns the PGN header naming the player of this color.
func (c Color) Tag() string {
	if c == Black {
		return "Black"
	}
	return "White"
}

// Game is one parsed game record: its headers and the moves of the main line.
type Game struct {
	Tags  map[string]string
	Moves []pgn.Mv
}

// Tag returns the header value, or "" if absent.
func (g Game) Tag(name string) string {
	return g.Tags[name]
}

// Outcome is a game result from the extracted player's point of view.
type Outcome uint8

const (
	OutcomeUnresolved Outcome = iota
	OutcomeWin
	OutcomeDraw
	OutcomeLoss
)

// Classify returns the outcome of g for player holding color.
// Results other than 1-0, 0-1 and 1/2-1/2 are unresolved. A decisive game in
// which player does not hold color is also unresolved.
func Classify(g Game, player string, color Color) Outcome {
	result := g.Tag("Result")
	switch result {
	case "1/2-1/2":
		return OutcomeDraw
	case "1-0", "0-1":
	default:
		return OutcomeUnresolved
	}

	if g.Tag(color.Tag()) != player {
		return OutcomeUnresolved
	}
	won := (color == White && result == "1-0") || (color == Black && result == "0-1")
	if won {
		return OutcomeWin
	}
	return OutcomeLoss
}
