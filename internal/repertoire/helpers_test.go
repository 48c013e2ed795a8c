package repertoire

import (
	"strings"
	"testing"

	"github.com/freeeve/pgn/v3"

	"github.com/freeeve/repertoire/internal/notation"
)

// game builds a record from space-separated SAN moves played from the start.
func game(t *testing.T, white, black, result, sans string) Game {
	t.Helper()
	pos := notation.Start()
	var moves []pgn.Mv
	for _, san := range strings.Fields(sans) {
		next, mv, err := notation.SAN{}.Play(pos, san)
		if err != nil {
			t.Fatalf("play %q in %q: %v", san, sans, err)
		}
		moves = append(moves, mv)
		pos = next
	}
	return Game{
		Tags:  map[string]string{"White": white, "Black": black, "Result": result},
		Moves: moves,
	}
}

// rejectPlay fails Play for the listed tokens and defers to SAN otherwise.
type rejectPlay struct {
	notation.SAN
	bad map[string]bool
}

func (r rejectPlay) Play(pos *pgn.GameState, token string) (*pgn.GameState, pgn.Mv, error) {
	if r.bad[token] {
		return nil, pgn.Mv{}, notation.ErrUnparseableMove
	}
	return r.SAN.Play(pos, token)
}

func reject(tokens ...string) rejectPlay {
	bad := make(map[string]bool)
	for _, tok := range tokens {
		bad[tok] = true
	}
	return rejectPlay{bad: bad}
}
