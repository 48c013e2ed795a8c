package repertoire

import (
	"fmt"
	"strconv"
)

// Stats are the derived numbers for one node.
type Stats struct {
	PassThrough  int
	PlayFraction float64 // PassThrough / parent's PassThrough

	// Outcome tally over the games ending at the node.
	Terminal   int
	Wins       int
	Draws      int
	Losses     int
	Unresolved int

	Score    float64 // Wins / (Wins + Losses) * 100
	HasScore bool
}

// PlayLabel renders the play fraction as a "[%op X]" command.
func (s Stats) PlayLabel() string {
	return "[%op " + strconv.FormatFloat(s.PlayFraction, 'f', 1, 64) + "]"
}

// OutcomeLabel renders the terminal tally, or "" when no game ends here.
func (s Stats) OutcomeLabel() string {
	if s.Terminal == 0 {
		return ""
	}
	label := fmt.Sprintf("%d games: %dW-%dD-%dL", s.Terminal, s.Wins, s.Draws, s.Losses)
	if s.HasScore {
		label += " (" + strconv.FormatFloat(s.Score, 'f', 1, 64) + "% score)"
	}
	return label
}

// Comment joins the play and outcome labels.
func (s Stats) Comment() string {
	if out := s.OutcomeLabel(); out != "" {
		return s.PlayLabel() + " " + out
	}
	return s.PlayLabel()
}

// Annotations holds the Stats of every node of a sealed tree.
type Annotations struct {
	stats []Stats
}

// Annotate derives Stats for every node. Outcomes are taken from player's
// side of color. An empty tree yields zero Stats everywhere.
func Annotate(t *Tree, player string, color Color) *Annotations {
	a := &Annotations{stats: make([]Stats, t.Len())}
	if t.Empty() {
		return a
	}

	for i := 0; i < t.Len(); i++ {
		id := NodeID(i)
		s := Stats{PassThrough: t.PassThrough(id)}
		if id == Root {
			s.PlayFraction = 1
		} else {
			s.PlayFraction = float64(s.PassThrough) / float64(t.PassThrough(t.Parent(id)))
		}

		for _, g := range t.TerminalGames(id) {
			s.Terminal++
			switch Classify(g, player, color) {
			case OutcomeWin:
				s.Wins++
			case OutcomeDraw:
				s.Draws++
			case OutcomeLoss:
				s.Losses++
			default:
				s.Unresolved++
			}
		}
		if decisive := s.Wins + s.Losses; decisive > 0 {
			s.Score = float64(s.Wins) / float64(decisive) * 100
			s.HasScore = true
		}
		a.stats[i] = s
	}
	return a
}

// Node returns the Stats of id.
func (a *Annotations) Node(id NodeID) Stats {
	return a.stats[id]
}
