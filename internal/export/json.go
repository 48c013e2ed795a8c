package export

import (
	"encoding/json"
	"io"

	"github.com/freeeve/repertoire/internal/repertoire"
)

type jsonHeader struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type jsonOutcome struct {
	Games      int      `json:"games"`
	Wins       int      `json:"wins"`
	Draws      int      `json:"draws"`
	Losses     int      `json:"losses"`
	Unresolved int      `json:"unresolved"`
	Score      *float64 `json:"score,omitempty"` // omitted without decisive games
}

type jsonMove struct {
	Ply      int          `json:"ply"`
	SAN      string       `json:"san"`
	UCI      string       `json:"uci"`
	Count    int          `json:"count"`
	Play     float64      `json:"play"`
	Terminal *jsonOutcome `json:"terminal,omitempty"`
	Next     []jsonMove   `json:"next,omitempty"`
}

type jsonDiagnostic struct {
	Path  []string `json:"path"`
	Move  string   `json:"move"`
	Error string   `json:"error"`
}

// Document is the JSON form of a repertoire.
type Document struct {
	Headers     []jsonHeader     `json:"headers"`
	Player      string           `json:"player"`
	Color       string           `json:"color"`
	Depth       int              `json:"depth"`
	Games       int              `json:"games"`
	Moves       []jsonMove       `json:"moves"`
	Diagnostics []jsonDiagnostic `json:"diagnostics,omitempty"`
}

// NewDocument converts rep to its JSON form.
func NewDocument(rep *repertoire.Repertoire, opts Options) *Document {
	doc := &Document{
		Player: rep.Player,
		Color:  rep.Color.String(),
		Depth:  rep.Depth,
		Games:  rep.Games,
		Moves:  toJSONMoves(rep.Lines),
	}
	for _, h := range Headers(rep, opts) {
		doc.Headers = append(doc.Headers, jsonHeader{Key: h.Key, Value: h.Value})
	}
	for _, d := range rep.Diagnostics {
		doc.Diagnostics = append(doc.Diagnostics, jsonDiagnostic{
			Path:  d.Path,
			Move:  d.Token,
			Error: d.Err.Error(),
		})
	}
	return doc
}

func toJSONMoves(vs []*repertoire.Variation) []jsonMove {
	if len(vs) == 0 {
		return nil
	}
	out := make([]jsonMove, 0, len(vs))
	for _, v := range vs {
		mv := jsonMove{
			Ply:   v.Ply,
			SAN:   v.SAN,
			UCI:   v.UCI,
			Count: v.Stats.PassThrough,
			Play:  v.Stats.PlayFraction,
			Next:  toJSONMoves(v.Next),
		}
		if s := v.Stats; s.Terminal > 0 {
			mv.Terminal = &jsonOutcome{
				Games:      s.Terminal,
				Wins:       s.Wins,
				Draws:      s.Draws,
				Losses:     s.Losses,
				Unresolved: s.Unresolved,
			}
			if s.HasScore {
				score := s.Score
				mv.Terminal.Score = &score
			}
		}
		out = append(out, mv)
	}
	return out
}

// WriteJSON writes rep as indented JSON.
func WriteJSON(w io.Writer, rep *repertoire.Repertoire, opts Options) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(NewDocument(rep, opts))
}
