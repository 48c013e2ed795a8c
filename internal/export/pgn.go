// Package export writes an extracted repertoire as a single PGN game with
// variations, or as JSON.
package export

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/freeeve/repertoire/internal/repertoire"
)

const (
	DefaultOpponent  = "Opponent"
	DefaultAnnotator = "Opening Repertoire Extractor"
	DefaultLineWidth = 80
)

// Options control the assembled record.
type Options struct {
	Opponent  string
	Annotator string
	LineWidth int // 0 = DefaultLineWidth, negative = no wrapping
}

func (o Options) withDefaults() Options {
	if o.Opponent == "" {
		o.Opponent = DefaultOpponent
	}
	if o.Annotator == "" {
		o.Annotator = DefaultAnnotator
	}
	if o.LineWidth == 0 {
		o.LineWidth = DefaultLineWidth
	}
	return o
}

// Header is one PGN tag pair.
type Header struct {
	Key   string
	Value string
}

// Headers returns the tag pairs describing rep, seven tag roster first.
func Headers(rep *repertoire.Repertoire, opts Options) []Header {
	opts = opts.withDefaults()
	white, black := rep.Player, opts.Opponent
	if rep.Color == repertoire.Black {
		white, black = black, white
	}
	return []Header{
		{"Event", "Opening Repertoire - " + rep.Color.Tag()},
		{"Site", "Generated"},
		{"Date", "????.??.??"},
		{"Round", "?"},
		{"White", white},
		{"Black", black},
		{"Result", "*"},
		{"Annotator", opts.Annotator},
		{"Description", fmt.Sprintf("Repertoire based on %d games, depth %d moves", rep.Games, rep.Depth)},
	}
}

// WritePGN writes rep as one PGN game.
func WritePGN(w io.Writer, rep *repertoire.Repertoire, opts Options) error {
	opts = opts.withDefaults()
	var b strings.Builder
	for _, h := range Headers(rep, opts) {
		b.WriteString("[" + h.Key + " " + quote(h.Value) + "]\n")
	}
	b.WriteString("\n")
	for _, line := range wrap(Movetext(rep.Lines), opts.LineWidth) {
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	_, err := io.WriteString(w, b.String())
	return err
}

// Movetext renders ranked variations as PGN movetext terminated by "*".
func Movetext(lines []*repertoire.Variation) string {
	var m movetext
	m.line(lines)
	m.push("*")
	return strings.Join(m.tokens, " ")
}

type movetext struct {
	tokens []string
	open   bool // next token starts a variation
	force  bool // next black move needs its number
}

func (m *movetext) push(tok string) {
	if m.open {
		tok = "(" + tok
		m.open = false
	}
	m.tokens = append(m.tokens, tok)
}

func (m *movetext) move(v *repertoire.Variation) {
	n := strconv.Itoa(v.MoveNumber())
	if v.WhiteMove() {
		m.push(n + ".")
	} else if m.force {
		m.push(n + "...")
	}
	m.push(v.SAN)
	m.push("{" + v.Stats.Comment() + "}")
	m.force = true
}

// line writes the main move, then its alternatives, then the main continuation.
func (m *movetext) line(vs []*repertoire.Variation) {
	if len(vs) == 0 {
		return
	}
	main := vs[0]
	m.move(main)
	for _, alt := range vs[1:] {
		m.open = true
		m.force = true
		m.move(alt)
		m.line(alt.Next)
		m.tokens[len(m.tokens)-1] += ")"
		m.force = true
	}
	m.line(main.Next)
}

// wrap breaks text on spaces so no line exceeds width where possible.
func wrap(text string, width int) []string {
	if width < 0 {
		return []string{text}
	}
	var lines []string
	var cur strings.Builder
	for _, word := range strings.Fields(text) {
		if cur.Len() > 0 && cur.Len()+1+len(word) > width {
			lines = append(lines, cur.String())
			cur.Reset()
		}
		if cur.Len() > 0 {
			cur.WriteByte(' ')
		}
		cur.WriteString(word)
	}
	if cur.Len() > 0 {
		lines = append(lines, cur.String())
	}
	return lines
}

func quote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return `"` + s + `"`
}
