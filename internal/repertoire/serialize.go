package repertoire

import (
	"sort"

	"github.com/freeeve/pgn/v3"
	"github.com/rs/zerolog"

	"github.com/freeeve/repertoire/internal/notation"
)

// Variation is one emitted move and everything played after it.
// Next[0], when present, is the main continuation; the rest are
// sub-variations branching at the same point.
type Variation struct {
	Ply   int
	SAN   string
	UCI   string
	Stats Stats
	Next  []*Variation
}

// MoveNumber returns the full-move number of the ply.
func (v *Variation) MoveNumber() int { return (v.Ply + 1) / 2 }

// WhiteMove reports whether white played the move.
func (v *Variation) WhiteMove() bool { return v.Ply%2 == 1 }

// Diagnostic records a branch left out of the output.
type Diagnostic struct {
	Path  []string // tokens leading to the branch point
	Token string
	Err   error
}

// RankChildren orders the children of id by pass-through count, highest
// first. Equal counts keep first-seen order.
func RankChildren(t *Tree, id NodeID) []NodeID {
	kids := t.Children(id)
	sort.SliceStable(kids, func(i, j int) bool {
		pi, pj := t.PassThrough(kids[i]), t.PassThrough(kids[j])
		if pi != pj {
			return pi > pj
		}
		return t.Seq(kids[i]) < t.Seq(kids[j])
	})
	return kids
}

// Serialize renders the tree below the root as ranked variations. A token
// the notation service cannot replay drops that branch only; the failure is
// logged and returned as a Diagnostic.
func Serialize(t *Tree, ann *Annotations, svc notation.Service, log zerolog.Logger) ([]*Variation, []Diagnostic) {
	s := &serializer{tree: t, ann: ann, svc: svc, log: log}
	if t.Empty() {
		return nil, nil
	}
	return s.children(Root, notation.Start()), s.diags
}

type serializer struct {
	tree  *Tree
	ann   *Annotations
	svc   notation.Service
	log   zerolog.Logger
	diags []Diagnostic
}

func (s *serializer) children(id NodeID, pos *pgn.GameState) []*Variation {
	var out []*Variation
	for _, kid := range RankChildren(s.tree, id) {
		tok := s.tree.Token(kid)
		next, mv, err := s.svc.Play(pos, tok)
		if err != nil {
			path := s.tree.Path(id)
			s.log.Warn().
				Err(err).
				Strs("path", path).
				Str("move", tok).
				Msg("skipping branch")
			s.diags = append(s.diags, Diagnostic{Path: path, Token: tok, Err: err})
			continue
		}
		out = append(out, &Variation{
			Ply:   s.tree.Ply(kid),
			SAN:   tok,
			UCI:   notation.UCI(mv),
			Stats: s.ann.Node(kid),
			Next:  s.children(kid, next),
		})
	}
	return out
}
