package repertoire

import (
	"github.com/rs/zerolog"

	"github.com/freeeve/repertoire/internal/notation"
)

// NodeID indexes a node in a Tree. IDs are stable for the life of the tree.
type NodeID int32

// Root is the synthetic node above the first move.
const Root NodeID = 0

// node is one path through the merged openings. Two nodes with the same
// token at the same depth are distinct when their paths differ.
type node struct {
	token    string
	ply      int
	parent   NodeID
	seq      int // position among the parent's children
	children []NodeID
	byToken  map[string]NodeID

	passThrough int
	terminal    []int // indices into Tree.games
}

// Builder merges games into a move tree. It is the only writer of the tree
// and must not be used after Seal.
type Builder struct {
	svc    notation.Service
	depth  int
	log    zerolog.Logger
	nodes  []node
	games  []Game
	sealed bool
}

// NewBuilder returns a builder that keeps at most depth plies of each game.
func NewBuilder(svc notation.Service, depth int, log zerolog.Logger) *Builder {
	return &Builder{
		svc:   svc,
		depth: depth,
		log:   log,
		nodes: []node{{parent: -1}},
	}
}

// Add merges the first depth plies of g. A game with no moves is dropped.
// If the notation service rejects a move, the game is cut before it.
func (b *Builder) Add(g Game) error {
	if b.sealed {
		return ErrBuilderSealed
	}
	tokens := b.tokens(g)
	if len(tokens) == 0 {
		return nil
	}

	gi := len(b.games)
	b.games = append(b.games, g)

	cur := Root
	b.nodes[Root].passThrough++
	for _, tok := range tokens {
		cur = b.child(cur, tok)
		b.nodes[cur].passThrough++
	}
	b.nodes[cur].terminal = append(b.nodes[cur].terminal, gi)
	return nil
}

// tokens converts the truncated main line of g, threading a position forward.
func (b *Builder) tokens(g Game) []string {
	n := len(g.Moves)
	if n > b.depth {
		n = b.depth
	}
	if n <= 0 {
		return nil
	}

	pos := notation.Start()
	out := make([]string, 0, n)
	for i, mv := range g.Moves[:n] {
		tok, err := b.svc.Token(pos, mv)
		if err == nil {
			pos, _, err = b.svc.Play(pos, tok)
		}
		if err != nil {
			b.log.Warn().
				Err(err).
				Int("ply", i+1).
				Str("white", g.Tag("White")).
				Str("black", g.Tag("Black")).
				Msg("truncating game at unreadable move")
			break
		}
		out = append(out, tok)
	}
	return out
}

// child finds or appends the child of parent keyed by tok.
func (b *Builder) child(parent NodeID, tok string) NodeID {
	p := &b.nodes[parent]
	if id, ok := p.byToken[tok]; ok {
		return id
	}
	id := NodeID(len(b.nodes))
	if p.byToken == nil {
		p.byToken = make(map[string]NodeID)
	}
	p.byToken[tok] = id
	p.children = append(p.children, id)
	seq := len(p.children) - 1
	ply := p.ply + 1
	// p is invalid after the append below.
	b.nodes = append(b.nodes, node{
		token:  tok,
		ply:    ply,
		parent: parent,
		seq:    seq,
	})
	return id
}

// Seal ends the build phase and returns the read-only tree.
func (b *Builder) Seal() *Tree {
	b.sealed = true
	return &Tree{nodes: b.nodes, games: b.games}
}

// BuildTree merges every game and seals the result.
func BuildTree(games []Game, svc notation.Service, depth int, log zerolog.Logger) *Tree {
	b := NewBuilder(svc, depth, log)
	for _, g := range games {
		// Add only fails once sealed.
		_ = b.Add(g)
	}
	return b.Seal()
}

// Tree is a sealed opening tree. All methods are read-only.
type Tree struct {
	nodes []node
	games []Game
}

// Len returns the number of nodes including the root.
func (t *Tree) Len() int { return len(t.nodes) }

// Total returns the number of games that contributed at least one move.
func (t *Tree) Total() int { return t.nodes[Root].passThrough }

// Empty reports whether no game contributed a move.
func (t *Tree) Empty() bool { return t.Total() == 0 }

// Token returns the move token of id, "" for the root.
func (t *Tree) Token(id NodeID) string { return t.nodes[id].token }

// Ply returns the 1-based ply of id; the root is 0.
func (t *Tree) Ply(id NodeID) int { return t.nodes[id].ply }

// Parent returns the parent of id, or -1 for the root.
func (t *Tree) Parent(id NodeID) NodeID { return t.nodes[id].parent }

// Seq returns the insertion position of id among its siblings.
func (t *Tree) Seq(id NodeID) int { return t.nodes[id].seq }

// PassThrough returns the number of games whose truncated line has id's path as a prefix.
func (t *Tree) PassThrough(id NodeID) int { return t.nodes[id].passThrough }

// Children returns the children of id in first-seen order.
func (t *Tree) Children(id NodeID) []NodeID {
	return append([]NodeID(nil), t.nodes[id].children...)
}

// Child returns the child of id reached by tok.
func (t *Tree) Child(id NodeID, tok string) (NodeID, bool) {
	c, ok := t.nodes[id].byToken[tok]
	return c, ok
}

// Walk follows tokens from the root.
func (t *Tree) Walk(tokens ...string) (NodeID, bool) {
	cur := Root
	for _, tok := range tokens {
		next, ok := t.Child(cur, tok)
		if !ok {
			return 0, false
		}
		cur = next
	}
	return cur, true
}

// Path returns the tokens from the root to id.
func (t *Tree) Path(id NodeID) []string {
	path := make([]string, t.nodes[id].ply)
	for cur := id; cur != Root; cur = t.nodes[cur].parent {
		path[t.nodes[cur].ply-1] = t.nodes[cur].token
	}
	return path
}

// TerminalGames returns the games whose truncated line ends at id.
func (t *Tree) TerminalGames(id NodeID) []Game {
	idx := t.nodes[id].terminal
	out := make([]Game, len(idx))
	for i, gi := range idx {
		out[i] = t.games[gi]
	}
	return out
}

// Lines returns the number of distinct truncated lines.
func (t *Tree) Lines() int {
	n := 0
	for i := range t.nodes {
		if len(t.nodes[i].terminal) > 0 {
			n++
		}
	}
	return n
}
