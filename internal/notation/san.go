// Package notation converts between pgn moves and SAN tokens.
//
// The repertoire core never interprets chess semantics itself; it asks a
// Service for a token when merging games and asks it to replay a token when
// rendering the merged tree.
package notation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/freeeve/pgn/v3"
)

var (
	// ErrIllegalMove is returned by Token when the move is not legal in the position.
	ErrIllegalMove = errors.New("illegal move")
	// ErrUnparseableMove is returned by Play when a token cannot be resolved.
	ErrUnparseableMove = errors.New("unparseable move")
)

// pgn.Mv flag values
const (
	flagEnPassant = 2
	flagCastle    = 4
)

// Service is the move notation contract used by the repertoire core.
type Service interface {
	// Token returns the notation token for mv played from pos.
	Token(pos *pgn.GameState, mv pgn.Mv) (string, error)
	// Play resolves token against pos and returns the resulting position
	// and the move. pos is not modified.
	Play(pos *pgn.GameState, token string) (*pgn.GameState, pgn.Mv, error)
}

// SAN implements Service using standard algebraic notation.
type SAN struct{}

// Start returns the standard starting position.
func Start() *pgn.GameState {
	return pgn.NewStartingPosition()
}

// Token converts mv to SAN after checking it against the legal moves of pos.
func (SAN) Token(pos *pgn.GameState, mv pgn.Mv) (string, error) {
	if pos == nil {
		return "", fmt.Errorf("%w: nil position", ErrIllegalMove)
	}
	legal := false
	for _, other := range pgn.GenerateLegalMoves(pos) {
		if other.From == mv.From && other.To == mv.To && other.Promo == mv.Promo {
			legal = true
			break
		}
	}
	if !legal {
		return "", fmt.Errorf("%w: %s in %s", ErrIllegalMove, UCI(mv), pos.ToFEN())
	}
	return mvToSAN(pos, mv), nil
}

// Play parses token in pos and applies it to a copy of pos.
func (SAN) Play(pos *pgn.GameState, token string) (*pgn.GameState, pgn.Mv, error) {
	if pos == nil {
		return nil, pgn.Mv{}, fmt.Errorf("%w: %q: nil position", ErrUnparseableMove, token)
	}
	san := strings.TrimRight(token, "+#!?")
	mv, err := pgn.ParseSAN(pos, san)
	if err != nil {
		return nil, pgn.Mv{}, fmt.Errorf("%w: %q: %v", ErrUnparseableMove, token, err)
	}
	child := pos.Pack().Unpack()
	if child == nil {
		return nil, pgn.Mv{}, fmt.Errorf("%w: %q: unpack position", ErrUnparseableMove, token)
	}
	if err := pgn.ApplyMove(child, mv); err != nil {
		return nil, pgn.Mv{}, fmt.Errorf("%w: %q: %v", ErrUnparseableMove, token, err)
	}
	return child, mv, nil
}

// mvToSAN converts a move to SAN notation
func mvToSAN(pos *pgn.GameState, mv pgn.Mv) string {
	if mv.Flags == flagCastle {
		san := "O-O-O"
		if mv.To > mv.From {
			san = "O-O"
		}
		return san + checkSuffix(pos, mv)
	}

	fromSq := int(mv.From)
	toSq := int(mv.To)
	fromFile := fromSq % 8
	toFile := toSq % 8
	toRank := toSq / 8

	files := "abcdefgh"
	ranks := "12345678"

	// 'P', 'N', 'B', 'R', 'Q', 'K' for white, lowercase for black
	piece := pos.PieceAt(mv.From)
	isPawn := piece == 'P' || piece == 'p'
	isCapture := pos.PieceAt(mv.To) != 0 || (isPawn && mv.Flags == flagEnPassant)

	var san string

	if isPawn {
		if isCapture {
			san = string(files[fromFile]) + "x" + string(files[toFile]) + string(ranks[toRank])
		} else {
			san = string(files[toFile]) + string(ranks[toRank])
		}
		switch mv.Promo {
		case pgn.PromoQueen:
			san += "=Q"
		case pgn.PromoRook:
			san += "=R"
		case pgn.PromoBishop:
			san += "=B"
		case pgn.PromoKnight:
			san += "=N"
		}
	} else {
		pieceChar := piece
		if pieceChar >= 'a' && pieceChar <= 'z' {
			pieceChar -= 32
		}
		san = string(pieceChar)

		// Disambiguate against every other same-type piece reaching the square.
		sameFile, sameRank, ambiguous := false, false, false
		for _, other := range pgn.GenerateLegalMoves(pos) {
			if other.To != mv.To || other.From == mv.From {
				continue
			}
			otherChar := pos.PieceAt(other.From)
			if otherChar >= 'a' && otherChar <= 'z' {
				otherChar -= 32
			}
			if otherChar != pieceChar {
				continue
			}
			ambiguous = true
			if int(other.From)%8 == fromFile {
				sameFile = true
			}
			if int(other.From)/8 == fromSq/8 {
				sameRank = true
			}
		}
		if ambiguous {
			switch {
			case !sameFile:
				san += string(files[fromFile])
			case !sameRank:
				san += string(ranks[fromSq/8])
			default:
				san += string(files[fromFile]) + string(ranks[fromSq/8])
			}
		}

		if isCapture {
			san += "x"
		}
		san += string(files[toFile]) + string(ranks[toRank])
	}

	return san + checkSuffix(pos, mv)
}

// checkSuffix returns "+" or "#" when mv leaves the opponent in check or mated.
func checkSuffix(pos *pgn.GameState, mv pgn.Mv) string {
	posCopy := pos.Pack().Unpack()
	if posCopy == nil {
		return ""
	}
	if err := pgn.ApplyMove(posCopy, mv); err != nil {
		return ""
	}
	if !posCopy.IsInCheck() {
		return ""
	}
	if len(pgn.GenerateLegalMoves(posCopy)) == 0 {
		return "#"
	}
	return "+"
}
