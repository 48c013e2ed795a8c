package corpus

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
)

const samplePGN = `[Event "Club"]
[White "Alice"]
[Black "Bob"]
[Result "1-0"]

1. e4 e5 2. Nf3 Nc6 3. Bb5 a6 1-0

[Event "Club"]
[White "Bob"]
[Black "Alice"]
[Result "1/2-1/2"]

1. d4 d5 1/2-1/2
`

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeFile(t, "games.pgn", samplePGN)

	games, err := Load(context.Background(), path, zerolog.Nop())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(games) != 2 {
		t.Fatalf("got %d games, want 2", len(games))
	}
	if games[0].Tag("White") != "Alice" || games[0].Tag("Result") != "1-0" {
		t.Errorf("game 0 tags = %v", games[0].Tags)
	}
	if len(games[0].Moves) != 6 {
		t.Errorf("game 0 has %d moves, want 6", len(games[0].Moves))
	}
	if games[1].Tag("Black") != "Alice" || len(games[1].Moves) != 2 {
		t.Errorf("game 1 = %v with %d moves", games[1].Tags, len(games[1].Moves))
	}
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(context.Background(), filepath.Join(t.TempDir(), "nope.pgn"), zerolog.Nop())
	if !errors.Is(err, ErrInputNotFound) {
		t.Errorf("error = %v, want ErrInputNotFound", err)
	}
}

func TestLoad_NotPGN(t *testing.T) {
	path := writeFile(t, "games.txt", samplePGN)
	_, err := Load(context.Background(), path, zerolog.Nop())
	if !errors.Is(err, ErrNotPGN) {
		t.Errorf("error = %v, want ErrNotPGN", err)
	}
}

func TestLoad_Directory(t *testing.T) {
	if _, err := Load(context.Background(), t.TempDir(), zerolog.Nop()); err == nil {
		t.Errorf("Load(dir) succeeded")
	}
}

func TestIsPGNFile(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"games.pgn", true},
		{"GAMES.PGN", true},
		{"games.pgn.zst", true},
		{"games.zst", false},
		{"games.txt", false},
	}
	for _, tt := range tests {
		if got := IsPGNFile(tt.name); got != tt.want {
			t.Errorf("IsPGNFile(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}
