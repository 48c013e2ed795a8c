package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"

	"github.com/freeeve/repertoire/internal/repertoire"
)

// Format selects the output encoding.
type Format string

const (
	FormatPGN  Format = "pgn"
	FormatJSON Format = "json"
)

// ParseFormat accepts "pgn" or "json".
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatPGN, FormatJSON:
		return f, nil
	case "":
		return FormatPGN, nil
	}
	return "", fmt.Errorf("invalid format %q: want pgn or json", s)
}

// ContentType returns the HTTP media type of the format.
func (f Format) ContentType() string {
	if f == FormatJSON {
		return "application/json"
	}
	return "application/x-chess-pgn"
}

// Render writes rep to w in format f.
func Render(w io.Writer, f Format, rep *repertoire.Repertoire, opts Options) error {
	if f == FormatJSON {
		return WriteJSON(w, rep, opts)
	}
	return WritePGN(w, rep, opts)
}

// WriteFile renders rep to path. A path ending in .zst is zstd compressed.
// The file is written under a temporary name and renamed into place, so a
// failed write leaves nothing behind.
func WriteFile(path string, f Format, rep *repertoire.Repertoire, opts Options) (err error) {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	var w io.Writer = tmp
	var enc *zstd.Encoder
	if strings.HasSuffix(strings.ToLower(path), ".zst") {
		enc, err = zstd.NewWriter(tmp, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
		if err != nil {
			return fmt.Errorf("create zstd encoder: %w", err)
		}
		w = enc
	}

	if err = Render(w, f, rep, opts); err != nil {
		return fmt.Errorf("render %s: %w", f, err)
	}
	if enc != nil {
		if err = enc.Close(); err != nil {
			return fmt.Errorf("flush zstd: %w", err)
		}
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("sync output: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close output: %w", err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename output: %w", err)
	}
	return nil
}
