package httpapi

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/rs/zerolog"

	"github.com/freeeve/repertoire/internal/config"
	"github.com/freeeve/repertoire/internal/metrics"
)

const uploadPGN = `[White "Alice"]
[Black "Bob"]
[Result "1-0"]

1. e4 e5 2. Nf3 1-0

[White "Alice"]
[Black "Carol"]
[Result "0-1"]

1. e4 c5 0-1

[White "Dave"]
[Black "Alice"]
[Result "1/2-1/2"]

1. d4 d5 1/2-1/2
`

func newTestServer(t *testing.T) (*httptest.Server, string) {
	t.Helper()
	dir := t.TempDir()
	srv := httptest.NewServer(NewRouter(zerolog.Nop(), config.New(), metrics.NewManager(), dir))
	t.Cleanup(srv.Close)
	return srv, dir
}

func post(t *testing.T, srv *httptest.Server, query, body string) (*http.Response, string) {
	t.Helper()
	resp, err := http.Post(srv.URL+"/v1/repertoire?"+query, "application/x-chess-pgn", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	return resp, string(b)
}

func TestRepertoire_PGN(t *testing.T) {
	srv, dir := newTestServer(t)

	resp, body := post(t, srv, "color=white&depth=2", uploadPGN)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, body %s", resp.StatusCode, body)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/x-chess-pgn" {
		t.Errorf("Content-Type = %s", ct)
	}
	for _, want := range []string{`[White "Alice"]`, `[Black "Opponent"]`, "1. e4 {[%op 1.0]}", "(1... c5"} {
		if !strings.Contains(strings.ReplaceAll(body, "\n", " "), want) {
			t.Errorf("response missing %q:\n%s", want, body)
		}
	}
	if resp.Header.Get("X-Request-ID") == "" {
		t.Errorf("no request id header")
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("staged upload not removed: %v", entries)
	}
}

func TestRepertoire_JSON(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, body := post(t, srv, "color=black&depth=2&format=json", uploadPGN)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, body %s", resp.StatusCode, body)
	}
	var doc struct {
		Player string `json:"player"`
		Games  int    `json:"games"`
		Moves  []struct {
			SAN string `json:"san"`
		} `json:"moves"`
	}
	if err := json.Unmarshal([]byte(body), &doc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if doc.Player != "Alice" || doc.Games != 1 || len(doc.Moves) != 1 || doc.Moves[0].SAN != "d4" {
		t.Errorf("doc = %+v", doc)
	}
}

func TestRepertoire_ZstdUpload(t *testing.T) {
	srv, dir := newTestServer(t)

	var buf bytes.Buffer
	enc, err := zstd.NewWriter(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := enc.Write([]byte(uploadPGN)); err != nil {
		t.Fatal(err)
	}
	if err := enc.Close(); err != nil {
		t.Fatal(err)
	}

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/v1/repertoire?color=white&depth=1", &buf)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Encoding", "zstd")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, body %s", resp.StatusCode, body)
	}
	if !strings.Contains(string(body), "1. e4 {[%op 1.0] 2 games:") {
		t.Errorf("unexpected body:\n%s", body)
	}
	if entries, _ := os.ReadDir(dir); len(entries) != 0 {
		t.Errorf("staged upload not removed: %v", entries)
	}
}

func TestUploadSuffix(t *testing.T) {
	for enc, want := range map[string]string{"": ".pgn", "zstd": ".pgn.zst", "ZSTD": ".pgn.zst", "gzip": ".pgn"} {
		req := httptest.NewRequest(http.MethodPost, "/v1/repertoire", nil)
		if enc != "" {
			req.Header.Set("Content-Encoding", enc)
		}
		if got := uploadSuffix(req); got != want {
			t.Errorf("uploadSuffix(%q) = %q, want %q", enc, got, want)
		}
	}
}

func TestRepertoire_Errors(t *testing.T) {
	srv, _ := newTestServer(t)

	tests := []struct {
		name  string
		query string
		body  string
		want  int
	}{
		{"missing color", "depth=2", uploadPGN, http.StatusBadRequest},
		{"bad depth", "color=white&depth=x", uploadPGN, http.StatusBadRequest},
		{"bad format", "color=white&format=xml", uploadPGN, http.StatusBadRequest},
		{"unknown player", "color=white&player=Zed", uploadPGN, http.StatusNotFound},
		{"no players", "color=white", "[Event \"x\"]\n\n1. e4 *\n", http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := post(t, srv, tt.query, tt.body)
			if resp.StatusCode != tt.want {
				t.Errorf("status = %d, want %d (body %s)", resp.StatusCode, tt.want, body)
			}
		})
	}
}

func TestHealthAndMetrics(t *testing.T) {
	srv, _ := newTestServer(t)
	post(t, srv, "color=white&player=Zed", uploadPGN)

	for path, want := range map[string]string{
		"/healthz": "ok",
		"/metrics": `repertoire_extractions_total{outcome="empty_filtered"} 1`,
	} {
		resp, err := http.Get(srv.URL + path)
		if err != nil {
			t.Fatalf("GET %s: %v", path, err)
		}
		b, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK || !strings.Contains(string(b), want) {
			t.Errorf("GET %s = %d %q, want %q", path, resp.StatusCode, b, want)
		}
	}
}

func TestRequestID_KeepsValidHeader(t *testing.T) {
	const rid = "0b7a3c3e-7c59-4f5e-9d51-3f2a9a0e8d11"
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("X-Request-ID", rid)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if seen != rid || rec.Header().Get("X-Request-ID") != rid {
		t.Errorf("request id = %q / %q, want %q", seen, rec.Header().Get("X-Request-ID"), rid)
	}

	req = httptest.NewRequest("GET", "/", nil)
	req.Header.Set("X-Request-ID", "short")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if seen == "short" || seen == "" {
		t.Errorf("invalid request id kept: %q", seen)
	}
}
