package source

import (
	"archive/zip"
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/Belphemur/MovieLinks/internal/apperrors"
	"github.com/Belphemur/MovieLinks/internal/config"
	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/zstd"
)

const linksCSV = "movieId,imdbId,tmdbId\n1,0114709,862\n2,0113497,8844\n"

func writeFile(t *testing.T, name string, content []byte) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, content, 0o600); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
	return p
}

func readAll(t *testing.T, opts Options) string {
	t.Helper()
	src, err := Open(context.Background(), opts)
	if err != nil {
		t.Fatalf("Open(%s): %v", opts.Path, err)
	}
	defer src.Close()

	content, err := io.ReadAll(src)
	if err != nil {
		t.Fatalf("Read(%s): %v", opts.Path, err)
	}
	return string(content)
}

func gzipBytes(t *testing.T, data string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	if _, err := w.Write([]byte(data)); err != nil {
		t.Fatalf("gzip write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("gzip close: %v", err)
	}
	return buf.Bytes()
}

func createTestZip(t *testing.T, files map[string]string) []byte {
	t.Helper()

	buf := new(bytes.Buffer)
	w := zip.NewWriter(buf)
	for filename, content := range files {
		f, err := w.Create(filename)
		if err != nil {
			t.Fatalf("Failed to create file %s in ZIP: %v", filename, err)
		}
		if _, err := f.Write([]byte(content)); err != nil {
			t.Fatalf("Failed to write content to %s in ZIP: %v", filename, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Failed to close ZIP writer: %v", err)
	}
	return buf.Bytes()
}

func TestOpen_PlainFile(t *testing.T) {
	p := writeFile(t, "links.csv", []byte(linksCSV))

	if got := readAll(t, Options{Path: p}); got != linksCSV {
		t.Errorf("Expected %q, got %q", linksCSV, got)
	}
}

func TestOpen_CompressedFiles(t *testing.T) {
	var zbuf bytes.Buffer
	zw, err := zstd.NewWriter(&zbuf)
	if err != nil {
		t.Fatalf("zstd writer: %v", err)
	}
	_, _ = zw.Write([]byte(linksCSV))
	_ = zw.Close()

	var bbuf bytes.Buffer
	bw := brotli.NewWriter(&bbuf)
	_, _ = bw.Write([]byte(linksCSV))
	_ = bw.Close()

	tests := []struct {
		name    string
		file    string
		content []byte
	}{
		{"gzip", "links.csv.gz", gzipBytes(t, linksCSV)},
		{"zstd", "links.csv.zst", zbuf.Bytes()},
		{"brotli", "links.csv.br", bbuf.Bytes()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := writeFile(t, tt.file, tt.content)
			if got := readAll(t, Options{Path: p}); got != linksCSV {
				t.Errorf("Expected %q, got %q", linksCSV, got)
			}
		})
	}
}

func TestOpen_InvalidGzip(t *testing.T) {
	p := writeFile(t, "links.csv.gz", []byte("not gzip at all"))

	if _, err := Open(context.Background(), Options{Path: p}); err == nil {
		t.Fatal("Expected error for invalid gzip data")
	}
}

func TestOpen_ZipArchive(t *testing.T) {
	archive := createTestZip(t, map[string]string{
		"ml-latest-small/README.txt": "readme",
		"ml-latest-small/movies.csv": "movieId,title,genres\n",
		"ml-latest-small/links.csv":  linksCSV,
	})
	p := writeFile(t, "ml-latest-small.zip", archive)

	if got := readAll(t, Options{Path: p}); got != linksCSV {
		t.Errorf("Expected %q, got %q", linksCSV, got)
	}
}

func TestOpen_ZipArchive_CustomEntry(t *testing.T) {
	archive := createTestZip(t, map[string]string{
		"export/LINKS-2024.CSV": linksCSV,
	})
	p := writeFile(t, "export.zip", archive)

	if got := readAll(t, Options{Path: p, Entry: "links-2024.csv"}); got != linksCSV {
		t.Errorf("Expected %q, got %q", linksCSV, got)
	}
}

func TestOpen_ZipArchive_MissingEntry(t *testing.T) {
	archive := createTestZip(t, map[string]string{
		"movies.csv": "movieId,title,genres\n",
	})
	p := writeFile(t, "movies.zip", archive)

	_, err := Open(context.Background(), Options{Path: p})
	if !errors.Is(err, &apperrors.ErrUnsupportedSource{}) {
		t.Fatalf("Expected ErrUnsupportedSource, got %v", err)
	}
}

func TestOpen_InvalidRar(t *testing.T) {
	p := writeFile(t, "links.rar", []byte("definitely not a rar archive"))

	if _, err := Open(context.Background(), Options{Path: p}); err == nil {
		t.Fatal("Expected error for invalid RAR data")
	}
}

func TestOpen_MissingFile(t *testing.T) {
	_, err := Open(context.Background(), Options{Path: filepath.Join(t.TempDir(), "absent.csv")})
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("Expected os.ErrNotExist, got %v", err)
	}
}

func TestOpen_EmptyPath(t *testing.T) {
	_, err := Open(context.Background(), Options{})
	if !errors.Is(err, &apperrors.ErrUnsupportedSource{}) {
		t.Fatalf("Expected ErrUnsupportedSource, got %v", err)
	}
}

func TestOpen_StripsBOM(t *testing.T) {
	p := writeFile(t, "links.csv", append([]byte{0xEF, 0xBB, 0xBF}, linksCSV...))

	if got := readAll(t, Options{Path: p}); got != linksCSV {
		t.Errorf("Expected BOM to be stripped, got %q", got)
	}
}

func TestOpen_Windows1252(t *testing.T) {
	// 0xE9 is "é" in windows-1252.
	p := writeFile(t, "links.csv", []byte("movieId,imdbId,tmdbId,note\n1,1,1,caf\xe9\n"))

	got := readAll(t, Options{Path: p, Encoding: "windows-1252"})
	if want := "movieId,imdbId,tmdbId,note\n1,1,1,café\n"; got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

func TestOpen_UnknownEncoding(t *testing.T) {
	p := writeFile(t, "links.csv", []byte(linksCSV))

	_, err := Open(context.Background(), Options{Path: p, Encoding: "klingon-8"})
	if !errors.Is(err, &apperrors.ErrUnsupportedSource{}) {
		t.Fatalf("Expected ErrUnsupportedSource, got %v", err)
	}
}

func TestOpen_Remote(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") != "links-test" {
			t.Errorf("Expected User-Agent links-test, got %q", r.Header.Get("User-Agent"))
		}
		_, _ = w.Write([]byte(linksCSV))
	}))
	defer server.Close()

	got := readAll(t, Options{Path: server.URL + "/data/links.csv", UserAgent: "links-test"})
	if got != linksCSV {
		t.Errorf("Expected %q, got %q", linksCSV, got)
	}
}

func TestOpen_RemoteDefaultUserAgent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("User-Agent"); got != config.DefaultUserAgent {
			t.Errorf("Expected default User-Agent, got %q", got)
		}
		_, _ = w.Write([]byte(linksCSV))
	}))
	defer server.Close()

	if got := readAll(t, Options{Path: server.URL + "/links.csv"}); got != linksCSV {
		t.Errorf("Expected %q, got %q", linksCSV, got)
	}
}

func TestOpen_RemoteGzipEncoding(t *testing.T) {
	payload := gzipBytes(t, linksCSV)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Accept-Encoding") != "gzip, br, zstd" {
			t.Errorf("Expected Accept-Encoding 'gzip, br, zstd', got %q", r.Header.Get("Accept-Encoding"))
		}
		w.Header().Set("Content-Encoding", "gzip")
		_, _ = w.Write(payload)
	}))
	defer server.Close()

	if got := readAll(t, Options{Path: server.URL + "/links.csv"}); got != linksCSV {
		t.Errorf("Expected %q, got %q", linksCSV, got)
	}
}

func TestOpen_RemoteZip(t *testing.T) {
	archive := createTestZip(t, map[string]string{"ml-latest/links.csv": linksCSV})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/zip")
		_, _ = w.Write(archive)
	}))
	defer server.Close()

	if got := readAll(t, Options{Path: server.URL + "/ml-latest.zip?download=1"}); got != linksCSV {
		t.Errorf("Expected %q, got %q", linksCSV, got)
	}
}

func TestOpen_RemoteNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	_, err := Open(context.Background(), Options{Path: server.URL + "/links.csv"})
	if err == nil {
		t.Fatal("Expected error for 404 response")
	}
	if !bytes.Contains([]byte(err.Error()), []byte("status 404")) {
		t.Errorf("Expected error mentioning status 404, got %v", err)
	}
}

func TestFromReader(t *testing.T) {
	src, err := FromReader("stdin", bytes.NewReader(append([]byte{0xEF, 0xBB, 0xBF}, linksCSV...)), "")
	if err != nil {
		t.Fatalf("FromReader: %v", err)
	}
	defer src.Close()

	if src.Name() != "stdin" {
		t.Errorf("Name() = %q, want stdin", src.Name())
	}
	content, _ := io.ReadAll(src)
	if string(content) != linksCSV {
		t.Errorf("Expected %q, got %q", linksCSV, content)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		input  string
		ext    string
		remote bool
	}{
		{"data/links.csv", ".csv", false},
		{"DATA/LINKS.CSV.GZ", ".gz", false},
		{"https://files.grouplens.org/datasets/movielens/ml-latest-small.zip", ".zip", true},
		{"http://example.com/links.csv?token=abc", ".csv", true},
		{"ftp://example.com/links.csv", ".csv", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			ext, remote := classify(tt.input)
			if ext != tt.ext || remote != tt.remote {
				t.Errorf("classify(%q) = (%q, %v), want (%q, %v)", tt.input, ext, remote, tt.ext, tt.remote)
			}
		})
	}
}

func TestParseContentEncoding(t *testing.T) {
	tests := map[string]string{
		"":            "",
		"  ":          "",
		"gzip":        "gzip",
		"GZIP ":       "gzip",
		"gzip, br":    "br",
		"identity":    "identity",
		" zstd ,gzip": "gzip",
	}
	for input, want := range tests {
		if got := parseContentEncoding(input); got != want {
			t.Errorf("parseContentEncoding(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestEntryMatches(t *testing.T) {
	if !entryMatches("ml-latest-small/links.csv", "links.csv") {
		t.Error("Expected nested member to match by base name")
	}
	if !entryMatches(`dir\Links.CSV`, "links.csv") {
		t.Error("Expected backslash path to match case-insensitively")
	}
	if entryMatches("links.csv.bak", "links.csv") {
		t.Error("Expected different name not to match")
	}
}
