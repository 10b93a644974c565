package gateways

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func TestIsURL(t *testing.T) {
	tests := []struct {
		location string
		want     bool
	}{
		{"https://raw.githubusercontent.com/menu/L1Menu.xml", true},
		{"http://example.org/testvector.txt", true},
		{"/home/user/menus/L1Menu.xml", false},
		{"relative/path.xml", false},
	}
	for _, tt := range tests {
		if got := IsURL(tt.location); got != tt.want {
			t.Errorf("IsURL(%q) = %v, want %v", tt.location, got, tt.want)
		}
	}
}

func TestFetchLocalFile(t *testing.T) {
	d := NewDownloader()
	dir := t.TempDir()

	src := filepath.Join(dir, "menu.xml")
	if err := os.WriteFile(src, []byte("<menu/>"), 0644); err != nil {
		t.Fatalf("failed to write source: %v", err)
	}

	dest := filepath.Join(dir, "work", "menu.xml")
	if err := d.Fetch(context.Background(), src, dest); err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}

	content, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("failed to read destination: %v", err)
	}
	if string(content) != "<menu/>" {
		t.Errorf("unexpected content: %q", string(content))
	}
}

func TestFetchHTTP(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("test vector data"))
	}))
	defer server.Close()

	d := NewDownloader()
	dest := filepath.Join(t.TempDir(), "tv.txt")
	if err := d.Fetch(context.Background(), server.URL+"/tv.txt", dest); err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}

	content, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("failed to read destination: %v", err)
	}
	if string(content) != "test vector data" {
		t.Errorf("unexpected content: %q", string(content))
	}
}

func TestFetchHTTPNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	d := NewDownloader()
	dest := filepath.Join(t.TempDir(), "missing.xml")
	if err := d.Fetch(context.Background(), server.URL+"/missing.xml", dest); err == nil {
		t.Error("expected error for 404 response")
	}
}

func TestFetchMissingLocalFile(t *testing.T) {
	d := NewDownloader()
	dest := filepath.Join(t.TempDir(), "out.xml")
	if err := d.Fetch(context.Background(), "/nonexistent/menu.xml", dest); err == nil {
		t.Error("expected error for missing source file")
	}
}
