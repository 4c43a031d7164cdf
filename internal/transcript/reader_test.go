package transcript

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"call-copilot/internal/models"
)

func TestSlugify(t *testing.T) {
	cases := []struct{ in, want string }{
		{"demo_call", "demo_call"},
		{"Q3 Sales Call!", "Q3_Sales_Call_"},
		{"acme-renewal-2026", "acme-renewal-2026"},
		{"weird/.name", "weird__name"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := Slugify(tc.in); got != tc.want {
			t.Errorf("Slugify(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestReadMissingFile(t *testing.T) {
	_, err := Read(filepath.Join(t.TempDir(), "nope.txt"))
	if !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestReadUnsupportedFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "call.wav")
	if err := os.WriteFile(path, []byte("audio"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Read(path); err == nil {
		t.Fatal("expected an error for unsupported format")
	}
}

func TestReadText(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "demo call.txt")
	body := "Alice: Hello.\nBob: Hi there.\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	tr, err := Read(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tr.CallID != "demo_call" {
		t.Errorf("CallID = %q, want demo_call", tr.CallID)
	}
	if tr.Title != "demo call" {
		t.Errorf("Title = %q, want %q", tr.Title, "demo call")
	}
	if tr.Text != strings.TrimSpace(body) {
		t.Errorf("Text = %q", tr.Text)
	}
}

func TestReadMarkdown(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.md")
	body := "# Call notes\n\nAlice asked about **pricing**.\n\n- next step one\n- next step two\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	tr, err := Read(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{"Call notes", "pricing", "next step one"} {
		if !strings.Contains(tr.Text, want) {
			t.Errorf("markdown text missing %q: %q", want, tr.Text)
		}
	}
	if strings.Contains(tr.Text, "**") || strings.Contains(tr.Text, "#") {
		t.Errorf("markdown syntax leaked into text: %q", tr.Text)
	}
}

func TestListFolder(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b_call.txt", "a_call.txt", "skip.wav", "notes.md"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "sub.txt"), 0o755); err != nil {
		t.Fatal(err)
	}
	paths, err := ListFolder(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(paths) != 3 {
		t.Fatalf("got %d paths, want 3: %v", len(paths), paths)
	}
	if filepath.Base(paths[0]) != "a_call.txt" {
		t.Errorf("paths not sorted: %v", paths)
	}
}

func TestListFolderMissing(t *testing.T) {
	_, err := ListFolder(filepath.Join(t.TempDir(), "absent"))
	if !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
