package localfs

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	full := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestScanner_ListFiles_SkipsDotDirsAndNonMarkdown(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.md", "A")
	writeFile(t, root, "projects/b.md", "B")
	writeFile(t, root, ".obsidian/config", "{}")
	writeFile(t, root, "notes.txt", "not markdown and not allowed by default extensions")

	s := New(root)
	paths, err := s.ListFiles(t.Context(), "")
	if err != nil {
		t.Fatalf("ListFiles: %v", err)
	}
	want := map[string]bool{"a.md": true, "projects/b.md": true}
	if len(paths) != len(want) {
		t.Fatalf("expected %d paths, got %+v", len(want), paths)
	}
	for _, p := range paths {
		if !want[p] {
			t.Errorf("unexpected path %q", p)
		}
	}
}

func TestScanner_ListFiles_ScopesToFolder(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.md", "A")
	writeFile(t, root, "projects/b.md", "B")

	s := New(root)
	paths, err := s.ListFiles(t.Context(), "projects")
	if err != nil {
		t.Fatalf("ListFiles: %v", err)
	}
	if len(paths) != 1 || paths[0] != "projects/b.md" {
		t.Fatalf("expected only projects/b.md, got %+v", paths)
	}
}

func TestScanner_GetNote_RejectsTraversal(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.md", "A")

	s := New(root)
	if _, err := s.GetNote(t.Context(), "../escape.md"); err == nil {
		t.Fatal("expected traversal to be rejected")
	}
}

func TestScanner_GetNote_NoteStat(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.md", "hello world")

	s := New(root)
	content, err := s.GetNote(t.Context(), "a.md")
	if err != nil {
		t.Fatalf("GetNote: %v", err)
	}
	if content != "hello world" {
		t.Errorf("GetNote = %q", content)
	}

	stat, err := s.NoteStat(t.Context(), "a.md")
	if err != nil {
		t.Fatalf("NoteStat: %v", err)
	}
	if stat.Size != int64(len("hello world")) {
		t.Errorf("NoteStat.Size = %d", stat.Size)
	}
}
