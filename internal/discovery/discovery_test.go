package discovery

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/taigrr/vault-gateway/internal/frontmatter"
	"github.com/taigrr/vault-gateway/internal/types"
	"github.com/taigrr/vault-gateway/internal/vaultclient"
)

type fakeScanner struct {
	files       []string
	notes       map[string]string
	failStat    map[string]bool
	failContent map[string]bool
	listErr     error
	inFlight    atomic.Int64
	maxInFlight atomic.Int64
}

func (f *fakeScanner) track() func() {
	n := f.inFlight.Add(1)
	for {
		cur := f.maxInFlight.Load()
		if n <= cur || f.maxInFlight.CompareAndSwap(cur, n) {
			break
		}
	}
	return func() { f.inFlight.Add(-1) }
}

func (f *fakeScanner) ListFiles(ctx context.Context, folder string) ([]string, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.files, nil
}

func (f *fakeScanner) GetNote(ctx context.Context, path string) (string, error) {
	defer f.track()()
	if f.failContent[path] {
		return "", fmt.Errorf("boom")
	}
	return f.notes[path], nil
}

func (f *fakeScanner) NoteStat(ctx context.Context, path string) (vaultclient.NoteStat, error) {
	defer f.track()()
	if f.failStat[path] {
		return vaultclient.NoteStat{}, fmt.Errorf("boom")
	}
	return vaultclient.NoteStat{Size: int64(len(f.notes[path])), Modified: time.Unix(0, 0)}, nil
}

func TestService_ListNotes_SortsByPath(t *testing.T) {
	fs := &fakeScanner{files: []string{"b.md", "a.md"}}
	s := New(fs, frontmatter.New())

	notes, err := s.ListNotes(context.Background(), "")
	if err != nil {
		t.Fatalf("ListNotes: %v", err)
	}
	if notes[0].Path != "a.md" || notes[1].Path != "b.md" {
		t.Errorf("expected sorted order, got %+v", notes)
	}
}

func TestService_Enrich_KeepsFailuresWithEmptyHeaders(t *testing.T) {
	fs := &fakeScanner{
		files:    []string{"a.md", "b.md", "c.md"},
		notes:    map[string]string{"a.md": "A", "b.md": "B", "c.md": "C"},
		failStat: map[string]bool{"b.md": true},
	}
	s := New(fs, frontmatter.New())

	notes := []types.NoteMetadata{
		{NoteRef: types.NoteRef{Path: "a.md"}},
		{NoteRef: types.NoteRef{Path: "b.md"}},
		{NoteRef: types.NoteRef{Path: "c.md"}},
	}
	out := s.Enrich(context.Background(), notes)

	if len(out) != 3 {
		t.Fatalf("expected all 3 notes kept, got %d: %+v", len(out), out)
	}
	for _, n := range out {
		if n.Path == "b.md" {
			if n.Headers == nil || len(n.Headers) != 0 {
				t.Errorf("expected b.md to carry empty headers, got %+v", n)
			}
			if n.SizeBytes != 0 {
				t.Errorf("expected b.md to have no stat fields filled, got %+v", n)
			}
		}
	}
}

func TestService_Enrich_RespectsBatchCeiling(t *testing.T) {
	fs := &fakeScanner{notes: map[string]string{}}
	var notes []types.NoteMetadata
	for i := 0; i < 40; i++ {
		path := fmt.Sprintf("n%d.md", i)
		fs.files = append(fs.files, path)
		fs.notes[path] = "x"
		notes = append(notes, types.NoteMetadata{NoteRef: types.NoteRef{Path: path}})
	}
	s := New(fs, frontmatter.New())

	out := s.Enrich(context.Background(), notes)
	if len(out) != 40 {
		t.Fatalf("expected all 40 enriched, got %d", len(out))
	}
	if fs.maxInFlight.Load() > enrichBatchSize {
		t.Errorf("expected at most %d in flight, saw %d", enrichBatchSize, fs.maxInFlight.Load())
	}
}

func TestService_KeywordSearch_FindsSnippetAndDropsFailures(t *testing.T) {
	fs := &fakeScanner{
		files: []string{"a.md", "b.md"},
		notes: map[string]string{
			"a.md": "prefix text needle-term suffix text",
			"b.md": "nothing relevant here",
		},
		failContent: map[string]bool{},
	}
	s := New(fs, frontmatter.New())

	matches, err := s.KeywordSearch(context.Background(), types.KeywordSearchParams{Keyword: "needle-term"})
	if err != nil {
		t.Fatalf("KeywordSearch: %v", err)
	}
	if len(matches) != 1 || matches[0].Path != "a.md" {
		t.Fatalf("expected one match on a.md, got %+v", matches)
	}
	if matches[0].Snippet == "" {
		t.Error("expected non-empty snippet")
	}
}

func TestService_KeywordSearch_CaseSensitivity(t *testing.T) {
	fs := &fakeScanner{
		files: []string{"a.md"},
		notes: map[string]string{"a.md": "Needle here"},
	}
	s := New(fs, frontmatter.New())

	matches, err := s.KeywordSearch(context.Background(), types.KeywordSearchParams{Keyword: "needle", CaseSensitive: true})
	if err != nil {
		t.Fatalf("KeywordSearch: %v", err)
	}
	if len(matches) != 0 {
		t.Errorf("expected no case-sensitive match, got %+v", matches)
	}
}

func TestService_EnrichSearchHits_PreservesOrderAndIsolatesFailures(t *testing.T) {
	fs := &fakeScanner{
		notes:    map[string]string{"a.md": "A", "b.md": "B"},
		failStat: map[string]bool{"b.md": true},
	}
	s := New(fs, frontmatter.New())

	hits := []types.SearchHit{{Path: "a.md"}, {Path: "b.md"}}
	out := s.EnrichSearchHits(context.Background(), hits)

	if len(out) != 1 {
		t.Fatalf("expected the failed hit dropped, got %d: %+v", len(out), out)
	}
	if out[0].Metadata == nil {
		t.Error("expected a.md to have metadata")
	}
	if out[0].Path != "a.md" {
		t.Errorf("expected a.md kept and b.md dropped, got %+v", out[0])
	}
}

func TestService_ListNotes_FallsBackWhenPrimaryFails(t *testing.T) {
	primary := &fakeScanner{}
	primary.listErr = fmt.Errorf("upstream unreachable")
	fallback := &fakeScanner{files: []string{"b.md", "a.md"}}

	s := New(primary, frontmatter.New()).WithFallback(fallback)
	notes, err := s.ListNotes(context.Background(), "")
	if err != nil {
		t.Fatalf("ListNotes: %v", err)
	}
	if len(notes) != 2 || notes[0].Path != "a.md" {
		t.Fatalf("expected fallback results sorted, got %+v", notes)
	}
}

func TestBuildStructure_CountsFoldersAndNotes(t *testing.T) {
	notes := []types.NoteMetadata{
		{NoteRef: types.NoteRef{Path: "projects/x.md"}},
		{NoteRef: types.NoteRef{Path: "projects/sub/y.md"}},
		{NoteRef: types.NoteRef{Path: "root.md"}},
	}
	structure := BuildStructure("/vault", notes)

	if structure.TotalNotes != 3 {
		t.Errorf("TotalNotes = %d", structure.TotalNotes)
	}
	var projects, sub *types.FolderInfo
	for i := range structure.Folders {
		switch structure.Folders[i].Path {
		case "projects":
			projects = &structure.Folders[i]
		case "projects/sub":
			sub = &structure.Folders[i]
		}
	}
	if projects == nil || sub == nil {
		t.Fatalf("expected both folders present, got %+v", structure.Folders)
	}
	if projects.NotesCount != 1 || projects.SubfoldersCount != 1 {
		t.Errorf("projects folder = %+v", projects)
	}
	if sub.NotesCount != 1 {
		t.Errorf("sub folder = %+v", sub)
	}
}
