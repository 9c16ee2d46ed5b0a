// Package discovery implements vault discovery and header enrichment (C3,
// spec.md §4.3): scanning the vault for notes, lazily filling in structured
// headers, and the two concurrency disciplines the rest of the gateway
// builds on — bounded-batch fan-out for enrichment and keyword search, and
// unbounded gather for search-hit enrichment.
package discovery

import (
	"context"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/taigrr/vault-gateway/internal/frontmatter"
	"github.com/taigrr/vault-gateway/internal/pathfilter"
	"github.com/taigrr/vault-gateway/internal/types"
	"github.com/taigrr/vault-gateway/internal/vaultclient"
)

// enrichBatchSize bounds concurrent upstream reads during header enrichment
// and keyword search (spec.md §5): fifteen notes in flight at a time.
const enrichBatchSize = 15

// snippetRadius is the number of characters kept on either side of a
// keyword match (spec.md §4.3).
const snippetRadius = 80

// headerPeekBytes is how much of a note discovery reads to find its
// structured header block; large bodies are never read in full just to
// enrich metadata.
const headerPeekBytes = 2048

// Scanner is the interface discovery needs from the upstream adapter. It is
// satisfied by *vaultclient.Client; narrowed here so tests can fake it.
type Scanner interface {
	ListFiles(ctx context.Context, folder string) ([]string, error)
	GetNote(ctx context.Context, path string) (string, error)
	NoteStat(ctx context.Context, path string) (vaultclient.NoteStat, error)
}

// Service discovers and enriches notes.
type Service struct {
	client   Scanner
	fallback Scanner
	fm       *frontmatter.Handler
	pf       *pathfilter.PathFilter
	log      zerolog.Logger

	batchSize     int
	snippetRadius int
}

// New constructs a discovery Service with the spec's default batch size and
// snippet radius; use WithBatchSize/WithSnippetRadius to override either for
// operator tuning (SPEC_FULL.md §6's --batch-size/--snippet-radius flags).
// Every scan is filtered through pathfilter's default ignore rules
// (.obsidian/**, .git/**, node_modules/**, and any extension other than
// .md, .markdown or .txt) so vault-internal plugin state never surfaces as
// a note. The upstream listing is not narrowed further, so .markdown and
// .txt files it reports are listed alongside .md notes.
func New(client Scanner, fm *frontmatter.Handler) *Service {
	return &Service{client: client, fm: fm, pf: pathfilter.New(nil), log: zerolog.Nop(), batchSize: enrichBatchSize, snippetRadius: snippetRadius}
}

// WithLogger attaches a structured logger used for per-item recovered
// failures (spec.md §7: these never propagate, but they are worth a debug
// line when diagnosing a flaky upstream).
func (s *Service) WithLogger(log zerolog.Logger) *Service {
	s.log = log.With().Str("component", "discovery").Logger()
	return s
}

// WithBatchSize overrides the concurrent-fan-out ceiling. n<=0 is a no-op.
func (s *Service) WithBatchSize(n int) *Service {
	if n > 0 {
		s.batchSize = n
	}
	return s
}

// WithSnippetRadius overrides the keyword-match snippet radius. n<=0 is a
// no-op.
func (s *Service) WithSnippetRadius(n int) *Service {
	if n > 0 {
		s.snippetRadius = n
	}
	return s
}

// WithFallback registers a scanner consulted only when the primary scan
// (the upstream REST listing) fails — typically a localfs.Scanner rooted at
// --vault-root. A nil fallback (the default) leaves ListFiles failures
// unrecovered.
func (s *Service) WithFallback(fallback Scanner) *Service {
	s.fallback = fallback
	return s
}

func (s *Service) listFiles(ctx context.Context, folder string) ([]string, error) {
	paths, err := s.client.ListFiles(ctx, folder)
	if err == nil || s.fallback == nil {
		return paths, err
	}
	return s.fallback.ListFiles(ctx, folder)
}

// ListNotes returns every note under folder (or the whole vault when folder
// is empty), sorted by path, without headers populated.
func (s *Service) ListNotes(ctx context.Context, folder string) ([]types.NoteMetadata, error) {
	paths, err := s.listFiles(ctx, folder)
	if err != nil {
		return nil, err
	}
	paths = s.pf.FilterPaths(paths)
	sort.Strings(paths)

	notes := make([]types.NoteMetadata, len(paths))
	for i, p := range paths {
		notes[i] = types.NoteMetadata{NoteRef: types.NoteRef{Path: p, Name: baseName(p)}}
	}
	return notes, nil
}

// Enrich fills in ModifiedAt/SizeBytes/CreatedAt/Headers for each note, in
// batches of enrichBatchSize concurrent upstream calls (spec.md §5). A note
// whose stat or body fetch fails keeps its place in the result with
// Headers left as an empty map — discovery never aborts the whole scan, and
// never shrinks the result, over one bad note.
func (s *Service) Enrich(ctx context.Context, notes []types.NoteMetadata) []types.NoteMetadata {
	enriched := make([]types.NoteMetadata, len(notes))

	for start := 0; start < len(notes); start += s.batchSize {
		end := min(start+s.batchSize, len(notes))

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(s.batchSize)

		for i := start; i < end; i++ {
			i := i
			g.Go(func() error {
				enriched[i] = s.enrichOne(gctx, notes[i])
				return nil
			})
		}
		_ = g.Wait()
	}

	return enriched
}

// enrichOne always returns note, win or lose: a stat or body-read failure
// is logged at debug and leaves Headers as an empty map rather than
// dropping the note from its caller's result.
func (s *Service) enrichOne(ctx context.Context, note types.NoteMetadata) types.NoteMetadata {
	note.Headers = map[string]any{}

	stat, err := s.client.NoteStat(ctx, note.Path)
	if err != nil {
		s.log.Debug().Str("path", note.Path).Err(err).Msg("note stat failed; keeping entry with empty headers")
		return note
	}
	note.SizeBytes = stat.Size
	note.ModifiedAt = stat.Modified
	note.CreatedAt = stat.Created

	content, err := s.client.GetNote(ctx, note.Path)
	if err != nil {
		s.log.Debug().Str("path", note.Path).Err(err).Msg("note read failed; keeping entry with empty headers")
		return note
	}
	if len(content) > headerPeekBytes {
		content = content[:headerPeekBytes]
	}
	note.Headers = s.fm.ExtractHeaders(content)
	return note
}

// KeywordSearch scans every note under folder for keyword, in bounded
// batches, returning a snippet of ±snippetRadius characters around the
// first match in each note. Per-note read failures are dropped silently.
func (s *Service) KeywordSearch(ctx context.Context, params types.KeywordSearchParams) ([]types.KeywordMatch, error) {
	paths, err := s.listFiles(ctx, params.Folder)
	if err != nil {
		return nil, err
	}
	paths = s.pf.FilterPaths(paths)
	sort.Strings(paths)

	needle := params.Keyword
	if !params.CaseSensitive {
		needle = strings.ToLower(needle)
	}

	type slot struct {
		match types.KeywordMatch
		found bool
	}
	results := make([]slot, len(paths))

	for start := 0; start < len(paths); start += s.batchSize {
		end := min(start+s.batchSize, len(paths))

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(s.batchSize)

		for i := start; i < end; i++ {
			i := i
			g.Go(func() error {
				content, err := s.client.GetNote(gctx, paths[i])
				if err != nil {
					s.log.Debug().Str("path", paths[i]).Err(err).Msg("dropping note: keyword search read failed")
					return nil
				}
				haystack := content
				if !params.CaseSensitive {
					haystack = strings.ToLower(content)
				}
				idx := strings.Index(haystack, needle)
				if idx < 0 {
					return nil
				}
				results[i] = slot{
					match: types.KeywordMatch{
						Path:    paths[i],
						Name:    baseName(paths[i]),
						Snippet: s.snippetAround(content, idx, len(needle)),
					},
					found: true,
				}
				return nil
			})
		}
		_ = g.Wait()
	}

	matches := make([]types.KeywordMatch, 0, len(paths))
	for _, r := range results {
		if r.found {
			matches = append(matches, r.match)
		}
		if params.Limit > 0 && len(matches) >= params.Limit {
			break
		}
	}
	return matches, nil
}

// EnrichSearchHits fills in Metadata for each search hit via unbounded
// gather (spec.md §4.3, §5): every hit is fetched concurrently with no
// batch ceiling, since hit counts are caller-bounded upstream already.
// A hit whose metadata fetch fails is dropped from the result; input order
// is preserved among the hits that succeed.
func (s *Service) EnrichSearchHits(ctx context.Context, hits []types.SearchHit) []types.SearchHit {
	out := make([]types.SearchHit, len(hits))
	copy(out, hits)
	ok := make([]bool, len(out))

	g, gctx := errgroup.WithContext(ctx)
	for i := range out {
		i := i
		g.Go(func() error {
			stat, err := s.client.NoteStat(gctx, out[i].Path)
			if err != nil {
				return nil
			}
			ok[i] = true
			out[i].Metadata = &types.NoteMetadata{
				NoteRef:    types.NoteRef{Path: out[i].Path, Name: baseName(out[i].Path)},
				SizeBytes:  stat.Size,
				ModifiedAt: stat.Modified,
				CreatedAt:  stat.Created,
			}
			return nil
		})
	}
	_ = g.Wait()

	kept := make([]types.SearchHit, 0, len(out))
	for i, h := range out {
		if ok[i] {
			kept = append(kept, h)
		}
	}
	return kept
}

// BuildStructure assembles a VaultStructure from an enriched note list,
// deriving folder summaries from note path prefixes.
func BuildStructure(rootPath string, notes []types.NoteMetadata) types.VaultStructure {
	folderSet := map[string]*types.FolderInfo{}
	var order []string

	ensure := func(path string) *types.FolderInfo {
		if f, ok := folderSet[path]; ok {
			return f
		}
		var parent *string
		if idx := strings.LastIndexByte(path, '/'); idx >= 0 {
			p := path[:idx]
			parent = &p
		}
		name := path
		if idx := strings.LastIndexByte(path, '/'); idx >= 0 {
			name = path[idx+1:]
		}
		f := &types.FolderInfo{Path: path, Name: name, Parent: parent}
		folderSet[path] = f
		order = append(order, path)
		return f
	}

	for _, n := range notes {
		dir := ""
		if idx := strings.LastIndexByte(n.Path, '/'); idx >= 0 {
			dir = n.Path[:idx]
		}
		if dir == "" {
			continue
		}
		segments := strings.Split(dir, "/")
		for i := range segments {
			sub := strings.Join(segments[:i+1], "/")
			ensure(sub)
		}
		ensure(dir).NotesCount++
	}
	for _, path := range order {
		parentPath := ""
		if folderSet[path].Parent != nil {
			parentPath = *folderSet[path].Parent
		}
		if parent, ok := folderSet[parentPath]; ok && parentPath != "" {
			parent.SubfoldersCount++
		}
	}

	sort.Strings(order)
	folders := make([]types.FolderInfo, 0, len(order))
	for _, path := range order {
		folders = append(folders, *folderSet[path])
	}

	return types.VaultStructure{
		RootPath:     rootPath,
		Folders:      folders,
		Notes:        notes,
		TotalNotes:   len(notes),
		TotalFolders: len(folders),
	}
}

func (s *Service) snippetAround(content string, idx, matchLen int) string {
	start := max(idx-s.snippetRadius, 0)
	end := min(idx+matchLen+s.snippetRadius, len(content))
	snippet := strings.TrimSpace(content[start:end])
	if start > 0 {
		snippet = "..." + snippet
	}
	if end < len(content) {
		snippet = snippet + "..."
	}
	return snippet
}

func baseName(path string) string {
	if i := strings.LastIndexByte(path, '/'); i >= 0 {
		return path[i+1:]
	}
	return path
}
