package tools

import (
	"context"
	"regexp"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/taigrr/vault-gateway/internal/types"
)

// relatedBatchSize mirrors the enrichment batch ceiling discovery uses
// elsewhere (spec.md §5): bounded fan-out over every other note in the
// vault while computing tag/link relations.
const relatedBatchSize = 15

// wikilinkPattern matches [[note]], [[note|alias]], [[note#heading]].
var wikilinkPattern = regexp.MustCompile(`\[\[([^\]|#]+)(?:#[^\]|]*)?(?:\|[^\]]+)?\]\]`)

// inlineTagPattern matches inline #tag markers outside of frontmatter.
var inlineTagPattern = regexp.MustCompile(`(?:^|\s)#([a-zA-Z0-9_/-]+)`)

func extractTags(headers map[string]any, content string) []string {
	set := make(map[string]bool)

	switch v := headers["tags"].(type) {
	case []any:
		for _, tag := range v {
			if s, ok := tag.(string); ok {
				set[strings.ToLower(s)] = true
			}
		}
	case []string:
		for _, s := range v {
			set[strings.ToLower(s)] = true
		}
	case string:
		set[strings.ToLower(v)] = true
	}

	for _, m := range inlineTagPattern.FindAllStringSubmatch(content, -1) {
		set[strings.ToLower(m[1])] = true
	}

	tags := make([]string, 0, len(set))
	for t := range set {
		tags = append(tags, t)
	}
	sort.Strings(tags)
	return tags
}

func extractLinks(content string) []string {
	set := make(map[string]bool)
	for _, m := range wikilinkPattern.FindAllStringSubmatch(content, -1) {
		set[strings.ToLower(strings.TrimSpace(m[1]))] = true
	}
	links := make([]string, 0, len(set))
	for l := range set {
		links = append(links, l)
	}
	return links
}

func sharedTags(a, b []string) []string {
	set := make(map[string]bool, len(a))
	for _, t := range a {
		set[t] = true
	}
	var shared []string
	for _, t := range b {
		if set[t] {
			shared = append(shared, t)
		}
	}
	sort.Strings(shared)
	return shared
}

func addRelation(existing, next string) string {
	if existing == "" {
		return next
	}
	if strings.Contains(existing, next) {
		return existing
	}
	return existing + "," + next
}

func noteStem(path string) string {
	name := path
	if i := strings.LastIndexByte(path, '/'); i >= 0 {
		name = path[i+1:]
	}
	return strings.TrimSuffix(name, ".md")
}

func (d deps) handleFindRelated(ctx context.Context, args map[string]any) (types.Envelope, error) {
	path, err := requireString(args, "path")
	if err != nil {
		return types.Envelope{}, err
	}
	wantTags := optBool(args, "tags", false)
	wantLinks := optBool(args, "links", false)
	if !wantTags && !wantLinks {
		wantTags, wantLinks = true, true
	}

	content, err := d.vc.GetNote(ctx, path)
	if err != nil {
		return types.Envelope{}, err
	}
	parsed := d.fm.Parse(content)

	var sourceTags, outgoingLinks []string
	if wantTags {
		sourceTags = extractTags(parsed.Headers, parsed.Content)
	}
	if wantLinks {
		outgoingLinks = extractLinks(parsed.Content)
	}
	sourceStem := noteStem(path)

	allNotes, err := d.disc.ListNotes(ctx, "")
	if err != nil {
		return types.Envelope{}, err
	}

	type found struct {
		relation string
		tags     []string
	}
	results := make(map[string]*found)
	var mu sync.Mutex

	for start := 0; start < len(allNotes); start += relatedBatchSize {
		end := min(start+relatedBatchSize, len(allNotes))

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(relatedBatchSize)
		for i := start; i < end; i++ {
			other := allNotes[i]
			if other.Path == path {
				continue
			}
			g.Go(func() error {
				otherContent, err := d.vc.GetNote(gctx, other.Path)
				if err != nil {
					return nil
				}
				otherParsed := d.fm.Parse(otherContent)
				otherStem := noteStem(other.Path)

				var relation string
				var shared []string
				if wantTags && len(sourceTags) > 0 {
					otherTags := extractTags(otherParsed.Headers, otherParsed.Content)
					if shared = sharedTags(sourceTags, otherTags); len(shared) > 0 {
						relation = addRelation(relation, "shared-tags")
					}
				}
				if wantLinks {
					for _, link := range extractLinks(otherParsed.Content) {
						if strings.EqualFold(link, sourceStem) {
							relation = addRelation(relation, "backlink")
							break
						}
					}
					for _, link := range outgoingLinks {
						if strings.EqualFold(link, otherStem) {
							relation = addRelation(relation, "outgoing")
							break
						}
					}
				}
				if relation == "" {
					return nil
				}

				mu.Lock()
				results[other.Path] = &found{relation: relation, tags: shared}
				mu.Unlock()
				return nil
			})
		}
		_ = g.Wait()
	}

	related := make([]types.RelatedNote, 0, len(results))
	for p, f := range results {
		related = append(related, types.RelatedNote{Path: p, Relation: f.relation, Tags: f.tags})
	}
	sort.Slice(related, func(i, j int) bool { return related[i].Path < related[j].Path })

	return types.JSON(map[string]any{"path": path, "related": related}), nil
}

func (d deps) handleListTags(ctx context.Context, args map[string]any) (types.Envelope, error) {
	allNotes, err := d.disc.ListNotes(ctx, "")
	if err != nil {
		return types.Envelope{}, err
	}

	counts := make(map[string]int)
	var mu sync.Mutex
	var notesWithTags int

	for start := 0; start < len(allNotes); start += relatedBatchSize {
		end := min(start+relatedBatchSize, len(allNotes))

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(relatedBatchSize)
		for i := start; i < end; i++ {
			path := allNotes[i].Path
			g.Go(func() error {
				content, err := d.vc.GetNote(gctx, path)
				if err != nil {
					return nil
				}
				parsed := d.fm.Parse(content)
				tags := extractTags(parsed.Headers, parsed.Content)
				if len(tags) == 0 {
					return nil
				}
				mu.Lock()
				notesWithTags++
				for _, t := range tags {
					counts[t]++
				}
				mu.Unlock()
				return nil
			})
		}
		_ = g.Wait()
	}

	infos := make([]types.TagInfo, 0, len(counts))
	for tag, count := range counts {
		infos = append(infos, types.TagInfo{Tag: tag, Count: count})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Tag < infos[j].Tag })

	return types.JSON(map[string]any{
		"tags":          infos,
		"totalTags":     len(infos),
		"totalNotes":    len(allNotes),
		"notesWithTags": notesWithTags,
	}), nil
}
