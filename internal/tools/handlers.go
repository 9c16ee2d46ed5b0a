package tools

import (
	"context"
	"strings"
	"time"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/taigrr/vault-gateway/internal/discovery"
	"github.com/taigrr/vault-gateway/internal/errs"
	"github.com/taigrr/vault-gateway/internal/template"
	"github.com/taigrr/vault-gateway/internal/types"
)

// catalogue builds every tool definition against the given dependencies.
// Split out of New so the prefix computation stays in one place.
func catalogue(d deps, prefix string) []Tool {
	return []Tool{
		{
			Name:        "ping",
			Description: "Check that the gateway and upstream vault plugin are reachable.",
			Schema:      objectSchema(nil),
			Handler:     d.handlePing,
		},
		{
			Name:        prefix + "search_notes",
			Description: "Run the upstream plugin's simple-query search and enrich each hit with stat metadata.",
			Schema: objectSchema(map[string]*jsonschema.Schema{
				"query":  str("search query"),
				"folder": str("restrict search to this folder"),
			}, "query"),
			Handler: d.handleSearchNotes,
		},
		{
			Name:        prefix + "read_note",
			Description: "Read a note's body, structured headers, and stat metadata.",
			Schema: objectSchema(map[string]*jsonschema.Schema{
				"path": str("vault-relative path to the note"),
			}, "path"),
			Handler: d.handleReadNote,
		},
		{
			Name:        prefix + "create_note",
			Description: "Create a new note, applying a header template unless use_template=false. Fails if the note already exists.",
			Schema: objectSchema(map[string]*jsonschema.Schema{
				"path":           str("vault-relative path to the new note"),
				"content":        str("note body"),
				"use_template":   boolean("apply the path's template, default true"),
				"create_folders": boolean("create intermediate folders if missing"),
			}, "path", "content"),
			Handler: d.handleCreateNote,
		},
		{
			Name:        prefix + "update_note",
			Description: "Overwrite a note's content. With preserve_format=true, merges structured headers instead of replacing them outright.",
			Schema: objectSchema(map[string]*jsonschema.Schema{
				"path":            str("vault-relative path to the note"),
				"content":         str("new note body"),
				"preserve_format": boolean("merge headers instead of replacing them"),
			}, "path", "content"),
			Handler: d.handleUpdateNote,
		},
		{
			Name:        prefix + "append_note",
			Description: "Append content to the end of an existing note, joined by separator (default newline).",
			Schema: objectSchema(map[string]*jsonschema.Schema{
				"path":      str("vault-relative path to the note"),
				"content":   str("content to append"),
				"separator": str("text inserted between existing content and the appended content"),
			}, "path", "content"),
			Handler: d.handleAppendNote,
		},
		{
			Name:        prefix + "delete_note",
			Description: "Delete a note. Idempotent: deleting a missing note is not an error.",
			Schema: objectSchema(map[string]*jsonschema.Schema{
				"path": str("vault-relative path to the note"),
			}, "path"),
			Handler: d.handleDeleteNote,
		},
		{
			Name:        prefix + "list_notes",
			Description: "List notes under a folder (or the whole vault), optionally with structured headers populated.",
			Schema: objectSchema(map[string]*jsonschema.Schema{
				"folder":          str("restrict the listing to this folder"),
				"include_headers": boolean("populate each note's structured headers"),
			}),
			Handler: d.handleListNotes,
		},
		{
			Name:        prefix + "get_vault_structure",
			Description: "Return the full folder/note tree, served from cache unless use_cache=false.",
			Schema: objectSchema(map[string]*jsonschema.Schema{
				"use_cache": boolean("serve from the structure cache when fresh, default true"),
			}),
			Handler: d.handleGetVaultStructure,
		},
		{
			Name:        prefix + "execute_command",
			Description: "Dispatch an opaque named command to the upstream plugin.",
			Schema: objectSchema(map[string]*jsonschema.Schema{
				"command":    str("upstream command name"),
				"parameters": object("command parameters"),
			}, "command"),
			Handler: d.handleExecuteCommand,
		},
		{
			Name:        prefix + "keyword_search",
			Description: "Scan note bodies for a literal keyword, returning a snippet of surrounding context per match.",
			Schema: objectSchema(map[string]*jsonschema.Schema{
				"keyword":        str("text to search for"),
				"folder":         str("restrict the scan to this folder"),
				"case_sensitive": boolean("match case exactly, default false"),
				"limit":          integer("maximum number of matches to return"),
			}, "keyword"),
			Handler: d.handleKeywordSearch,
		},
		{
			Name:        prefix + "check_note_exists",
			Description: "Check whether a note exists, returning its last-modified time if so.",
			Schema: objectSchema(map[string]*jsonschema.Schema{
				"path": str("vault-relative path to the note"),
			}, "path"),
			Handler: d.handleCheckNoteExists,
		},
		{
			Name:        prefix + "list_daily_notes",
			Description: "List daily notes whose filename date falls within [start_date, end_date] (inclusive, YYYY-MM-DD).",
			Schema: objectSchema(map[string]*jsonschema.Schema{
				"start_date": str("inclusive start date, YYYY-MM-DD"),
				"end_date":   str("inclusive end date, YYYY-MM-DD"),
			}, "start_date", "end_date"),
			Handler: d.handleListDailyNotes,
		},
		{
			Name:        prefix + "find_related",
			Description: "Find notes related to a given note by shared tags and/or wikilinks.",
			Schema: objectSchema(map[string]*jsonschema.Schema{
				"path":  str("vault-relative path to the source note"),
				"tags":  boolean("match on shared tags, default both"),
				"links": boolean("match on wikilinks, default both"),
			}, "path"),
			Handler: d.handleFindRelated,
		},
		{
			Name:        prefix + "list_tags",
			Description: "List every tag used across the vault (frontmatter and inline #tags) with occurrence counts.",
			Schema:      objectSchema(nil),
			Handler:     d.handleListTags,
		},
		{
			Name:        prefix + "move_note",
			Description: "Move or rename a note. Fails if the destination exists unless overwrite=true.",
			Schema: objectSchema(map[string]*jsonschema.Schema{
				"old_path":  str("current vault-relative path"),
				"new_path":  str("destination vault-relative path"),
				"overwrite": boolean("replace an existing note at new_path"),
			}, "old_path", "new_path"),
			Handler: d.handleMoveNote,
		},
	}
}

func (d deps) handlePing(ctx context.Context, args map[string]any) (types.Envelope, error) {
	if err := d.vc.Ping(ctx); err != nil {
		return types.Envelope{}, err
	}
	return types.JSON(map[string]any{
		"text":      "pong",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}), nil
}

func (d deps) handleSearchNotes(ctx context.Context, args map[string]any) (types.Envelope, error) {
	query, err := requireString(args, "query")
	if err != nil {
		return types.Envelope{}, err
	}
	folder := optString(args, "folder", "")

	hits, err := d.vc.SearchSimple(ctx, types.SimpleSearchParams{Query: query, Folder: folder})
	if err != nil {
		return types.Envelope{}, err
	}
	hits = d.disc.EnrichSearchHits(ctx, hits)
	return types.JSON(hits), nil
}

type readNoteMetadata struct {
	Path       string         `json:"path"`
	Headers    map[string]any `json:"headers,omitempty"`
	SizeBytes  int64          `json:"sizeBytes"`
	ModifiedAt time.Time      `json:"modifiedAt"`
}

func (d deps) handleReadNote(ctx context.Context, args map[string]any) (types.Envelope, error) {
	path, err := requireString(args, "path")
	if err != nil {
		return types.Envelope{}, err
	}

	content, err := d.vc.GetNote(ctx, path)
	if err != nil {
		return types.Envelope{}, err
	}
	stat, err := d.vc.NoteStat(ctx, path)
	if err != nil {
		return types.Envelope{}, err
	}
	parsed := d.fm.Parse(content)

	// Body is a text part, not a json part, so a large note crosses the
	// streaming byte threshold (spec.md §4.7) and chunks instead of going
	// out as one oversized unary frame.
	return types.Text(parsed.Content).WithMetadata(readNoteMetadata{
		Path:       path,
		Headers:    parsed.Headers,
		SizeBytes:  stat.Size,
		ModifiedAt: stat.Modified,
	}), nil
}

func (d deps) handleCreateNote(ctx context.Context, args map[string]any) (types.Envelope, error) {
	path, err := requireString(args, "path")
	if err != nil {
		return types.Envelope{}, err
	}
	content, err := requireString(args, "content")
	if err != nil {
		return types.Envelope{}, err
	}
	useTemplate := optBool(args, "use_template", true)
	createFolders := optBool(args, "create_folders", true)

	if _, err := d.vc.NoteStat(ctx, path); err == nil {
		return types.Envelope{}, errs.Conflict("note already exists: " + path)
	} else if e, ok := errs.As(err); !ok || e.Kind != errs.KindNotFound {
		return types.Envelope{}, err
	}

	final := content
	if useTemplate {
		final, err = d.tmpl.Synthesize(path, content, nil)
		if err != nil {
			return types.Envelope{}, err
		}
	}

	if err := d.vc.PutNote(ctx, path, final, createFolders); err != nil {
		d.c.Invalidate()
		return types.Envelope{}, err
	}
	d.c.Invalidate()

	return types.JSON(map[string]any{"path": path, "created": true}), nil
}

func (d deps) handleUpdateNote(ctx context.Context, args map[string]any) (types.Envelope, error) {
	path, err := requireString(args, "path")
	if err != nil {
		return types.Envelope{}, err
	}
	content, err := requireString(args, "content")
	if err != nil {
		return types.Envelope{}, err
	}
	preserveFormat := optBool(args, "preserve_format", false)

	final := content
	if preserveFormat {
		existing, err := d.vc.GetNote(ctx, path)
		if err != nil {
			return types.Envelope{}, err
		}
		final, err = d.tmpl.PreserveFormatMerge(existing, content)
		if err != nil {
			return types.Envelope{}, err
		}
	}

	env := types.JSON(map[string]any{"path": path, "updated": true})
	if warning, mismatched := d.tmpl.CheckDateMismatch(path, final); mismatched {
		env = env.WithWarning(warning)
	}
	if parsed := d.fm.Parse(final); len(parsed.Headers) > 0 {
		if validation := d.fm.Validate(parsed.Headers); !validation.IsValid {
			env = env.WithWarning("header block: " + strings.Join(validation.Errors, "; "))
		}
	}

	if err := d.vc.PutNote(ctx, path, final, false); err != nil {
		d.c.Invalidate()
		return types.Envelope{}, err
	}
	d.c.Invalidate()

	return env, nil
}

func (d deps) handleAppendNote(ctx context.Context, args map[string]any) (types.Envelope, error) {
	path, err := requireString(args, "path")
	if err != nil {
		return types.Envelope{}, err
	}
	content, err := requireString(args, "content")
	if err != nil {
		return types.Envelope{}, err
	}
	separator := optString(args, "separator", "\n")

	existing, err := d.vc.GetNote(ctx, path)
	if err != nil {
		return types.Envelope{}, err
	}

	final := existing + separator + content
	if err := d.vc.PutNote(ctx, path, final, false); err != nil {
		d.c.Invalidate()
		return types.Envelope{}, err
	}
	d.c.Invalidate()

	return types.JSON(map[string]any{"path": path, "appended": true}), nil
}

func (d deps) handleDeleteNote(ctx context.Context, args map[string]any) (types.Envelope, error) {
	path, err := requireString(args, "path")
	if err != nil {
		return types.Envelope{}, err
	}

	err = d.vc.DeleteNote(ctx, path)
	d.c.Invalidate()
	if err != nil {
		if e, ok := errs.As(err); ok && e.Kind == errs.KindNotFound {
			return types.JSON(map[string]any{"path": path, "deleted": true}), nil
		}
		return types.Envelope{}, err
	}
	return types.JSON(map[string]any{"path": path, "deleted": true}), nil
}

func (d deps) handleListNotes(ctx context.Context, args map[string]any) (types.Envelope, error) {
	folder := optString(args, "folder", "")
	includeHeaders := optBool(args, "include_headers", false)

	if cached, ok := d.c.GetNotes(includeHeaders); ok {
		return types.JSON(filterByFolder(cached, folder)), nil
	}

	notes, err := d.disc.ListNotes(ctx, folder)
	if err != nil {
		return types.Envelope{}, err
	}
	if includeHeaders {
		notes = d.disc.Enrich(ctx, notes)
	}
	d.c.PutNotes(notes, includeHeaders)

	return types.JSON(notes), nil
}

func filterByFolder(notes []types.NoteMetadata, folder string) []types.NoteMetadata {
	if folder == "" {
		return notes
	}
	out := make([]types.NoteMetadata, 0, len(notes))
	for _, n := range notes {
		if strings.HasPrefix(n.Path, folder) {
			out = append(out, n)
		}
	}
	return out
}

func (d deps) handleGetVaultStructure(ctx context.Context, args map[string]any) (types.Envelope, error) {
	useCache := optBool(args, "use_cache", true)

	if useCache {
		if s, ok := d.c.GetStructure(); ok {
			return types.JSON(s), nil
		}
	}

	notes, err := d.disc.ListNotes(ctx, "")
	if err != nil {
		return types.Envelope{}, err
	}
	notes = d.disc.Enrich(ctx, notes)
	structure := discovery.BuildStructure("", notes)
	d.c.PutStructure(structure)
	d.c.PutNotes(notes, true)

	return types.JSON(structure), nil
}

func (d deps) handleExecuteCommand(ctx context.Context, args map[string]any) (types.Envelope, error) {
	command, err := requireString(args, "command")
	if err != nil {
		return types.Envelope{}, err
	}
	params := optMap(args, "parameters")

	result, err := d.vc.ExecuteCommand(ctx, command, params)
	d.c.Invalidate()
	if err != nil {
		return types.Envelope{}, err
	}
	return types.JSON(result), nil
}

func (d deps) handleKeywordSearch(ctx context.Context, args map[string]any) (types.Envelope, error) {
	keyword, err := requireString(args, "keyword")
	if err != nil {
		return types.Envelope{}, err
	}
	matches, err := d.disc.KeywordSearch(ctx, types.KeywordSearchParams{
		Keyword:       keyword,
		Folder:        optString(args, "folder", ""),
		CaseSensitive: optBool(args, "case_sensitive", false),
		Limit:         optInt(args, "limit", 0),
	})
	if err != nil {
		return types.Envelope{}, err
	}
	return types.JSON(matches), nil
}

func (d deps) handleCheckNoteExists(ctx context.Context, args map[string]any) (types.Envelope, error) {
	path, err := requireString(args, "path")
	if err != nil {
		return types.Envelope{}, err
	}

	stat, err := d.vc.NoteStat(ctx, path)
	if err != nil {
		if e, ok := errs.As(err); ok && e.Kind == errs.KindNotFound {
			return types.JSON(map[string]any{"exists": false}), nil
		}
		return types.Envelope{}, err
	}
	return types.JSON(map[string]any{"exists": true, "modified": stat.Modified}), nil
}

func (d deps) handleListDailyNotes(ctx context.Context, args map[string]any) (types.Envelope, error) {
	startStr, err := requireString(args, "start_date")
	if err != nil {
		return types.Envelope{}, err
	}
	endStr, err := requireString(args, "end_date")
	if err != nil {
		return types.Envelope{}, err
	}
	start, err := time.Parse("2006-01-02", startStr)
	if err != nil {
		return types.Envelope{}, errs.InvalidArgs("start_date must be YYYY-MM-DD", "start_date")
	}
	end, err := time.Parse("2006-01-02", endStr)
	if err != nil {
		return types.Envelope{}, errs.InvalidArgs("end_date must be YYYY-MM-DD", "end_date")
	}

	// Scan the whole vault rather than a fixed "daily-notes" folder: the
	// template table (spec.md §4.4) also accepts a numeric-ordering prefix
	// variant ("01_daily-notes/"), so folder scoping here would silently
	// miss those vaults.
	notes, err := d.disc.ListNotes(ctx, "")
	if err != nil {
		return types.Envelope{}, err
	}

	var inRange []types.NoteMetadata
	for _, n := range notes {
		if def, ok := d.tmpl.Select(n.Path); !ok || def.Kind != template.KindDaily {
			continue
		}
		when, ok := template.ParseDailyDate(n.Path)
		if !ok {
			continue
		}
		if when.Before(start) || when.After(end) {
			continue
		}
		inRange = append(inRange, n)
	}

	return types.JSON(d.disc.Enrich(ctx, inRange)), nil
}

func (d deps) handleMoveNote(ctx context.Context, args map[string]any) (types.Envelope, error) {
	oldPath, err := requireString(args, "old_path")
	if err != nil {
		return types.Envelope{}, err
	}
	newPath, err := requireString(args, "new_path")
	if err != nil {
		return types.Envelope{}, err
	}
	overwrite := optBool(args, "overwrite", false)

	content, err := d.vc.GetNote(ctx, oldPath)
	if err != nil {
		return types.Envelope{}, err
	}

	if !overwrite {
		if _, err := d.vc.NoteStat(ctx, newPath); err == nil {
			return types.Envelope{}, errs.Conflict("destination already exists: " + newPath)
		} else if e, ok := errs.As(err); !ok || e.Kind != errs.KindNotFound {
			return types.Envelope{}, err
		}
	}

	if err := d.vc.PutNote(ctx, newPath, content, true); err != nil {
		d.c.Invalidate()
		return types.Envelope{}, err
	}
	if err := d.vc.DeleteNote(ctx, oldPath); err != nil {
		d.c.Invalidate()
		return types.Envelope{}, err
	}
	d.c.Invalidate()

	return types.JSON(map[string]any{"oldPath": oldPath, "newPath": newPath, "moved": true}), nil
}
