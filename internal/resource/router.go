package resource

import (
	"context"

	"github.com/taigrr/vault-gateway/internal/cache"
	"github.com/taigrr/vault-gateway/internal/discovery"
	"github.com/taigrr/vault-gateway/internal/errs"
	"github.com/taigrr/vault-gateway/internal/frontmatter"
	"github.com/taigrr/vault-gateway/internal/types"
	"github.com/taigrr/vault-gateway/internal/vaultclient"
)

// Descriptor is one entry of resources/list.
type Descriptor struct {
	URI         string `json:"uri"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	MimeType    string `json:"mimeType"`
}

// Router resolves vault:// URIs to tool-shaped results, backed by the same
// cache and discovery layers the tool catalogue uses.
type Router struct {
	vc   *vaultclient.Client
	disc *discovery.Service
	c    *cache.Store
	fm   *frontmatter.Handler
}

// New constructs a Router.
func New(vc *vaultclient.Client, disc *discovery.Service, c *cache.Store, fm *frontmatter.Handler) *Router {
	return &Router{vc: vc, disc: disc, c: c, fm: fm}
}

// List enumerates every note in the vault as a resources/list entry.
// Left unpaginated (spec.md §9, SPEC_FULL.md §9): personal vaults are the
// target scale, not enterprise-sized ones.
func (r *Router) List(ctx context.Context) ([]Descriptor, error) {
	notes, ok := r.c.GetNotes(false)
	if !ok {
		var err error
		notes, err = r.disc.ListNotes(ctx, "")
		if err != nil {
			return nil, err
		}
		r.c.PutNotes(notes, false)
	}

	out := make([]Descriptor, len(notes))
	for i, n := range notes {
		out[i] = Descriptor{
			URI:      GenerateURI(n.Path, false),
			Name:     n.Name,
			MimeType: "text/markdown",
		}
	}
	return out, nil
}

// Read resolves a vault:// URI into an Envelope: the full note body and
// headers for a note URI, the note listing for a folder URI, or the whole
// vault structure for the root URI.
func (r *Router) Read(ctx context.Context, rawURI string) (types.Envelope, error) {
	u, err := ParseURI(rawURI)
	if err != nil {
		return types.Envelope{}, err
	}

	switch u.Kind {
	case KindRoot:
		return r.readRoot(ctx)
	case KindFolder:
		return r.readFolder(ctx, u.Path)
	case KindNote:
		return r.readNote(ctx, u.Path)
	default:
		return types.Envelope{}, errs.BadURI("unrecognized resource kind")
	}
}

func (r *Router) readRoot(ctx context.Context) (types.Envelope, error) {
	if s, ok := r.c.GetStructure(); ok {
		return types.JSON(s), nil
	}
	notes, err := r.disc.ListNotes(ctx, "")
	if err != nil {
		return types.Envelope{}, err
	}
	notes = r.disc.Enrich(ctx, notes)
	structure := discovery.BuildStructure("", notes)
	r.c.PutStructure(structure)
	r.c.PutNotes(notes, true)
	return types.JSON(structure), nil
}

func (r *Router) readFolder(ctx context.Context, folder string) (types.Envelope, error) {
	notes, err := r.disc.ListNotes(ctx, folder)
	if err != nil {
		return types.Envelope{}, err
	}
	if len(notes) == 0 {
		return types.Envelope{}, errs.NotFound("no notes under folder: " + folder)
	}
	return types.JSON(notes), nil
}

func (r *Router) readNote(ctx context.Context, path string) (types.Envelope, error) {
	content, err := r.vc.GetNote(ctx, path)
	if err != nil {
		return types.Envelope{}, err
	}
	parsed := r.fm.Parse(content)
	return types.JSON(map[string]any{
		"path":    path,
		"content": parsed.Content,
		"headers": parsed.Headers,
	}), nil
}
