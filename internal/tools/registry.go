// Package tools implements the tool registry and dispatcher (C5, spec.md
// §4.5): a frozen, prefix-routed catalogue of tools, each validated against
// a JSON Schema before its handler runs, each returning the gateway's
// uniform Envelope result.
package tools

import (
	"context"
	"sort"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/rs/zerolog"

	"github.com/taigrr/vault-gateway/internal/cache"
	"github.com/taigrr/vault-gateway/internal/discovery"
	"github.com/taigrr/vault-gateway/internal/errs"
	"github.com/taigrr/vault-gateway/internal/frontmatter"
	"github.com/taigrr/vault-gateway/internal/template"
	"github.com/taigrr/vault-gateway/internal/types"
	"github.com/taigrr/vault-gateway/internal/vaultclient"
)

// DefaultPrefix is prepended to every tool name but "ping" (spec.md §4.5).
const DefaultPrefix = "obs_"

// Handler is the uniform shape every tool implements.
type Handler func(ctx context.Context, args map[string]any) (types.Envelope, error)

// Tool is one catalogue entry.
type Tool struct {
	Name        string // fully-qualified, including prefix
	Description string
	Schema      *jsonschema.Schema
	Handler     Handler
}

// Registry is a frozen catalogue built once at startup. It never mutates
// after New returns, so Dispatch needs no locking.
type Registry struct {
	prefix string
	tools  map[string]Tool
	order  []string
	log    zerolog.Logger
}

// deps bundles the components every handler is built against.
type deps struct {
	vc   *vaultclient.Client
	c    *cache.Store
	disc *discovery.Service
	tmpl *template.Engine
	fm   *frontmatter.Handler
	log  zerolog.Logger
}

// New builds the frozen tool catalogue. prefix defaults to DefaultPrefix
// when empty; "ping" is never prefixed.
func New(prefix string, vc *vaultclient.Client, c *cache.Store, disc *discovery.Service, tmpl *template.Engine, fm *frontmatter.Handler, log zerolog.Logger) *Registry {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	componentLog := log.With().Str("component", "tools").Logger()
	d := deps{vc: vc, c: c, disc: disc, tmpl: tmpl, fm: fm, log: componentLog}

	r := &Registry{prefix: prefix, tools: make(map[string]Tool), log: componentLog}
	for _, def := range catalogue(d, prefix) {
		r.tools[def.Name] = def
		r.order = append(r.order, def.Name)
	}
	sort.Strings(r.order)
	return r
}

// List returns the catalogue in stable name order, for tools/list.
func (r *Registry) List() []Tool {
	out := make([]Tool, len(r.order))
	for i, name := range r.order {
		out[i] = r.tools[name]
	}
	return out
}

// Dispatch validates args against the named tool's schema and runs its
// handler. name must already include the registry's prefix (or be "ping").
func (r *Registry) Dispatch(ctx context.Context, name string, args map[string]any) (types.Envelope, error) {
	t, ok := r.tools[name]
	if !ok {
		r.log.Warn().Str("tool", name).Msg("dispatch requested for unknown tool")
		return types.Envelope{}, errs.UnknownTool(name)
	}
	if args == nil {
		args = map[string]any{}
	}
	if t.Schema != nil {
		if err := validateArgs(t.Schema, args); err != nil {
			r.log.Debug().Str("tool", name).Err(err).Msg("argument validation failed")
			return types.Envelope{}, err
		}
	}
	r.log.Info().Str("tool", name).Msg("dispatching tool call")
	env, err := t.Handler(ctx, args)
	if err != nil {
		r.log.Error().Str("tool", name).Err(err).Msg("tool handler returned an error")
	}
	return env, err
}
