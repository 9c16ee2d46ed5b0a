// Package resource implements the resource router (C6, spec.md §4.6):
// vault://notes/... URI parsing and generation, and routing a parsed URI to
// a folder or note response via the cache and discovery layers.
//
// Generalized from the teacher's internal/uri package, which only
// generated obsidian:// URIs for display; this package both parses and
// generates the gateway's own vault:// scheme.
package resource

import (
	"net/url"
	"strings"

	"github.com/taigrr/vault-gateway/internal/errs"
)

const scheme = "vault"

// Kind distinguishes what a vault:// URI addresses.
type Kind string

const (
	KindNote   Kind = "note"
	KindFolder Kind = "folder"
	KindRoot   Kind = "root"
)

// URI is a parsed vault:// resource identifier.
type URI struct {
	Kind Kind
	Path string // vault-relative path, empty for KindRoot
}

// ParseURI parses a vault://notes/<path> URI. The only recognized host
// segment is "notes"; a trailing slash (or no path at all) addresses a
// folder or the vault root, anything else addresses a note.
func ParseURI(raw string) (URI, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return URI{}, errs.BadURI("malformed URI: " + err.Error())
	}
	if u.Scheme != scheme {
		return URI{}, errs.BadURI("unsupported scheme: " + u.Scheme)
	}
	if u.Host != "notes" {
		return URI{}, errs.BadURI("unsupported resource root: " + u.Host)
	}

	path := strings.TrimPrefix(u.Path, "/")
	decoded, err := url.PathUnescape(path)
	if err != nil {
		return URI{}, errs.BadURI("malformed URI path: " + err.Error())
	}

	if decoded == "" {
		return URI{Kind: KindRoot}, nil
	}
	if strings.Contains(decoded, "..") {
		return URI{}, errs.BadURI("path traversal not allowed")
	}
	if strings.HasSuffix(u.Path, "/") {
		return URI{Kind: KindFolder, Path: strings.TrimSuffix(decoded, "/")}, nil
	}
	return URI{Kind: KindNote, Path: decoded}, nil
}

// GenerateURI builds a vault://notes/<path> URI for a note or folder path.
// isFolder controls whether the generated URI carries the folder-addressing
// trailing slash.
func GenerateURI(path string, isFolder bool) string {
	path = strings.TrimPrefix(path, "/")
	segments := strings.Split(path, "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	encoded := strings.Join(segments, "/")
	if isFolder && encoded != "" {
		encoded += "/"
	}
	return scheme + "://notes/" + encoded
}
