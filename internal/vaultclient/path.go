package vaultclient

import (
	"net/url"
	"strings"

	"github.com/taigrr/vault-gateway/internal/errs"
)

// canonicalize collapses "//" and strips a leading "./" without resolving
// ".." — callers must reject ".." before this runs, not rely on it to be
// normalized away.
func canonicalize(p string) string {
	p = strings.TrimPrefix(p, "./")
	for strings.Contains(p, "//") {
		p = strings.ReplaceAll(p, "//", "/")
	}
	return p
}

// validatePath enforces the C1 path policy: non-empty, no ".." segments, no
// absolute paths, no NUL, no backslashes.
func validatePath(p string) (string, error) {
	if p == "" {
		return "", errs.New(errs.KindInvalidArgs, "path must not be empty")
	}
	if strings.ContainsRune(p, 0) {
		return "", errs.New(errs.KindInvalidArgs, "path must not contain NUL")
	}
	if strings.Contains(p, "\\") {
		return "", errs.New(errs.KindInvalidArgs, "path must not contain backslashes")
	}
	if strings.HasPrefix(p, "/") {
		return "", errs.New(errs.KindInvalidArgs, "path must not be absolute")
	}
	clean := canonicalize(p)
	for _, seg := range strings.Split(clean, "/") {
		if seg == ".." {
			return "", errs.New(errs.KindInvalidArgs, "path must not contain \"..\" segments")
		}
	}
	return clean, nil
}

// encodePath percent-encodes each path segment independently, leaving the
// "/" separators untouched.
func encodePath(p string) string {
	segs := strings.Split(p, "/")
	for i, s := range segs {
		segs[i] = url.PathEscape(s)
	}
	return strings.Join(segs, "/")
}
