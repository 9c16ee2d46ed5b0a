// Package localfs implements the discovery scan's on-disk fallback path
// (SPEC_FULL.md §4.3): when the upstream vault plugin's REST listing is
// unavailable but the gateway was started with --vault-root pointing at a
// mounted copy of the vault, discovery can still enumerate and read notes
// by walking the directory tree directly. Adapted from the teacher's
// filepath.Walk scan in handleRelated/handleTags (cmd/obsidian-mcp/handlers.go).
package localfs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/taigrr/vault-gateway/internal/pathfilter"
	"github.com/taigrr/vault-gateway/internal/vaultclient"
)

// Scanner walks a local directory in place of the upstream REST adapter. It
// satisfies discovery.Scanner and is read-only: all writes stay REST-only,
// routed through vaultclient.Client, since the fallback exists for scan
// availability, not as a second writer of vault state.
type Scanner struct {
	root string
	pf   *pathfilter.PathFilter
}

// New constructs a Scanner rooted at root. root is resolved to an absolute
// path once at construction time.
func New(root string) *Scanner {
	abs, err := filepath.Abs(root)
	if err != nil {
		abs = root
	}
	return &Scanner{root: abs, pf: pathfilter.New(nil)}
}

// ListFiles walks root (or root/folder) collecting .md paths relative to
// root that also pass pathfilter's default rules, skipping dot-directories
// (.obsidian, .git) the same way the teacher's handleRelated/handleTags
// walk does.
func (s *Scanner) ListFiles(ctx context.Context, folder string) ([]string, error) {
	start := s.root
	if folder != "" {
		start = filepath.Join(s.root, folder)
	}

	var paths []string
	err := filepath.Walk(start, func(fullPath string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // best-effort: skip unreadable entries rather than abort the whole walk
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if info.IsDir() {
			if strings.HasPrefix(info.Name(), ".") && fullPath != start {
				return filepath.SkipDir
			}
			return nil
		}
		relPath, relErr := filepath.Rel(s.root, fullPath)
		if relErr != nil {
			return nil
		}
		relPath = strings.ReplaceAll(relPath, "\\", "/")
		if !s.pf.IsAllowed(relPath) {
			return nil
		}
		if !strings.EqualFold(filepath.Ext(relPath), ".md") {
			return nil
		}
		paths = append(paths, relPath)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("localfs: walk %s: %w", start, err)
	}
	sort.Strings(paths)
	return paths, nil
}

// GetNote reads a note's full content from disk.
func (s *Scanner) GetNote(ctx context.Context, path string) (string, error) {
	fullPath, err := s.resolve(path)
	if err != nil {
		return "", err
	}
	content, err := os.ReadFile(fullPath)
	if err != nil {
		return "", fmt.Errorf("localfs: read %s: %w", path, err)
	}
	return string(content), nil
}

// NoteStat reports size and modification time from the local filesystem.
// Created is left nil: plain os.FileInfo carries no reliable creation time
// across platforms.
func (s *Scanner) NoteStat(ctx context.Context, path string) (vaultclient.NoteStat, error) {
	fullPath, err := s.resolve(path)
	if err != nil {
		return vaultclient.NoteStat{}, err
	}
	info, err := os.Stat(fullPath)
	if err != nil {
		return vaultclient.NoteStat{}, fmt.Errorf("localfs: stat %s: %w", path, err)
	}
	return vaultclient.NoteStat{Size: info.Size(), Modified: info.ModTime()}, nil
}

func (s *Scanner) resolve(relativePath string) (string, error) {
	relativePath = strings.TrimPrefix(strings.TrimSpace(relativePath), "/")
	full := filepath.Join(s.root, relativePath)
	absFull, err := filepath.Abs(full)
	if err != nil {
		return "", err
	}
	rel, err := filepath.Rel(s.root, absFull)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("localfs: path escapes vault root: %s", relativePath)
	}
	return absFull, nil
}
