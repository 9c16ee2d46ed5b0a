// Package vaultclient is the typed client over the upstream note-plugin's
// REST surface (C1, spec.md §4.1). It owns the HTTP connection pool and
// maps upstream status codes onto the gateway's error taxonomy; it never
// retains any vault state of its own — that belongs to the cache layer.
package vaultclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/taigrr/vault-gateway/internal/errs"
	"github.com/taigrr/vault-gateway/internal/types"
)

// callTimeout is the per-call budget the spec fixes at 30s (spec.md §4.1,
// §5). No automatic retry is attempted here — that is the caller's policy.
const callTimeout = 30 * time.Second

// maxPutBody is the 50 MiB body-size ceiling on put_note (spec.md §4.1).
const maxPutBody = 50 * 1024 * 1024

// Client wraps the upstream vault plugin's REST API with an opaque bearer
// credential. A single Client is shared process-wide; its *http.Client owns
// the connection pool.
type Client struct {
	baseURL string
	token   string
	hc      *http.Client
	log     zerolog.Logger
}

// New constructs a Client. hc may be nil, in which case a client tuned for
// a single upstream host is built.
func New(baseURL, token string, hc *http.Client, log zerolog.Logger) *Client {
	base := strings.TrimRight(baseURL, "/")
	if hc == nil {
		hc = &http.Client{
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 16,
			},
		}
	}
	return &Client{baseURL: base, token: token, hc: hc, log: log.With().Str("component", "vaultclient").Logger()}
}

type statEntry struct {
	Size     int64  `json:"size"`
	Modified int64  `json:"modified"` // unix millis
	Created  *int64 `json:"created,omitempty"`
}

// do issues an HTTP request against the upstream plugin and maps the
// response onto (body, error) using the C1 error table.
func (c *Client) do(ctx context.Context, method, path string, query string, body []byte) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	url := c.baseURL + path
	if query != "" {
		url += "?" + query
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, errs.Upstream("failed to build request", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		c.log.Error().Err(err).Str("method", method).Str("path", path).Msg("upstream transport error")
		return nil, errs.Upstream("upstream request failed", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errs.Upstream("failed to read upstream response", err)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return respBody, nil
	}
	return nil, mapStatus(resp.StatusCode, respBody)
}

// GetNote fetches a note's raw body.
func (c *Client) GetNote(ctx context.Context, path string) (string, error) {
	clean, err := validatePath(path)
	if err != nil {
		return "", err
	}
	body, err := c.do(ctx, http.MethodGet, "/vault/"+encodePath(clean), "", nil)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// PutNote creates or overwrites a note. createFolders signals the upstream
// plugin to materialize intermediate folders.
func (c *Client) PutNote(ctx context.Context, path, content string, createFolders bool) error {
	clean, err := validatePath(path)
	if err != nil {
		return err
	}
	if len(content) > maxPutBody {
		return errs.New(errs.KindInvalidArgs, fmt.Sprintf("note body exceeds %d bytes", maxPutBody))
	}
	payload, err := json.Marshal(map[string]any{
		"content":       content,
		"createFolders": createFolders,
	})
	if err != nil {
		return errs.Upstream("failed to encode request", err)
	}
	_, err = c.do(ctx, http.MethodPut, "/vault/"+encodePath(clean), "", payload)
	return err
}

// DeleteNote deletes a note. A missing note is reported as NotFound so
// callers can distinguish it; the delete_note tool treats that as success.
func (c *Client) DeleteNote(ctx context.Context, path string) error {
	clean, err := validatePath(path)
	if err != nil {
		return err
	}
	_, err = c.do(ctx, http.MethodDelete, "/vault/"+encodePath(clean), "", nil)
	return err
}

// ListFiles returns the ordered sequence of vault-relative note paths under
// folder (or the whole vault if folder is empty).
func (c *Client) ListFiles(ctx context.Context, folder string) ([]string, error) {
	p := "/vault/"
	if folder != "" {
		clean, err := validatePath(folder)
		if err != nil {
			return nil, err
		}
		p = "/vault/" + encodePath(clean) + "/"
	}
	body, err := c.do(ctx, http.MethodGet, p, "", nil)
	if err != nil {
		return nil, err
	}
	var listing struct {
		Files []string `json:"files"`
	}
	if err := json.Unmarshal(body, &listing); err != nil {
		return nil, errs.Upstream("malformed listing response", err)
	}
	return listing.Files, nil
}

// SearchSimple runs the upstream plugin's simple-query search.
func (c *Client) SearchSimple(ctx context.Context, params types.SimpleSearchParams) ([]types.SearchHit, error) {
	if strings.TrimSpace(params.Query) == "" {
		return nil, errs.InvalidArgs("query must not be empty", "query")
	}
	payload, err := json.Marshal(params)
	if err != nil {
		return nil, errs.Upstream("failed to encode request", err)
	}
	body, err := c.do(ctx, http.MethodPost, "/search/simple/", "", payload)
	if err != nil {
		return nil, err
	}
	var hits []struct {
		Path    string `json:"path"`
		Snippet string `json:"snippet,omitempty"`
	}
	if err := json.Unmarshal(body, &hits); err != nil {
		return nil, errs.Upstream("malformed search response", err)
	}
	out := make([]types.SearchHit, len(hits))
	for i, h := range hits {
		out[i] = types.SearchHit{Path: h.Path, Name: baseName(h.Path), Snippet: h.Snippet}
	}
	return out, nil
}

// NoteStat is C1's note_stat operation.
type NoteStat struct {
	Size     int64
	Modified time.Time
	Created  *time.Time
}

// NoteStat fetches size/mtime/ctime for one note.
func (c *Client) NoteStat(ctx context.Context, path string) (NoteStat, error) {
	clean, err := validatePath(path)
	if err != nil {
		return NoteStat{}, err
	}
	body, err := c.do(ctx, http.MethodGet, "/vault/"+encodePath(clean), "stat=1", nil)
	if err != nil {
		return NoteStat{}, err
	}
	var e statEntry
	if err := json.Unmarshal(body, &e); err != nil {
		return NoteStat{}, errs.Upstream("malformed stat response", err)
	}
	st := NoteStat{
		Size:     e.Size,
		Modified: time.UnixMilli(e.Modified),
	}
	if e.Created != nil {
		t := time.UnixMilli(*e.Created)
		st.Created = &t
	}
	return st, nil
}

// ExecuteCommand dispatches an opaque named command to the upstream plugin.
func (c *Client) ExecuteCommand(ctx context.Context, name string, params map[string]any) (any, error) {
	if strings.TrimSpace(name) == "" {
		return nil, errs.InvalidArgs("command name must not be empty", "command")
	}
	payload, err := json.Marshal(map[string]any{"name": name, "params": params})
	if err != nil {
		return nil, errs.Upstream("failed to encode request", err)
	}
	body, err := c.do(ctx, http.MethodPost, "/command/", "", payload)
	if err != nil {
		return nil, err
	}
	var result any
	if len(body) > 0 {
		if err := json.Unmarshal(body, &result); err != nil {
			return nil, errs.Upstream("malformed command response", err)
		}
	}
	return result, nil
}

// Ping checks upstream reachability; the ping tool is its only caller
// (server startup does not call it). Not part of spec.md's C1 table;
// supplements it the way SPEC_FULL.md §4.1 describes.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodGet, "/", "", nil)
	return err
}

func baseName(path string) string {
	if i := strings.LastIndexByte(path, '/'); i >= 0 {
		return path[i+1:]
	}
	return path
}
