// Package frontmatter parses and serializes the structured header block
// (spec.md §6): a YAML document delimited by "---" lines at the top of a
// note. It is the shared codec used by both discovery's header enrichment
// (C3) and the template engine's format-preserving merge (C4).
package frontmatter

import (
	"fmt"
	"maps"
	"reflect"
	"strings"

	"github.com/taigrr/vault-gateway/internal/types"
	"gopkg.in/yaml.v3"
)

// Handler parses and validates structured header blocks.
type Handler struct{}

// New creates a new Handler.
func New() *Handler {
	return &Handler{}
}

// Parse splits content into its structured header block (if any) and body.
// A note without a valid opening delimiter at byte 0 has no header block —
// the whole body is content, and Headers is an empty, non-nil map.
func (h *Handler) Parse(content string) types.ParsedNote {
	result := types.ParsedNote{
		Headers:         make(map[string]any),
		Content:         content,
		OriginalContent: content,
	}

	if !strings.HasPrefix(content, "---\n") {
		return result
	}

	endIndex := strings.Index(content[4:], "\n---\n")
	if endIndex == -1 {
		if len(content) >= 8 && strings.HasSuffix(content, "\n---") {
			endIndex = len(content) - 4 - 4
		} else {
			// No closing delimiter: treat as no header block.
			return result
		}
	}

	yamlContent := content[4 : endIndex+4]

	var headers map[string]any
	if err := yaml.Unmarshal([]byte(yamlContent), &headers); err != nil {
		return result
	}

	result.Headers = headers
	if headers == nil {
		result.Headers = make(map[string]any)
	}

	// +5 for "\n---\n"; a closing delimiter at end of note leaves an empty body.
	result.Content = content[min(endIndex+4+5, len(content)):]

	return result
}

// Stringify renders headers and content back into a single note string.
func (h *Handler) Stringify(headers map[string]any, content string) (string, error) {
	if len(headers) == 0 {
		return content, nil
	}

	yamlBytes, err := yaml.Marshal(headers)
	if err != nil {
		return "", fmt.Errorf("failed to stringify headers: %w", err)
	}

	return "---\n" + string(yamlBytes) + "---\n" + content, nil
}

// Validate checks that headers can round-trip through YAML and contains
// only string keys — the grammar structured header blocks are defined over
// (spec.md §6).
func (h *Handler) Validate(headers map[string]any) types.FrontmatterValidationResult {
	result := types.FrontmatterValidationResult{
		IsValid:  true,
		Errors:   []string{},
		Warnings: []string{},
	}

	h.checkForProblematicValues(headers, &result, "")

	if result.IsValid {
		if _, err := yaml.Marshal(headers); err != nil {
			result.IsValid = false
			result.Errors = append(result.Errors, fmt.Sprintf("invalid YAML structure: %v", err))
		}
	}

	return result
}

func (h *Handler) checkForProblematicValues(obj any, result *types.FrontmatterValidationResult, path string) {
	if obj == nil {
		return
	}

	v := reflect.ValueOf(obj)

	switch v.Kind() {
	case reflect.Func:
		result.Errors = append(result.Errors, fmt.Sprintf("functions are not allowed in headers at path: %s", path))
		result.IsValid = false
		return

	case reflect.Slice, reflect.Array:
		for i := 0; i < v.Len(); i++ {
			h.checkForProblematicValues(v.Index(i).Interface(), result, fmt.Sprintf("%s[%d]", path, i))
		}

	case reflect.Map:
		iter := v.MapRange()
		for iter.Next() {
			key := iter.Key()
			value := iter.Value()

			var currentPath string
			if path == "" {
				currentPath = fmt.Sprintf("%v", key.Interface())
			} else {
				currentPath = fmt.Sprintf("%s.%v", path, key.Interface())
			}

			if key.Kind() != reflect.String {
				result.Errors = append(result.Errors, fmt.Sprintf("non-string keys are not allowed: %v", key.Interface()))
				result.IsValid = false
			}

			h.checkForProblematicValues(value.Interface(), result, currentPath)
		}
	}
}

// ExtractHeaders extracts just the header map from content.
func (h *Handler) ExtractHeaders(content string) map[string]any {
	parsed := h.Parse(content)
	return parsed.Headers
}

// MergeHeaders merges updates into content's existing headers, caller
// values winning, and re-serializes: a shallow merge for any caller that
// wants one. No tool handler calls it; update_note's preserve_format path
// uses the template engine's PreserveFormatMerge instead.
func (h *Handler) MergeHeaders(content string, updates map[string]any) (string, error) {
	parsed := h.Parse(content)

	merged := make(map[string]any)
	maps.Copy(merged, parsed.Headers)
	maps.Copy(merged, updates)

	validation := h.Validate(merged)
	if !validation.IsValid {
		return "", fmt.Errorf("invalid headers: %s", strings.Join(validation.Errors, ", "))
	}

	return h.Stringify(merged, parsed.Content)
}
