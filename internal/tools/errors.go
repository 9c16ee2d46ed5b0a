package tools

import (
	"fmt"

	"github.com/taigrr/vault-gateway/internal/errs"
)

// invalidArgsFrom wraps a schema validation failure as the taxonomy's
// InvalidArgs kind so the protocol front-end maps it onto -32602
// regardless of which validator produced the underlying message.
func invalidArgsFrom(err error) error {
	return errs.New(errs.KindInvalidArgs, fmt.Sprintf("invalid arguments: %v", err))
}

// requireString pulls a required string argument out of args, or returns
// an InvalidArgs error naming the missing key.
func requireString(args map[string]any, key string) (string, error) {
	v, ok := args[key]
	if !ok {
		return "", errs.InvalidArgs("missing required argument", key)
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return "", errs.InvalidArgs("argument must be a non-empty string", key)
	}
	return s, nil
}

func optString(args map[string]any, key, def string) string {
	if v, ok := args[key].(string); ok {
		return v
	}
	return def
}

func optBool(args map[string]any, key string, def bool) bool {
	if v, ok := args[key].(bool); ok {
		return v
	}
	return def
}

func optInt(args map[string]any, key string, def int) int {
	switch v := args[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	default:
		return def
	}
}

func optMap(args map[string]any, key string) map[string]any {
	if v, ok := args[key].(map[string]any); ok {
		return v
	}
	return nil
}
