package vaultclient

import (
	"fmt"
	"net/http"

	"github.com/taigrr/vault-gateway/internal/errs"
)

// mapStatus implements the C1 error-mapping table (spec.md §4.1):
// 401 -> AuthError, 404 -> NotFound, 409 -> Conflict, other 4xx ->
// InvalidArgs-shaped ClientError, 5xx -> UpstreamError.
func mapStatus(status int, body []byte) error {
	msg := fmt.Sprintf("upstream returned %d", status)
	if len(body) > 0 && len(body) < 2048 {
		msg = fmt.Sprintf("%s: %s", msg, string(body))
	}
	switch {
	case status == http.StatusUnauthorized:
		return errs.Auth(msg)
	case status == http.StatusNotFound:
		return errs.NotFound(msg)
	case status == http.StatusConflict:
		return errs.Conflict(msg)
	case status >= 400 && status < 500:
		return &errs.Error{Kind: errs.KindInvalidArgs, Message: msg, Data: map[string]any{"statusCode": status}}
	default:
		return &errs.Error{Kind: errs.KindUpstreamError, Message: msg, Data: map[string]any{"statusCode": status}}
	}
}
