package types

// PathFilterConfig configures which paths the path filter accepts when
// filtering scan results. Paths sent to the upstream vault plugin are
// checked by vaultclient's own path validation, not by this filter.
type PathFilterConfig struct {
	IgnoredPatterns   []string `json:"ignoredPatterns"`
	AllowedExtensions []string `json:"allowedExtensions"`
}
