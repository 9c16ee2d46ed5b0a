package types

type (
	// SimpleSearchParams is the input to the upstream plugin's simple-query
	// search endpoint (C1 search_simple).
	SimpleSearchParams struct {
		Query  string `json:"query"`
		Folder string `json:"folder,omitempty"`
	}

	// KeywordSearchParams is the input to the keyword_search tool (C3/C5).
	KeywordSearchParams struct {
		Keyword       string `json:"keyword"`
		Folder        string `json:"folder,omitempty"`
		CaseSensitive bool   `json:"caseSensitive,omitempty"`
		Limit         int    `json:"limit,omitempty"`
	}

	// KeywordMatch is a single keyword hit with a ±N-character snippet.
	KeywordMatch struct {
		Path    string `json:"path"`
		Name    string `json:"name"`
		Snippet string `json:"snippet"`
	}
)
