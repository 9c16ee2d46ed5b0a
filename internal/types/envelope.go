package types

// ContentPart is one piece of a tool result. Exactly one of Text/Data is
// meaningful, selected by Type.
type ContentPart struct {
	Type string `json:"type"` // "text" or "json"
	Text string `json:"text,omitempty"`
	Data any    `json:"data,omitempty"`
}

// TextPart builds a text ContentPart.
func TextPart(text string) ContentPart {
	return ContentPart{Type: "text", Text: text}
}

// JSONPart builds a json ContentPart.
func JSONPart(data any) ContentPart {
	return ContentPart{Type: "json", Data: data}
}

// Envelope is the uniform shape every tool handler returns. It is
// constructed fresh per request and never retained.
type Envelope struct {
	Content  []ContentPart `json:"content"`
	Metadata any           `json:"metadata,omitempty"`
	Warnings []string      `json:"warnings,omitempty"`
}

// Text is a convenience constructor for a single-text-part envelope.
func Text(s string) Envelope {
	return Envelope{Content: []ContentPart{TextPart(s)}}
}

// JSON is a convenience constructor for a single-json-part envelope.
func JSON(data any) Envelope {
	return Envelope{Content: []ContentPart{JSONPart(data)}}
}

// WithMetadata attaches metadata and returns the envelope for chaining.
func (e Envelope) WithMetadata(md any) Envelope {
	e.Metadata = md
	return e
}

// WithWarning appends a warning and returns the envelope for chaining.
func (e Envelope) WithWarning(w string) Envelope {
	e.Warnings = append(e.Warnings, w)
	return e
}
