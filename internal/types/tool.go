package types

// ToolInvocation is a validated, dispatch-ready tool call: the name has
// already resolved to a registry entry and Arguments has already passed
// schema validation by the time a handler sees it.
type ToolInvocation struct {
	ToolName  string
	Arguments map[string]any
}
