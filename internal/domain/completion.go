package domain

// CompletionOptions tune a single language-model completion call site.
type CompletionOptions struct {
	Model       string // overrides the provider default when non-empty
	System      string
	Temperature float32
	MaxTokens   int
	JSONMode    bool // ask the provider for a JSON object response
}
