package domain

// SourceKind reports how a remediation resource bundle was produced.
type SourceKind string

const (
	// SourceSearched means the bundle came from a live web search.
	SourceSearched SourceKind = "web_search"
	// SourceFallback means search was unavailable and generic search
	// suggestions were synthesized instead.
	SourceFallback SourceKind = "fallback"
	// SourceErrorFallback means the search failed mid-flight.
	SourceErrorFallback SourceKind = "error_fallback"
)

// RemediationResource is a per-topic bundle of study links rendered for
// a student after mistake analysis.
type RemediationResource struct {
	Topic      string     `json:"topic"`
	VideoLinks []string   `json:"youtubeUrls"`
	WebLinks   []string   `json:"webUrls"`
	Content    string     `json:"content"`
	Source     SourceKind `json:"type"`
}

// MistakeAnalysis is the full remediation response for a set of wrong answers.
type MistakeAnalysis struct {
	Analysis  string                `json:"analysis"`
	Resources []RemediationResource `json:"webResources"`
}
