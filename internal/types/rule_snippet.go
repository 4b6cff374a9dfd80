package types

// RuleSnippet is one retrieved fragment of the compliance rule knowledge
// base, ranked by relevance to the extracted video content.
type RuleSnippet struct {
	RuleID string  `json:"rule_id,omitempty"`
	Source string  `json:"source,omitempty"`
	Text   string  `json:"text"`
	Score  float64 `json:"score"`
}
