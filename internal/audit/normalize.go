package audit

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Nagakninja/Compliance-Guardian/internal/schemas"
	"github.com/Nagakninja/Compliance-Guardian/internal/types"
)

// issueSchema is the contract every individual issue in the model's response
// must satisfy. Validation is per-issue so one malformed entry never discards
// the rest of the list.
const issueSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"required": ["category", "severity", "description"],
	"properties": {
		"category": {"type": "string", "minLength": 1},
		"severity": {"type": "string", "enum": ["CRITICAL", "WARNING"]},
		"description": {"type": "string", "minLength": 1},
		"timestamp": {"type": "string"}
	}
}`

// issuesEnvelope is the top-level shape of the model's structured response.
// Issues stay raw so each can be validated independently.
type issuesEnvelope struct {
	Issues []json.RawMessage `json:"issues"`
}

// parseIssues decodes the model's JSON payload into compliance issues.
//
// The envelope itself must parse; that failing is a ParseError and the
// caller's problem. Individual issues are handled leniently: entries that
// fail schema validation are dropped, and a data-quality note for each is
// returned alongside the survivors.
func parseIssues(payload string) ([]types.ComplianceIssue, []string, error) {
	var envelope issuesEnvelope
	if err := json.Unmarshal([]byte(payload), &envelope); err != nil {
		return nil, nil, &ParseError{Message: "response is not a valid issues object", Cause: err}
	}

	issues := make([]types.ComplianceIssue, 0, len(envelope.Issues))
	var dropped []string

	for i, raw := range envelope.Issues {
		if err := schemas.ValidateJSONString(issueSchema, string(raw)); err != nil {
			dropped = append(dropped, describeDrop(i, raw, err))
			continue
		}
		var issue types.ComplianceIssue
		if err := json.Unmarshal(raw, &issue); err != nil {
			dropped = append(dropped, describeDrop(i, raw, err))
			continue
		}
		issue.Category = strings.TrimSpace(issue.Category)
		issue.Description = strings.TrimSpace(issue.Description)
		issues = append(issues, issue)
	}

	return issues, dropped, nil
}

func describeDrop(index int, raw json.RawMessage, err error) string {
	snippet := string(raw)
	if len(snippet) > 120 {
		snippet = snippet[:120] + "..."
	}
	return fmt.Sprintf("dropped malformed issue %d (%s): %v", index, snippet, err)
}
