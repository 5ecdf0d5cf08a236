// Package secret flags probable credential leaks in patch text.
//
// The scan is a triage aid: it reports candidates for a human to review and
// is never used to block anything.
package secret

import (
	"regexp"

	"github.com/huangsam/repolens/schema"
)

// pattern matches common credential indicators and provider token shapes.
var pattern = regexp.MustCompile(`(?i)(api_key|apikey|secret|password|passwd|token|ghp_[a-z0-9]+|github_pat_[a-z0-9_\-]+)`)

// Scan returns the first match in each file's patch text, in file order.
// Files without patch text are skipped.
func Scan(files []schema.Patch) []schema.SecretFinding {
	findings := []schema.SecretFinding{}
	for _, f := range files {
		if !f.HasPatch() {
			continue
		}
		if m := pattern.FindString(f.Text()); m != "" {
			findings = append(findings, schema.SecretFinding{Filename: f.Filename, Match: m})
		}
	}
	return findings
}

// ScanText returns the first match in text, or an empty string.
func ScanText(text string) string {
	return pattern.FindString(text)
}
