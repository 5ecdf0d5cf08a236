// Package patch parses unified-diff patch text into hunks and projects
// them onto side-by-side diff rows.
package patch

import (
	"strings"

	"github.com/huangsam/repolens/schema"
)

// Parse splits unified-diff text into hunks of classified lines.
//
// Every hunk starts with exactly one header line. A "---" or "+++" file header
// seen before the first "@@" marker is kept once as a header-only hunk. Any other
// line before the first marker is preamble and is dropped. Parse never fails:
// malformed text degrades to whatever hunks could be recognized.
func Parse(text string) []schema.Hunk {
	hunks := []schema.Hunk{}
	if text == "" {
		return hunks
	}

	var current []schema.Line
	inHunk := false
	for _, line := range splitLines(text) {
		switch {
		case strings.HasPrefix(line, "@@"):
			if len(current) > 0 {
				hunks = append(hunks, schema.Hunk{Lines: current})
			}
			current = []schema.Line{{Kind: schema.HeaderLine, Text: line}}
			inHunk = true
		case !inHunk:
			if isFileHeader(line) && len(current) == 0 {
				current = append(current, schema.Line{Kind: schema.HeaderLine, Text: line})
			}
		default:
			current = append(current, classify(line))
		}
	}
	if len(current) > 0 {
		hunks = append(hunks, schema.Hunk{Lines: current})
	}
	return hunks
}

// ParsePatch parses the patch of a commit file. Files without patch text
// (binary or oversized) yield no hunks.
func ParsePatch(p schema.Patch) []schema.Hunk {
	if !p.HasPatch() {
		return []schema.Hunk{}
	}
	return Parse(p.Text())
}

// splitLines splits on "\n", drops a trailing "\r" per line and ignores the
// empty remainder after a final newline.
func splitLines(text string) []string {
	lines := strings.Split(strings.TrimSuffix(text, "\n"), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}

func isFileHeader(line string) bool {
	return strings.HasPrefix(line, "---") || strings.HasPrefix(line, "+++")
}

// classify maps a hunk body line to its kind and strips the one-character prefix.
func classify(line string) schema.Line {
	switch {
	case strings.HasPrefix(line, "+"):
		return schema.Line{Kind: schema.AddLine, Text: line[1:]}
	case strings.HasPrefix(line, "-"):
		return schema.Line{Kind: schema.DeleteLine, Text: line[1:]}
	default:
		return schema.Line{Kind: schema.ContextLine, Text: strings.TrimPrefix(line, " ")}
	}
}
