package patch

import "github.com/huangsam/repolens/schema"

// Project flattens hunks into one row per line, preserving hunk order.
// Deleted text only fills the left column and added text only the right.
func Project(hunks []schema.Hunk) []schema.DiffRow {
	size := 0
	for _, h := range hunks {
		size += len(h.Lines)
	}
	rows := make([]schema.DiffRow, 0, size)
	for _, h := range hunks {
		for _, line := range h.Lines {
			rows = append(rows, toRow(line))
		}
	}
	return rows
}

func toRow(line schema.Line) schema.DiffRow {
	switch line.Kind {
	case schema.HeaderLine:
		return schema.DiffRow{Left: line.Text, Right: line.Text, Kind: schema.MetaRow}
	case schema.DeleteLine:
		return schema.DiffRow{Left: line.Text, Kind: schema.DeleteRow}
	case schema.AddLine:
		return schema.DiffRow{Right: line.Text, Kind: schema.AddRow}
	default:
		return schema.DiffRow{Left: line.Text, Right: line.Text, Kind: schema.ContextRow}
	}
}

// ProjectFile parses and projects a single commit file for rendering.
func ProjectFile(p schema.Patch) schema.FileDiff {
	hunks := ParsePatch(p)
	return schema.FileDiff{
		Filename:  p.Filename,
		Status:    p.Status,
		Additions: p.Additions,
		Deletions: p.Deletions,
		Hunks:     hunks,
		Rows:      Project(hunks),
		NoPatch:   !p.HasPatch(),
	}
}

// ProjectFiles applies ProjectFile to every file in order.
func ProjectFiles(files []schema.Patch) []schema.FileDiff {
	diffs := make([]schema.FileDiff, 0, len(files))
	for _, f := range files {
		diffs = append(diffs, ProjectFile(f))
	}
	return diffs
}
