package patch

import (
	"strings"

	"github.com/huangsam/repolens/schema"
)

// Combined joins the patches of a commit into one unified diff text with
// "--- a/<file>" and "+++ b/<file>" headers. Files without patch text
// contribute their headers only.
func Combined(files []schema.Patch) string {
	var b strings.Builder
	for _, f := range files {
		b.WriteString("--- a/")
		b.WriteString(f.Filename)
		b.WriteString("\n+++ b/")
		b.WriteString(f.Filename)
		b.WriteString("\n")
		if text := f.Text(); text != "" {
			b.WriteString(text)
			if !strings.HasSuffix(text, "\n") {
				b.WriteString("\n")
			}
		}
	}
	return b.String()
}
