package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/huangsam/repolens/internal/contract"
	"github.com/huangsam/repolens/schema"
)

// WriteRepos prints a repository listing.
func WriteRepos(repos []schema.Repository, cfg *contract.Config) error {
	return render(cfg, renderer{
		name:      "repositories",
		json:      repos,
		csvHeader: []string{"name", "full_name", "language", "stars", "private", "default_branch", "updated_at", "description"},
		csvRows: func(w *csv.Writer) error {
			for _, r := range repos {
				if err := w.Write([]string{
					r.Name,
					r.FullName,
					r.Language,
					strconv.Itoa(r.Stars),
					strconv.FormatBool(r.Private),
					r.DefaultBranch,
					r.UpdatedAt.Format(contract.DateTimeFormat),
					r.Description,
				}); err != nil {
					return err
				}
			}
			return nil
		},
		text: func(w io.Writer) error {
			return writeRepoTable(w, repos, cfg)
		},
	})
}

func writeRepoTable(w io.Writer, repos []schema.Repository, cfg *contract.Config) error {
	table := newTable(w, "Name", "Language", "Stars", "Branch", "Updated", "Description")
	descWidth := getMaxTablePathWidth(cfg, 75)
	var data [][]string
	for _, r := range repos {
		name := r.Name
		if r.Private {
			name += " 🔒"
		}
		data = append(data, []string{
			name,
			r.Language,
			strconv.Itoa(r.Stars),
			r.DefaultBranch,
			r.UpdatedAt.Format("2006-01-02"),
			clip(r.Description, descWidth),
		})
	}
	if err := renderTable(table, data); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "%d repositories\n", len(repos))
	return err
}

// WriteFileContent prints a file from the repository. Text output is the raw
// content so it can be redirected to a file.
func WriteFileContent(content schema.FileContent, cfg *contract.Config) error {
	return render(cfg, renderer{
		name:      "file",
		json:      content,
		csvHeader: []string{"path", "sha", "size"},
		csvRows: func(w *csv.Writer) error {
			return w.Write([]string{content.Path, content.SHA, strconv.Itoa(content.Size)})
		},
		text: func(w io.Writer) error {
			_, err := io.WriteString(w, content.Content)
			return err
		},
	})
}

// WriteFileCommit prints the outcome of saving a file.
func WriteFileCommit(commit schema.FileCommit, cfg *contract.Config) error {
	return render(cfg, renderer{
		name:      "commit",
		json:      commit,
		csvHeader: []string{"path", "content_sha", "commit_sha", "message"},
		csvRows: func(w *csv.Writer) error {
			return w.Write([]string{commit.Path, commit.ContentSHA, commit.CommitSHA, commit.Message})
		},
		text: func(w io.Writer) error {
			_, err := fmt.Fprintf(w, "Committed %s as %s: %s\n", commit.Path, shortSHA(commit.CommitSHA), firstLine(commit.Message))
			return err
		},
	})
}

// WriteSummary prints a model generated commit summary.
func WriteSummary(summary schema.Summary, cfg *contract.Config) error {
	return render(cfg, renderer{
		name:      "summary",
		json:      summary,
		csvHeader: []string{"repo", "ref", "model", "summary", "warning"},
		csvRows: func(w *csv.Writer) error {
			return w.Write([]string{summary.Repo, summary.Ref, summary.Model, summary.Summary, summary.Warning})
		},
		text: func(w io.Writer) error {
			if _, err := fmt.Fprintf(w, "%s @ %s (%s)\n\n%s\n", summary.Repo, shortSHA(summary.Ref), summary.Model, summary.Summary); err != nil {
				return err
			}
			if summary.Warning == "" {
				return nil
			}
			_, err := fmt.Fprintf(w, "\nWarning: %s\n", summary.Warning)
			return err
		},
	})
}
