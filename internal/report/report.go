// Package report renders an aggregated release-notes report as markdown.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/dolthub/release-notes-generator/internal/notes"
)

// Write serializes the report as markdown. Item order within each repo
// section is preserved exactly as fetched.
func Write(w io.Writer, r *notes.Report) error {
	if _, err := fmt.Fprintln(w, "# Merged PRs"); err != nil {
		return err
	}
	for _, section := range r.PullRequests {
		if err := writePullRequests(w, section); err != nil {
			return err
		}
	}

	if _, err := fmt.Fprintln(w, "\n# Closed Issues"); err != nil {
		return err
	}
	for _, section := range r.Issues {
		if err := writeIssues(w, section); err != nil {
			return err
		}
	}

	return nil
}

func writePullRequests(w io.Writer, section notes.RepoPullRequests) error {
	if _, err := fmt.Fprintf(w, "\n## %s\n", section.Repo); err != nil {
		return err
	}
	for _, pr := range section.Items {
		if err := writeItem(w, pr.HTMLURL, pr.Number, pr.Title, pr.Body); err != nil {
			return err
		}
	}
	return nil
}

func writeIssues(w io.Writer, section notes.RepoIssues) error {
	if _, err := fmt.Fprintf(w, "\n## %s\n", section.Repo); err != nil {
		return err
	}
	for _, issue := range section.Items {
		if err := writeItem(w, issue.HTMLURL, issue.Number, issue.Title, issue.Body); err != nil {
			return err
		}
	}
	return nil
}

func writeItem(w io.Writer, url string, number int, title, body string) error {
	line := fmt.Sprintf("* [%d](%s): %s", number, url, title)
	if summary := firstLine(body); summary != "" {
		line += " - " + summary
	}
	_, err := fmt.Fprintln(w, line)
	return err
}

// firstLine extracts the first non-empty line of an item body for use as a
// one-line summary.
func firstLine(body string) string {
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			return line
		}
	}
	return ""
}
