// Package summary renders end-of-run statistics as plain text, Markdown or TOON.
package summary

import (
	"fmt"
	"strings"

	toon "github.com/mateuszkardas/toon-go"
)

// Stat is one named counter or value.
type Stat struct {
	Name  string `json:"name"`
	Value any    `json:"value"`
}

// Section is a titled list of report lines, e.g. team conflicts.
type Section struct {
	Title string   `json:"title"`
	Lines []string `json:"lines"`
}

// Summary is the operator-facing outcome of one routine.
type Summary struct {
	Title    string    `json:"title"`
	Stats    []Stat    `json:"stats"`
	Sections []Section `json:"sections,omitempty"`
}

// New starts a summary with the given title.
func New(title string) *Summary {
	return &Summary{Title: title}
}

// Add appends a statistic and returns s for chaining.
func (s *Summary) Add(name string, value any) *Summary {
	s.Stats = append(s.Stats, Stat{Name: name, Value: value})
	return s
}

// AddSection appends a section when it has lines.
func (s *Summary) AddSection(title string, lines []string) *Summary {
	if len(lines) == 0 {
		return s
	}
	s.Sections = append(s.Sections, Section{Title: title, Lines: append([]string(nil), lines...)})
	return s
}

// Text renders the summary as indented plain text.
func (s *Summary) Text() string {
	var b strings.Builder
	b.WriteString(s.Title)
	b.WriteString(":\n")
	for _, st := range s.Stats {
		fmt.Fprintf(&b, "- %s: %v\n", st.Name, st.Value)
	}
	for _, sec := range s.Sections {
		fmt.Fprintf(&b, "%s:\n", sec.Title)
		for _, l := range sec.Lines {
			fmt.Fprintf(&b, "- %s\n", l)
		}
	}
	return b.String()
}

// Markdown renders the summary as a heading, a stats table and bullet lists.
func (s *Summary) Markdown() string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", EscapeMarkdownCell(s.Title))
	if len(s.Stats) > 0 {
		b.WriteString("| Stat | Value |\n")
		b.WriteString("| --- | ---: |\n")
		for _, st := range s.Stats {
			fmt.Fprintf(&b, "| %s | %s |\n", EscapeMarkdownCell(st.Name), EscapeMarkdownCell(fmt.Sprintf("%v", st.Value)))
		}
	}
	for _, sec := range s.Sections {
		fmt.Fprintf(&b, "\n## %s\n\n", EscapeMarkdownCell(sec.Title))
		for _, l := range sec.Lines {
			fmt.Fprintf(&b, "- %s\n", strings.ReplaceAll(l, "\n", " "))
		}
	}
	return b.String()
}

// TOON renders the summary in Token-Oriented Object Notation.
func (s *Summary) TOON() (string, error) {
	payload := map[string]interface{}{
		"title": s.Title,
	}
	stats := make([]map[string]interface{}, 0, len(s.Stats))
	for _, st := range s.Stats {
		stats = append(stats, map[string]interface{}{
			"name":  st.Name,
			"value": fmt.Sprintf("%v", st.Value),
		})
	}
	payload["stats"] = stats
	if len(s.Sections) > 0 {
		sections := make(map[string]interface{}, len(s.Sections))
		for _, sec := range s.Sections {
			sections[sec.Title] = sec.Lines
		}
		payload["sections"] = sections
	}
	return toon.Marshal(payload, nil)
}

// Render dispatches on format: "markdown", "toon" or anything else for text.
func (s *Summary) Render(format string) (string, error) {
	switch strings.ToLower(format) {
	case "markdown", "md":
		return s.Markdown(), nil
	case "toon":
		return s.TOON()
	default:
		return s.Text(), nil
	}
}

// EscapeMarkdownCell makes v safe inside a Markdown table cell.
func EscapeMarkdownCell(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return ""
	}
	v = strings.ReplaceAll(v, "\\", "\\\\")
	v = strings.ReplaceAll(v, "|", "\\|")
	v = strings.ReplaceAll(v, "\n", " ")
	return v
}
