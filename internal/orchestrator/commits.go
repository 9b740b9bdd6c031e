package orchestrator

import (
	"encoding/json"
	"fmt"
	"io"
)

// Entry is one component and the commit it was built from
type Entry struct {
	Component string `json:"component" yaml:"component"`
	Commit    string `json:"commit" yaml:"commit"`
}

// CommitMap maps component names to commits in the order the bundle listed them
type CommitMap struct {
	entries []Entry
	index   map[string]int
}

// NewCommitMap creates an empty CommitMap
func NewCommitMap() *CommitMap {
	return &CommitMap{index: make(map[string]int)}
}

// Add records commit for component. A repeated component keeps its position.
func (c *CommitMap) Add(component, commit string) {
	if i, ok := c.index[component]; ok {
		c.entries[i].Commit = commit
		return
	}
	c.index[component] = len(c.entries)
	c.entries = append(c.entries, Entry{Component: component, Commit: commit})
}

// Get returns the commit recorded for component
func (c *CommitMap) Get(component string) (string, bool) {
	if c == nil {
		return "", false
	}
	i, ok := c.index[component]
	if !ok {
		return "", false
	}
	return c.entries[i].Commit, true
}

// Entries returns a copy of the entries in order
func (c *CommitMap) Entries() []Entry {
	if c == nil {
		return []Entry{}
	}
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Len returns the number of components
func (c *CommitMap) Len() int {
	if c == nil {
		return 0
	}
	return len(c.entries)
}

// Render writes the report: two blank lines, a "Commits" header, then one
// "name: commit" line per component.
func Render(w io.Writer, commits *CommitMap) error {
	if _, err := fmt.Fprint(w, "\n\nCommits\n"); err != nil {
		return err
	}
	for _, e := range commits.Entries() {
		if _, err := fmt.Fprintf(w, "%s: %s\n", e.Component, e.Commit); err != nil {
			return err
		}
	}
	return nil
}

// RenderText implements the text output format
func (c *CommitMap) RenderText(w io.Writer) error {
	return Render(w, c)
}

// Header implements the table output format
func (c *CommitMap) Header() []string {
	return []string{"Component", "Commit"}
}

// Rows implements the table output format
func (c *CommitMap) Rows() [][]string {
	rows := make([][]string, 0, c.Len())
	for _, e := range c.Entries() {
		rows = append(rows, []string{e.Component, e.Commit})
	}
	return rows
}

// MarshalJSON encodes the map as an ordered list of entries
func (c *CommitMap) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Entries())
}

// MarshalYAML encodes the map as an ordered list of entries
func (c *CommitMap) MarshalYAML() (interface{}, error) {
	return c.Entries(), nil
}
