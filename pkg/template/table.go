package template

import (
	"fmt"

	"github.com/vango-dev/splice/internal/errors"
	"github.com/vango-dev/splice/pkg/node"
)

// TableVersion is the template table format written by this package.
const TableVersion = 1

// Table is the serialized form of a Registry: the artifact written by the
// scanner and loaded once at process start.
type Table struct {
	Version   int     `json:"version"`
	Root      string  `json:"root,omitempty"`
	Templates []Entry `json:"templates"`
}

// Entry is one invocation site and its template.
type Entry struct {
	Location node.Location `json:"location"`
	Template *node.Node    `json:"template"`
}

// Table returns the registry contents sorted by location.
// Templates are shared, not copied.
func (r *Registry) Table() *Table {
	keys := r.Keys()
	t := &Table{
		Version:   TableVersion,
		Root:      r.Root(),
		Templates: make([]Entry, 0, len(keys)),
	}
	for _, loc := range keys {
		tmpl, _ := r.Lookup(loc)
		t.Templates = append(t.Templates, Entry{Location: loc, Template: tmpl})
	}
	return t
}

// LoadTable registers every entry of t. Parent pointers, which are not
// serialized, are rebuilt. If the registry has no owned root, the table's
// root is adopted.
func (r *Registry) LoadTable(t *Table) error {
	if t == nil {
		return nil
	}
	if t.Version != TableVersion {
		return errors.New("E134").
			WithDetailf("table version %d, supported version %d", t.Version, TableVersion)
	}
	for i, e := range t.Templates {
		if e.Template == nil {
			return errors.New("E131").
				WithLocationString(e.Location.String()).
				WithDetailf("entry %d has no template", i)
		}
	}

	if r.Root() == "" && t.Root != "" {
		r.SetRoot(t.Root)
	}
	for _, e := range t.Templates {
		node.Relink(e.Template)
		r.Register(e.Location, e.Template)
	}
	return nil
}

// NewTable builds a table from entries.
func NewTable(root string, entries ...Entry) *Table {
	return &Table{Version: TableVersion, Root: root, Templates: entries}
}

// String returns a one-line summary of the table.
func (t *Table) String() string {
	return fmt.Sprintf("table v%d root=%q templates=%d", t.Version, t.Root, len(t.Templates))
}
