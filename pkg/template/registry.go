package template

import (
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/vango-dev/splice/pkg/node"
)

// Registry maps invocation sites to their extracted templates.
//
// Templates are read-only once registered. A Registry is safe for
// concurrent use; lookups take a read lock only.
type Registry struct {
	mu        sync.RWMutex
	root      string
	templates map[node.Location]*node.Node
}

// NewRegistry creates an empty registry owning every location under root.
// An empty root owns nothing, so every missing template passes through.
func NewRegistry(root string) *Registry {
	return &Registry{
		root:      cleanRoot(root),
		templates: make(map[node.Location]*node.Node),
	}
}

func cleanRoot(root string) string {
	if root == "" {
		return ""
	}
	return path.Clean(strings.ReplaceAll(root, "\\", "/"))
}

// Root returns the owned root path.
func (r *Registry) Root() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.root
}

// SetRoot replaces the owned root path.
func (r *Registry) SetRoot(root string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.root = cleanRoot(root)
}

// Register stores tmpl for loc. The last write for a location wins.
// The template is stamped with loc and marked as a snippet root.
func (r *Registry) Register(loc node.Location, tmpl *node.Node) {
	tmpl.Location = &loc
	tmpl.Mark(node.MarkerSnippetRoot)
	tmpl.Parent = nil

	r.mu.Lock()
	defer r.mu.Unlock()
	r.templates[loc] = tmpl
}

// Lookup returns the template registered for loc.
func (r *Registry) Lookup(loc node.Location) (*node.Node, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tmpl, ok := r.templates[loc]
	return tmpl, ok
}

// Owns reports whether loc lies inside the owned root. The match is made
// on whole path components: root "src" owns "src/page.go" but not
// "srcgen/page.go". Root "." owns every relative path that does not climb
// out of the working directory.
func (r *Registry) Owns(loc node.Location) bool {
	root := r.Root()
	if root == "" {
		return false
	}
	file := path.Clean(strings.ReplaceAll(loc.File, "\\", "/"))
	if root == "." {
		return !path.IsAbs(file) && file != ".." && !strings.HasPrefix(file, "../")
	}
	if root == "/" {
		return path.IsAbs(file)
	}
	return file == root || strings.HasPrefix(file, root+"/")
}

// Keys returns every registered location, sorted.
func (r *Registry) Keys() []node.Location {
	r.mu.RLock()
	keys := make([]node.Location, 0, len(r.templates))
	for loc := range r.templates {
		keys = append(keys, loc)
	}
	r.mu.RUnlock()

	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })
	return keys
}

// Len returns the number of registered templates.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.templates)
}
