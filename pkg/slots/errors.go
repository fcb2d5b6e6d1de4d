package slots

import (
	"fmt"
	"strings"

	"github.com/vango-dev/splice/internal/errors"
	"github.com/vango-dev/splice/pkg/node"
)

// Unconsumed is one bucket of slot content nobody declared a slot for.
type Unconsumed struct {
	// Component is the tag of the component the content was supplied to,
	// empty for content forwarded past the root.
	Component string
	// Location is the invocation site of the component's body, if known.
	Location *node.Location
	Name     string
	Kinds    []node.Kind
}

// String returns the bucket as "Component.name: [Kind Kind]".
func (u Unconsumed) String() string {
	kinds := make([]string, len(u.Kinds))
	for i, k := range u.Kinds {
		kinds[i] = k.String()
	}
	owner := u.Component
	if owner == "" {
		owner = "<root>"
	}
	return fmt.Sprintf("%s.%s: [%s]", owner, u.Name, strings.Join(kinds, " "))
}

// SlotsError reports slot content left over after projection, itemized by
// bucket name and the kinds of the leftover nodes.
type SlotsError struct {
	Unconsumed []Unconsumed
	err        *errors.Error
}

func newSlotsError(items []Unconsumed) *SlotsError {
	lines := make([]string, len(items))
	for i, u := range items {
		lines[i] = u.String()
	}
	ve := errors.New("E110").
		WithDetail("unconsumed: " + strings.Join(lines, ", ")).
		WithSuggestion(`Declare a matching <slot name="..."> in the component, or remove the slot attribute`)
	for _, u := range items {
		if u.Location != nil {
			ve.WithLocationString(u.Location.String())
			break
		}
	}
	return &SlotsError{Unconsumed: items, err: ve}
}

// Error implements the error interface.
func (e *SlotsError) Error() string {
	parts := make([]string, len(e.Unconsumed))
	for i, u := range e.Unconsumed {
		parts[i] = u.String()
	}
	return "some slots were not consumed: " + strings.Join(parts, ", ")
}

// Unwrap returns the E110 Error.
func (e *SlotsError) Unwrap() error {
	return e.err
}

// Names returns the name of every unconsumed bucket.
func (e *SlotsError) Names() []string {
	names := make([]string, len(e.Unconsumed))
	for i, u := range e.Unconsumed {
		names[i] = u.Name
	}
	return names
}

func kindsOf(nodes []*node.Node) []node.Kind {
	kinds := make([]node.Kind, len(nodes))
	for i, n := range nodes {
		kinds[i] = n.Kind
	}
	return kinds
}
