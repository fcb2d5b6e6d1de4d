package node

import (
	"fmt"
	"strings"
)

// AttrKind is the attribute type discriminator.
type AttrKind uint8

const (
	AttrKey    AttrKind = iota // <input disabled>
	AttrValue                  // key="value"
	AttrExpr                   // key={expr}
	AttrSpread                 // {expr}
)

var attrKindNames = [...]string{
	AttrKey:    "Key",
	AttrValue:  "Value",
	AttrExpr:   "Expr",
	AttrSpread: "Spread",
}

// String returns the string representation of the AttrKind.
func (k AttrKind) String() string {
	if int(k) < len(attrKindNames) {
		return attrKindNames[k]
	}
	return "Unknown"
}

// MarshalText implements encoding.TextMarshaler.
func (k AttrKind) MarshalText() ([]byte, error) {
	if int(k) >= len(attrKindNames) {
		return nil, fmt.Errorf("node: unknown attribute kind %d", k)
	}
	return []byte(attrKindNames[k]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *AttrKind) UnmarshalText(text []byte) error {
	for i, name := range attrKindNames {
		if name == string(text) {
			*k = AttrKind(i)
			return nil
		}
	}
	return fmt.Errorf("node: unknown attribute kind %q", text)
}

// Attr is an element attribute or a component prop.
type Attr struct {
	Kind  AttrKind `json:"kind"`
	Key   string   `json:"key,omitempty"`
	Value string   `json:"value,omitempty"`

	// Expression attributes only.
	Source  string  `json:"source,omitempty"`
	Tracker Tracker `json:"tracker"`
	Idx     ExprIdx `json:"idx,omitempty"`
	Payload any     `json:"payload,omitempty"`
}

// IsDynamic reports whether the attribute holds an expression.
func (a Attr) IsDynamic() bool {
	return a.Kind == AttrExpr || a.Kind == AttrSpread
}

// String returns the attribute in template syntax.
func (a Attr) String() string {
	switch a.Kind {
	case AttrKey:
		return a.Key
	case AttrValue:
		return fmt.Sprintf("%s=%q", a.Key, a.Value)
	case AttrExpr:
		return a.Key + "={" + a.Source + "}"
	case AttrSpread:
		return "{" + a.Source + "}"
	default:
		return "?"
	}
}

// NewAttr creates a static key="value" attribute.
func NewAttr(key, value string) Attr {
	return Attr{Kind: AttrValue, Key: key, Value: value}
}

// Key creates a key-only attribute, ie <input disabled>.
func Key(key string) Attr {
	return Attr{Kind: AttrKey, Key: key}
}

// Expr creates an expression attribute key={source}. The payload is the
// live value and is empty on templates.
func Expr(key, source string, payload any) Attr {
	return Attr{Kind: AttrExpr, Key: key, Source: source, Payload: payload}
}

// Spread creates a spread attribute {source}.
func Spread(source string, payload any) Attr {
	return Attr{Kind: AttrSpread, Source: source, Payload: payload}
}

// ID sets the id attribute.
func ID(id string) Attr { return NewAttr("id", id) }

// Class sets the class attribute, joining multiple classes with spaces.
func Class(classes ...string) Attr { return NewAttr("class", strings.Join(classes, " ")) }

// Href sets the href attribute.
func Href(url string) Attr { return NewAttr("href", url) }

// Type sets the type attribute.
func Type(t string) Attr { return NewAttr("type", t) }

// SlotName sets the name of a <slot> placeholder.
func SlotName(name string) Attr { return NewAttr("name", name) }

// SlotAttr routes a slot child into the named bucket of its component.
func SlotAttr(name string) Attr { return NewAttr("slot", name) }
