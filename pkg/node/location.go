package node

import (
	"fmt"
	"strconv"
	"strings"
)

// Location identifies one template invocation site.
// It is a comparable value and may be used as a map key.
type Location struct {
	File   string `json:"file"`
	Line   uint32 `json:"line"`
	Column uint32 `json:"column"`
}

// NewLocation returns the location for file:line:col.
func NewLocation(file string, line, col uint32) Location {
	return Location{File: file, Line: line, Column: col}
}

// String returns the location as "file:line:col".
func (l Location) String() string {
	return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
}

// IsZero reports whether l is the zero location.
func (l Location) IsZero() bool {
	return l == Location{}
}

// Less orders locations by file, line and column.
func (l Location) Less(o Location) bool {
	if l.File != o.File {
		return l.File < o.File
	}
	if l.Line != o.Line {
		return l.Line < o.Line
	}
	return l.Column < o.Column
}

// ParseLocation parses a "file:line:col" string. The file part may itself
// contain colons; line and column are taken from the right.
func ParseLocation(s string) (Location, error) {
	colIdx := strings.LastIndexByte(s, ':')
	if colIdx <= 0 {
		return Location{}, fmt.Errorf("node: invalid location %q", s)
	}
	lineIdx := strings.LastIndexByte(s[:colIdx], ':')
	if lineIdx <= 0 {
		return Location{}, fmt.Errorf("node: invalid location %q", s)
	}

	line, err := strconv.ParseUint(s[lineIdx+1:colIdx], 10, 32)
	if err != nil {
		return Location{}, fmt.Errorf("node: invalid line in %q: %w", s, err)
	}
	col, err := strconv.ParseUint(s[colIdx+1:], 10, 32)
	if err != nil {
		return Location{}, fmt.Errorf("node: invalid column in %q: %w", s, err)
	}

	return Location{File: s[:lineIdx], Line: uint32(line), Column: uint32(col)}, nil
}

// MarshalText implements encoding.TextMarshaler.
func (l Location) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *Location) UnmarshalText(text []byte) error {
	parsed, err := ParseLocation(string(text))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}
