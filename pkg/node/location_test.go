package node

import "testing"

func TestParseLocation(t *testing.T) {
	tests := []struct {
		in      string
		want    Location
		wantErr bool
	}{
		{in: "src/page.go:10:4", want: Location{File: "src/page.go", Line: 10, Column: 4}},
		{in: "C:/work/page.go:1:1", want: Location{File: "C:/work/page.go", Line: 1, Column: 1}},
		{in: "page.go:1", wantErr: true},
		{in: "page.go:x:1", wantErr: true},
		{in: ":1:1", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLocation(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLocation(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseLocation(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestLocationString(t *testing.T) {
	loc := NewLocation("a/b.go", 12, 3)
	if got := loc.String(); got != "a/b.go:12:3" {
		t.Errorf("String() = %q", got)
	}

	text, err := loc.MarshalText()
	if err != nil {
		t.Fatal(err)
	}
	var back Location
	if err := back.UnmarshalText(text); err != nil {
		t.Fatal(err)
	}
	if back != loc {
		t.Errorf("round trip = %v, want %v", back, loc)
	}
}

func TestLocationLess(t *testing.T) {
	a := NewLocation("a.go", 1, 5)
	b := NewLocation("a.go", 2, 1)
	c := NewLocation("b.go", 1, 1)

	if !a.Less(b) || !b.Less(c) || !a.Less(c) {
		t.Error("expected a < b < c")
	}
	if c.Less(a) || a.Less(a) {
		t.Error("unexpected ordering")
	}
	if !(Location{}).IsZero() || a.IsZero() {
		t.Error("IsZero mismatch")
	}
}

func TestLocationAsMapKey(t *testing.T) {
	m := map[Location]int{}
	m[NewLocation("a.go", 1, 1)] = 1
	m[NewLocation("a.go", 1, 1)] = 2
	if len(m) != 1 || m[NewLocation("a.go", 1, 1)] != 2 {
		t.Errorf("map = %v", m)
	}
}
