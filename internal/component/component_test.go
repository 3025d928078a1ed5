package component

import "testing"

func TestNameValidation(t *testing.T) {
	cases := []struct {
		in    string
		valid bool
	}{
		{"g", true},
		{"my-source_1", true},
		{"", false},
		{"1abc", false},
		{"has space", false},
		{"a.b", false},
	}
	for _, c := range cases {
		_, err := ParseName(c.in)
		if (err == nil) != c.valid {
			t.Errorf("ParseName(%q): valid=%v, want %v (err=%v)", c.in, err == nil, c.valid, err)
		}
	}
}

func TestNamedOutputStringRoundTrip(t *testing.T) {
	def, err := ParseNamedOutput("default")
	if err != nil || !def.IsDefault() {
		t.Fatalf("ParseNamedOutput(default) = %v, %v", def, err)
	}
	if def.String() != "default" {
		t.Errorf("default.String() = %q, want default", def.String())
	}

	named, err := ParseNamedOutput("dropped")
	if err != nil {
		t.Fatalf("ParseNamedOutput(dropped): %v", err)
	}
	if named.String() != "dropped" {
		t.Errorf("named.String() = %q, want dropped", named.String())
	}
	name, ok := named.Name()
	if !ok || name != "dropped" {
		t.Errorf("named.Name() = %q, %v", name, ok)
	}
}

func TestOutputStringRoundTrip(t *testing.T) {
	cases := []string{"source", "transform#dropped", "sink#metrics"}
	for _, s := range cases {
		out, err := ParseOutput(s)
		if err != nil {
			t.Fatalf("ParseOutput(%q): %v", s, err)
		}
		if got := out.String(); got != s {
			t.Errorf("round trip %q -> %q, want %q", s, got, s)
		}
	}
}

func TestOutputUnmarshalTOMLStringForm(t *testing.T) {
	var out Output
	if err := out.UnmarshalTOML("router#metrics"); err != nil {
		t.Fatalf("UnmarshalTOML: %v", err)
	}
	if out.String() != "router#metrics" {
		t.Errorf("got %q, want router#metrics", out.String())
	}
}

func TestOutputUnmarshalTOMLTableForm(t *testing.T) {
	var out Output
	data := map[string]any{"component": "router", "output": "metrics"}
	if err := out.UnmarshalTOML(data); err != nil {
		t.Fatalf("UnmarshalTOML: %v", err)
	}
	if out.String() != "router#metrics" {
		t.Errorf("got %q, want router#metrics", out.String())
	}

	var outDefault Output
	data2 := map[string]any{"component": "router"}
	if err := outDefault.UnmarshalTOML(data2); err != nil {
		t.Fatalf("UnmarshalTOML: %v", err)
	}
	if outDefault.String() != "router" {
		t.Errorf("output defaults to default port: got %q, want router", outDefault.String())
	}
}
