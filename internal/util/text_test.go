package util

import "testing"

func TestNormalizeField(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain", in: "A001", want: "A001"},
		{name: "surrounding spaces", in: "  Ada Obi \t", want: "Ada Obi"},
		{name: "byte order mark", in: "\ufeffname", want: "name"},
		{name: "whitespace only", in: "   ", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeField(tt.in); got != tt.want {
				t.Errorf("NormalizeField(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestIsBlank(t *testing.T) {
	if !IsBlank(" \n") {
		t.Errorf("IsBlank() should treat whitespace as blank")
	}
	if IsBlank("x") {
		t.Errorf("IsBlank() should not treat text as blank")
	}
}

func TestValidText(t *testing.T) {
	if !ValidText("Ada", "JSS1") {
		t.Errorf("ValidText() rejected valid UTF-8")
	}
	if ValidText("ok", string([]byte{0xff, 0xfe})) {
		t.Errorf("ValidText() accepted invalid UTF-8")
	}
}
