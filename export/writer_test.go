package export_test

import (
	"testing"

	"github.com/xraph/restro/export"
)

func TestEscape(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"plain", "plain"},
		{"", ""},
		{"a,b", `"a,b"`},
		{`say "hi"`, `"say ""hi"""`},
		{`"`, `""""`},
		{"new\nline", "new\nline"},
		{"semi;colon", "semi;colon"},
		{"Frango, grelhado", `"Frango, grelhado"`},
	}

	for _, tt := range tests {
		if got := export.Escape(tt.in); got != tt.want {
			t.Errorf("Escape(%q): got %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestEncode(t *testing.T) {
	got := export.Encode(
		[]string{"Name", "Note"},
		[][]string{
			{"Pizza", "sem cebola"},
			{"Prego, no pão", `o "especial"`},
		},
	)
	want := "Name,Note\nPizza,sem cebola\n\"Prego, no pão\",\"o \"\"especial\"\"\""
	if got != want {
		t.Errorf("Encode:\ngot  %q\nwant %q", got, want)
	}

	if got := export.Encode([]string{"A"}, nil); got != "A" {
		t.Errorf("headers only: got %q", got)
	}
}
