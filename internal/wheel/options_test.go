package wheel

import (
	"testing"
	"unicode/utf8"
)

var testPlaceholder = [2]string{"Add", "Options"}

func TestParse_SplitsAndTrims(t *testing.T) {
	got := Parse("A\nB\nC\nD", testPlaceholder)
	want := Options{"A", "B", "C", "D"}
	if !got.Equal(want) {
		t.Errorf("Parse = %q, want %q", got, want)
	}

	got = Parse("  pizza \r\n\n\tsushi\n\n  ", testPlaceholder)
	want = Options{"pizza", "sushi"}
	if !got.Equal(want) {
		t.Errorf("Parse = %q, want %q", got, want)
	}
}

func TestParse_KeepsDuplicatesAndOrder(t *testing.T) {
	got := Parse("b\na\nb", testPlaceholder)
	want := Options{"b", "a", "b"}
	if !got.Equal(want) {
		t.Errorf("Parse = %q, want %q", got, want)
	}
}

func TestParse_EmptyYieldsPlaceholder(t *testing.T) {
	for _, raw := range []string{"", "  \n\n ", "\t", "\r\n\r\n"} {
		got := Parse(raw, testPlaceholder)
		if len(got) != 2 {
			t.Fatalf("Parse(%q) len %d, want 2", raw, len(got))
		}
		if got[0] != "Add" || got[1] != "Options" {
			t.Errorf("Parse(%q) = %q, want placeholder", raw, got)
		}
	}
}

func TestParse_Idempotent(t *testing.T) {
	raw := "汉堡\n火锅\n  烤肉\n\n轻食沙拉"
	first := Parse(raw, testPlaceholder)
	second := Parse(raw, testPlaceholder)
	if !first.Equal(second) {
		t.Errorf("Parse not idempotent: %q vs %q", first, second)
	}
	if again := Parse(first.Text(), testPlaceholder); !again.Equal(first) {
		t.Errorf("Parse(Text()) = %q, want %q", again, first)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"short", "short"},
		{"12345678", "12345678"},
		{"123456789", "1234567.."},
		{"a very long option label", "a very .."},
		{"轻食沙拉麻辣烫寿司火锅", "轻食沙拉麻辣烫.."},
		{"", ""},
	}
	for _, tt := range tests {
		got := Truncate(tt.in)
		if got != tt.want {
			t.Errorf("Truncate(%q) = %q, want %q", tt.in, got, tt.want)
		}
		if utf8.RuneCountInString(tt.in) > MaxLabelRunes && utf8.RuneCountInString(got) != 9 {
			t.Errorf("Truncate(%q) rendered %d runes, want 9", tt.in, utf8.RuneCountInString(got))
		}
	}
}
