package convert

import "testing"

func TestNormalizeLanguage(t *testing.T) {
	tests := []struct {
		name string
		tag  string
		want string
	}{
		{"abbreviation js", "js", "javascript"},
		{"abbreviation py", "py", "python"},
		{"abbreviation ts", "ts", "typescript"},
		{"abbreviation cs", "cs", "c#"},
		{"abbreviation sh", "sh", "shell"},
		{"abbreviation rb", "rb", "ruby"},
		{"abbreviation yml", "yml", "yaml"},
		{"empty tag", "", "plain text"},
		{"already canonical", "go", "go"},
		{"canonical with punctuation", "c++", "c++"},
		{"unknown falls back", "foobar", "plain text"},
		{"case sensitive", "Python", "plain text"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeLanguage(tt.tag); got != tt.want {
				t.Errorf("NormalizeLanguage(%q) = %q, want %q", tt.tag, got, tt.want)
			}
		})
	}
}
