package watch

import (
	"reflect"
	"testing"
)

func TestPatternFilter(t *testing.T) {
	tests := []struct {
		name    string
		include []string
		exclude []string
		path    string
		match   bool
	}{
		{"no patterns", nil, nil, "/drop/anything.bin", true},
		{"document include", DocumentPatterns, nil, "/drop/security.pdf", true},
		{"case insensitive", DocumentPatterns, nil, "/drop/Policy.DOCX", true},
		{"not a document", DocumentPatterns, nil, "/drop/photo.png", false},
		{"exclude wins", DocumentPatterns, []string{"draft-*"}, "/drop/draft-soc2.pdf", false},
		{"exclude only", nil, []string{"*.log"}, "/drop/upload.log", false},
		{"full path pattern", []string{"/drop/*.txt"}, nil, "/drop/notes.txt", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewPatternFilter(tt.include, tt.exclude)
			if got := f.Matches(tt.path); got != tt.match {
				t.Errorf("Matches(%q) = %v, want %v", tt.path, got, tt.match)
			}
		})
	}
}

func TestParsePatterns(t *testing.T) {
	got := ParsePatterns(" *.pdf, ,*.docx ")
	want := []string{"*.pdf", "*.docx"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ParsePatterns = %v, want %v", got, want)
	}
	if ParsePatterns("") != nil {
		t.Error("expected nil for empty list")
	}
}
