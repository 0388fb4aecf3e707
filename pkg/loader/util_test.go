package loader

import "testing"

func TestCleanText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "page markers removed",
			input:    "Page 1 of 10\nSpaceX builds reusable rockets.",
			expected: "SpaceX builds reusable rockets.",
		},
		{
			name:     "trailing line numbers removed",
			input:    "Elon Musk founded SpaceX. 42\nTesla makes electric cars.  7",
			expected: "Elon Musk founded SpaceX. \nTesla makes electric cars.",
		},
		{
			name:     "short lines dropped",
			input:    "Header\nok\n\nThe company is based in Texas.\n12345",
			expected: "Header\nThe company is based in Texas.",
		},
		{
			name:     "empty input",
			input:    "",
			expected: "",
		},
		{
			name:     "numbers inside a line survive",
			input:    "SpaceX was founded in 2002 by Elon Musk.",
			expected: "SpaceX was founded in 2002 by Elon Musk.",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got := CleanText(test.input)
			if got != test.expected {
				t.Fatalf("CleanText() got = %q, want %q", got, test.expected)
			}
		})
	}
}

func TestDetectFileType(t *testing.T) {
	tests := []struct {
		path string
		want GraphFileType
	}{
		{"https://example.com/article", GraphFileTypeWeb},
		{"HTTP://EXAMPLE.COM", GraphFileTypeWeb},
		{"docs/report.PDF", GraphFileTypePDF},
		{"notes.txt", GraphFileTypeDocument},
		{"README", GraphFileTypeDocument},
	}

	for _, test := range tests {
		if got := DetectFileType(test.path); got != test.want {
			t.Fatalf("DetectFileType(%q) got = %v, want %v", test.path, got, test.want)
		}
	}
}

func TestGraphFileName(t *testing.T) {
	tests := []struct {
		file GraphFile
		want string
	}{
		{GraphFile{ID: "a", FilePath: "/tmp/uploads/report.pdf"}, "report.pdf"},
		{GraphFile{ID: "b", FilePath: "https://example.com/wiki/SpaceX"}, "SpaceX"},
		{GraphFile{ID: "c", FilePath: ""}, "c"},
		{GraphFile{ID: "d", FilePath: "uploads/k1.pdf", Title: "spacex.pdf"}, "spacex.pdf"},
	}

	for _, test := range tests {
		if got := test.file.Name(); got != test.want {
			t.Fatalf("Name() got = %q, want %q", got, test.want)
		}
	}
}
