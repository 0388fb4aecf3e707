package loader

import (
	"errors"
	"regexp"
	"strings"
	"unicode/utf8"
)

var ErrNoLoader = errors.New("graph file has no loader")

// minLineRunes drops lines this short or shorter during cleanup; they are
// almost always headers, footers or stray page numbers.
const minLineRunes = 5

var (
	pageOfPattern       = regexp.MustCompile(`Page \d+ of \d+`)
	trailingNumberRegex = regexp.MustCompile(`(?m)\d+[ \t]*$`)
)

// CacheKey generates a unique cache key for a GraphFile based on its ID and path.
func CacheKey(file GraphFile) string {
	return file.ID + ":" + file.FilePath
}

// CleanText removes page furniture from extracted document text: "Page N of
// M" markers, numbers at the end of a line and lines of at most five runes.
//
// Example:
//
//	CleanText("Page 1 of 3\nSpaceX builds rockets. 12\n7") // "SpaceX builds rockets."
func CleanText(text string) string {
	text = pageOfPattern.ReplaceAllString(text, "")
	text = trailingNumberRegex.ReplaceAllString(text, "")

	lines := strings.Split(text, "\n")
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		if utf8.RuneCountInString(strings.TrimSpace(line)) > minLineRunes {
			kept = append(kept, line)
		}
	}
	return strings.TrimSpace(strings.Join(kept, "\n"))
}
