package services

import (
	"strings"

	"github.com/rpupo63/blog-backend/editor"
)

// WordsPerMinute is the reading speed used for article reading times
const WordsPerMinute = 200

// CalculateReadingTime estimates minutes to read HTML content: visible
// words divided by WordsPerMinute, rounded up. Non-empty content, images
// included, takes at least a minute; empty content takes zero.
func CalculateReadingTime(content string) int {
	doc := editor.Parse(content)
	if doc.IsEmpty() {
		return 0
	}
	if minutes := ReadingTimeForWords(len(strings.Fields(doc.PlainText()))); minutes > 0 {
		return minutes
	}
	return 1
}

// ReadingTimeForWords is CalculateReadingTime for an already counted text
func ReadingTimeForWords(words int) int {
	if words <= 0 {
		return 0
	}
	return (words + WordsPerMinute - 1) / WordsPerMinute
}
