// Package chunker splits subtitle text into line-aligned chunks bounded by an
// approximate token budget.
package chunker

import (
	"strings"
)

// DefaultMaxTokens is the budget used when a non-positive one is given.
const DefaultMaxTokens = 2000

// Chunk is a contiguous run of lines from the source text.
type Chunk struct {
	Index  int
	Lines  []string
	Tokens int
}

// Text joins the chunk's lines with newlines.
func (c Chunk) Text() string {
	return strings.Join(c.Lines, "\n")
}

// CountTokens approximates the token count of a line as the number of
// whitespace-delimited words.
func CountTokens(line string) int {
	return len(strings.Fields(line))
}

// Lines splits text on \n, \r\n and \r. A trailing line terminator does not
// produce an extra empty line.
func Lines(text string) []string {
	if text == "" {
		return nil
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = strings.TrimSuffix(text, "\n")
	return strings.Split(text, "\n")
}

// Split partitions text into chunks whose token count stays within
// maxTokens. Lines are never split, so a line that alone exceeds the budget
// becomes a chunk of its own.
func Split(text string, maxTokens int) []Chunk {
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}

	var chunks []Chunk
	var current []string
	currentTokens := 0

	for _, line := range Lines(text) {
		lineTokens := CountTokens(line)

		if currentTokens+lineTokens > maxTokens && len(current) > 0 {
			chunks = append(chunks, Chunk{
				Index:  len(chunks),
				Lines:  current,
				Tokens: currentTokens,
			})
			current = nil
			currentTokens = 0
		}

		current = append(current, line)
		currentTokens += lineTokens
	}

	if len(current) > 0 {
		chunks = append(chunks, Chunk{
			Index:  len(chunks),
			Lines:  current,
			Tokens: currentTokens,
		})
	}

	return chunks
}
