package ingest

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// minFlushTokens is the minimum accumulated size before a heading boundary
// or end of document produces a chunk. Fragments below this are merged into
// the following section or dropped at end of document.
const minFlushTokens = 50

var (
	paragraphSplitRe = regexp.MustCompile(`\n\n+`)
	headingRe        = regexp.MustCompile(`^#{1,6}\s+(.+)$`)
	anchorStripRe    = regexp.MustCompile(`[^\w\s-]`)
	anchorSpaceRe    = regexp.MustCompile(`\s+`)
)

// estimateTokens approximates the token count of a text as one quarter of
// its rune count. Rounds down, so any text shorter than four runes counts
// as zero tokens.
func estimateTokens(text string) int {
	return utf8.RuneCountInString(text) / 4
}

// createAnchor converts a heading into a URL fragment identifier:
// lowercased, punctuation stripped, whitespace runs collapsed to hyphens.
func createAnchor(heading string) string {
	anchor := strings.ToLower(heading)
	anchor = anchorStripRe.ReplaceAllString(anchor, "")
	anchor = anchorSpaceRe.ReplaceAllString(anchor, "-")
	return anchor
}

// chunkContent splits cleaned markdown into heading-aware chunks.
//
// Paragraphs accumulate until adding one would exceed chunkSize tokens; the
// accumulator then flushes and reseeds with trailing paragraphs totalling at
// most overlap tokens. A heading line flushes any accumulator above
// minFlushTokens, tagged with the heading the text was written under, reseeds
// the same overlap window, and then becomes the current heading. Heading
// lines themselves never appear in chunk content.
func chunkContent(content string, chunkSize, overlap int) []rawChunk {
	paragraphs := paragraphSplitRe.Split(content, -1)

	var chunks []rawChunk
	var current []string
	currentTokens := 0
	currentHeading := ""

	flush := func(heading string) {
		chunks = append(chunks, rawChunk{
			Text:    strings.Join(current, "\n\n"),
			Heading: heading,
		})
	}

	// reseed replaces the accumulator with its trailing paragraphs up to
	// the overlap budget, preserving their original order.
	reseed := func() {
		var overlapParas []string
		overlapTokens := 0
		for i := len(current) - 1; i >= 0; i-- {
			t := estimateTokens(current[i])
			if overlapTokens+t > overlap {
				break
			}
			overlapParas = append([]string{current[i]}, overlapParas...)
			overlapTokens += t
		}
		current = overlapParas
		currentTokens = overlapTokens
	}

	for _, para := range paragraphs {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}

		if match := headingRe.FindStringSubmatch(para); match != nil {
			// Text accumulated so far belongs to the section we are
			// leaving, so the flush carries the previous heading.
			if currentTokens > minFlushTokens {
				flush(currentHeading)
				reseed()
			}
			currentHeading = strings.TrimSpace(match[1])
			continue
		}

		paraTokens := estimateTokens(para)

		if currentTokens+paraTokens > chunkSize && len(current) > 0 {
			flush(currentHeading)
			reseed()
		}

		current = append(current, para)
		currentTokens += paraTokens
	}

	if currentTokens > minFlushTokens {
		flush(currentHeading)
	}

	return chunks
}
