package rag

import (
	"sort"
	"strings"
)

const (
	// rerankBoostPerToken is the score boost for each query token shared
	// with the selected text.
	rerankBoostPerToken = 0.02
	// rerankMaxBoost caps the total lexical boost.
	rerankMaxBoost = 0.2
)

// tokenSet splits text into a set of lowercase whitespace-delimited tokens.
func tokenSet(text string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, token := range strings.Fields(strings.ToLower(text)) {
		set[token] = struct{}{}
	}
	return set
}

// rerankBySelection boosts chunks that share vocabulary with the user's
// selected text. Each overlapping token adds a small fixed boost, capped,
// and the final score never exceeds 1.0. Ties keep their vector-score
// order.
func rerankBySelection(chunks []retrievedChunk, selectedText string) []retrievedChunk {
	if selectedText == "" || len(chunks) == 0 {
		return chunks
	}

	selectionTokens := tokenSet(selectedText)

	reranked := make([]retrievedChunk, len(chunks))
	copy(reranked, chunks)

	for i := range reranked {
		overlap := 0
		for token := range tokenSet(reranked[i].Content) {
			if _, ok := selectionTokens[token]; ok {
				overlap++
			}
		}

		boost := float64(overlap) * rerankBoostPerToken
		if boost > rerankMaxBoost {
			boost = rerankMaxBoost
		}

		score := reranked[i].Score + boost
		if score > 1.0 {
			score = 1.0
		}
		reranked[i].Score = score
	}

	sort.SliceStable(reranked, func(i, j int) bool {
		return reranked[i].Score > reranked[j].Score
	})

	return reranked
}
