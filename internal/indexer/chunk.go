package indexer

import "strings"

// DefaultChunkRunes is the target chunk size. Rule clauses are short; a
// chunk around this size holds a few related clauses without diluting the
// embedding.
const DefaultChunkRunes = 1000

// ChunkText splits text into chunks of at most maxRunes, preferring to break
// on paragraph boundaries and falling back to hard splits for oversized
// paragraphs. Whitespace-only input yields no chunks.
func ChunkText(text string, maxRunes int) []string {
	if maxRunes <= 0 {
		maxRunes = DefaultChunkRunes
	}

	var chunks []string
	var current strings.Builder
	currentRunes := 0

	flush := func() {
		if trimmed := strings.TrimSpace(current.String()); trimmed != "" {
			chunks = append(chunks, trimmed)
		}
		current.Reset()
		currentRunes = 0
	}

	for _, para := range strings.Split(text, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}

		paraRunes := len([]rune(para))
		if paraRunes > maxRunes {
			flush()
			chunks = append(chunks, hardSplit(para, maxRunes)...)
			continue
		}

		if currentRunes > 0 && currentRunes+paraRunes+2 > maxRunes {
			flush()
		}
		if currentRunes > 0 {
			current.WriteString("\n\n")
			currentRunes += 2
		}
		current.WriteString(para)
		currentRunes += paraRunes
	}
	flush()

	return chunks
}

// hardSplit cuts an oversized paragraph into maxRunes pieces, breaking at
// the last space before the limit when one exists.
func hardSplit(text string, maxRunes int) []string {
	var pieces []string
	runes := []rune(text)

	for len(runes) > 0 {
		if len(runes) <= maxRunes {
			pieces = append(pieces, strings.TrimSpace(string(runes)))
			break
		}

		cut := maxRunes
		for i := maxRunes - 1; i > maxRunes/2; i-- {
			if runes[i] == ' ' {
				cut = i
				break
			}
		}

		piece := strings.TrimSpace(string(runes[:cut]))
		if piece != "" {
			pieces = append(pieces, piece)
		}
		runes = runes[cut:]
		for len(runes) > 0 && runes[0] == ' ' {
			runes = runes[1:]
		}
	}

	return pieces
}
