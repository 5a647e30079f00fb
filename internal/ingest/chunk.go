package ingest

import "strings"

// defaultChunkWords is used when a caller passes a non-positive window.
const defaultChunkWords = 400

// ChunkWords splits text into non-overlapping windows of at most maxWords
// words. The last window may be shorter; joining the windows in order
// reconstructs the original word sequence. A non-positive maxWords falls
// back to defaultChunkWords.
func ChunkWords(text string, maxWords int) []string {
	if maxWords <= 0 {
		maxWords = defaultChunkWords
	}
	words := strings.Fields(text)
	var chunks []string
	for i := 0; i < len(words); i += maxWords {
		end := i + maxWords
		if end > len(words) {
			end = len(words)
		}
		chunks = append(chunks, strings.Join(words[i:end], " "))
	}
	return chunks
}
