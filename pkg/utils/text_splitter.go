package utils

// SplitText splits a long string into chunks of approximately 'chunkSize'
// runes, with 'overlap' runes repeated across boundaries to preserve context.
// Character-based on purpose: scraped pages are chunked before embedding and
// a tokenizer-aware splitter buys little at that stage.
func SplitText(text string, chunkSize int, overlap int) []string {
	runes := []rune(text)
	if chunkSize <= 0 || len(runes) <= chunkSize {
		return []string{text}
	}

	step := chunkSize - overlap
	if step <= 0 {
		step = chunkSize // fallback if overlap >= chunkSize
	}

	var chunks []string
	for i := 0; i < len(runes); i += step {
		end := i + chunkSize
		if end > len(runes) {
			end = len(runes)
		}

		chunks = append(chunks, string(runes[i:end]))

		if end == len(runes) {
			break
		}
	}

	return chunks
}
