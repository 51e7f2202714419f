package utils

// CountTokens estimates the number of tokens in text at roughly four
// characters per token. Good enough for prompt size and cost previews.
func CountTokens(text string) int {
	if len(text) == 0 {
		return 0
	}
	tokens := len([]rune(text)) / 4
	if tokens == 0 {
		return 1
	}
	return tokens
}
