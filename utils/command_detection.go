package utils

import (
	"strings"
)

// Words splits message text on runs of whitespace.
func Words(messageText string) []string {
	return strings.Fields(messageText)
}

// DetectKeywordCommand reports whether a mention is a bare two-word
// command, e.g. "<@U123> ping": exactly two words, one of them keyword.
func DetectKeywordCommand(messageText, keyword string) bool {
	words := Words(messageText)
	if len(words) != 2 {
		return false
	}

	for _, word := range words {
		if word == keyword {
			return true
		}
	}
	return false
}
