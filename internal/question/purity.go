package question

import (
	"regexp"
	"strings"
)

// The aptitude purity check is a token heuristic, not a classifier.
// It looks for programming-language artifacts that indicate a question
// leaked from the programming section. The token table is declarative
// so a better content classifier can replace it behind the same
// function.

// wordTokens match as whole words, case-insensitive.
var wordTokens = []string{
	"function",
	"printf",
	"println",
	"struct",
	"boolean",
	"recursion",
	"compiler",
	"syntax",
	"variable declaration",
	"stack trace",
	"null pointer",
}

// literalTokens match as raw substrings.
var literalTokens = []string{
	"console.log",
	"system.out",
	"#include",
	"public static void",
	"def ",
	"=>",
	"++",
	"();",
	"```",
}

var wordTokenRe = compileWordTokens()

func compileWordTokens() *regexp.Regexp {
	escaped := make([]string, len(wordTokens))
	for i, t := range wordTokens {
		escaped[i] = regexp.QuoteMeta(t)
	}
	return regexp.MustCompile(`(?i)\b(` + strings.Join(escaped, "|") + `)\b`)
}

// ContainsProgrammingContent reports whether the text carries
// programming-language artifacts.
func ContainsProgrammingContent(text string) bool {
	lower := strings.ToLower(text)
	for _, t := range literalTokens {
		if strings.Contains(lower, t) {
			return true
		}
	}
	return wordTokenRe.MatchString(text)
}
