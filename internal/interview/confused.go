package interview

import (
	"regexp"
	"strings"
)

// hardConfusion are substrings that always count as a confused answer.
var hardConfusion = []string{
	"idk",
	"i dont know",
	"dont know",
	"not sure",
	"confused",
	"can you repeat",
	"repeat that",
	"what do you mean",
	"wdym",
	"wym",
	"huh",
	"skip",
	"prefer not to say",
	"n a",
	"na",
}

var (
	questionMarksRe = regexp.MustCompile(`^\?+$`)
	shortValidRe    = regexp.MustCompile(`^(?:[a-ey]|n|[1-9]|10)$`)
)

// LooksConfused reports whether the answer signals the applicant did not
// understand the question. Single letters a-e, y, n and the numbers 1-10 are
// legitimate short answers and never count as confusion.
func LooksConfused(raw string) bool {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return true
	}
	if questionMarksRe.MatchString(trimmed) {
		return true
	}

	t := normalize(raw)
	if t == "" {
		return true
	}
	if shortValidRe.MatchString(t) {
		return false
	}
	for _, phrase := range hardConfusion {
		if strings.Contains(t, phrase) {
			return true
		}
	}
	return false
}
