package extract

import (
	"regexp"
	"strings"

	"github.com/fwojciec/llmfetch"
)

var (
	fencePattern    = regexp.MustCompile("(?s)```[A-Za-z]*\\s*(.*?)```")
	backtickPattern = regexp.MustCompile("`([^`]+)`")
)

// ParseResponse picks one XPath expression out of free-form model output.
//
// Candidates are tried in order: the lines of every fenced code block, then
// for each line of the response the line itself when it starts with "/",
// any backtick span, and the shortest run of words starting at "//" that
// validates. The first candidate accepted by valid wins. As a last resort a
// response that starts with "/" offers its first line.
func ParseResponse(text string, valid llmfetch.QueryValidator) (string, bool) {
	try := func(candidate string) bool {
		return candidate != "" && valid.Valid(candidate)
	}

	for _, m := range fencePattern.FindAllStringSubmatch(text, -1) {
		for _, line := range strings.Split(m[1], "\n") {
			if line = strings.TrimSpace(line); try(line) {
				return line, true
			}
		}
	}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "/") && try(line) {
			return line, true
		}
		for _, m := range backtickPattern.FindAllStringSubmatch(line, -1) {
			if span := strings.TrimSpace(m[1]); try(span) {
				return span, true
			}
		}
		if q, ok := looseQuery(line, try); ok {
			return q, true
		}
	}

	trimmed := strings.TrimSpace(text)
	if strings.HasPrefix(trimmed, "/") {
		first, _, _ := strings.Cut(trimmed, "\n")
		if first = strings.TrimSpace(first); try(first) {
			return first, true
		}
	}
	return "", false
}

// looseQuery scans line for "//" and grows a candidate word by word from
// each occurrence, so prose following the expression is left out.
func looseQuery(line string, try func(string) bool) (string, bool) {
	for offset := 0; offset < len(line); {
		i := strings.Index(line[offset:], "//")
		if i < 0 {
			break
		}
		start := offset + i
		words := strings.Fields(line[start:])
		for n := 1; n <= len(words); n++ {
			candidate := strings.Join(words[:n], " ")
			if trimmed := strings.TrimRight(candidate, ".,;:!?"); trimmed != candidate && try(trimmed) {
				return trimmed, true
			}
			if try(candidate) {
				return candidate, true
			}
		}
		offset = start + 2
	}
	return "", false
}
