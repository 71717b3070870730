package generator

import (
	"errors"
	"strings"
)

// ErrEmptyGeneration is returned when no runnable code could be extracted
// from a provider response
var ErrEmptyGeneration = errors.New("response contained no runnable code")

// fenceMarker delimits markdown code blocks
const fenceMarker = "```"

// ExtractCode strips the prose wrapping from an LLM response.
//
// Best-effort rule: when fence markers are present, everything between the
// end of the first fence line and the last closing fence survives, so a
// response with several code blocks keeps all of them plus the text in
// between. Without fences the whole trimmed response is taken as code.
// An empty result yields ErrEmptyGeneration.
func ExtractCode(response string) (string, error) {
	code := strings.TrimSpace(response)

	first := strings.Index(code, fenceMarker)
	if first >= 0 {
		// Skip the opening marker and its optional language tag
		rest := code[first+len(fenceMarker):]
		if nl := strings.Index(rest, "\n"); nl >= 0 {
			rest = rest[nl+1:]
		}

		if last := strings.LastIndex(rest, fenceMarker); last >= 0 {
			rest = rest[:last]
		}
		code = rest
	}

	code = strings.TrimSpace(code)
	if code == "" {
		return "", ErrEmptyGeneration
	}

	return code, nil
}
