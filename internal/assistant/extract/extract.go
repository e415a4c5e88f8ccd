// Package extract pulls a JSON object out of free-form LLM output.
package extract

import (
	"encoding/json"
	"regexp"
	"strings"
)

// Extractor finds and decodes a JSON object embedded in text.
// A nil map means no object could be recovered.
type Extractor interface {
	Extract(raw string) map[string]interface{}
}

const (
	StrategyGreedy   = "greedy"
	StrategyBalanced = "balanced"
)

// New returns the extractor registered under name, defaulting to Greedy.
func New(name string) Extractor {
	if strings.EqualFold(name, StrategyBalanced) {
		return Balanced{}
	}
	return Greedy{}
}

var greedyBlock = regexp.MustCompile(`(?s)\{.*\}`)

// Greedy decodes the span from the first '{' to the last '}'.
// Prose containing its own braces around the object defeats it.
type Greedy struct{}

func (Greedy) Extract(raw string) map[string]interface{} {
	block := greedyBlock.FindString(raw)
	if block == "" {
		return nil
	}
	return decode(block)
}

// Balanced scans for the first brace-balanced object that decodes cleanly,
// skipping over braces that appear inside JSON strings.
type Balanced struct{}

func (Balanced) Extract(raw string) map[string]interface{} {
	for start := strings.IndexByte(raw, '{'); start >= 0; {
		if end := matchingBrace(raw, start); end > 0 {
			if obj := decode(raw[start : end+1]); obj != nil {
				return obj
			}
		}
		next := strings.IndexByte(raw[start+1:], '{')
		if next < 0 {
			break
		}
		start += next + 1
	}
	return nil
}

func matchingBrace(s string, start int) int {
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func decode(block string) map[string]interface{} {
	var obj map[string]interface{}
	if err := json.Unmarshal([]byte(block), &obj); err != nil {
		return nil
	}
	return obj
}

// JSON runs the default greedy extractor.
func JSON(raw string) map[string]interface{} {
	return Greedy{}.Extract(raw)
}
