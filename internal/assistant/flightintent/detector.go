// Package flightintent scores how likely a message is a flight search.
// The caller owns the routing threshold; Detect only classifies.
package flightintent

import (
	"regexp"
	"strings"
	"unicode"

	"finda-workers/internal/models"
)

const (
	ReasonEmpty          = "empty"
	ReasonCodePair       = "city_code_pattern"
	ReasonKeywordTR      = "keyword_tr"
	ReasonKeywordEN      = "keyword_en"
	ReasonCityNames      = "city_names"
	ReasonCityDirection  = "city_with_direction"
	reasonDateWithMarker = "date_with_flight_marker" // shadowed by the code pair and keyword rules
	ReasonNoMarkers      = "no_flight_markers"
)

var (
	keywordsTR = []string{"uçuş", "bilet", "uçak", "seyahat", "havayolu", "gidiş", "biniş"}
	keywordsEN = []string{"flight", "ticket", "airplane", "plane", "fly", "airport", "airline", "trip", "travel"}

	cities = map[string]bool{
		"istanbul": true, "ankara": true, "izmir": true, "antalya": true, "adana": true,
		"bursa": true, "gaziantep": true, "bodrum": true, "alanya": true, "erzurum": true,
		"kayseri": true, "konya": true, "trabzon": true,
	}

	directions = map[string]bool{"to": true, "from": true, "den": true, "dan": true}

	datePattern = regexp.MustCompile(`\d{4}-\d{2}-\d{2}|\d{2}[./]\d{2}[./]\d{4}`)
)

// Detect applies the rules in priority order; the first match wins.
func Detect(text string) models.FlightIntentVerdict {
	if strings.TrimSpace(text) == "" {
		return verdict(false, 0.0, ReasonEmpty)
	}

	lower := strings.ToLower(strings.TrimSpace(text))
	hasCodePair := containsCodePair(lower)

	if hasCodePair {
		return verdict(true, 0.9, ReasonCodePair)
	}
	if kw := firstKeyword(lower, keywordsTR); kw != "" {
		return verdict(true, 0.8, ReasonKeywordTR+": "+kw)
	}
	if kw := firstKeyword(lower, keywordsEN); kw != "" {
		return verdict(true, 0.8, ReasonKeywordEN+": "+kw)
	}

	words := splitWords(lower)
	found := make(map[string]bool)
	hasDirection := false
	for _, w := range words {
		if cities[w] {
			found[w] = true
		}
		if directions[w] {
			hasDirection = true
		}
	}

	if len(found) >= 2 {
		return verdict(true, 0.85, ReasonCityNames)
	}
	if hasDirection && len(found) > 0 {
		return verdict(true, 0.7, ReasonCityDirection)
	}

	// Rules 1-3 already catch any code pair or keyword, so this only fires if
	// those rules are ever relaxed.
	if datePattern.MatchString(text) && (hasCodePair || anyKeyword(lower)) {
		return verdict(true, 0.9, reasonDateWithMarker)
	}

	return verdict(false, 0.0, ReasonNoMarkers)
}

func verdict(isFlight bool, confidence float64, reason string) models.FlightIntentVerdict {
	return models.FlightIntentVerdict{IsFlight: isFlight, Confidence: confidence, Reason: reason}
}

func firstKeyword(text string, keywords []string) string {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return kw
		}
	}
	return ""
}

func anyKeyword(text string) bool {
	return firstKeyword(text, keywordsTR) != "" || firstKeyword(text, keywordsEN) != ""
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}

func splitWords(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool { return !isWordRune(r) })
}

// containsCodePair looks for two whitespace-separated three-letter ASCII words,
// e.g. "ist esb".
func containsCodePair(text string) bool {
	fields := strings.Fields(text)
	for i := 0; i+1 < len(fields); i++ {
		if endsWithCode(fields[i]) && startsWithCode(fields[i+1]) {
			return true
		}
	}
	return false
}

func endsWithCode(field string) bool {
	r := []rune(field)
	if len(r) < 3 || !asciiLetters(r[len(r)-3:]) {
		return false
	}
	return len(r) == 3 || !isWordRune(r[len(r)-4])
}

func startsWithCode(field string) bool {
	r := []rune(field)
	if len(r) < 3 || !asciiLetters(r[:3]) {
		return false
	}
	return len(r) == 3 || !isWordRune(r[3])
}

func asciiLetters(rs []rune) bool {
	for _, r := range rs {
		if r < 'a' || r > 'z' {
			return false
		}
	}
	return true
}
