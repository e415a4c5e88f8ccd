// Package linkresolver turns shopping-aggregator redirect links into direct
// merchant links and assigns site display colors.
package linkresolver

import (
	"fmt"
	"net/url"
	"strings"
)

// Placeholder marks a product without a usable link.
const Placeholder = "#"

const redirectorDomain = "google.com"

var redirectParams = []string{"adurl", "url", "q"}

type rule struct {
	match string
	value string
}

// Both tables are matched in order by substring of the lower-cased source name.
var (
	searchURLs = []rule{
		{"trendyol", "https://www.trendyol.com/sr?q="},
		{"amazon", "https://www.amazon.com.tr/s?k="},
		{"hepsiburada", "https://www.hepsiburada.com/ara?q="},
		{"n11", "https://www.n11.com/arama?q="},
		{"boyner", "https://www.boyner.com.tr/arama?q="},
	}
	siteColors = []rule{
		{"trendyol", "orange"},
		{"hepsiburada", "hb"},
		{"amazon", "amazon"},
		{"n11", "n11"},
		{"boyner", "boyner"},
	}
)

// DefaultColor is used for sources that are not a known store.
const DefaultColor = "warning"

// Resolve returns a direct merchant link for raw. Links that do not point at
// the redirector are returned unchanged. Redirects are unwrapped through their
// adurl/url/q parameters; failing that a store search URL for title is built
// from the source name, and as a last resort raw is returned as is.
func Resolve(raw, title, source string) string {
	if raw == "" || raw == Placeholder {
		return Placeholder
	}
	if !strings.Contains(raw, redirectorDomain) {
		return raw
	}

	if u, err := url.Parse(raw); err == nil {
		params := u.Query()
		for _, key := range redirectParams {
			if v := params.Get(key); strings.HasPrefix(v, "http") {
				return v
			}
		}
	}

	if base := lookup(searchURLs, source); base != "" {
		return base + quote(title)
	}
	return raw
}

// SiteColor maps a source name to its display color tag.
func SiteColor(source string) string {
	if color := lookup(siteColors, source); color != "" {
		return color
	}
	return DefaultColor
}

func lookup(rules []rule, source string) string {
	lower := strings.ToLower(source)
	for _, r := range rules {
		if strings.Contains(lower, r.match) {
			return r.value
		}
	}
	return ""
}

// quote percent-encodes everything except unreserved characters and '/'.
func quote(s string) string {
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9',
			c == '_', c == '.', c == '-', c == '~', c == '/':
			sb.WriteByte(c)
		default:
			fmt.Fprintf(&sb, "%%%02X", c)
		}
	}
	return sb.String()
}
