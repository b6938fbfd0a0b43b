package adapter

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// cleanText collapses whitespace and maps the sites' "N/A" placeholder to "".
func cleanText(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if strings.EqualFold(s, "n/a") {
		return ""
	}
	return s
}

// firstText returns the cleaned text of the first element matching selector.
func firstText(card *goquery.Selection, selector string) string {
	return cleanText(card.Find(selector).First().Text())
}

// firstTextOf tries each selector in order and returns the first non-empty text.
func firstTextOf(card *goquery.Selection, selectors ...string) string {
	for _, sel := range selectors {
		if t := firstText(card, sel); t != "" {
			return t
		}
	}
	return ""
}

// resolveHref resolves the href of the first element matching selector
// against base. Returns "" when the element or attribute is missing.
func resolveHref(card *goquery.Selection, selector string, base *url.URL) string {
	href, ok := card.Find(selector).First().Attr("href")
	href = strings.TrimSpace(href)
	if !ok || href == "" || strings.HasPrefix(href, "javascript:") || href == "#" {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return base.ResolveReference(ref).String()
}
