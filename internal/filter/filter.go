package filter

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/amishk599/internradar/internal/model"
)

// KeywordFilter matches postings whose title, company or description contains
// any of the keywords. Matching is case-insensitive (Unicode case folding).
// An empty keyword list matches every posting.
type KeywordFilter struct {
	keywords []string // folded, blanks removed
}

// NewKeywordFilter returns a filter over the given keywords. Blank keywords
// are ignored.
func NewKeywordFilter(keywords []string) *KeywordFilter {
	folder := cases.Fold()
	var folded []string
	for _, kw := range keywords {
		kw = strings.TrimSpace(kw)
		if kw == "" {
			continue
		}
		folded = append(folded, folder.String(kw))
	}
	return &KeywordFilter{keywords: folded}
}

// Keywords returns the folded keywords in configured order.
func (f *KeywordFilter) Keywords() []string {
	return f.keywords
}

// Match returns true if any keyword occurs in the posting's searchable text.
func (f *KeywordFilter) Match(p model.Posting) bool {
	if len(f.keywords) == 0 {
		return true
	}

	// A Caser holds state, so each call gets its own.
	text := cases.Fold().String(p.Title + " " + p.Company + " " + p.Description)
	for _, kw := range f.keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
