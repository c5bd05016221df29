// Package classifier scores article text against a fixed security lexicon.
package classifier

import (
	"strings"

	"NewsScanner/internal/domain"
)

// MaxKeywords caps the keywords stored on an article.
const MaxKeywords = 10

// Lexicon is the fixed list of security-relevant terms. Matching is case-insensitive substring.
var Lexicon = []string{
	"breach",
	"vulnerability",
	"ransomware",
	"malware",
	"phishing",
	"cve",
	"exploit",
	"zero-day",
	"patch",
	"update",
	"security",
	"leak",
	"compromise",
	"attack",
	"hack",
	"incident",
	"outage",
	"compliance",
}

var (
	breachTerms = []string{"breach", "leak", "compromise"}
	vulnTerms   = []string{"vulnerability", "exploit", "cve"}
	updateTerms = []string{"update", "patch"}
)

// Classify assigns category and severity to title+summary. The score is the number
// of distinct lexicon terms found. Rules are evaluated in order, first match wins.
func Classify(title, summary string) (domain.Category, domain.Severity, int) {
	text := normalize(title, summary)
	score := len(matches(text))

	switch {
	case containsAny(text, breachTerms):
		if score > 2 {
			return domain.CategoryBreach, domain.SeverityCritical, score
		}
		return domain.CategoryBreach, domain.SeverityHigh, score
	case containsAny(text, vulnTerms):
		if score > 2 {
			return domain.CategorySecurity, domain.SeverityHigh, score
		}
		return domain.CategorySecurity, domain.SeverityMedium, score
	case containsAny(text, updateTerms):
		return domain.CategoryUpdate, domain.SeverityMedium, score
	case score > 0:
		return domain.CategorySecurity, domain.SeverityLow, score
	default:
		return domain.CategoryGeneral, domain.SeverityInfo, score
	}
}

// Keywords returns the lexicon terms present in title+summary, in lexicon order.
func Keywords(title, summary string) []string {
	found := matches(normalize(title, summary))
	if len(found) > MaxKeywords {
		found = found[:MaxKeywords]
	}
	return found
}

func normalize(title, summary string) string {
	return strings.ToLower(title + " " + summary)
}

func matches(text string) []string {
	var found []string
	for _, term := range Lexicon {
		if strings.Contains(text, term) {
			found = append(found, term)
		}
	}
	return found
}

func containsAny(text string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(text, term) {
			return true
		}
	}
	return false
}
