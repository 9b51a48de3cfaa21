package titlematch

import (
	"sort"
	"strings"

	"github.com/hbollon/go-edlib"
)

// FuzzyThreshold is the Jaro-Winkler similarity at which a query counts as a
// match even without being a substring of the title.
const FuzzyThreshold = 0.85

// Score returns the Jaro-Winkler similarity of the folded query and title,
// between 0 and 1. A containing title scores 1.
func Score(query, title string) float64 {
	q, t := Fold(query), Fold(title)
	if q == "" {
		return 1
	}
	if strings.Contains(t, q) {
		return 1
	}
	return float64(edlib.JaroWinklerSimilarity(q, t))
}

// Ranked is one candidate with its score.
type Ranked struct {
	Index int // position in the input slice
	Title string
	Score float64
}

// Rank scores every candidate title against query and returns those scoring
// at least FuzzyThreshold, best first. Equal scores keep input order. An
// empty query keeps every title.
func Rank(query string, titles []string) []Ranked {
	out := make([]Ranked, 0, len(titles))
	for i, title := range titles {
		s := Score(query, title)
		if s < FuzzyThreshold {
			continue
		}
		out = append(out, Ranked{Index: i, Title: title, Score: s})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}
