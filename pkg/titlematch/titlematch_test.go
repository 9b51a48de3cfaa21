package titlematch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFold(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Inception", "inception"},
		{"The Dark Knight", "dark knight"},
		{"Léon: The Professional", "leon professional"},
		{"Amélie", "amelie"},
		{"Rocky II", "rocky 2"},
		{"American History X", "american history x"},
		{"I, Robot", "i robot"},
		{"Spider-Man: Into the Spider-Verse", "spider man into the spider verse"},
		{"Fast & Furious", "fast and furious"},
		{"  Mad   Max  ", "mad max"},
		{"Schindler's List", "schindlers list"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Fold(tt.in))
		})
	}
}

func TestNormalizeRomanNumerals(t *testing.T) {
	assert.Equal(t, "rocky 4", NormalizeRomanNumerals("rocky iv"))
	assert.Equal(t, "vii days", NormalizeRomanNumerals("vii days"))
	assert.Equal(t, "rocky 2 and 3", NormalizeRomanNumerals("rocky ii and iii"))
}

func TestRank_Membership(t *testing.T) {
	tests := []struct {
		name  string
		query string
		title string
		want  bool
	}{
		{"empty query", "", "Inception", true},
		{"substring", "dark", "The Dark Knight", true},
		{"case and accents", "LEON", "Léon: The Professional", true},
		{"article ignored", "the matrix", "Matrix", true},
		{"typo", "inceptoin", "Inception", true},
		{"numeral spelled", "rocky 2", "Rocky II", true},
		{"unrelated", "interstellar", "Inception", false},
		{"short unrelated", "zzz", "Up", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, len(Rank(tt.query, []string{tt.title})) == 1)
		})
	}
}

func TestScore(t *testing.T) {
	assert.InDelta(t, 1.0, Score("knight", "The Dark Knight"), 0.0001)
	s := Score("inceptoin", "Inception")
	assert.Greater(t, s, FuzzyThreshold)
	assert.Less(t, s, 1.0)
}

func TestRank(t *testing.T) {
	titles := []string{"Interstellar", "Inception", "The Dark Knight", "Inception: The Cobol Job"}

	got := Rank("inception", titles)
	require.Len(t, got, 2)
	assert.Equal(t, 1, got[0].Index)
	assert.Equal(t, 3, got[1].Index)
	assert.InDelta(t, 1.0, got[0].Score, 0.0001)

	assert.Empty(t, Rank("casablanca", titles))
	assert.Len(t, Rank("", titles), len(titles))
}
