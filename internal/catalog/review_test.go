package catalog

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReviewInput_Validate(t *testing.T) {
	valid := ReviewInput{MovieID: 27205, Author: "cobb", Content: "A heist inside a dream.", Rating: 8.5}

	tests := []struct {
		name   string
		mutate func(*ReviewInput)
		field  string
		msg    string
	}{
		{"missing movie", func(in *ReviewInput) { in.MovieID = 0 }, "movie_id", "movie_id is required"},
		{"missing author", func(in *ReviewInput) { in.Author = "" }, "author", "author is required"},
		{"long author", func(in *ReviewInput) { in.Author = strings.Repeat("x", 101) }, "author", "author must be at most 100 characters"},
		{"missing content", func(in *ReviewInput) { in.Content = "" }, "content", "content is required"},
		{"short content", func(in *ReviewInput) { in.Content = "too short" }, "content", "content must be at least 10 characters"},
		{"missing rating", func(in *ReviewInput) { in.Rating = 0 }, "rating", "rating is required"},
		{"rating too low", func(in *ReviewInput) { in.Rating = 0.25 }, "rating", "rating must be at least 0.5"},
		{"rating too high", func(in *ReviewInput) { in.Rating = 10.5 }, "rating", "rating must be at most 10"},
		{"rating off step", func(in *ReviewInput) { in.Rating = 7.3 }, "rating", "rating must be a multiple of 0.5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid
			tt.mutate(&in)

			err := in.Validate()
			require.ErrorIs(t, err, ErrInvalidReview)

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.msg, verr.Fields[tt.field])
			assert.Len(t, verr.Fields, 1)
		})
	}

	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, valid.Validate())
	})
	t.Run("bounds", func(t *testing.T) {
		for _, r := range []float64{0.5, 1, 5.5, 10} {
			in := valid
			in.Rating = r
			assert.NoError(t, in.Validate(), "rating %v", r)
		}
	})
}

func TestValidationError_Message(t *testing.T) {
	err := ReviewInput{}.Validate()
	require.Error(t, err)
	assert.Equal(t,
		"invalid review: movie_id is required; author is required; content is required; rating is required",
		err.Error())
}

func TestReviewInput_Normalize(t *testing.T) {
	in := ReviewInput{Author: "  cobb\t", Content: "\n dreams \n"}.normalize()
	assert.Equal(t, "cobb", in.Author)
	assert.Equal(t, "dreams", in.Content)
}
