package web

import (
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBackTo(t *testing.T) {
	tests := []struct {
		referer string
		want    string
	}{
		{"", "/"},
		{"http://example.com/movies/upcoming?page=2", "/movies/upcoming?page=2"},
		{"/movies/favorites", "/movies/favorites"},
		{"https://other.example/", "/"},
		{"http://example.com", "/"},
		{"::not a url", "/"},
	}
	for _, tt := range tests {
		t.Run(tt.referer, func(t *testing.T) {
			r := httptest.NewRequest("POST", "/movies/1/favorite", nil)
			if tt.referer != "" {
				r.Header.Set("Referer", tt.referer)
			}
			assert.Equal(t, tt.want, backTo(r))
		})
	}
}

func TestQueryInt(t *testing.T) {
	q := url.Values{"page": {"3"}, "bad": {"x"}, "neg": {"-2"}}
	assert.Equal(t, 3, queryInt(q, "page", 1))
	assert.Equal(t, 1, queryInt(q, "bad", 1))
	assert.Equal(t, 1, queryInt(q, "neg", 1))
	assert.Equal(t, 0, queryInt(q, "missing", 0))
}

func TestYear(t *testing.T) {
	assert.Equal(t, "2010", year("2010-07-15"))
	assert.Equal(t, "", year(""))
	assert.Equal(t, "", year("soon"))
}
