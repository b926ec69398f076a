package tmdb

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestImageURL(t *testing.T) {
	tests := []struct {
		name string
		base string
		path string
		size ImageSize
		want string
	}{
		{"poster", "https://image.tmdb.org/t/p", "/abc.jpg", SizeW342, "https://image.tmdb.org/t/p/w342/abc.jpg"},
		{"trailing slash base", "https://image.tmdb.org/t/p/", "/abc.jpg", SizeOriginal, "https://image.tmdb.org/t/p/original/abc.jpg"},
		{"path without slash", "https://image.tmdb.org/t/p", "abc.jpg", SizeW92, "https://image.tmdb.org/t/p/w92/abc.jpg"},
		{"unknown size", "https://image.tmdb.org/t/p", "/abc.jpg", "w9999", "https://image.tmdb.org/t/p/w500/abc.jpg"},
		{"no path", "https://image.tmdb.org/t/p", "", SizeW500, PlaceholderImageURL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ImageURL(tt.base, tt.path, tt.size))
		})
	}
}

func TestClientImageURLUsesConfiguredBase(t *testing.T) {
	c := NewClient(Config{ImageBaseURL: "https://cdn.example.com/img"}, discardLogger())
	assert.Equal(t, "https://cdn.example.com/img/w185/x.png", c.ImageURL("/x.png", SizeW185))
}
