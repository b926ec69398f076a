package tmdb

import "strings"

// ImageSize is a TMDB image size token
type ImageSize string

const (
	SizeW92      ImageSize = "w92"
	SizeW154     ImageSize = "w154"
	SizeW185     ImageSize = "w185"
	SizeW342     ImageSize = "w342"
	SizeW500     ImageSize = "w500"
	SizeW780     ImageSize = "w780"
	SizeW1280    ImageSize = "w1280"
	SizeOriginal ImageSize = "original"
)

// PlaceholderImageURL is returned for items without an image
const PlaceholderImageURL = "https://placehold.co/500x750?text=No+Image"

var validSizes = map[ImageSize]bool{
	SizeW92: true, SizeW154: true, SizeW185: true, SizeW342: true,
	SizeW500: true, SizeW780: true, SizeW1280: true, SizeOriginal: true,
}

// ImageURL builds an absolute image URL from a base URL, size token and relative path.
// An empty path yields PlaceholderImageURL; an unknown size falls back to w500.
func ImageURL(baseURL, path string, size ImageSize) string {
	if path == "" {
		return PlaceholderImageURL
	}
	if !validSizes[size] {
		size = SizeW500
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return strings.TrimRight(baseURL, "/") + "/" + string(size) + path
}

// ImageURL builds an image URL against the client's configured image base
func (c *Client) ImageURL(path string, size ImageSize) string {
	return ImageURL(c.imageBaseURL, path, size)
}
