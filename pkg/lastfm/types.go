package lastfm

import (
	"encoding/json"
	"strconv"
)

// Period is the time window Last.fm ranks top albums over.
type Period string

// Periods accepted by user.getTopAlbums.
const (
	PeriodOverall Period = "overall"
	Period7Day    Period = "7day"
	Period1Month  Period = "1month"
	Period3Month  Period = "3month"
	Period6Month  Period = "6month"
	Period12Month Period = "12month"
)

// Image sizes in the order Last.fm lists them.
const (
	ImageSmall      = "small"
	ImageMedium     = "medium"
	ImageLarge      = "large"
	ImageExtraLarge = "extralarge"
)

// Image is one size variant of an album's artwork.
type Image struct {
	URL  string `json:"#text"`
	Size string `json:"size"`
}

// ArtistRef is the artist object nested in album records.
//
// Name is a pointer so callers can tell a missing name apart from an empty one.
type ArtistRef struct {
	Name *string `json:"name"`
	MBID string  `json:"mbid"`
	URL  string  `json:"url"`
}

// TopAlbum is a single raw record from user.getTopAlbums.
//
// Fields are kept close to the wire format; validation is left to callers.
type TopAlbum struct {
	Name      *string    `json:"name"`
	Artist    *ArtistRef `json:"artist"`
	Images    []Image    `json:"image"`
	PlayCount Count      `json:"playcount"`
	MBID      string     `json:"mbid"`
	URL       string     `json:"url"`
	Attr      struct {
		Rank Count `json:"rank"`
	} `json:"@attr"`
}

// TopAlbums is the decoded response from user.getTopAlbums.
type TopAlbums struct {
	User       string
	Page       int
	PerPage    int
	TotalPages int
	Total      int
	Albums     []TopAlbum
}

// Count decodes Last.fm numbers, which the JSON API sends as strings.
type Count int

// UnmarshalJSON accepts both "12" and 12.
func (c *Count) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s == "" {
			*c = 0
			return nil
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return err
		}
		*c = Count(n)
		return nil
	}

	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*c = Count(n)
	return nil
}
