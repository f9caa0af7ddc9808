package chart

import (
	"fmt"

	"github.com/jfmyers9/albumgrid/pkg/lastfm"
)

// coverIndex selects the extralarge (300x300) variant from the image list.
const coverIndex = 3

// Album is the part of a Last.fm album record a chart needs.
type Album struct {
	Artist   string
	Title    string
	CoverURL string
}

// Normalize maps raw Last.fm records to albums, keeping their order.
//
// A record without an artist name, an album name or a cover entry at
// coverIndex fails the whole batch. An empty cover URL is allowed; it
// resolves to the placeholder like any other unreachable cover.
func Normalize(records []lastfm.TopAlbum) ([]Album, error) {
	albums := make([]Album, 0, len(records))
	for i, rec := range records {
		album, err := normalize(rec)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		albums = append(albums, album)
	}
	return albums, nil
}

func normalize(rec lastfm.TopAlbum) (Album, error) {
	if rec.Artist == nil || rec.Artist.Name == nil {
		return Album{}, fmt.Errorf("%w: missing artist name", ErrMalformedRecord)
	}
	if rec.Name == nil {
		return Album{}, fmt.Errorf("%w: missing album name", ErrMalformedRecord)
	}
	if len(rec.Images) <= coverIndex {
		return Album{}, fmt.Errorf("%w: %d image variants, need at least %d",
			ErrMalformedRecord, len(rec.Images), coverIndex+1)
	}

	return Album{
		Artist:   *rec.Artist.Name,
		Title:    *rec.Name,
		CoverURL: rec.Images[coverIndex].URL,
	}, nil
}
