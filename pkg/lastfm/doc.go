// Package lastfm provides a client library for the Last.fm API 2.0.
//
// # Overview
//
// This package implements a small read-only Go client for the Last.fm API.
// It talks to the JSON flavour of the API with unsigned GET requests, so only
// an API key is needed. It provides context support, structured errors, and
// retry logic for transient failures.
//
// # Quick Start
//
// Create a client with your API key:
//
//	import "github.com/jfmyers9/albumgrid/pkg/lastfm"
//
//	client, err := lastfm.NewClient(lastfm.Config{
//	    APIKey: "your-api-key",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// # Top Albums
//
// Fetch the albums a user played most over a period:
//
//	top, err := client.User().GetTopAlbums(ctx, lastfm.TopAlbumsParams{
//	    User:   "rj",
//	    Period: lastfm.Period1Month,
//	    Limit:  16,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	for _, album := range top.Albums {
//	    fmt.Println(*album.Artist.Name, "-", *album.Name)
//	}
//
// Records are returned close to the wire format. Names are pointers so that a
// missing field can be told apart from an empty one, and Images keeps the
// size variants in the order Last.fm sends them (small, medium, large,
// extralarge).
//
// # Error Handling
//
// API failures are returned as *lastfm.Error:
//
//	_, err := client.User().GetTopAlbums(ctx, params)
//	if errors.Is(err, lastfm.ErrUserNotFound) {
//	    // unknown username
//	}
//
// Temporary errors (service offline, temporarily unavailable), 5xx responses
// and network errors are retried up to three times with exponential backoff.
//
// # Configuration
//
// The client can be configured with custom HTTP clients, base URLs (for testing),
// and optional loggers:
//
//	client, err := lastfm.NewClient(lastfm.Config{
//	    APIKey:     "your-api-key",
//	    HTTPClient: &http.Client{Timeout: 10 * time.Second},
//	    Logger:     myLogger, // Implements lastfm.Logger interface
//	})
//
// # API Coverage
//
// Currently implemented:
//   - user.getTopAlbums
//
// # Last.fm API Documentation
//
// For more information about the Last.fm API:
// https://www.last.fm/api/show/user.getTopAlbums
package lastfm
