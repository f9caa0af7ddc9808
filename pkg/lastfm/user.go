package lastfm

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
)

// UserService provides user-scoped read operations for the Last.fm API.
type UserService struct {
	client *Client
}

// TopAlbumsParams are the arguments to user.getTopAlbums.
type TopAlbumsParams struct {
	User   string // Required: Last.fm username
	Period Period // Optional: defaults to PeriodOverall
	Limit  int    // Optional: results per page (Last.fm default is 50)
	Page   int    // Optional: page number (1-based)
}

// GetTopAlbums fetches a user's most played albums for a period.
//
// Records are returned in rank order exactly as Last.fm sends them.
//
// Example:
//
//	albums, err := client.User().GetTopAlbums(ctx, lastfm.TopAlbumsParams{
//	    User:   "rj",
//	    Period: lastfm.Period7Day,
//	    Limit:  25,
//	})
func (s *UserService) GetTopAlbums(ctx context.Context, p TopAlbumsParams) (*TopAlbums, error) {
	if p.User == "" {
		return nil, fmt.Errorf("lastfm: user is required")
	}

	params := map[string]string{
		"user": p.User,
	}

	if p.Period != "" {
		params["period"] = string(p.Period)
	}
	if p.Limit > 0 {
		params["limit"] = strconv.Itoa(p.Limit)
	}
	if p.Page > 0 {
		params["page"] = strconv.Itoa(p.Page)
	}

	body, err := s.client.call(ctx, "user.gettopalbums", params)
	if err != nil {
		return nil, err
	}

	albums, err := unmarshalTopAlbums(body)
	if err != nil {
		return nil, fmt.Errorf("lastfm: failed to parse top albums response: %w", err)
	}

	return albums, nil
}

// topAlbumsResponse represents the JSON response from user.getTopAlbums.
type topAlbumsResponse struct {
	TopAlbums *struct {
		Album albumList `json:"album"`
		Attr  struct {
			User       string `json:"user"`
			Page       Count  `json:"page"`
			PerPage    Count  `json:"perPage"`
			TotalPages Count  `json:"totalPages"`
			Total      Count  `json:"total"`
		} `json:"@attr"`
	} `json:"topalbums"`
}

// unmarshalTopAlbums parses the JSON response from user.getTopAlbums.
func unmarshalTopAlbums(data []byte) (*TopAlbums, error) {
	var resp topAlbumsResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal top albums response: %w", err)
	}

	if resp.TopAlbums == nil {
		return nil, fmt.Errorf("missing topalbums object")
	}

	return &TopAlbums{
		User:       resp.TopAlbums.Attr.User,
		Page:       int(resp.TopAlbums.Attr.Page),
		PerPage:    int(resp.TopAlbums.Attr.PerPage),
		TotalPages: int(resp.TopAlbums.Attr.TotalPages),
		Total:      int(resp.TopAlbums.Attr.Total),
		Albums:     resp.TopAlbums.Album,
	}, nil
}

// albumList decodes the "album" field, which Last.fm sends as a bare
// object instead of an array when there is exactly one result.
type albumList []TopAlbum

// UnmarshalJSON accepts an array, a single object or null.
func (l *albumList) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*l = nil
		return nil
	}

	var many []TopAlbum
	if err := json.Unmarshal(data, &many); err == nil {
		*l = many
		return nil
	}

	var one TopAlbum
	if err := json.Unmarshal(data, &one); err != nil {
		return err
	}
	*l = albumList{one}
	return nil
}
