package discogs

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
)

// https://www.discogs.com/developers#page:database,header:database-release-rating-by-user

type Rating struct {
	Username  string `json:"username"`
	ReleaseID int    `json:"release_id"`
	Rating    int    `json:"rating"`
}

func (c *Client) GetRating(ctx context.Context, releaseID int) (int, error) {
	if c.Username == "" {
		return 0, fmt.Errorf("username not set")
	}
	var rating Rating
	err := c.get(ctx, joinPath("releases", strconv.Itoa(releaseID), "rating", c.Username), nil, &rating)
	if err != nil {
		return 0, fmt.Errorf("request rating: %w", err)
	}
	return rating.Rating, nil
}

func (c *Client) PutRating(ctx context.Context, releaseID, rating int) error {
	if c.Username == "" {
		return fmt.Errorf("username not set")
	}
	if rating < 1 || rating > 5 {
		return fmt.Errorf("rating must be between 1 and 5, got %d", rating)
	}
	body := Rating{Username: c.Username, ReleaseID: releaseID, Rating: rating}
	urlPath := joinPath("releases", strconv.Itoa(releaseID), "rating", c.Username)
	if err := c.send(ctx, http.MethodPut, urlPath, body, nil); err != nil {
		return fmt.Errorf("put rating: %w", err)
	}
	return nil
}

// AddToCollection files the release into the user's default (uncategorized)
// collection folder.
func (c *Client) AddToCollection(ctx context.Context, releaseID int) error {
	if c.Username == "" {
		return fmt.Errorf("username not set")
	}
	urlPath := joinPath("users", c.Username, "collection/folders/1/releases", strconv.Itoa(releaseID))
	if err := c.send(ctx, http.MethodPost, urlPath, nil, nil); err != nil {
		return fmt.Errorf("add to collection: %w", err)
	}
	return nil
}
