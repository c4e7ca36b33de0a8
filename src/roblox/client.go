// Package roblox resolves Roblox usernames to user IDs and headshot avatar
// URLs through the public Roblox web APIs.
package roblox

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	usersURL      = "https://users.roblox.com/v1/usernames/users"
	thumbnailsURL = "https://thumbnails.roblox.com/v1/users/avatar-headshot?userIds=%d&size=420x420&format=Png&isCircular=false"

	avatarCacheTTL = 6 * time.Hour
)

// ErrUserNotFound indicates the username does not exist on Roblox.
var ErrUserNotFound = errors.New("roblox: user not found")

// Client talks to the Roblox web APIs. rdb is optional; when present,
// resolved avatar URLs are cached so repeated lookups for the same name stay
// off the Roblox API.
type Client struct {
	http *http.Client
	rdb  *redis.Client
}

func NewClient(rdb *redis.Client) *Client {
	return &Client{
		http: &http.Client{Timeout: 10 * time.Second},
		rdb:  rdb,
	}
}

type usersRequest struct {
	Usernames          []string `json:"usernames"`
	ExcludeBannedUsers bool     `json:"excludeBannedUsers"`
}

type usersResponse struct {
	Data []struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	} `json:"data"`
}

type thumbnailsResponse struct {
	Data []struct {
		ImageURL string `json:"imageUrl"`
	} `json:"data"`
}

// LookupUserID resolves a username to its Roblox user ID.
func (c *Client) LookupUserID(ctx context.Context, username string) (int64, error) {
	body, err := json.Marshal(usersRequest{Usernames: []string{username}, ExcludeBannedUsers: true})
	if err != nil {
		return 0, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, usersURL, bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("roblox users lookup: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("roblox users lookup: status %d", resp.StatusCode)
	}

	var out usersResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return 0, fmt.Errorf("roblox users lookup: %w", err)
	}
	if len(out.Data) == 0 {
		return 0, ErrUserNotFound
	}
	return out.Data[0].ID, nil
}

// AvatarURL returns the headshot URL for a username, consulting the Redis
// cache first. Cache failures only log; the lookup proceeds regardless.
func (c *Client) AvatarURL(ctx context.Context, username string) (string, error) {
	key := "civitas:roblox:avatar:" + strings.ToLower(username)
	if c.rdb != nil {
		if cached, err := c.rdb.Get(ctx, key).Result(); err == nil && cached != "" {
			return cached, nil
		}
	}

	userID, err := c.LookupUserID(ctx, username)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf(thumbnailsURL, userID), nil)
	if err != nil {
		return "", err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("roblox thumbnail lookup: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("roblox thumbnail lookup: status %d", resp.StatusCode)
	}

	var out thumbnailsResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("roblox thumbnail lookup: %w", err)
	}
	if len(out.Data) == 0 || out.Data[0].ImageURL == "" {
		return "", fmt.Errorf("roblox thumbnail lookup: empty response for user %d", userID)
	}
	url := out.Data[0].ImageURL

	if c.rdb != nil {
		if err := c.rdb.Set(ctx, key, url, avatarCacheTTL).Err(); err != nil {
			log.Printf("roblox: failed to cache avatar for %s: %v", username, err)
		}
	}
	return url, nil
}
