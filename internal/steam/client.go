package steam

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"
)

// Game is one owned title with its total playtime.
type Game struct {
	Name        string `json:"name"`
	PlayMinutes int    `json:"playMinutes"`
}

type Client struct {
	BaseURL string
	APIKey  string
	HTTP    *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	if baseURL == "" {
		baseURL = "https://api.steampowered.com"
	}
	return &Client{
		BaseURL: baseURL,
		APIKey:  apiKey,
		HTTP:    &http.Client{Timeout: 15 * time.Second},
	}
}

type ownedGamesResp struct {
	Response struct {
		GameCount int `json:"game_count"`
		Games     []struct {
			Name            string `json:"name"`
			PlaytimeForever int    `json:"playtime_forever"`
		} `json:"games"`
	} `json:"response"`
}

// OwnedGames fetches the user's library (free games included) and returns it
// sorted by playtime, most played first.
func (c *Client) OwnedGames(ctx context.Context, steamID string) ([]Game, error) {
	if strings.TrimSpace(c.APIKey) == "" {
		return nil, errors.New("steam: api key is required")
	}

	q := url.Values{}
	q.Set("key", c.APIKey)
	q.Set("steamid", steamID)
	q.Set("include_appinfo", "true")
	q.Set("include_played_free_games", "true")
	q.Set("format", "json")

	endpoint := fmt.Sprintf("%s/IPlayerService/GetOwnedGames/v0001/?%s",
		strings.TrimRight(c.BaseURL, "/"), q.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("steam: status %d", resp.StatusCode)
	}

	var decoded ownedGamesResp
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, err
	}

	games := make([]Game, 0, len(decoded.Response.Games))
	for _, g := range decoded.Response.Games {
		games = append(games, Game{Name: g.Name, PlayMinutes: g.PlaytimeForever})
	}

	sort.Slice(games, func(i, j int) bool {
		return games[i].PlayMinutes > games[j].PlayMinutes
	})

	return games, nil
}
