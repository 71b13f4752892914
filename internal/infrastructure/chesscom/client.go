// Package chesscom fetches a player's recent games from the chess.com
// public API and normalizes them for the sync pipeline.
package chesscom

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/blunderfixer/blunderfixer/internal/domain/game"
	"github.com/blunderfixer/blunderfixer/internal/domain/syncjob"
)

const DefaultBaseURL = "https://api.chess.com"

type Client struct {
	baseURL string
	months  int
	http    *http.Client
}

type Option func(*Client)

// WithBaseURL overrides the API host, used by tests and self-hosted mirrors.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithMonths sets how many most recent monthly archives a sync covers.
func WithMonths(months int) Option {
	return func(c *Client) {
		c.months = months
	}
}

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		c.http = h
	}
}

func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		months:  2,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type archivesResponse struct {
	Archives []string `json:"archives"`
}

type rawPlayer struct {
	Username string `json:"username"`
	Rating   int    `json:"rating"`
	Result   string `json:"result"`
}

type rawGame struct {
	UUID        string    `json:"uuid"`
	URL         string    `json:"url"`
	PGN         string    `json:"pgn"`
	TimeClass   string    `json:"time_class"`
	TimeControl string    `json:"time_control"`
	EndTime     int64     `json:"end_time"`
	White       rawPlayer `json:"white"`
	Black       rawPlayer `json:"black"`
	Evals       []float64 `json:"evals"`
}

type monthResponse struct {
	Games []rawGame `json:"games"`
}

// FetchRecent returns the player's games from the most recent monthly
// archives, oldest month first, in the order the provider reports them.
func (c *Client) FetchRecent(ctx context.Context, username string) ([]game.Game, error) {
	listURL := fmt.Sprintf("%s/pub/player/%s/games/archives", c.baseURL, strings.ToLower(username))

	var archives archivesResponse
	if err := c.getJSON(ctx, listURL, &archives); err != nil {
		return nil, fmt.Errorf("list archives for %s: %w", username, err)
	}

	months := archives.Archives
	if len(months) > c.months {
		months = months[len(months)-c.months:]
	}

	var games []game.Game
	for _, archiveURL := range months {
		var month monthResponse
		if err := c.getJSON(ctx, archiveURL, &month); err != nil {
			return nil, fmt.Errorf("fetch archive %s: %w", archiveURL, err)
		}
		for _, raw := range month.Games {
			games = append(games, normalize(raw))
		}
	}
	return games, nil
}

func (c *Client) getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", syncjob.ErrAdapterUnreachable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s", syncjob.ErrAdapterRateLimited, url)
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("%w: %s returned %d", syncjob.ErrAdapterUnreachable, url, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode %s: %v", syncjob.ErrAdapterUnreachable, url, err)
	}
	return nil
}

func normalize(raw rawGame) game.Game {
	return game.Game{
		UUID:        raw.UUID,
		URL:         raw.URL,
		White:       game.PlayerResult{Username: raw.White.Username, Rating: raw.White.Rating, Result: raw.White.Result},
		Black:       game.PlayerResult{Username: raw.Black.Username, Rating: raw.Black.Rating, Result: raw.Black.Result},
		TimeClass:   raw.TimeClass,
		TimeControl: raw.TimeControl,
		ECO:         pgnHeader(raw.PGN, "ECO"),
		PGN:         raw.PGN,
		PlayedAt:    time.Unix(raw.EndTime, 0).UTC(),
		Evals:       raw.Evals,
	}
}

// pgnHeader extracts a single tag value from a PGN header section.
func pgnHeader(pgn, name string) string {
	prefix := "[" + name + " \""
	for _, line := range strings.Split(pgn, "\n") {
		if strings.HasPrefix(line, prefix) {
			rest := strings.TrimPrefix(line, prefix)
			if end := strings.Index(rest, "\""); end >= 0 {
				return rest[:end]
			}
		}
		if line == "" {
			break
		}
	}
	return ""
}
