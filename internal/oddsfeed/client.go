// Package oddsfeed fetches head-to-head market prices from The Odds API and
// reduces each event to a single sharp quote.
package oddsfeed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const defaultBaseURL = "https://api.the-odds-api.com"

var (
	// ErrUnauthorized means the API key was rejected
	ErrUnauthorized = errors.New("odds api: invalid api key")
	// ErrSportUnavailable means the sport is not part of the subscription
	ErrSportUnavailable = errors.New("odds api: sport not in subscription")
)

// Event is one fixture as returned by the odds provider
type Event struct {
	ID           string      `json:"id"`
	CommenceTime time.Time   `json:"commence_time"`
	HomeTeam     string      `json:"home_team"`
	AwayTeam     string      `json:"away_team"`
	Bookmakers   []Bookmaker `json:"bookmakers"`
}

// Bookmaker is one bookmaker's markets for an event
type Bookmaker struct {
	Key     string   `json:"key"`
	Title   string   `json:"title"`
	Markets []Market `json:"markets"`
}

// Market is a single market such as h2h
type Market struct {
	Key      string         `json:"key"`
	Outcomes []PriceOutcome `json:"outcomes"`
}

// PriceOutcome is a named decimal price
type PriceOutcome struct {
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

// Client talks to The Odds API v4
type Client struct {
	http    *RateLimitedHTTPClient
	baseURL string
	apiKey  string
	logger  *logrus.Entry
}

// NewClient creates an odds API client. An empty baseURL selects the public endpoint.
func NewClient(httpClient *RateLimitedHTTPClient, baseURL, apiKey string, logger *logrus.Logger) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &Client{
		http:    httpClient,
		baseURL: baseURL,
		apiKey:  apiKey,
		logger:  logger.WithField("component", "oddsfeed"),
	}
}

// FetchEvents returns upcoming events with decimal h2h prices for one sport key
func (c *Client) FetchEvents(ctx context.Context, sportKey, regions string) ([]Event, error) {
	q := url.Values{}
	q.Set("apiKey", c.apiKey)
	q.Set("regions", regions)
	q.Set("markets", "h2h")
	q.Set("oddsFormat", "decimal")
	q.Set("dateFormat", "iso")
	endpoint := fmt.Sprintf("%s/v4/sports/%s/odds/?%s", c.baseURL, url.PathEscape(sportKey), q.Encode())

	resp, err := c.http.Get(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("odds api request for %s: %w", sportKey, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, ErrUnauthorized
	case resp.StatusCode == http.StatusUnprocessableEntity:
		return nil, fmt.Errorf("%w: %s", ErrSportUnavailable, sportKey)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("odds api HTTP %d: %s", resp.StatusCode, body)
	}

	var events []Event
	if err := json.NewDecoder(resp.Body).Decode(&events); err != nil {
		return nil, fmt.Errorf("decode odds response: %w", err)
	}

	c.logger.WithFields(logrus.Fields{
		"sport_key":       sportKey,
		"events":          len(events),
		"requests_remain": resp.Header.Get("x-requests-remaining"),
	}).Debug("Fetched odds events")
	return events, nil
}
