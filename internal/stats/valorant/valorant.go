// Package valorant fetches per-agent usage for a Valorant account.
package valorant

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	simplejson "github.com/bitly/go-simplejson"

	"github.com/RickyLoader/RileyBot-sub001/internal/stats"
)

// Agent is one agent's usage for the looked-up player.
type Agent struct {
	Name        string
	Role        string
	Matches     int
	Wins        int
	KD          float64
	PortraitURL string
}

// WinRate returns the agent's win percentage.
func (a Agent) WinRate() float64 {
	if a.Matches == 0 {
		return 0
	}
	return 100 * float64(a.Wins) / float64(a.Matches)
}

// Client fetches agent usage from the community API.
type Client struct {
	http    *stats.Client
	baseURL string
	apiKey  string
	cache   *stats.Cache[[]Agent]
}

func New(http *stats.Client, baseURL, apiKey string) *Client {
	return &Client{
		http:    http,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		cache:   stats.NewCache[[]Agent](0),
	}
}

// Lookup resolves "name#tag" into the player's agent usage list.
func (c *Client) Lookup(ctx context.Context, riotID string) ([]Agent, error) {
	name, tag, ok := strings.Cut(riotID, "#")
	if !ok || name == "" || tag == "" {
		return nil, stats.ErrNotFound
	}

	key := strings.ToLower(riotID)
	if agents, ok := c.cache.Get(key); ok {
		return agents, nil
	}

	u := fmt.Sprintf("%s/agents/%s/%s", c.baseURL, url.PathEscape(name), url.PathEscape(tag))
	var header http.Header
	if c.apiKey != "" {
		header = http.Header{"Authorization": []string{c.apiKey}}
	}
	js, err := c.http.FetchJSON(ctx, u, header)
	if err != nil {
		return nil, err
	}

	agents := parseAgents(js)
	if len(agents) == 0 {
		return nil, stats.ErrNotFound
	}
	c.cache.Set(key, agents)
	return agents, nil
}

func parseAgents(js *simplejson.Json) []Agent {
	var agents []Agent
	for i := range js.Get("data").MustArray() {
		a := js.Get("data").GetIndex(i)
		agents = append(agents, Agent{
			Name:        a.Get("name").MustString(),
			Role:        a.Get("role").MustString(),
			Matches:     a.Get("matches").MustInt(),
			Wins:        a.Get("wins").MustInt(),
			KD:          a.Get("kd").MustFloat64(),
			PortraitURL: a.Get("portrait").MustString(),
		})
	}
	return agents
}
