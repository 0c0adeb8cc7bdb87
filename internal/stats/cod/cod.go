// Package cod is the Modern Warfare combat-record client.
package cod

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	simplejson "github.com/bitly/go-simplejson"

	"github.com/RickyLoader/RileyBot-sub001/internal/stats"
)

// Weapon is one weapon's lifetime stats.
type Weapon struct {
	Name     string
	Kills    int
	Deaths   int
	Accuracy float64
}

// KD returns the kill/death ratio, with deaths floored at 1.
func (w Weapon) KD() float64 {
	deaths := w.Deaths
	if deaths < 1 {
		deaths = 1
	}
	return float64(w.Kills) / float64(deaths)
}

// MapStat is playtime and win rate on one map.
type MapStat struct {
	Name    string
	Matches int
	Wins    int
}

// WinRate returns the win percentage for the map.
func (m MapStat) WinRate() float64 {
	if m.Matches == 0 {
		return 0
	}
	return 100 * float64(m.Wins) / float64(m.Matches)
}

// ModeStat is time and score in one game mode.
type ModeStat struct {
	Name  string
	Score int
	Time  string
}

// Profile is a player's combat record.
type Profile struct {
	Name       string
	Platform   string
	Level      int
	Kills      int
	Deaths     int
	Wins       int
	Losses     int
	LastPlayed int64 // ms since epoch
	Weapons    []Weapon
	Maps       []MapStat
	Modes      []ModeStat
}

// KD returns the lifetime kill/death ratio.
func (p *Profile) KD() float64 {
	deaths := p.Deaths
	if deaths < 1 {
		deaths = 1
	}
	return float64(p.Kills) / float64(deaths)
}

// Client fetches combat records from the tracker API.
type Client struct {
	http    *stats.Client
	baseURL string
	cache   *stats.Cache[*Profile]
}

func New(http *stats.Client, baseURL string) *Client {
	return &Client{
		http:    http,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		cache:   stats.NewCache[*Profile](0),
	}
}

// Lookup fetches a player's combat record on the given platform.
func (c *Client) Lookup(ctx context.Context, name, platform string) (*Profile, error) {
	key := platform + ":" + strings.ToLower(name)
	if profile, ok := c.cache.Get(key); ok {
		return profile, nil
	}

	u := fmt.Sprintf("%s/standard/profile/%s/%s", c.baseURL, url.PathEscape(platform), url.PathEscape(name))
	js, err := c.http.FetchJSON(ctx, u, nil)
	if err != nil {
		return nil, err
	}

	profile := parseProfile(name, platform, js)
	c.cache.Set(key, profile)
	return profile, nil
}

func parseProfile(name, platform string, js *simplejson.Json) *Profile {
	data := js.Get("data")
	lifetime := data.Get("lifetime")

	profile := &Profile{
		Name:       name,
		Platform:   platform,
		Level:      lifetime.Get("level").MustInt(),
		Kills:      lifetime.Get("kills").MustInt(),
		Deaths:     lifetime.Get("deaths").MustInt(),
		Wins:       lifetime.Get("wins").MustInt(),
		Losses:     lifetime.Get("losses").MustInt(),
		LastPlayed: data.Get("lastPlayed").MustInt64(),
	}

	for i := range data.Get("weapons").MustArray() {
		w := data.Get("weapons").GetIndex(i)
		profile.Weapons = append(profile.Weapons, Weapon{
			Name:     w.Get("name").MustString(),
			Kills:    w.Get("kills").MustInt(),
			Deaths:   w.Get("deaths").MustInt(),
			Accuracy: w.Get("accuracy").MustFloat64(),
		})
	}
	for i := range data.Get("maps").MustArray() {
		m := data.Get("maps").GetIndex(i)
		profile.Maps = append(profile.Maps, MapStat{
			Name:    m.Get("name").MustString(),
			Matches: m.Get("matches").MustInt(),
			Wins:    m.Get("wins").MustInt(),
		})
	}
	for i := range data.Get("modes").MustArray() {
		m := data.Get("modes").GetIndex(i)
		profile.Modes = append(profile.Modes, ModeStat{
			Name:  m.Get("name").MustString(),
			Score: m.Get("score").MustInt(),
			Time:  m.Get("time").MustString(),
		})
	}
	return profile
}
