// Package osrs is the Old School RuneScape hiscores client. The hiscores
// endpoint answers with CSV lines of rank,level,xp in fixed skill order.
package osrs

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/RickyLoader/RileyBot-sub001/internal/stats"
)

// skillNames is the fixed hiscores ordering, Overall first.
var skillNames = []string{
	"Overall", "Attack", "Defence", "Strength", "Hitpoints", "Ranged",
	"Prayer", "Magic", "Cooking", "Woodcutting", "Fletching", "Fishing",
	"Firemaking", "Crafting", "Smithing", "Mining", "Herblore", "Agility",
	"Thieving", "Slayer", "Farming", "Runecrafting", "Hunter", "Construction",
}

// Skill is one hiscores row.
type Skill struct {
	Name  string
	Rank  int64
	Level int64
	XP    int64
}

// Player is a resolved hiscores account.
type Player struct {
	Name    string
	Skills  []Skill // excludes Overall
	Overall Skill
}

// CombatLevel is derived from the core combat skills, rounded down.
func (p *Player) CombatLevel() int {
	skills := map[string]int64{}
	for _, s := range p.Skills {
		skills[s.Name] = s.Level
	}
	base := 0.25 * float64(skills["Defence"]+skills["Hitpoints"]+skills["Prayer"]/2)
	melee := 0.325 * float64(skills["Attack"]+skills["Strength"])
	ranged := 0.325 * float64(skills["Ranged"]/2+skills["Ranged"])
	magic := 0.325 * float64(skills["Magic"]/2+skills["Magic"])
	best := melee
	if ranged > best {
		best = ranged
	}
	if magic > best {
		best = magic
	}
	return int(base + best)
}

// Client looks players up on the hiscores.
type Client struct {
	http    *stats.Client
	baseURL string
	cache   *stats.Cache[*Player]
}

func New(http *stats.Client, baseURL string) *Client {
	return &Client{
		http:    http,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		cache:   stats.NewCache[*Player](0),
	}
}

// Lookup fetches and parses a player's hiscores entry. Unknown names come
// back as stats.ErrNotFound (the hiscores answer 404 for them).
func (c *Client) Lookup(ctx context.Context, name string) (*Player, error) {
	key := strings.ToLower(name)
	if player, ok := c.cache.Get(key); ok {
		return player, nil
	}

	u := fmt.Sprintf("%s/index_lite.ws?player=%s", c.baseURL, url.QueryEscape(name))
	body, err := c.http.FetchBytes(ctx, u, nil)
	if err != nil {
		return nil, err
	}

	player, err := parseHiscores(name, string(body))
	if err != nil {
		return nil, &stats.TransportError{URL: u, Err: err}
	}
	c.cache.Set(key, player)
	return player, nil
}

func parseHiscores(name, body string) (*Player, error) {
	lines := strings.Split(strings.TrimSpace(body), "\n")
	if len(lines) < len(skillNames) {
		return nil, fmt.Errorf("hiscores: expected %d skill rows, got %d", len(skillNames), len(lines))
	}

	player := &Player{Name: name}
	for i, skillName := range skillNames {
		parts := strings.Split(strings.TrimSpace(lines[i]), ",")
		if len(parts) < 3 {
			return nil, fmt.Errorf("hiscores: malformed row %d: %q", i, lines[i])
		}
		rank, err1 := strconv.ParseInt(parts[0], 10, 64)
		level, err2 := strconv.ParseInt(parts[1], 10, 64)
		xp, err3 := strconv.ParseInt(parts[2], 10, 64)
		if err1 != nil || err2 != nil || err3 != nil {
			return nil, fmt.Errorf("hiscores: non-numeric row %d: %q", i, lines[i])
		}

		skill := Skill{Name: skillName, Rank: rank, Level: level, XP: xp}
		if skillName == "Overall" {
			player.Overall = skill
			continue
		}
		player.Skills = append(player.Skills, skill)
	}
	return player, nil
}
