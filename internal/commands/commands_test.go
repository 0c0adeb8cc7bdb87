package commands

import (
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RickyLoader/RileyBot-sub001/internal/command"
	"github.com/RickyLoader/RileyBot-sub001/internal/config"
	"github.com/RickyLoader/RileyBot-sub001/internal/lookup"
	"github.com/RickyLoader/RileyBot-sub001/internal/pager"
	"github.com/RickyLoader/RileyBot-sub001/internal/storage"
)

type recordingMessenger struct {
	mu      sync.Mutex
	replies []string
	bodies  []*pager.Body
	nextID  int
}

func (r *recordingMessenger) SendMessage(channelID string, body *pager.Body, controls []pager.Control) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.replies = append(r.replies, body.Description)
	r.bodies = append(r.bodies, body)
	r.nextID++
	return fmt.Sprintf("msg-%d", r.nextID), nil
}

func (r *recordingMessenger) EditMessage(channelID, messageID string, body *pager.Body, controls []pager.Control) error {
	return nil
}

func (r *recordingMessenger) DeleteMessage(channelID, messageID string) error { return nil }

func (r *recordingMessenger) last() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.replies) == 0 {
		return ""
	}
	return r.replies[len(r.replies)-1]
}

func (r *recordingMessenger) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.replies)
}

func (r *recordingMessenger) lastBody() *pager.Body {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.bodies) == 0 {
		return nil
	}
	return r.bodies[len(r.bodies)-1]
}

func newTestContext(t *testing.T, content string) (*command.Context, *recordingMessenger) {
	t.Helper()
	store, err := storage.New(filepath.Join(t.TempDir(), "bot.json"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	m := &recordingMessenger{}
	return &command.Context{
		Content:   content,
		UserID:    "u1",
		Username:  "tester",
		ChannelID: "c1",
		GuildID:   "g1",
		Messenger: m,
		Pagers:    pager.NewRegistry(),
		Storage:   store,
		InFlight:  lookup.New(zerolog.Nop()),
		Config: &config.Config{
			MaxQueryLength: 30,
			LookupTimeout:  time.Second,
			TablePageSize:  5,
		},
		Log: zerolog.Nop(),
	}, m
}

func TestResolveQueryEmptyShowsHelp(t *testing.T) {
	ctx, m := newTestContext(t, "osrs")

	query, handled, err := resolveQuery(ctx, "osrs", "osrs", "usage text")
	require.NoError(t, err)
	assert.True(t, handled)
	assert.Empty(t, query)
	assert.Equal(t, "usage text", m.last())
}

func TestResolveQuerySaveAndMe(t *testing.T) {
	ctx, m := newTestContext(t, "osrs save Zezima")

	_, handled, err := resolveQuery(ctx, "osrs", "osrs", "usage text")
	require.NoError(t, err)
	assert.True(t, handled)
	assert.Contains(t, m.last(), "Zezima")

	ctx.Content = "osrs me"
	query, handled, err := resolveQuery(ctx, "osrs", "osrs", "usage text")
	require.NoError(t, err)
	assert.False(t, handled)
	assert.Equal(t, "Zezima", query)
}

func TestResolveQueryMeWithoutSave(t *testing.T) {
	ctx, m := newTestContext(t, "osrs me")

	query, handled, err := resolveQuery(ctx, "osrs", "osrs", "usage text")
	require.NoError(t, err)
	assert.True(t, handled)
	assert.Empty(t, query)
	assert.Contains(t, m.last(), "no saved osrs name")
}

func TestResolveQueryMention(t *testing.T) {
	ctx, m := newTestContext(t, "osrs <@42>")
	require.NoError(t, ctx.Storage.SetSavedName("42", "osrs", "Woox"))

	query, handled, err := resolveQuery(ctx, "osrs", "osrs", "usage text")
	require.NoError(t, err)
	assert.False(t, handled)
	assert.Equal(t, "Woox", query)

	// Nickname-style mention syntax resolves the same user.
	ctx.Content = "osrs <@!42>"
	query, _, err = resolveQuery(ctx, "osrs", "osrs", "usage text")
	require.NoError(t, err)
	assert.Equal(t, "Woox", query)

	// A mentioned user with nothing saved gets told so.
	ctx.Content = "osrs <@43>"
	_, handled, err = resolveQuery(ctx, "osrs", "osrs", "usage text")
	require.NoError(t, err)
	assert.True(t, handled)
	assert.Contains(t, m.last(), "no saved osrs name")
}

func TestResolveQueryPrefersGatewayMentionList(t *testing.T) {
	ctx, _ := newTestContext(t, "osrs <@42>")
	require.NoError(t, ctx.Storage.SetSavedName("42", "osrs", "Woox"))

	// When the gateway supplies the parsed mention, it wins over the regex
	// extraction from the raw text.
	ctx.Mentions = []string{"42"}
	query, handled, err := resolveQuery(ctx, "osrs", "osrs", "usage text")
	require.NoError(t, err)
	assert.False(t, handled)
	assert.Equal(t, "Woox", query)
}

func TestResolveQueryOverLengthShowsHelp(t *testing.T) {
	long := "osrs this-name-is-far-too-long-to-be-a-real-player-name"
	ctx, m := newTestContext(t, long)

	_, handled, err := resolveQuery(ctx, "osrs", "osrs", "usage text")
	require.NoError(t, err)
	assert.True(t, handled)
	assert.Equal(t, "usage text", m.last())
}

func TestResolveQueryPlainName(t *testing.T) {
	ctx, _ := newTestContext(t, "osrs lynx titan")

	query, handled, err := resolveQuery(ctx, "osrs", "osrs", "usage text")
	require.NoError(t, err)
	assert.False(t, handled)
	assert.Equal(t, "lynx titan", query)
}

func TestSplitPlatform(t *testing.T) {
	cases := []struct {
		query, name, platform string
	}{
		{"zesty", "zesty", "battle"},
		{"zesty psn", "zesty", "psn"},
		{"zesty XBL", "zesty", "xbl"},
		{"two words steam", "two words", "steam"},
		{"not a platform", "not a platform", "battle"},
	}
	for _, tc := range cases {
		name, platform := splitPlatform(tc.query)
		assert.Equal(t, tc.name, name, tc.query)
		assert.Equal(t, tc.platform, platform, tc.query)
	}
}

func TestMatchesTrigger(t *testing.T) {
	assert.True(t, matchesTrigger("mw", "mw"))
	assert.True(t, matchesTrigger("mw", "mw zesty"))
	assert.False(t, matchesTrigger("mw", "mw2"))
	assert.False(t, matchesTrigger("mw", "osrs zesty"))
}

type fakeDeletable struct{ deleted bool }

func (f *fakeDeletable) Delete() { f.deleted = true }

func TestLiveMessagesSupersede(t *testing.T) {
	live := newLiveMessages()

	first := &fakeDeletable{}
	live.replace("c1", first)
	assert.False(t, first.deleted)

	// New message in the same channel supersedes the previous one.
	second := &fakeDeletable{}
	live.replace("c1", second)
	assert.True(t, first.deleted)
	assert.False(t, second.deleted)

	// Other channels keep their own live message.
	other := &fakeDeletable{}
	live.replace("c2", other)
	assert.False(t, second.deleted)
}

func TestPingAndHelp(t *testing.T) {
	ctx, m := newTestContext(t, "ping")
	ping := NewPing()
	require.True(t, ping.Matches("ping"))
	require.NoError(t, ping.Execute(ctx))
	assert.NotEmpty(t, m.last())
}
