// Package storage is the typed facade over the JSON datastore. It keeps
// per-user saved gamertags and a capped per-guild command history.
package storage

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/RickyLoader/RileyBot-sub001/datastore"
)

const commandHistoryLimit = 20

// Storage wraps the datastore with the bot's record types.
type Storage struct {
	ds *datastore.Store
}

// UserRecord holds everything stored per Discord user.
type UserRecord struct {
	SavedNames map[string]string `json:"saved_names"` // key = game namespace, e.g. "osrs"
}

// CommandHistoryRecord is one dispatched command, kept for the history view.
type CommandHistoryRecord struct {
	ChannelID string    `json:"channel_id"`
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	Command   string    `json:"command"`
	Query     string    `json:"query"`
	Datetime  time.Time `json:"datetime"`
}

// GuildRecord holds everything stored per guild.
type GuildRecord struct {
	CommandsHistory []CommandHistoryRecord `json:"cmd_history"`
}

// New opens (or creates) the datastore file at filePath.
func New(filePath string) (*Storage, error) {
	ds, err := datastore.Open(filePath)
	if err != nil {
		return nil, err
	}
	return &Storage{ds: ds}, nil
}

// NewWithStore wraps an already-open datastore. Used by tests.
func NewWithStore(ds *datastore.Store) *Storage {
	return &Storage{ds: ds}
}

// Close flushes and closes the underlying datastore.
func (s *Storage) Close() error {
	return s.ds.Close()
}

// GetSavedName returns the stored name for a user in a game namespace,
// or "" when nothing is saved.
func (s *Storage) GetSavedName(userID, namespace string) (string, error) {
	record, err := s.getOrCreateUserRecord(userID)
	if err != nil {
		return "", err
	}
	return record.SavedNames[namespace], nil
}

// SetSavedName stores a name for a user in a game namespace.
func (s *Storage) SetSavedName(userID, namespace, name string) error {
	record, err := s.getOrCreateUserRecord(userID)
	if err != nil {
		return err
	}
	record.SavedNames[namespace] = name
	s.ds.Set(userKey(userID), record)
	return nil
}

// AppendCommandToHistory appends to a guild's command history, trimming it
// to the configured cap.
func (s *Storage) AppendCommandToHistory(guildID string, entry CommandHistoryRecord) error {
	record, err := s.getOrCreateGuildRecord(guildID)
	if err != nil {
		return err
	}
	record.CommandsHistory = append(record.CommandsHistory, entry)
	if len(record.CommandsHistory) > commandHistoryLimit {
		record.CommandsHistory = record.CommandsHistory[len(record.CommandsHistory)-commandHistoryLimit:]
	}
	s.ds.Set(guildKey(guildID), record)
	return nil
}

// FetchCommandHistory returns a guild's recorded command history.
func (s *Storage) FetchCommandHistory(guildID string) ([]CommandHistoryRecord, error) {
	record, err := s.getOrCreateGuildRecord(guildID)
	if err != nil {
		return nil, err
	}
	return record.CommandsHistory, nil
}

func userKey(userID string) string   { return "user:" + userID }
func guildKey(guildID string) string { return "guild:" + guildID }

// getOrCreateUserRecord reads a user record, round-tripping through JSON
// because the datastore hands back generic maps after a reload.
func (s *Storage) getOrCreateUserRecord(userID string) (*UserRecord, error) {
	record := &UserRecord{SavedNames: map[string]string{}}
	raw, ok := s.ds.Get(userKey(userID))
	if !ok {
		return record, nil
	}
	if err := decodeRecord(raw, record); err != nil {
		return nil, fmt.Errorf("storage: user record %s: %w", userID, err)
	}
	if record.SavedNames == nil {
		record.SavedNames = map[string]string{}
	}
	return record, nil
}

func (s *Storage) getOrCreateGuildRecord(guildID string) (*GuildRecord, error) {
	record := &GuildRecord{}
	raw, ok := s.ds.Get(guildKey(guildID))
	if !ok {
		return record, nil
	}
	if err := decodeRecord(raw, record); err != nil {
		return nil, fmt.Errorf("storage: guild record %s: %w", guildID, err)
	}
	return record, nil
}

func decodeRecord(raw any, out any) error {
	data, err := json.Marshal(raw)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}
