package chat

import (
	"context"
	"errors"
	"log/slog"

	"github.com/suPer8Hu/pawtrip/internal/ai"
	"github.com/suPer8Hu/pawtrip/internal/trip"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Snapshot is the state a turn resumes from.
type Snapshot struct {
	ID      string
	History []ai.Message
	Slots   trip.Slots
}

// Persistence is the datastore contract the turn pipeline relies on.
// Implementations must not fail a turn: errors are logged and dropped.
type Persistence interface {
	LoadLatest(ctx context.Context, userKey string) (Snapshot, bool)
	Upsert(ctx context.Context, id, userKey string, history []ai.Message, slots trip.Slots)
	InsertTrip(ctx context.Context, t *TripRecord) bool
}

// Store implements Persistence on top of Repo.
type Store struct {
	repo *Repo
}

func NewStore(repo *Repo) *Store {
	return &Store{repo: repo}
}

func (s *Store) LoadLatest(ctx context.Context, userKey string) (Snapshot, bool) {
	c, err := s.repo.LoadLatestConversation(ctx, userKey)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			slog.Error("load conversation failed", "err", err, "user_id", userKey)
		}
		return Snapshot{}, false
	}
	return Snapshot{ID: c.ID, History: []ai.Message(c.History), Slots: c.TripData.Data()}, true
}

func (s *Store) Upsert(ctx context.Context, id, userKey string, history []ai.Message, slots trip.Slots) {
	c := &Conversation{
		ID:       id,
		UserID:   userKey,
		History:  datatypes.JSONSlice[ai.Message](history),
		TripData: datatypes.NewJSONType(slots),
	}
	if err := s.repo.UpsertConversation(ctx, c); err != nil {
		slog.Error("upsert conversation failed", "err", err, "conversation_id", id, "user_id", userKey)
	}
}

func (s *Store) InsertTrip(ctx context.Context, t *TripRecord) bool {
	if err := s.repo.InsertTrip(ctx, t); err != nil {
		slog.Error("insert trip failed", "err", err, "trip_id", t.ID, "user_id", t.UserID)
		return false
	}
	return true
}
