package chat

import (
	"context"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

// LoadLatestConversation returns the most recently updated conversation
// of userKey, or gorm.ErrRecordNotFound.
func (r *Repo) LoadLatestConversation(ctx context.Context, userKey string) (*Conversation, error) {
	var c Conversation
	res := r.db.WithContext(ctx).
		Where("user_id = ?", userKey).
		Order("updated_at DESC").
		Order("id DESC").
		Limit(1).
		Find(&c)
	if res.Error != nil {
		return nil, res.Error
	}
	// no row is not an sql error here
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &c, nil
}

// UpsertConversation inserts c or overwrites history and trip data of
// the row with the same id. Concurrent writers race; the last one wins.
func (r *Repo) UpsertConversation(ctx context.Context, c *Conversation) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"history", "trip_data", "updated_at"}),
		}).
		Create(c).Error
}

func (r *Repo) InsertTrip(ctx context.Context, t *TripRecord) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *Repo) GetTrip(ctx context.Context, id string) (*TripRecord, error) {
	var t TripRecord
	res := r.db.WithContext(ctx).Where("id = ?", id).Limit(1).Find(&t)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrTripNotFound
	}
	return &t, nil
}

func (r *Repo) ListTrips(ctx context.Context, userKey string, limit int) ([]TripRecord, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var out []TripRecord
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userKey).
		Order("created_at DESC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Repo) UpdateTripTips(ctx context.Context, id string, tips []string, status string) error {
	res := r.db.WithContext(ctx).Model(&TripRecord{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"tips":   datatypes.JSONSlice[string](tips),
			"status": status,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrTripNotFound
	}
	return nil
}
