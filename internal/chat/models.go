package chat

import (
	"time"

	"github.com/suPer8Hu/pawtrip/internal/ai"
	"github.com/suPer8Hu/pawtrip/internal/trip"
	"gorm.io/datatypes"
)

// AnonymousUser is the user key for unauthenticated turns.
const AnonymousUser = "anonymous"

type Conversation struct {
	ID        string                          `gorm:"type:varchar(26);primaryKey" json:"id"`
	UserID    string                          `gorm:"type:varchar(64);index:idx_conv_user_updated,priority:1;not null" json:"user_id"`
	History   datatypes.JSONSlice[ai.Message] `gorm:"type:json" json:"history"`
	TripData  datatypes.JSONType[trip.Slots]  `gorm:"type:json" json:"trip_data"`
	CreatedAt time.Time                       `json:"created_at"`
	UpdatedAt time.Time                       `gorm:"index:idx_conv_user_updated,priority:2" json:"updated_at"`
}

func (Conversation) TableName() string { return "conversations" }

const (
	TripPlanned  = "planned"
	TripEnriched = "enriched"
)

type TripRecord struct {
	ID          string                        `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID      string                        `gorm:"type:varchar(64);index;not null" json:"user_id"`
	Departure   string                        `gorm:"type:varchar(255)" json:"departure"`
	Destination string                        `gorm:"type:varchar(255)" json:"destination"`
	StartDate   string                        `gorm:"type:varchar(64)" json:"start_date"`
	PetType     string                        `gorm:"type:varchar(64)" json:"pet_type"`
	Method      string                        `gorm:"type:varchar(32)" json:"method"`
	Status      string                        `gorm:"type:varchar(16);index;not null" json:"status"`
	Steps       datatypes.JSONSlice[trip.Day] `gorm:"type:json" json:"steps"`
	Tips        datatypes.JSONSlice[string]   `gorm:"type:json" json:"tips"`
	CreatedAt   time.Time                     `json:"created_at"`
	UpdatedAt   time.Time                     `json:"updated_at"`
}

func (TripRecord) TableName() string { return "trips" }

// TripDocument is the nested shape trips are exchanged in.
type TripDocument struct {
	ID          string `json:"id"`
	UserID      string `json:"user_id"`
	Departure   string `json:"departure"`
	Destination string `json:"destination"`
	Dates       struct {
		Start string `json:"start"`
	} `json:"dates"`
	Travelers struct {
		Pet struct {
			Type string `json:"type"`
		} `json:"pet"`
	} `json:"travelers"`
	Method    string `json:"method"`
	Status    string `json:"status"`
	Itinerary struct {
		Steps []trip.Day `json:"steps"`
	} `json:"itinerary"`
	Tips struct {
		General []string `json:"general"`
	} `json:"tips"`
}

func (t *TripRecord) Document() TripDocument {
	var d TripDocument
	d.ID = t.ID
	d.UserID = t.UserID
	d.Departure = t.Departure
	d.Destination = t.Destination
	d.Dates.Start = t.StartDate
	d.Travelers.Pet.Type = t.PetType
	d.Method = t.Method
	d.Status = t.Status
	d.Itinerary.Steps = []trip.Day(t.Steps)
	d.Tips.General = []string(t.Tips)
	return d
}
