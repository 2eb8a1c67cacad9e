package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/suPer8Hu/pawtrip/internal/ai"
	"github.com/suPer8Hu/pawtrip/internal/itinerary"
	"github.com/suPer8Hu/pawtrip/internal/tools"
	"github.com/suPer8Hu/pawtrip/internal/trip"
)

// TripPublisher announces newly inserted trips. Publishing is best-effort.
type TripPublisher interface {
	PublishTrip(ctx context.Context, tripID, userID string) error
}

type Options struct {
	Provider          string
	Model             string
	ContextWindowSize int
	Tracker           *trip.Tracker
	Parser            *itinerary.Parser
	Defaults          *trip.Defaults
	Publisher         TripPublisher
}

type Service struct {
	store      Persistence
	repo       *Repo
	registry   *ai.Registry
	dispatcher *tools.Dispatcher
	confirmer  *tools.Confirmer
	tracker    *trip.Tracker
	parser     *itinerary.Parser
	publisher  TripPublisher

	provider          string
	model             string
	contextWindowSize int
}

const defaultProvider = "ollama"

// NewService wires the turn pipeline. repo may be nil when trips are
// never enriched by this process.
func NewService(store Persistence, repo *Repo, registry *ai.Registry, dispatcher *tools.Dispatcher, opts Options) *Service {
	if opts.ContextWindowSize <= 0 || opts.ContextWindowSize > 100 {
		opts.ContextWindowSize = 20
	}
	if opts.Provider == "" {
		opts.Provider = defaultProvider
	}
	if opts.Tracker == nil {
		opts.Tracker = trip.DefaultTracker()
	}
	if opts.Parser == nil {
		opts.Parser = itinerary.NewParser()
	}
	defaults := trip.DefaultDefaults()
	if opts.Defaults != nil {
		defaults = *opts.Defaults
	}
	return &Service{
		store:             store,
		repo:              repo,
		registry:          registry,
		dispatcher:        dispatcher,
		confirmer:         tools.NewConfirmer(dispatcher, opts.Parser, defaults),
		tracker:           opts.Tracker,
		parser:            opts.Parser,
		publisher:         opts.Publisher,
		provider:          opts.Provider,
		model:             opts.Model,
		contextWindowSize: opts.ContextWindowSize,
	}
}

// Confirmer exposes the itinerary synthesizer so callers can adjust its clock.
func (s *Service) Confirmer() *tools.Confirmer { return s.confirmer }

type TurnResult struct {
	ID             string     `json:"id"`
	Role           string     `json:"role"`
	Content        string     `json:"content"`
	TripID         string     `json:"tripId,omitempty"`
	TripData       trip.Slots `json:"tripData"`
	ConversationID string     `json:"conversationId"`
}

// Turn runs one dialogue turn for userKey over the full client-side
// message history and returns the assistant reply.
func (s *Service) Turn(ctx context.Context, userKey string, messages []ai.Message) (*TurnResult, error) {
	// 1) validate
	lastUser, err := validateMessages(messages)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(userKey) == "" {
		userKey = AnonymousUser
	}

	// 2) resume from the latest conversation
	snap, found := s.store.LoadLatest(ctx, userKey)
	convID := snap.ID
	if !found || convID == "" {
		if convID, err = NewConversationID(); err != nil {
			return nil, err
		}
	}

	// 3) slots
	slots := s.tracker.Update(messages, snap.Slots)

	// 4) model
	provider, err := s.registry.Get(ctx, s.provider, s.model)
	if err != nil {
		return nil, &UpstreamError{Provider: s.provider, Err: err}
	}
	prompt := append([]ai.Message{{Role: ai.RoleSystem, Content: systemPrompt(slots)}},
		window(messages, s.contextWindowSize)...)
	completion, err := provider.Chat(ctx, prompt, s.dispatcher.Specs())
	if err != nil {
		return nil, &UpstreamError{Provider: s.provider, Err: err}
	}
	if completion == nil {
		completion = &ai.Completion{}
	}

	reply := completion.Content
	if completion.ToolCall != nil {
		reply += s.dispatcher.Dispatch(ctx, *completion.ToolCall, slots)
	}

	// 5) confirmation
	var tripID string
	if tools.Triggered(lastUser, slots) {
		cf := s.confirmer.Confirm(ctx, slots)
		slots.Activities = cf.Slots.Activities
		rec := newTripRecord(userKey, cf)
		if s.store.InsertTrip(ctx, rec) {
			tripID = rec.ID
			s.publish(ctx, rec)
		}
		reply += cf.Summary()
	}

	reply = strings.TrimSpace(reply)
	if reply == "" {
		reply = fallbackReply
	}

	// 6) persist
	history := make([]ai.Message, 0, len(messages)+1)
	history = append(history, messages...)
	history = append(history, ai.Message{Role: ai.RoleAssistant, Content: reply})
	s.store.Upsert(ctx, convID, userKey, history, slots)

	msgID, err := NewConversationID()
	if err != nil {
		return nil, err
	}
	return &TurnResult{
		ID:             msgID,
		Role:           ai.RoleAssistant,
		Content:        reply,
		TripID:         tripID,
		TripData:       slots,
		ConversationID: convID,
	}, nil
}

func validateMessages(messages []ai.Message) (string, error) {
	if len(messages) == 0 {
		return "", &ValidationError{Field: "messages", Reason: "at least one message is required"}
	}
	lastUser := ""
	for i, m := range messages {
		switch m.Role {
		case ai.RoleUser, ai.RoleAssistant, ai.RoleSystem:
		default:
			return "", &ValidationError{Field: "messages", Reason: "unknown role at index " + strconv.Itoa(i)}
		}
		if m.Role == ai.RoleUser && strings.TrimSpace(m.Content) != "" {
			lastUser = m.Content
		}
	}
	if lastUser == "" {
		return "", &ValidationError{Field: "messages", Reason: "a non-empty user message is required"}
	}
	return lastUser, nil
}

func newTripRecord(userKey string, cf tools.Confirmation) *TripRecord {
	start := cf.Slots.TravelDate
	if len(cf.Days) > 0 && cf.Days[0].Date != "" {
		start = cf.Days[0].Date
	}
	return &TripRecord{
		ID:          uuid.NewString(),
		UserID:      userKey,
		Departure:   cf.Slots.Departure,
		Destination: cf.Slots.Destination,
		StartDate:   start,
		PetType:     cf.Slots.PetType,
		Method:      "car",
		Status:      TripPlanned,
		Steps:       cf.Days,
		Tips:        cf.Tips,
	}
}

func (s *Service) publish(ctx context.Context, rec *TripRecord) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishTrip(ctx, rec.ID, rec.UserID); err != nil {
		slog.Warn("publish trip event failed", "err", err, "trip_id", rec.ID)
	}
}

type PetDetails struct {
	Type  string `json:"type"`
	Name  string `json:"name"`
	Breed string `json:"breed"`
	Size  string `json:"size"`
}

type ItineraryTrip struct {
	Destination string     `json:"destination"`
	PetDetails  PetDetails `json:"petDetails"`
	Days        []trip.Day `json:"days"`
}

type ItineraryRequest struct {
	Trip ItineraryTrip `json:"trip"`
}

type ItineraryResult struct {
	Days        []trip.Day `json:"days"`
	RawResponse string     `json:"rawResponse"`
}

// GenerateItinerary asks the model for a full itinerary and parses it
// onto the request's days. Days the text does not cover are returned
// unchanged.
func (s *Service) GenerateItinerary(ctx context.Context, req ItineraryRequest) (*ItineraryResult, error) {
	if strings.TrimSpace(req.Trip.Destination) == "" {
		return nil, &ValidationError{Field: "trip.destination", Reason: "is required"}
	}
	if len(req.Trip.Days) == 0 {
		return nil, &ValidationError{Field: "trip.days", Reason: "at least one day is required"}
	}
	days := trip.CloneDays(req.Trip.Days)
	for i := range days {
		if days[i].DayNumber == 0 {
			days[i].DayNumber = i + 1
		}
		if days[i].Activities == nil {
			days[i].Activities = []trip.Activity{}
		}
	}
	req.Trip.Days = days

	provider, err := s.registry.Get(ctx, s.provider, s.model)
	if err != nil {
		return nil, &UpstreamError{Provider: s.provider, Err: err}
	}
	completion, err := provider.Chat(ctx, itineraryPrompt(req), nil)
	if err != nil {
		return nil, &UpstreamError{Provider: s.provider, Err: err}
	}
	if completion == nil {
		completion = &ai.Completion{}
	}

	return &ItineraryResult{
		Days:        s.parser.Parse(completion.Content, days),
		RawResponse: completion.Content,
	}, nil
}

// EnrichTrip appends hotel suggestions to a stored trip's general tips
// and marks it enriched. A failing place provider leaves the trip
// untouched and returns ErrEnrichmentUnavailable.
func (s *Service) EnrichTrip(ctx context.Context, tripID string) error {
	if s.repo == nil {
		return errNoRepo
	}
	rec, err := s.repo.GetTrip(ctx, tripID)
	if err != nil {
		return err
	}
	if rec.Status == TripEnriched {
		return nil
	}
	res, ok := s.dispatcher.Invoke(ctx, tools.HotelSearch, tools.Args{Destination: rec.Destination})
	if !ok {
		return fmt.Errorf("%w: %s is not registered", ErrEnrichmentUnavailable, tools.HotelSearch)
	}
	if res.Err != nil {
		// leave the trip planned so the event can be retried
		return fmt.Errorf("%w: %v", ErrEnrichmentUnavailable, res.Err)
	}
	tips := append([]string(nil), rec.Tips...)
	if !res.Fallback && len(res.Names) > 0 {
		tips = append(tips, "Pet-friendly stays: "+strings.Join(res.Names, ", "))
	}
	return s.repo.UpdateTripTips(ctx, rec.ID, tips, TripEnriched)
}

var errNoRepo = errors.New("chat: trip lookups require a repo")

// ListTrips returns the most recent trips planned by userKey.
func (s *Service) ListTrips(ctx context.Context, userKey string, limit int) ([]TripDocument, error) {
	if s.repo == nil {
		return nil, errNoRepo
	}
	recs, err := s.repo.ListTrips(ctx, userKey, limit)
	if err != nil {
		return nil, err
	}
	out := make([]TripDocument, 0, len(recs))
	for i := range recs {
		out = append(out, recs[i].Document())
	}
	return out, nil
}

// GetTrip returns one trip of userKey. Trips of other users are reported
// as not found.
func (s *Service) GetTrip(ctx context.Context, userKey, tripID string) (*TripDocument, error) {
	if s.repo == nil {
		return nil, errNoRepo
	}
	rec, err := s.repo.GetTrip(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if rec.UserID != userKey {
		return nil, ErrTripNotFound
	}
	doc := rec.Document()
	return &doc, nil
}
