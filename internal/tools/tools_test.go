package tools

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/suPer8Hu/pawtrip/internal/ai"
	"github.com/suPer8Hu/pawtrip/internal/itinerary"
	"github.com/suPer8Hu/pawtrip/internal/places"
	"github.com/suPer8Hu/pawtrip/internal/trip"
)

type fakeSearcher struct {
	queries []string
	results map[string][]places.Place
	err     error
}

func (f *fakeSearcher) Search(ctx context.Context, query string, limit int) ([]places.Place, error) {
	f.queries = append(f.queries, query)
	if f.err != nil {
		return nil, f.err
	}
	// longest matching prefix wins
	var best string
	for prefix := range f.results {
		if strings.HasPrefix(query, prefix) && len(prefix) > len(best) {
			best = prefix
		}
	}
	return f.results[best], nil
}

func names(ns ...string) []places.Place {
	out := make([]places.Place, 0, len(ns))
	for _, n := range ns {
		out = append(out, places.Place{Name: n})
	}
	return out
}

func TestPlaceSearch_NetworkErrorFallsBack(t *testing.T) {
	s := &fakeSearcher{err: errors.New("dial tcp: connection refused")}
	res := NewPlaceSearch(s).Invoke(context.Background(), Args{Destination: "Rome", Tags: []string{"family"}})

	assert.Equal(t, []string{"Explore local parks"}, res.Names)
	assert.True(t, res.Fallback)
	assert.EqualError(t, res.Err, "dial tcp: connection refused")
	assert.Equal(t, []string{"pet-friendly family in Rome"}, s.queries)
}

func TestSearchTools_LimitsAndFallbacks(t *testing.T) {
	s := &fakeSearcher{results: map[string][]places.Place{
		"pet-friendly hotels": names("H1", "H2", "H3"),
		"vet clinic":          names("V1", "V2", "V3"),
		"pet-friendly":        names("P1", "P2", "P3", "P4"),
	}}
	ctx := context.Background()

	assert.Equal(t, []string{"P1", "P2", "P3"}, NewPlaceSearch(s).Invoke(ctx, Args{Destination: "Rome"}).Names)
	assert.Equal(t, []string{"V1", "V2"}, NewVetSearch(s).Invoke(ctx, Args{Destination: "Rome"}).Names)
	assert.Equal(t, []string{"H1", "H2"}, NewHotelSearch(s).Invoke(ctx, Args{Destination: "Rome"}).Names)
	assert.Equal(t, []string{"pet-friendly in Rome", "vet clinic near Rome", "pet-friendly hotels near Rome"}, s.queries)

	empty := &fakeSearcher{}
	assert.Equal(t, []string{"Local Vet Clinic"}, NewVetSearch(empty).Invoke(ctx, Args{Destination: "Rome"}).Names)
	hotels := NewHotelSearch(empty).Invoke(ctx, Args{Destination: "Rome"})
	assert.Equal(t, []string{"Pet-Friendly Hotel"}, hotels.Names)
	assert.True(t, hotels.Fallback)
	assert.NoError(t, hotels.Err)
}

func TestResult_Fragment(t *testing.T) {
	r := Result{Label: "Nearby vets", Icon: "🏥", Names: []string{"A", "B"}}
	assert.Equal(t, "\n\n**Nearby vets:** 🏥 A, 🏥 B", r.Fragment())
	assert.Empty(t, Result{}.Fragment())
}

func TestDispatch_FillsArgumentsFromSlots(t *testing.T) {
	s := &fakeSearcher{results: map[string][]places.Place{"pet-friendly": names("Beach")}}
	d, err := NewDefaultDispatcher(s)
	require.NoError(t, err)

	slots := trip.Slots{Destination: "Nice", ActivityTags: []string{"relaxing", "eco"}}
	out := d.Dispatch(context.Background(), ai.ToolCall{Name: PlaceSearch, Arguments: `{}`}, slots)

	assert.Equal(t, "\n\n**Pet-friendly places:** 📍 Beach", out)
	assert.Equal(t, []string{"pet-friendly relaxing eco in Nice"}, s.queries)
}

func TestDispatch_StringTagsAreSplit(t *testing.T) {
	s := &fakeSearcher{results: map[string][]places.Place{"pet-friendly": names("Trail")}}
	d, err := NewDefaultDispatcher(s)
	require.NoError(t, err)

	_ = d.Dispatch(context.Background(), ai.ToolCall{Name: PlaceSearch, Arguments: `{"destination":"Bern","tags":"adventure, eco"}`}, trip.Slots{})
	assert.Equal(t, []string{"pet-friendly adventure eco in Bern"}, s.queries)
}

func TestDispatch_InvalidArgumentsUseFallback(t *testing.T) {
	s := &fakeSearcher{results: map[string][]places.Place{"vet clinic": names("V1")}}
	d, err := NewDefaultDispatcher(s)
	require.NoError(t, err)

	out := d.Dispatch(context.Background(), ai.ToolCall{Name: VetSearch, Arguments: `not json`}, trip.Slots{})
	assert.Equal(t, "\n\n**Nearby vets:** 🏥 Local Vet Clinic", out)
	assert.Empty(t, s.queries)
}

type looseTool struct {
	calls int
}

func (l *looseTool) Name() string        { return "looseSearch" }
func (l *looseTool) Description() string { return "accepts any destination" }
func (l *looseTool) Schema() map[string]any {
	return map[string]any{
		"type":       "object",
		"properties": map[string]any{"destination": map[string]any{}},
	}
}
func (l *looseTool) Invoke(ctx context.Context, args Args) Result {
	l.calls++
	return Result{Tool: l.Name(), Names: []string{args.Destination}}
}

func TestDispatch_UndecodableArgumentsAreNotInvoked(t *testing.T) {
	tool := &looseTool{}
	d, err := NewDispatcher(tool)
	require.NoError(t, err)

	// passes the schema, but a number cannot decode into the destination string
	out := d.Dispatch(context.Background(), ai.ToolCall{Name: "looseSearch", Arguments: `{"destination":5}`}, trip.Slots{})
	assert.Empty(t, out)
	assert.Zero(t, tool.calls)

	out = d.Dispatch(context.Background(), ai.ToolCall{Name: "looseSearch", Arguments: `{"destination":"Oslo"}`}, trip.Slots{})
	assert.Contains(t, out, "Oslo")
	assert.Equal(t, 1, tool.calls)
}

func TestDispatch_UnknownToolIsSilent(t *testing.T) {
	d, err := NewDefaultDispatcher(&fakeSearcher{})
	require.NoError(t, err)
	assert.Empty(t, d.Dispatch(context.Background(), ai.ToolCall{Name: "flightSearch"}, trip.Slots{Destination: "Rome"}))
}

func TestSpecs_ExposeThreeTools(t *testing.T) {
	d, err := NewDefaultDispatcher(&fakeSearcher{})
	require.NoError(t, err)
	specs := d.Specs()
	require.Len(t, specs, 3)
	assert.Equal(t, []string{PlaceSearch, VetSearch, HotelSearch}, []string{specs[0].Name, specs[1].Name, specs[2].Name})
	assert.Equal(t, "object", specs[0].Parameters["type"])
}

func TestTriggered(t *testing.T) {
	known := trip.Slots{Departure: "Paris", Destination: "Rome"}
	assert.True(t, Triggered("Yes!", known))
	assert.True(t, Triggered("yes, build the itinerary", trip.Slots{}))
	assert.False(t, Triggered("yes", trip.Slots{Destination: "Rome"}))
	assert.False(t, Triggered("show me the itinerary", known))
}

func TestConfirm_BuildsTripWithDefaults(t *testing.T) {
	s := &fakeSearcher{results: map[string][]places.Place{
		"vet clinic": names("Clinica Roma"),
		"pet-friendly": {
			{Name: "Villa Borghese", Address: "Piazzale Napoleone I", PlaceID: "vb", Lat: 41.91, Lng: 12.49},
			{Name: "Appia Antica"},
		},
	}}
	d, err := NewDefaultDispatcher(s)
	require.NoError(t, err)
	c := NewConfirmer(d, itinerary.NewParser(), trip.DefaultDefaults()).
		WithClock(func() time.Time { return time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC) })

	cf := c.Confirm(context.Background(), trip.Slots{Departure: "Paris", Destination: "Rome", TravelDate: "june 5"})

	assert.Equal(t, "dog", cf.Slots.PetType)
	assert.Equal(t, []string{"family", "adventure"}, cf.Slots.ActivityTags)
	assert.Equal(t, []string{"Villa Borghese", "Appia Antica"}, cf.Slots.Activities)
	assert.Equal(t, []string{"pet-friendly family adventure in Rome", "vet clinic near Rome"}, s.queries)

	require.Len(t, cf.Days, 5)
	assert.Equal(t, "2026-06-05", cf.Days[0].Date)
	vb := cf.Days[1].Activities[0]
	assert.Equal(t, "Villa Borghese", vb.Title)
	assert.Equal(t, "vb", vb.PlaceID)
	assert.Equal(t, "Piazzale Napoleone I", vb.Location)
	require.NotNil(t, vb.Coordinates)
	assert.Equal(t, 41.91, vb.Coordinates.Lat)
	assert.Contains(t, cf.Days[3].Activities[0].Title, "Free time to explore Rome")
	assert.Equal(t, "Nearby vets: Clinica Roma", cf.Days[4].Activities[0].Description)

	assert.Contains(t, cf.Tips, "Vets near Rome: Clinica Roma")
	assert.Contains(t, cf.Summary(), "Paris to Rome")
	assert.Contains(t, cf.Summary(), "📍 Villa Borghese")
}

func TestConfirm_ProviderDownStillBuildsItinerary(t *testing.T) {
	d, err := NewDefaultDispatcher(&fakeSearcher{err: errors.New("timeout")})
	require.NoError(t, err)
	cf := NewConfirmer(d, itinerary.NewParser(), trip.DefaultDefaults()).
		Confirm(context.Background(), trip.Slots{Destination: "Rome"})

	assert.Equal(t, []string{"Explore local parks"}, cf.Places.Names)
	assert.Equal(t, []string{"Local Vet Clinic"}, cf.Vets.Names)
	require.Len(t, cf.Days, 5)
	assert.Equal(t, "Explore local parks", cf.Days[1].Activities[0].Title)
	assert.Empty(t, cf.Days[0].Date)
}
