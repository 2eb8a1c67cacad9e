package itinerary

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/suPer8Hu/pawtrip/internal/trip"
)

func testParser() *Parser {
	n := 0
	return &Parser{Periods: DefaultPeriods(), NewID: func() string {
		n++
		return fmt.Sprintf("act-%d", n)
	}}
}

func fiveDays() []trip.Day {
	return ExpandDays(5, "Rome", time.Time{}, false)
}

func TestNormalizeTime(t *testing.T) {
	morning := Clock{Hour: 9}
	cases := []struct {
		raw, start, end string
	}{
		{"2:30 PM", "14:30", "15:30"},
		{"12:15 AM", "00:15", "01:15"},
		{"12:45 PM", "12:45", "13:45"},
		{"9:05 am", "09:05", "10:05"},
		{"7:00 p.m.", "19:00", "20:00"},
		{"23:30", "23:30", "23:30"},
		{"11:30 PM", "23:30", "23:30"},
		{"22:10", "22:10", "23:10"},
		{"", "09:00", "10:00"},
		{"25:00", "09:00", "10:00"},
		{"noon", "09:00", "10:00"},
	}
	for _, tc := range cases {
		t.Run(tc.raw, func(t *testing.T) {
			start, end := NormalizeTime(tc.raw, morning)
			assert.Equal(t, tc.start, start)
			assert.Equal(t, tc.end, end)
		})
	}
}

func TestIsPetFriendly(t *testing.T) {
	assert.True(t, IsPetFriendly("Yes, leashed"))
	assert.True(t, IsPetFriendly("YES"))
	assert.False(t, IsPetFriendly("Partial, dogs only"))
	assert.False(t, IsPetFriendly("No"))
	assert.False(t, IsPetFriendly(""))
}

func TestParse_MorningActivityScenario(t *testing.T) {
	text := `DAY 1: Arrival
MORNING
- Activity 1: Colosseum walk - 2:30 PM
  Location: Piazza del Colosseo
  Description: Stroll around the arena.
  Pet-friendly: Yes, leashed
`
	days := testParser().Parse(text, fiveDays())

	require.Len(t, days, 5)
	require.Len(t, days[0].Activities, 1)
	a := days[0].Activities[0]
	assert.Equal(t, "act-1", a.ID)
	assert.Equal(t, trip.TypeActivity, a.Type)
	assert.Equal(t, "Colosseum walk", a.Title)
	assert.Equal(t, "Piazza del Colosseo", a.Location)
	assert.Equal(t, "Stroll around the arena.", a.Description)
	assert.Equal(t, "14:30", a.StartTime)
	assert.Equal(t, "15:30", a.EndTime)
	assert.True(t, a.IsPetFriendly)
}

func TestParse_OutOfRangeDayIsIgnored(t *testing.T) {
	text := `DAY 7: Bonus day
MORNING
- Activity 1: Beach - 9:00 AM
  Pet-friendly: Yes
`
	in := fiveDays()
	days := testParser().Parse(text, in)

	assert.Len(t, days, 5)
	for _, d := range days {
		assert.Empty(t, d.Activities)
	}
}

func TestParse_NonIntegerDayIsSkipped(t *testing.T) {
	text := `DAY two: Oops
MORNING
- Activity 1: Beach
DAY 2: Fine
EVENING
- Activity 1: Dinner cruise
`
	days := testParser().Parse(text, fiveDays())
	assert.Empty(t, days[0].Activities)
	require.Len(t, days[1].Activities, 1)
	assert.Equal(t, "Dinner cruise", days[1].Activities[0].Title)
	assert.Equal(t, "18:00", days[1].Activities[0].StartTime)
	assert.Equal(t, "19:00", days[1].Activities[0].EndTime)
}

func TestParse_ActivitiesBeforeMealsWithinPeriod(t *testing.T) {
	text := `Day 2: Old town
Afternoon:
- Lunch: Trattoria da Enzo - 12:30 PM
  Location: Trastevere
  Pet-friendly: Partial, dogs only
- Activity 1: Pantheon - 2:00 PM
  Pet-friendly: yes
- Activity 2: Gelato stop
Evening:
- Dinner: Rooftop - 8:00 PM
`
	days := testParser().Parse(text, fiveDays())
	acts := days[1].Activities
	require.Len(t, acts, 4)

	assert.Equal(t, "Pantheon", acts[0].Title)
	assert.Equal(t, trip.TypeActivity, acts[0].Type)
	assert.Equal(t, "14:00", acts[0].StartTime)
	assert.True(t, acts[0].IsPetFriendly)

	assert.Equal(t, "Gelato stop", acts[1].Title)
	assert.Equal(t, "13:00", acts[1].StartTime)

	assert.Equal(t, "Trattoria da Enzo", acts[2].Title)
	assert.Equal(t, trip.TypeRestaurant, acts[2].Type)
	assert.Equal(t, "12:30", acts[2].StartTime)
	assert.Equal(t, "Trastevere", acts[2].Location)
	assert.False(t, acts[2].IsPetFriendly)

	assert.Equal(t, "Rooftop", acts[3].Title)
	assert.Equal(t, "20:00", acts[3].StartTime)
}

func TestParse_MissingPeriodsLeaveDayUntouched(t *testing.T) {
	in := fiveDays()
	in[2].Activities = []trip.Activity{{ID: "keep", Title: "Existing"}}

	text := `DAY 3: Rest
Nothing planned, just relax with your dog.
`
	days := testParser().Parse(text, in)
	require.Len(t, days[2].Activities, 1)
	assert.Equal(t, "keep", days[2].Activities[0].ID)
}

func TestParse_ReplacesWholesaleAndCopiesInput(t *testing.T) {
	in := fiveDays()
	in[0].Activities = []trip.Activity{{ID: "old"}, {ID: "older"}}

	days := testParser().Parse("DAY 1: New\nMORNING\n- Activity: Park run\n", in)

	require.Len(t, days[0].Activities, 1)
	assert.Equal(t, "Park run", days[0].Activities[0].Title)
	assert.Len(t, in[0].Activities, 2)
	assert.Equal(t, "old", in[0].Activities[0].ID)
}

func TestParse_MarkdownAndMultilineDescription(t *testing.T) {
	text := `## **Day 4:** Hills
**Morning**
* **Activity 1:** Hike to the ridge - 8:15 AM
  - **Location:** Monte Mario
  - **Description:** Shaded trail with water stops.
    Bring a collapsible bowl.
  - **Pet-friendly:** Yes
`
	days := testParser().Parse(text, fiveDays())
	require.Len(t, days[3].Activities, 1)
	a := days[3].Activities[0]
	assert.Equal(t, "Hike to the ridge", a.Title)
	assert.Equal(t, "Monte Mario", a.Location)
	assert.Equal(t, "Shaded trail with water stops.\nBring a collapsible bowl.", a.Description)
	assert.Equal(t, "08:15", a.StartTime)
	assert.True(t, a.IsPetFriendly)
}

func TestParse_NoHeadingsIsNoop(t *testing.T) {
	in := fiveDays()
	days := testParser().Parse("Sorry, I can't help with that.", in)
	assert.Equal(t, in, days)
}

func TestExtractPasses(t *testing.T) {
	section := `- Breakfast: Cafe Roma - 8:00 AM
- Activity 1: Villa Borghese
  Description: Big park.
- Dinner: Osteria
`
	acts := ExtractActivities(section)
	require.Len(t, acts, 1)
	assert.Equal(t, "Villa Borghese", acts[0].Title)
	assert.Equal(t, "Big park.", acts[0].Description)

	meals := ExtractMeals(section)
	require.Len(t, meals, 2)
	assert.Equal(t, "Cafe Roma", meals[0].Title)
	assert.Equal(t, "8:00 AM", meals[0].Time)
	assert.Empty(t, meals[0].Description)
	assert.Equal(t, "Osteria", meals[1].Title)

	all := ExtractEntries(section)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"Villa Borghese", "Cafe Roma", "Osteria"},
		[]string{all[0].Title, all[1].Title, all[2].Title})
}

func TestSplitPeriods_IgnoresInlineWords(t *testing.T) {
	block := `MORNING
- Activity 1: Walk
  Description: Morning walk by the river.
EVENING
- Activity 1: Show
`
	sections := SplitPeriods(block)
	assert.Len(t, sections, 2)
	assert.Contains(t, sections["MORNING"], "Morning walk by the river.")
	assert.NotContains(t, sections, "AFTERNOON")
}

func TestParse_DayHeadingAfterProse(t *testing.T) {
	text := "Here is your plan. DAY 1: Arrival\nMORNING:\n- Activity 1: Canal walk - 9:30 AM\n  Description: Meet at the pier every day 6:30 sharp.\n  Pet-friendly: Yes\n" +
		"Sure! Day 2: Museums\nEVENING\n- Activity 1: Night market\n" +
		"DAY 99999999999999999999: Overflow\nMORNING\n- Activity 1: Nowhere\n"

	blocks := SplitDays(text)
	require.Len(t, blocks, 2)
	assert.Equal(t, 1, blocks[0].Number)
	assert.Equal(t, 2, blocks[1].Number)

	days := testParser().Parse(text, fiveDays())
	require.Len(t, days[0].Activities, 1)
	assert.Equal(t, "Canal walk", days[0].Activities[0].Title)
	assert.Equal(t, "09:30", days[0].Activities[0].StartTime)
	assert.Equal(t, "Meet at the pier every day 6:30 sharp.", days[0].Activities[0].Description)
	require.Len(t, days[1].Activities, 1)
	assert.Equal(t, "Night market", days[1].Activities[0].Title)
	assert.Len(t, days, 5)
}
