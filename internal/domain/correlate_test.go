package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func aug(day int) Date { return NewDate(2025, time.August, day) }

func TestDiversionsActiveOn(t *testing.T) {
	table := DiversionTable{
		{StartDate: aug(10), EndDate: aug(20), StopID: "01001"},
		{StartDate: aug(15), EndDate: aug(15), StopID: "01002"},
		{StartDate: aug(1), EndDate: aug(9), StopID: "01003"},
	}

	tests := []struct {
		name string
		day  Date
		want []string
	}{
		{"inside range", aug(15), []string{"01001", "01002"}},
		{"start boundary", aug(10), []string{"01001"}},
		{"end boundary", aug(20), []string{"01001"}},
		{"after range", aug(21), nil},
		{"earlier range", aug(5), []string{"01003"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []string
			for _, d := range DiversionsActiveOn(table, tt.day) {
				got = append(got, d.StopID)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRoutesFor(t *testing.T) {
	routes := RouteTable{
		{Date: aug(15), StopID: "01001", Route: "172"},
		{Date: aug(15), StopID: "01001", Route: "172"},
		{Date: aug(15), StopID: "01001", Route: "1711"},
		{Date: aug(15), StopID: "01001", Route: ""},
		{Date: aug(16), StopID: "01001", Route: "601"},
		{Date: aug(15), StopID: "09999", Route: "7016"},
	}

	t.Run("duplicates collapse", func(t *testing.T) {
		got := RoutesFor(RouteTable{
			{Date: aug(15), StopID: "01001", Route: "172"},
			{Date: aug(15), StopID: "01001", Route: "172"},
		}, aug(15), []string{"01001"})
		assert.Equal(t, map[string][]string{"01001": {"172"}}, got)
		assert.Equal(t, "172", JoinRoutes(got["01001"]))
	})

	t.Run("sorted set per stop filtered by date", func(t *testing.T) {
		got := RoutesFor(routes, aug(15), []string{"01001", "01002"})
		assert.Equal(t, []string{"1711", "172"}, got["01001"])
		require.Contains(t, got, "01002")
		assert.Empty(t, got["01002"])
		assert.NotNil(t, got["01002"])
		assert.NotContains(t, got, "09999")
	})

	t.Run("blank labels are left out", func(t *testing.T) {
		got := RoutesFor(RouteTable{
			{Date: aug(15), StopID: "01001", Route: ""},
			{Date: aug(15), StopID: "01001", Route: "172"},
			{Date: aug(15), StopID: "01002", Route: ""},
		}, aug(15), []string{"01001", "01002"})
		assert.Equal(t, "172", JoinRoutes(got["01001"]))
		assert.Equal(t, []string{}, got["01002"])
	})
}

func TestDayDiversions(t *testing.T) {
	diversions := DiversionTable{
		{StartDate: aug(10), EndDate: aug(20), StopID: "01001", StopName: "세종문화회관"},
		{StartDate: aug(10), EndDate: aug(20), StopID: "01002", StopName: "광화문"},
	}
	routes := RouteTable{
		{Date: aug(15), StopID: "01001", Route: "606"},
		{Date: aug(15), StopID: "01001", Route: "172"},
	}

	views := DayDiversions(diversions, routes, aug(15))
	require.Len(t, views, 2)
	assert.Equal(t, "01001", views[0].StopID)
	assert.Equal(t, []string{"172", "606"}, views[0].Routes)
	assert.Equal(t, "172, 606", views[0].RouteLabel)
	assert.Equal(t, "01002", views[1].StopID)
	assert.Empty(t, views[1].Routes)
	assert.Empty(t, views[1].RouteLabel)

	assert.Nil(t, DayDiversions(diversions, routes, aug(21)))
}

func TestEventsOn(t *testing.T) {
	events := EventTable{
		{Date: aug(15), Start: "13:00", End: "15:00", Location: "B"},
		{Date: aug(15), Start: "09:00", End: "12:00", Location: "C"},
		{Date: aug(16), Start: "08:00", End: "09:00", Location: "X"},
		{Date: aug(15), Start: "09:00", End: "12:00", Location: "A"},
	}

	got := EventsOn(events, aug(15))
	require.Len(t, got, 3)
	assert.Equal(t, "A", got[0].Location)
	assert.Equal(t, "C", got[1].Location)
	assert.Equal(t, "B", got[2].Location)
}
