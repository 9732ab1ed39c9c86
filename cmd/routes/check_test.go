package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/couchcryptid/rally-detour/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func aug(day int) domain.Date { return domain.NewDate(2025, time.August, day) }

func TestCheckCoverage(t *testing.T) {
	diversions := domain.DiversionTable{
		{StartDate: aug(15), EndDate: aug(16), StopID: "01001", StopName: "세종문화회관"},
		{StartDate: aug(15), EndDate: aug(15), StopID: "01001", StopName: "세종문화회관"},
	}
	routes := domain.RouteTable{
		{Date: aug(15), StopID: "01001", Route: "172"},
		{Date: aug(16), StopID: "01001", Route: ""},
	}

	p := checkCoverage(diversions, routes)
	require.Len(t, p.issues, 1)
	assert.Contains(t, p.issues[0], "2025-08-16 stop 01001")

	routes = append(routes, domain.RouteMapping{Date: aug(16), StopID: "01001", Route: "172"})
	assert.True(t, checkCoverage(diversions, routes).passed())
}

func TestCheckOrphans(t *testing.T) {
	diversions := domain.DiversionTable{{StartDate: aug(15), EndDate: aug(15), StopID: "01001"}}
	routes := domain.RouteTable{
		{Date: aug(15), StopID: "01001", Route: "172"},
		{Date: aug(17), StopID: "01001", Route: "172"},
		{Date: aug(17), StopID: "01001", Route: "606"},
	}

	p := checkOrphans(diversions, routes)
	assert.Equal(t, []string{"2025-08-17 stop 01001 is not diverted"}, p.issues)
}

func TestReport(t *testing.T) {
	var buf bytes.Buffer
	ok := report(&buf, []*phase{checkDropped("Diversion rows parse", 0)}, 3, 5)
	assert.True(t, ok)
	assert.Contains(t, buf.String(), "PASS")
	assert.Contains(t, buf.String(), "Rows: 3 diversions, 5 routes")

	buf.Reset()
	failing := &phase{name: "Diverted stops have routes"}
	for range maxReportedIssues + 2 {
		failing.issuef("missing")
	}
	ok = report(&buf, []*phase{failing}, 0, 0)
	assert.False(t, ok)
	assert.Contains(t, buf.String(), "FAIL (22 issues)")
	assert.Contains(t, buf.String(), "... 2 more")
}
