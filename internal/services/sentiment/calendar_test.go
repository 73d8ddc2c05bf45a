package sentiment

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

const calendarPage = `<html><body>
<table>
  <thead><tr><th>Something</th><th>Else</th></tr></thead>
  <tbody><tr><td>irrelevant</td><td>table</td></tr></tbody>
</table>
<table>
  <thead><tr><th>Time</th><th>Currency</th><th>Event</th><th>Impact</th></tr></thead>
  <tbody>
    <tr><td>14:30</td><td>USD</td><td>CPI</td><td>High</td></tr>
    <tr><td>16:00</td><td>EUR</td><td>Retail Sales</td><td>Low</td></tr>
    <tr><td>broken row</td></tr>
  </tbody>
</table>
</body></html>`

func newCalendarTestScraper(t *testing.T, handler http.HandlerFunc) *CalendarScraper {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	scraper := NewCalendarScraper()
	scraper.url = srv.URL
	return scraper
}

func TestCalendarScraper_FetchEvents(t *testing.T) {
	scraper := newCalendarTestScraper(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(calendarPage))
	})

	events, err := scraper.FetchEvents(context.Background())
	require.NoError(t, err)
	require.Len(t, events, 2)

	require.Equal(t, CalendarEvent{Time: "14:30", Currency: "USD", Name: "CPI", Impact: "High"}, events[0])
	require.Equal(t, "Retail Sales", events[1].Name)
}

func TestCalendarScraper_NoEventTable(t *testing.T) {
	scraper := newCalendarTestScraper(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html><body><p>maintenance</p></body></html>`))
	})

	_, err := scraper.FetchEvents(context.Background())
	require.ErrorContains(t, err, "no event table")
}

func TestCalendarScraper_HTTPErrorStatus(t *testing.T) {
	scraper := newCalendarTestScraper(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := scraper.FetchEvents(context.Background())
	require.ErrorContains(t, err, "status 503")
}

func TestCalendarScraper_CapsEventCount(t *testing.T) {
	page := `<html><body><table>
<thead><tr><th>Time</th><th>Currency</th><th>Event</th><th>Impact</th></tr></thead>
<tbody>`
	for i := 0; i < 30; i++ {
		page += `<tr><td>10:00</td><td>USD</td><td>Event</td><td>Low</td></tr>`
	}
	page += `</tbody></table></body></html>`

	scraper := newCalendarTestScraper(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(page))
	})

	events, err := scraper.FetchEvents(context.Background())
	require.NoError(t, err)
	require.Len(t, events, maxCalendarEvents)
}
