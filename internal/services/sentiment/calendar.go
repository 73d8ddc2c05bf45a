package sentiment

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/pkg/errors"
)

const (
	calendarURL         = "https://www.myfxbook.com/forex-economic-calendar"
	calendarHTTPTimeout = 20 * time.Second
	maxCalendarEvents   = 10
)

// CalendarEvent one upcoming economic calendar entry.
type CalendarEvent struct {
	Time     string
	Currency string
	Name     string
	Impact   string
}

// CalendarScraper scrapes high-impact events from a public economic calendar.
type CalendarScraper struct {
	url        string
	httpClient *http.Client
}

// NewCalendarScraper creates a calendar scraper.
func NewCalendarScraper() *CalendarScraper {
	return &CalendarScraper{
		url: calendarURL,
		httpClient: &http.Client{
			Timeout: calendarHTTPTimeout,
		},
	}
}

// FetchEvents downloads the calendar page and extracts event rows.
func (s *CalendarScraper) FetchEvents(ctx context.Context) ([]CalendarEvent, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, errors.Wrap(err, "create calendar request")
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "fetch economic calendar")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("economic calendar returned status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "parse calendar HTML")
	}

	table := findEventTable(doc)
	if table == nil {
		return nil, errors.New("no event table found in calendar page")
	}

	var events []CalendarEvent
	table.Find("tbody tr").EachWithBreak(func(_ int, row *goquery.Selection) bool {
		cells := row.Find("td").Map(func(_ int, cell *goquery.Selection) string {
			return strings.TrimSpace(cell.Text())
		})
		if len(cells) < 4 {
			return true
		}
		events = append(events, CalendarEvent{
			Time:     cells[0],
			Currency: cells[1],
			Name:     cells[2],
			Impact:   cells[3],
		})
		return len(events) < maxCalendarEvents
	})

	return events, nil
}

// findEventTable locates the table whose headers mention time, currency and
// event columns. The page layout changes occasionally, so matching by header
// text is sturdier than a fixed selector.
func findEventTable(doc *goquery.Document) *goquery.Selection {
	var table *goquery.Selection
	doc.Find("table").EachWithBreak(func(_ int, t *goquery.Selection) bool {
		headers := strings.ToLower(t.Find("th").Text())
		if strings.Contains(headers, "event") &&
			(strings.Contains(headers, "time") || strings.Contains(headers, "currency")) {
			table = t
			return false
		}
		return true
	})
	return table
}
