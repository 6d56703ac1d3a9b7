package holiday

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"qota/pkg/logger"
)

// Source returns the public holidays of a year as instants at noon UTC.
// Callers treat a lookup failure as "no holidays"; the admission pipeline
// must not depend on the holiday calendar being reachable.
type Source interface {
	HolidaysForYear(ctx context.Context, year int) ([]time.Time, error)
}

type httpSource struct {
	baseURL    string
	httpClient *http.Client
	log        *logger.Logger
}

func NewHTTPSource(baseURL string, timeout time.Duration, log *logger.Logger) Source {
	return &httpSource{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

type holidayPayload struct {
	Date string `json:"date"`
	Name string `json:"name"`
	Type string `json:"type"`
}

func (s *httpSource) HolidaysForYear(ctx context.Context, year int) ([]time.Time, error) {
	url := fmt.Sprintf("%s/api/feriados/v1/%d", s.baseURL, year)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build holiday request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("holiday lookup failed for %d: %w", year, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("holiday lookup for %d returned status %d", year, resp.StatusCode)
	}

	var payload []holidayPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode holiday response for %d: %w", year, err)
	}

	holidays := make([]time.Time, 0, len(payload))
	for _, h := range payload {
		day, err := time.Parse("2006-01-02", h.Date)
		if err != nil {
			s.log.Warn("Skipping unparseable holiday date", "date", h.Date, "year", year)
			continue
		}
		// Anchored at noon UTC so the inclusive range test is stable across
		// timezone offsets.
		holidays = append(holidays, time.Date(day.Year(), day.Month(), day.Day(), 12, 0, 0, 0, time.UTC))
	}

	return holidays, nil
}
