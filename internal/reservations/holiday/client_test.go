package holiday

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"qota/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Config{
		Level:     "info",
		Format:    logger.JSON,
		AddSource: false,
		Service:   "test",
	})
}

func TestHolidaysForYear(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/feriados/v1/2026" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"date":"2026-01-01","name":"Confraternização mundial","type":"national"},
			{"date":"2026-04-21","name":"Tiradentes","type":"national"},
			{"date":"not-a-date","name":"Broken","type":"national"}
		]`))
	}))
	defer server.Close()

	source := NewHTTPSource(server.URL, 2*time.Second, testLogger())

	holidays, err := source.HolidaysForYear(context.Background(), 2026)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(holidays) != 2 {
		t.Fatalf("expected 2 holidays, got %d", len(holidays))
	}

	want := time.Date(2026, time.January, 1, 12, 0, 0, 0, time.UTC)
	if !holidays[0].Equal(want) {
		t.Errorf("expected %v, got %v", want, holidays[0])
	}
}

func TestHolidaysForYear_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	source := NewHTTPSource(server.URL, 2*time.Second, testLogger())

	if _, err := source.HolidaysForYear(context.Background(), 2026); err == nil {
		t.Error("expected error, got nil")
	}
}

func TestHolidaysForYear_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	source := NewHTTPSource(server.URL, 20*time.Millisecond, testLogger())

	if _, err := source.HolidaysForYear(context.Background(), 2026); err == nil {
		t.Error("expected timeout error, got nil")
	}
}

func TestHolidaysForYear_MalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"not":"a list"}`))
	}))
	defer server.Close()

	source := NewHTTPSource(server.URL, 2*time.Second, testLogger())

	if _, err := source.HolidaysForYear(context.Background(), 2026); err == nil {
		t.Error("expected decode error, got nil")
	}
}
