package common

import (
	"os"
	"testing"
	"time"

	"qota/pkg/client"

	"github.com/google/uuid"
)

const healthWait = 30 * time.Second

// PropertiesURL returns the base URL of a running properties service, or
// skips the test when none is configured.
func PropertiesURL(t *testing.T) string {
	t.Helper()
	url := os.Getenv("TEST_PROPERTIES_URL")
	if url == "" {
		t.Skip("TEST_PROPERTIES_URL not set; skipping integration test")
	}
	return url
}

// ReservationsURL returns the base URL of a running reservations service, or
// skips the test when none is configured.
func ReservationsURL(t *testing.T) string {
	t.Helper()
	url := os.Getenv("TEST_RESERVATIONS_URL")
	if url == "" {
		t.Skip("TEST_RESERVATIONS_URL not set; skipping integration test")
	}
	return url
}

func PropertyClient(t *testing.T, memberID, displayName string) *client.PropertyClient {
	t.Helper()
	c := client.NewPropertyClient(PropertiesURL(t)).AsMember(memberID, displayName)
	if err := c.WaitForHealthy(healthWait); err != nil {
		t.Fatalf("properties service not healthy: %v", err)
	}
	return c
}

func ReservationClient(t *testing.T, memberID, displayName string) *client.ReservationClient {
	t.Helper()
	c := client.NewReservationClient(ReservationsURL(t)).AsMember(memberID, displayName)
	if err := c.WaitForHealthy(healthWait); err != nil {
		t.Fatalf("reservations service not healthy: %v", err)
	}
	return c
}

// UniqueMemberID isolates each test run's data.
func UniqueMemberID(prefix string) string {
	return prefix + "-" + uuid.New().String()
}
