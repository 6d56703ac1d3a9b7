package client

import (
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"qota/pkg/model"
)

type ReservationClient struct {
	httpClient *HttpClient
}

func NewReservationClient(baseUrl string) *ReservationClient {
	return &ReservationClient{
		httpClient: NewHttpClient(baseUrl),
	}
}

// AsMember sets the identity headers on every subsequent request.
func (c *ReservationClient) AsMember(memberID, displayName string) *ReservationClient {
	c.httpClient.WithHeader("X-Member-Id", memberID)
	c.httpClient.WithHeader("X-Member-Name", displayName)
	return c
}

func (c *ReservationClient) Create(body any) (*Response, error) {
	return c.httpClient.POST("/api/v1/reservations", body)
}

func (c *ReservationClient) CreateWithHeaders(body any, headers map[string]string) (*Response, error) {
	return c.httpClient.POSTWithHeaders("/api/v1/reservations", body, headers)
}

func (c *ReservationClient) GetByID(id string) (*Response, error) {
	path := "/api/v1/reservations/id/" + url.PathEscape(id)
	return c.httpClient.GET(path)
}

func (c *ReservationClient) GetByProperty(propertyID string, startDate string, endDate string, limit int, offset int64) (*Response, error) {
	q := url.Values{}
	if startDate != "" {
		q.Set("start_date", startDate)
	}
	if endDate != "" {
		q.Set("end_date", endDate)
	}
	q.Set("limit", fmt.Sprintf("%d", limit))
	q.Set("offset", fmt.Sprintf("%d", offset))

	path := "/api/v1/reservations/property/" + url.PathEscape(propertyID) + "?" + q.Encode()
	return c.httpClient.GET(path)
}

func (c *ReservationClient) Cancel(id string) (*Response, error) {
	path := "/api/v1/reservations/id/" + url.PathEscape(id)
	return c.httpClient.DELETE(path)
}

func (c *ReservationClient) WaitForHealthy(maxWait time.Duration) error {
	return c.httpClient.WaitForHealthy(maxWait)
}

func (c *ReservationClient) DecodeReservation(resp *Response) (*model.Reservation, error) {
	var wrapper struct {
		Data json.RawMessage `json:"data"`
	}

	if err := json.Unmarshal(resp.Body, &wrapper); err != nil {
		return nil, fmt.Errorf("could not decode reservation wrapper:\n%s\n%s", resp.ToString(), err)
	}

	var reservation model.Reservation
	if err := json.Unmarshal(wrapper.Data, &reservation); err != nil {
		return nil, fmt.Errorf("could not decode reservation json:\n%s\n%s", resp.ToString(), err)
	}

	return &reservation, nil
}

func (c *ReservationClient) DecodeReservations(resp *Response) ([]*model.Reservation, *Metadata, error) {
	var wrapper struct {
		Data       json.RawMessage `json:"data"`
		TotalCount int64           `json:"total_count"`
		Limit      int             `json:"limit"`
		Offset     int64           `json:"offset"`
	}

	if err := json.Unmarshal(resp.Body, &wrapper); err != nil {
		return nil, nil, fmt.Errorf("could not decode paginated resp:\n%s\n%s", resp.ToString(), err)
	}

	var reservations []*model.Reservation
	if err := json.Unmarshal(wrapper.Data, &reservations); err != nil {
		return nil, nil, fmt.Errorf("could not decode reservation list:\n%s\n%s", resp.ToString(), err)
	}

	metadata := &Metadata{
		TotalCount: wrapper.TotalCount,
		Limit:      wrapper.Limit,
		Offset:     wrapper.Offset,
	}

	return reservations, metadata, nil
}
