package client

import (
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"qota/pkg/model"
)

type PropertyClient struct {
	httpClient *HttpClient
}

func NewPropertyClient(baseUrl string) *PropertyClient {
	return &PropertyClient{
		httpClient: NewHttpClient(baseUrl),
	}
}

// AsMember sets the identity headers on every subsequent request.
func (c *PropertyClient) AsMember(memberID, displayName string) *PropertyClient {
	c.httpClient.WithHeader("X-Member-Id", memberID)
	c.httpClient.WithHeader("X-Member-Name", displayName)
	return c
}

func (c *PropertyClient) Create(body any) (*Response, error) {
	return c.httpClient.POST("/api/v1/properties", body)
}

func (c *PropertyClient) GetByID(id string) (*Response, error) {
	path := "/api/v1/properties/id/" + url.PathEscape(id)
	return c.httpClient.GET(path)
}

func (c *PropertyClient) GetMine(limit int, offset int64) (*Response, error) {
	path := fmt.Sprintf("/api/v1/properties?limit=%d&offset=%d", limit, offset)
	return c.httpClient.GET(path)
}

func (c *PropertyClient) WaitForHealthy(maxWait time.Duration) error {
	return c.httpClient.WaitForHealthy(maxWait)
}

func (c *PropertyClient) DecodeProperty(resp *Response) (*model.Property, error) {
	var wrapper struct {
		Data json.RawMessage `json:"data"`
	}

	if err := json.Unmarshal(resp.Body, &wrapper); err != nil {
		return nil, fmt.Errorf("could not decode property wrapper:\n%s\n%s", resp.ToString(), err)
	}

	var property model.Property
	if err := json.Unmarshal(wrapper.Data, &property); err != nil {
		return nil, fmt.Errorf("could not decode property json:\n%s\n%s", resp.ToString(), err)
	}

	return &property, nil
}

func (c *PropertyClient) DecodeCreated(resp *Response) (*model.CreatedProperty, error) {
	var wrapper struct {
		Data json.RawMessage `json:"data"`
	}

	if err := json.Unmarshal(resp.Body, &wrapper); err != nil {
		return nil, fmt.Errorf("could not decode created property wrapper:\n%s\n%s", resp.ToString(), err)
	}

	var created model.CreatedProperty
	if err := json.Unmarshal(wrapper.Data, &created); err != nil {
		return nil, fmt.Errorf("could not decode created property json:\n%s\n%s", resp.ToString(), err)
	}

	return &created, nil
}

func (c *PropertyClient) DecodeProperties(resp *Response) ([]*model.Property, *Metadata, error) {
	var wrapper struct {
		Data       json.RawMessage `json:"data"`
		TotalCount int64           `json:"total_count"`
		Limit      int             `json:"limit"`
		Offset     int64           `json:"offset"`
	}

	if err := json.Unmarshal(resp.Body, &wrapper); err != nil {
		return nil, nil, fmt.Errorf("could not decode paginated resp:\n%s\n%s", resp.ToString(), err)
	}

	var properties []*model.Property
	if err := json.Unmarshal(wrapper.Data, &properties); err != nil {
		return nil, nil, fmt.Errorf("could not decode property list:\n%s\n%s", resp.ToString(), err)
	}

	metadata := &Metadata{
		TotalCount: wrapper.TotalCount,
		Limit:      wrapper.Limit,
		Offset:     wrapper.Offset,
	}

	return properties, metadata, nil
}
