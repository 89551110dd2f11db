package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"verleih/pkg/model"
)

// RentalClient talks to the rentals HTTP API on behalf of one user.
type RentalClient struct {
	httpClient *HttpClient
}

func NewRentalClient(baseURL, userID string) *RentalClient {
	c := NewHttpClient(baseURL)
	c.Headers["X-User-ID"] = userID
	return &RentalClient{httpClient: c}
}

func (c *RentalClient) Create(ctx context.Context, req *model.RentalRequest) (*Response, error) {
	return c.httpClient.POST(ctx, "/api/v1/rentals", req)
}

func (c *RentalClient) GetByID(ctx context.Context, id string) (*Response, error) {
	return c.httpClient.GET(ctx, "/api/v1/rentals/"+url.PathEscape(id))
}

func (c *RentalClient) Transitions(ctx context.Context, id string) (*Response, error) {
	return c.httpClient.GET(ctx, "/api/v1/rentals/"+url.PathEscape(id)+"/transitions")
}

func (c *RentalClient) ChangeState(ctx context.Context, id string, req *model.StateChangeRequest) (*Response, error) {
	return c.httpClient.POST(ctx, "/api/v1/rentals/"+url.PathEscape(id)+"/state", req)
}

func (c *RentalClient) ListByDepot(ctx context.Context, depotID string, limit int, offset int64) (*Response, error) {
	path := fmt.Sprintf("/api/v1/depots/%s/rentals?limit=%d&offset=%d", url.PathEscape(depotID), limit, offset)
	return c.httpClient.GET(ctx, path)
}

func (c *RentalClient) Availability(ctx context.Context, depotID string, start, end time.Time) (*Response, error) {
	q := url.Values{}
	if !start.IsZero() {
		q.Set("start_date", start.Format(time.RFC3339))
	}
	if !end.IsZero() {
		q.Set("return_date", end.Format(time.RFC3339))
	}
	path := "/api/v1/depots/" + url.PathEscape(depotID) + "/availability"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	return c.httpClient.GET(ctx, path)
}

func (c *RentalClient) DecodeRental(resp *Response) (*model.Rental, error) {
	var wrapper struct {
		Data json.RawMessage `json:"data"`
	}
	if err := resp.DecodeJSON(&wrapper); err != nil {
		return nil, fmt.Errorf("could not decode rental wrapper: %s: %w", resp, err)
	}

	var rental model.Rental
	if err := json.Unmarshal(wrapper.Data, &rental); err != nil {
		return nil, fmt.Errorf("could not decode rental json: %s: %w", resp, err)
	}
	return &rental, nil
}
