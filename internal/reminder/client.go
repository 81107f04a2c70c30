package reminder

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"crm-graphql/internal/transport"
)

const recentOrdersQuery = `query RecentOrders($cutoff: DateTime!) {
  orders(orderDate_Gte: $cutoff) {
    id
    customer {
      email
    }
  }
}`

// Order is an order due a reminder
type Order struct {
	ID            string
	CustomerEmail string
}

// OrderFetcher lists orders placed at or after cutoff
type OrderFetcher interface {
	RecentOrders(ctx context.Context, cutoff time.Time) ([]Order, error)
}

// GraphQLClient fetches recent orders from the CRM GraphQL endpoint
type GraphQLClient struct {
	url        string
	httpClient *http.Client
}

// NewGraphQLClient creates a client for url. Every call is bounded by timeout.
func NewGraphQLClient(url string, timeout time.Duration) *GraphQLClient {
	return &GraphQLClient{
		url:        url,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type recentOrdersResponse struct {
	Data *struct {
		Orders []struct {
			ID       string `json:"id"`
			Customer *struct {
				Email string `json:"email"`
			} `json:"customer"`
		} `json:"orders"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

func (c *GraphQLClient) RecentOrders(ctx context.Context, cutoff time.Time) ([]Order, error) {
	body, err := json.Marshal(transport.GraphQLRequest{
		Query: recentOrdersQuery,
		Variables: map[string]interface{}{
			"cutoff": cutoff.Format(time.RFC3339),
		},
		OperationName: "RecentOrders",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status %d from %s", resp.StatusCode, c.url)
	}

	var decoded recentOrdersResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if len(decoded.Errors) > 0 {
		messages := make([]string, 0, len(decoded.Errors))
		for _, e := range decoded.Errors {
			messages = append(messages, e.Message)
		}
		return nil, errors.New(strings.Join(messages, "; "))
	}

	if decoded.Data == nil {
		return nil, errors.New("response has no data")
	}

	orders := make([]Order, 0, len(decoded.Data.Orders))
	for _, o := range decoded.Data.Orders {
		order := Order{ID: o.ID}
		if o.Customer != nil {
			order.CustomerEmail = o.Customer.Email
		}
		orders = append(orders, order)
	}

	return orders, nil
}
