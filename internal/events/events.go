// Package events publishes domain events for created customers and orders.
package events

import (
	"encoding/json"
	"fmt"
	"time"

	"crm-graphql/internal/domain"

	"github.com/google/uuid"
)

const (
	EventCustomerCreated = "CustomerCreated"
	EventOrderCreated    = "OrderCreated"

	producerName = "crm-api"
)

// Envelope wraps every event payload on the wire
type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	Payload       json.RawMessage `json:"payload"`
}

type CustomerCreatedPayload struct {
	CustomerID string `json:"customer_id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Phone      string `json:"phone,omitempty"`
}

type OrderCreatedPayload struct {
	OrderID     string    `json:"order_id"`
	CustomerID  string    `json:"customer_id"`
	ProductIDs  []string  `json:"product_ids"`
	TotalAmount string    `json:"total_amount"`
	OrderDate   time.Time `json:"order_date"`
}

// NewEnvelope marshals payload into a fresh version 1 envelope
func NewEnvelope(eventType, correlationID string, payload interface{}) (Envelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, fmt.Errorf("encode %s payload: %w", eventType, err)
	}

	return Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      producerName,
		CorrelationID: correlationID,
		Payload:       raw,
	}, nil
}

func CustomerCreated(c *domain.Customer) (Envelope, error) {
	return NewEnvelope(EventCustomerCreated, c.ID.String(), CustomerCreatedPayload{
		CustomerID: c.ID.String(),
		Name:       c.Name,
		Email:      c.Email,
		Phone:      c.Phone,
	})
}

func OrderCreated(o *domain.Order) (Envelope, error) {
	productIDs := make([]string, 0, len(o.Products))
	for _, id := range o.ProductIDs() {
		productIDs = append(productIDs, id.String())
	}

	return NewEnvelope(EventOrderCreated, o.ID.String(), OrderCreatedPayload{
		OrderID:     o.ID.String(),
		CustomerID:  o.CustomerID.String(),
		ProductIDs:  productIDs,
		TotalAmount: o.TotalAmount.StringFixed(2),
		OrderDate:   o.OrderDate.UTC(),
	})
}
