package registry

import (
	"encoding/json"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/angelmondragon/pos-backend/pkg/config"
	"github.com/angelmondragon/pos-backend/pkg/db/models"
	"github.com/angelmondragon/pos-backend/pkg/enums"
	"github.com/angelmondragon/pos-backend/pkg/outbox"
	"github.com/angelmondragon/pos-backend/pkg/outbox/payloads"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func TestEventRegistryResolveSaleCreated(t *testing.T) {
	reg := newTestEventRegistry(t)

	saleID := uuid.New()
	payloadBytes := mustMarshal(t, payloads.SaleCreatedEvent{
		SaleID:        saleID,
		PaymentMethod: "Card",
		TotalAmount:   decimal.RequireFromString("4.50"),
		Items: []payloads.SaleLine{{
			SaleItemID: uuid.New(),
			ProductID:  uuid.New(),
			Quantity:   3,
			UnitPrice:  decimal.RequireFromString("1.50"),
		}},
	})

	event := models.OutboxEvent{
		EventType:     enums.EventSaleCreated,
		AggregateType: enums.AggregateSale,
		AggregateID:   saleID,
		Payload:       mustEnvelope(t, payloadBytes),
	}

	resolved, err := reg.Resolve(event)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resolved.Descriptor.Topic != "sales-topic" {
		t.Fatalf("unexpected topic %q", resolved.Descriptor.Topic)
	}
	payload, ok := resolved.Payload.(*payloads.SaleCreatedEvent)
	if !ok {
		t.Fatalf("unexpected payload type %T", resolved.Payload)
	}
	if payload.SaleID != saleID || len(payload.Items) != 1 {
		t.Fatalf("payload mismatch %+v", payload)
	}
	if !payload.TotalAmount.Equal(decimal.RequireFromString("4.5")) {
		t.Fatalf("unexpected total %s", payload.TotalAmount)
	}
	if resolved.Envelope.EventID == "" {
		t.Fatalf("envelope missing event id")
	}
}

func TestEventRegistryRoutesStockLowToInventoryTopic(t *testing.T) {
	reg := newTestEventRegistry(t)

	event := models.OutboxEvent{
		EventType:     enums.EventProductStockLow,
		AggregateType: enums.AggregateProduct,
		AggregateID:   uuid.New(),
		Payload:       mustEnvelope(t, []byte(`{"productId":"`+uuid.NewString()+`","stockRemaining":1,"threshold":5}`)),
	}
	resolved, err := reg.Resolve(event)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resolved.Descriptor.Topic != "inventory-topic" {
		t.Fatalf("unexpected topic %q", resolved.Descriptor.Topic)
	}

	topics := reg.Topics()
	sort.Strings(topics)
	if len(topics) != 2 || topics[0] != "inventory-topic" || topics[1] != "sales-topic" {
		t.Fatalf("unexpected topics %v", topics)
	}
}

func TestEventRegistryResolveFailuresAreNonRetryable(t *testing.T) {
	reg := newTestEventRegistry(t)

	tests := []struct {
		name  string
		event models.OutboxEvent
	}{
		{
			name: "unknown event",
			event: models.OutboxEvent{
				EventType:     "order_created",
				AggregateType: enums.AggregateSale,
				AggregateID:   uuid.New(),
				Payload:       mustEnvelope(t, []byte(`{}`)),
			},
		},
		{
			name: "aggregate mismatch",
			event: models.OutboxEvent{
				EventType:     enums.EventSaleCreated,
				AggregateType: enums.AggregateProduct,
				AggregateID:   uuid.New(),
				Payload:       mustEnvelope(t, []byte(`{}`)),
			},
		},
		{
			name: "missing aggregate id",
			event: models.OutboxEvent{
				EventType:     enums.EventSaleCreated,
				AggregateType: enums.AggregateSale,
				Payload:       mustEnvelope(t, []byte(`{}`)),
			},
		},
		{
			name: "null payload",
			event: models.OutboxEvent{
				EventType:     enums.EventSaleCreated,
				AggregateType: enums.AggregateSale,
				AggregateID:   uuid.New(),
				Payload:       mustEnvelope(t, []byte("null")),
			},
		},
		{
			name: "broken envelope",
			event: models.OutboxEvent{
				EventType:     enums.EventSaleCreated,
				AggregateType: enums.AggregateSale,
				AggregateID:   uuid.New(),
				Payload:       json.RawMessage(`{"data":`),
			},
		},
	}

	for _, tt := range tests {
		_, err := reg.Resolve(tt.event)
		if err == nil {
			t.Fatalf("%s: expected error", tt.name)
		}
		var nonRetry NonRetryableError
		if !errors.As(err, &nonRetry) {
			t.Fatalf("%s: expected non-retryable error, got %T", tt.name, err)
		}
	}
}

func TestNewEventRegistryRequiresTopics(t *testing.T) {
	if _, err := NewEventRegistry(config.PubSubConfig{InventoryTopic: "inv"}); err == nil {
		t.Fatal("expected missing sales topic error")
	}
	if _, err := NewEventRegistry(config.PubSubConfig{SalesTopic: "sales"}); err == nil {
		t.Fatal("expected missing inventory topic error")
	}
}

func newTestEventRegistry(t *testing.T) *EventRegistry {
	t.Helper()
	reg, err := NewEventRegistry(config.PubSubConfig{
		SalesTopic:     "sales-topic",
		InventoryTopic: "inventory-topic",
	})
	if err != nil {
		t.Fatalf("build registry: %v", err)
	}
	return reg
}

func mustMarshal(t *testing.T, v interface{}) []byte {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	return data
}

func mustEnvelope(t *testing.T, payload []byte) json.RawMessage {
	t.Helper()
	envelope := outbox.PayloadEnvelope{
		Version:    1,
		EventID:    uuid.NewString(),
		OccurredAt: time.Now().UTC(),
		Data:       payload,
	}
	data, err := json.Marshal(envelope)
	if err != nil {
		t.Fatalf("marshal envelope: %v", err)
	}
	return data
}
