package models

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

func TestCanTransition(t *testing.T) {
	allowed := []struct{ from, to OrderStatus }{
		{OrderStatusPending, OrderStatusProcessing},
		{OrderStatusPending, OrderStatusCancelled},
		{OrderStatusProcessing, OrderStatusShipped},
		{OrderStatusProcessing, OrderStatusCancelled},
		{OrderStatusShipped, OrderStatusDelivered},
	}
	for _, tc := range allowed {
		if !CanTransition(tc.from, tc.to) {
			t.Errorf("expected %s -> %s to be allowed", tc.from, tc.to)
		}
	}

	rejected := []struct{ from, to OrderStatus }{
		{OrderStatusDelivered, OrderStatusPending},
		{OrderStatusDelivered, OrderStatusProcessing},
		{OrderStatusCancelled, OrderStatusProcessing},
		{OrderStatusShipped, OrderStatusCancelled},
		{OrderStatusPending, OrderStatusDelivered},
		{OrderStatusPending, OrderStatusPending},
	}
	for _, tc := range rejected {
		if CanTransition(tc.from, tc.to) {
			t.Errorf("expected %s -> %s to be rejected", tc.from, tc.to)
		}
	}
}

func TestTerminalStatuses(t *testing.T) {
	for _, s := range []OrderStatus{OrderStatusDelivered, OrderStatusCancelled} {
		if !s.Terminal() {
			t.Errorf("%s should be terminal", s)
		}
	}
	if OrderStatusShipped.Terminal() {
		t.Error("shipped should not be terminal")
	}
	if OrderStatus("archived").Valid() {
		t.Error("unknown status reported valid")
	}
}

func TestStringListDecodesLegacyString(t *testing.T) {
	raw, err := bson.Marshal(bson.M{"category": "  Meyve "})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var doc struct {
		Category StringList `bson:"category"`
	}
	if err := bson.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(doc.Category) != 1 || doc.Category[0] != "Meyve" {
		t.Fatalf("expected [Meyve], got %v", doc.Category)
	}
}

func TestStringListWritesArray(t *testing.T) {
	raw, err := bson.Marshal(struct {
		Category StringList `bson:"category"`
	}{})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if got := bson.Raw(raw).Lookup("category").Type; got != bsontype.Array {
		t.Fatalf("expected array, got %s", got)
	}

	if !(StringList{"Süt", "Kahvaltı"}).Has("Süt") || (StringList{"Süt"}).Has("süt") {
		t.Fatal("Has should match exact names only")
	}
}
