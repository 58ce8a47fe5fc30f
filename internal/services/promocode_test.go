package services

import (
	"context"
	"errors"
	"testing"

	errs "xui-shop-bot/internal/errors"
	"xui-shop-bot/internal/storage"
)

func TestNormalizeCode(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"abc123", "ABC123"},
		{"  Promo42  ", "PROMO42"},
		{"ALREADYUP", "ALREADYUP"},
	}

	for _, tt := range tests {
		if got := NormalizeCode(tt.in); got != tt.want {
			t.Errorf("NormalizeCode(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPromocodeGetRejectsGarbageInput(t *testing.T) {
	store := &fakePromoStore{promocodes: map[string]*storage.Promocode{
		"OK1234": {Code: "OK1234", Traffic: 1, Duration: 1},
	}}
	svc := NewPromocodeService(store, testLogger())

	promocode, err := svc.Get(context.Background(), "x")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if promocode != nil {
		t.Errorf("too-short input resolved to a promocode: %+v", promocode)
	}

	promocode, err = svc.Get(context.Background(), " ok1234 ")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if promocode == nil || promocode.Code != "OK1234" {
		t.Errorf("normalized lookup failed: %+v", promocode)
	}
}

func TestPromocodeActivateIsFinal(t *testing.T) {
	store := &fakePromoStore{promocodes: map[string]*storage.Promocode{
		"ONESHOT1": {Code: "ONESHOT1", Traffic: 5, Duration: 7},
	}}
	svc := NewPromocodeService(store, testLogger())

	if err := svc.Activate(context.Background(), "ONESHOT1", 42); err != nil {
		t.Fatalf("first activation failed: %v", err)
	}

	err := svc.Activate(context.Background(), "ONESHOT1", 43)
	var promoErr *errs.PromocodeError
	if !errors.As(err, &promoErr) {
		t.Fatalf("second activation: got %v, want PromocodeError", err)
	}

	if got := *store.promocodes["ONESHOT1"].ActivatedBy; got != 42 {
		t.Errorf("ActivatedBy = %d, want 42", got)
	}
}

func TestPromocodeGenerate(t *testing.T) {
	store := &fakePromoStore{promocodes: make(map[string]*storage.Promocode)}
	svc := NewPromocodeService(store, testLogger())

	promocode, err := svc.Generate(context.Background(), 10, 30)
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if len(promocode.Code) != 12 {
		t.Errorf("code length = %d, want 12", len(promocode.Code))
	}
	if promocode.IsActivated {
		t.Error("freshly minted promocode is already activated")
	}

	if _, err := svc.Generate(context.Background(), 0, 30); err == nil {
		t.Error("expected validation error for zero traffic")
	}
	if _, err := svc.Generate(context.Background(), 10, -1); err == nil {
		t.Error("expected validation error for negative duration")
	}
}
