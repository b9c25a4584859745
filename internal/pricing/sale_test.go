package pricing

import "testing"

func TestValidateSaleFieldsMissingSalePrice(t *testing.T) {
	err := ValidateSaleFields(100, true, 0, false)
	if err == nil {
		t.Fatal("expected validation error when saleEnabled=true and salePrice is missing")
	}
}

func TestValidateSaleFieldsSalePriceGreaterOrEqualPrice(t *testing.T) {
	tests := []float64{100, 120}
	for _, salePrice := range tests {
		err := ValidateSaleFields(100, true, salePrice, true)
		if err == nil {
			t.Fatalf("expected validation error for salePrice=%v", salePrice)
		}
	}
}

func TestEffectivePriceUsesSalePriceWhenOnSale(t *testing.T) {
	if got := EffectivePrice(100, true, 75); got != 75 {
		t.Fatalf("expected sale price 75, got %v", got)
	}
	if got := EffectivePrice(100, false, 75); got != 100 {
		t.Fatalf("expected regular price 100 when sale disabled, got %v", got)
	}
}

func TestResolveSaleUpdateDisablingClearsSalePrice(t *testing.T) {
	off := false
	result, err := ResolveSaleUpdate(100, true, 80, SaleUpdateInput{SaleEnabled: &off})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.SaleEnabled || result.SalePrice != 0 || !result.SetSalePrice {
		t.Fatalf("expected sale to be cleared, got %+v", result)
	}
}

func TestResolveSaleUpdateRejectsPriceBelowSale(t *testing.T) {
	price := 50.0
	if _, err := ResolveSaleUpdate(100, true, 80, SaleUpdateInput{Price: &price}); err == nil {
		t.Fatal("expected error when new price drops below the active sale price")
	}
}

func TestLineTotalsAvoidFloatDrift(t *testing.T) {
	total := Total(Line(0.1, 3), Line(0.2, 1))
	if got := Amount(total); got != 0.5 {
		t.Fatalf("expected 0.5, got %v", got)
	}
	if got := Amount(Line(19.99, 3)); got != 59.97 {
		t.Fatalf("expected 59.97, got %v", got)
	}
}
