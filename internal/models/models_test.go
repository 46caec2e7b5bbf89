package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestParsePositiveInt(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want int
		ok   bool
	}{
		{"integer", `50`, 50, true},
		{"numeric string", `"50"`, 50, true},
		{"padded string", `"  7 "`, 7, true},
		{"integral float", `50.0`, 50, true},
		{"exponent", `5e1`, 50, true},
		{"fraction", `2.5`, 0, false},
		{"fraction string", `"2.5"`, 0, false},
		{"zero", `0`, 0, false},
		{"negative", `-3`, 0, false},
		{"non numeric", `"abc"`, 0, false},
		{"empty string", `""`, 0, false},
		{"null", `null`, 0, false},
		{"missing", ``, 0, false},
		{"boolean", `true`, 0, false},
		{"array", `[1]`, 0, false},
		{"too large", `1e40`, 0, false},
		{"plus sign string", `"+5"`, 5, true},
		{"largest int32", `2147483647`, 2147483647, true},
		{"int32 overflow", `2147483648`, 0, false},
		{"trailing zeros with negative exponent", `5000e-3`, 5, true},
		{"integral exponent at bound", `2e9`, 2000000000, true},
		{"huge exponent", `1e40000000`, 0, false},
		{"huge exponent string", `"1e999999999"`, 0, false},
		{"huge negative exponent", `1e-40000000`, 0, false},
		{"zero with huge exponent", `0e40000000`, 0, false},
		{"overlong string", `"00000000000000000000000000000000005"`, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start := time.Now()
			got, ok := ParsePositiveInt(json.RawMessage(tt.raw))
			if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
				t.Errorf("ParsePositiveInt(%s) took %v", tt.raw, elapsed)
			}
			if ok != tt.ok {
				t.Fatalf("ParsePositiveInt(%s) ok = %v, want %v", tt.raw, ok, tt.ok)
			}
			if got != tt.want {
				t.Errorf("ParsePositiveInt(%s) = %d, want %d", tt.raw, got, tt.want)
			}
		})
	}
}

func TestPricingBand_Covers(t *testing.T) {
	band := PricingBand{
		MinQuantity:   50,
		MaxQuantity:   499,
		ColorCount:    2,
		PricePerPiece: decimal.RequireFromString("1.90"),
		Active:        true,
	}

	tests := []struct {
		name  string
		query PricingQuery
		want  bool
	}{
		{"lower bound", PricingQuery{Quantity: 50, ColorCount: 2}, true},
		{"upper bound", PricingQuery{Quantity: 499, ColorCount: 2}, true},
		{"below", PricingQuery{Quantity: 49, ColorCount: 2}, false},
		{"above", PricingQuery{Quantity: 500, ColorCount: 2}, false},
		{"other colors", PricingQuery{Quantity: 100, ColorCount: 3}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := band.Covers(tt.query); got != tt.want {
				t.Errorf("Covers(%+v) = %v, want %v", tt.query, got, tt.want)
			}
		})
	}

	band.Active = false
	if band.Covers(PricingQuery{Quantity: 100, ColorCount: 2}) {
		t.Error("inactive band should not cover any query")
	}
}

func TestPricingBand_Validate(t *testing.T) {
	valid := PricingBand{MinQuantity: 1, MaxQuantity: 1, ColorCount: 1, PricePerPiece: decimal.NewFromInt(1)}
	if err := valid.Validate(); err != nil {
		t.Errorf("Validate() unexpected error: %v", err)
	}

	invalid := []PricingBand{
		{MinQuantity: 0, MaxQuantity: 10, ColorCount: 1, PricePerPiece: decimal.NewFromInt(1)},
		{MinQuantity: 10, MaxQuantity: 5, ColorCount: 1, PricePerPiece: decimal.NewFromInt(1)},
		{MinQuantity: 1, MaxQuantity: 5, ColorCount: 0, PricePerPiece: decimal.NewFromInt(1)},
		{MinQuantity: 1, MaxQuantity: 5, ColorCount: 1, PricePerPiece: decimal.Zero},
	}
	for i, band := range invalid {
		if err := band.Validate(); err == nil {
			t.Errorf("band %d: Validate() expected error", i)
		}
	}
}

func TestAccount_Summary(t *testing.T) {
	account := &Account{ID: "u1", Email: "a@example.com", Role: "authenticated"}
	summary := account.Summary()
	if summary.ID != "u1" || summary.Email != "a@example.com" {
		t.Errorf("Summary() = %+v", summary)
	}
	if summary.LastSignInAt != nil {
		t.Error("LastSignInAt should stay nil for accounts that never signed in")
	}
}
