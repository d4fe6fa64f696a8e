package pricing

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/medvanta/medsupply-backend/pkg/enums"
)

func timePtr(t time.Time) *time.Time {
	return &t
}

func contractItem(listID uuid.UUID, name string, priority int, method PricingMethod) PriceListItem {
	return PriceListItem{
		ID:          uuid.New(),
		PriceListID: listID,
		ProductID:   uuid.New(),
		Method:      method,
		List: PriceList{
			ID:       listID,
			Name:     name,
			Priority: priority,
			IsActive: true,
		},
	}
}

func TestResolveContractPriceLowestPriorityWins(t *testing.T) {
	now := time.Now().UTC()
	fixed := contractItem(uuid.New(), "Hospital network", 10, FixedPrice(decimal.NewFromInt(85)))
	percent := contractItem(uuid.New(), "Regional group", 20, PercentDiscount(decimal.NewFromInt(10)))

	winner := ResolveContractPrice([]PriceListItem{percent, fixed}, now)
	if winner == nil {
		t.Fatal("expected a winning item")
	}
	if winner.List.Priority != 10 {
		t.Fatalf("expected priority 10 list, got %d", winner.List.Priority)
	}

	price, ok := winner.Method.Apply(decimal.NewFromInt(100))
	if !ok {
		t.Fatal("expected applicable method")
	}
	if !price.Equal(decimal.NewFromInt(85)) {
		t.Fatalf("expected 85, got %s", price)
	}
}

func TestResolveContractPricePriorityTieBrokenByListID(t *testing.T) {
	now := time.Now().UTC()
	idA := uuid.MustParse("11111111-1111-1111-1111-111111111111")
	idB := uuid.MustParse("22222222-2222-2222-2222-222222222222")
	a := contractItem(idA, "List A", 10, FixedPrice(decimal.NewFromInt(80)))
	b := contractItem(idB, "List B", 10, FixedPrice(decimal.NewFromInt(75)))

	// Same outcome regardless of input ordering.
	first := ResolveContractPrice([]PriceListItem{b, a}, now)
	second := ResolveContractPrice([]PriceListItem{a, b}, now)
	if first == nil || second == nil {
		t.Fatal("expected winners")
	}
	if first.PriceListID != idA || second.PriceListID != idA {
		t.Fatalf("expected the lexically smaller list id to win, got %s and %s", first.PriceListID, second.PriceListID)
	}
}

func TestResolveContractPriceSkipsExpiredLists(t *testing.T) {
	now := time.Now().UTC()
	yesterday := now.Add(-24 * time.Hour)

	expired := contractItem(uuid.New(), "Expired contract", 5, FixedPrice(decimal.NewFromInt(50)))
	expired.List.ValidUntil = timePtr(yesterday)

	if got := ResolveContractPrice([]PriceListItem{expired}, now); got != nil {
		t.Fatalf("expected nil for expired-only candidates, got %v", got)
	}
}

func TestResolveContractPriceSkipsInactiveAndFutureLists(t *testing.T) {
	now := time.Now().UTC()

	inactive := contractItem(uuid.New(), "Inactive", 1, FixedPrice(decimal.NewFromInt(10)))
	inactive.List.IsActive = false

	future := contractItem(uuid.New(), "Future", 2, FixedPrice(decimal.NewFromInt(20)))
	future.List.ValidFrom = timePtr(now.Add(24 * time.Hour))

	valid := contractItem(uuid.New(), "Valid", 3, FixedPrice(decimal.NewFromInt(30)))

	winner := ResolveContractPrice([]PriceListItem{inactive, future, valid}, now)
	if winner == nil || winner.List.Name != "Valid" {
		t.Fatalf("expected the valid list to win, got %+v", winner)
	}
}

func TestResolveContractPriceValidityBoundsInclusive(t *testing.T) {
	day := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	item := contractItem(uuid.New(), "Window", 1, FixedPrice(decimal.NewFromInt(42)))
	item.List.ValidFrom = timePtr(day)
	item.List.ValidUntil = timePtr(day)

	if got := ResolveContractPrice([]PriceListItem{item}, day); got == nil {
		t.Fatal("expected boundary date to be inside the window")
	}
}

func TestResolveContractPriceSkipsItemsWithoutMethod(t *testing.T) {
	now := time.Now().UTC()
	empty := contractItem(uuid.New(), "No method", 1, NoMethod())
	fallback := contractItem(uuid.New(), "Fallback", 2, FixedPrice(decimal.NewFromInt(70)))

	winner := ResolveContractPrice([]PriceListItem{empty, fallback}, now)
	if winner == nil || winner.List.Name != "Fallback" {
		t.Fatalf("expected fall-through to the next priority, got %+v", winner)
	}

	if got := ResolveContractPrice([]PriceListItem{empty}, now); got != nil {
		t.Fatalf("expected nil when only method-less items exist, got %v", got)
	}
}

func TestResolveContractPriceEmptyInput(t *testing.T) {
	if got := ResolveContractPrice(nil, time.Now().UTC()); got != nil {
		t.Fatalf("expected nil for empty input, got %v", got)
	}
}

func TestPricingMethodFromColumnsPrecedence(t *testing.T) {
	fixed := decimal.NewFromInt(85)
	percent := decimal.NewFromInt(10)
	discount := decimal.NewFromInt(5)

	cases := []struct {
		name     string
		fixed    *decimal.Decimal
		percent  *decimal.Decimal
		discount *decimal.Decimal
		want     enums.PricingMethodKind
	}{
		{"all set prefers fixed", &fixed, &percent, &discount, enums.PricingMethodFixedPrice},
		{"percent beats discount", nil, &percent, &discount, enums.PricingMethodPercentDiscount},
		{"discount alone", nil, nil, &discount, enums.PricingMethodFixedDiscount},
		{"none set", nil, nil, nil, enums.PricingMethodNone},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := PricingMethodFromColumns(tc.fixed, tc.percent, tc.discount); got.Kind != tc.want {
				t.Fatalf("expected %s, got %s", tc.want, got.Kind)
			}
		})
	}
}

func TestPricingMethodApply(t *testing.T) {
	base := decimal.NewFromInt(100)

	if price, ok := PercentDiscount(decimal.NewFromInt(10)).Apply(base); !ok || !price.Equal(decimal.NewFromInt(90)) {
		t.Fatalf("expected 90, got %s ok=%v", price, ok)
	}

	if price, ok := FixedDiscount(decimal.NewFromInt(120)).Apply(base); !ok || !price.Equal(decimal.Zero) {
		t.Fatalf("expected floor at zero, got %s ok=%v", price, ok)
	}

	if _, ok := PercentDiscount(decimal.NewFromInt(140)).Apply(base); ok {
		t.Fatal("expected out-of-range percent to be non-applicable")
	}

	if _, ok := NoMethod().Apply(base); ok {
		t.Fatal("expected no method to be non-applicable")
	}
}
