package item

import (
	"encoding/json"
	"math"
	"testing"
	"time"
)

func TestComputeStats(t *testing.T) {
	tests := []struct {
		name      string
		items     []Item
		wantTotal int
		wantAvg   float64
	}{
		{name: "empty", items: nil, wantTotal: 0, wantAvg: 0},
		{name: "all priced", items: sampleDataset(), wantTotal: 5, wantAvg: (2499 + 399 + 999 + 799 + 1199) / 5.0},
		{
			name: "invalid prices excluded from mean but counted",
			items: []Item{
				{ID: 1, Price: 10},
				{ID: 2, Price: math.NaN()},
				{ID: 3, Price: 30},
			},
			wantTotal: 3,
			wantAvg:   20,
		},
		{
			name:      "no valid prices",
			items:     []Item{{ID: 1, Price: math.NaN()}},
			wantTotal: 1,
			wantAvg:   0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeStats(tt.items)
			if got.Total != tt.wantTotal {
				t.Errorf("Total = %d, want %d", got.Total, tt.wantTotal)
			}
			if math.Abs(got.AveragePrice-tt.wantAvg) > 1e-9 {
				t.Errorf("AveragePrice = %v, want %v", got.AveragePrice, tt.wantAvg)
			}
		})
	}
}

func TestItemJSON_InvalidPrice(t *testing.T) {
	var it Item
	if err := json.Unmarshal([]byte(`{"id":7,"name":"Mystery","category":"Misc"}`), &it); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if it.HasPrice() {
		t.Errorf("missing price should decode as invalid, got %v", it.Price)
	}

	if err := json.Unmarshal([]byte(`{"id":8,"name":"Odd","category":"Misc","price":"12"}`), &it); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if it.HasPrice() {
		t.Errorf("string price should decode as invalid, got %v", it.Price)
	}

	out, err := json.Marshal(it)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if want := `{"id":8,"name":"Odd","category":"Misc","price":null}`; string(out) != want {
		t.Errorf("Marshal = %s, want %s", out, want)
	}
}

func TestCandidate_Validate(t *testing.T) {
	tests := []struct {
		name       string
		candidate  Candidate
		wantFields []string
	}{
		{name: "valid", candidate: Candidate{Name: "X", Category: "Y", Price: 10.0}},
		{name: "negative price", candidate: Candidate{Name: "X", Category: "Y", Price: -5.0}, wantFields: []string{"price"}},
		{name: "zero price", candidate: Candidate{Name: "X", Category: "Y", Price: 0.0}, wantFields: []string{"price"}},
		{name: "string price", candidate: Candidate{Name: "X", Category: "Y", Price: "10"}, wantFields: []string{"price"}},
		{name: "infinite price", candidate: Candidate{Name: "X", Category: "Y", Price: math.Inf(1)}, wantFields: []string{"price"}},
		{name: "missing everything", candidate: Candidate{}, wantFields: []string{"name", "category", "price"}},
		{name: "blank name", candidate: Candidate{Name: "   ", Category: "Y", Price: 1.0}, wantFields: []string{"name"}},
		{name: "non string category", candidate: Candidate{Name: "X", Category: 12.0, Price: 1.0}, wantFields: []string{"category"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.candidate.Validate()
			if len(tt.wantFields) == 0 {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}

			inputErr, ok := err.(*InputError)
			if !ok {
				t.Fatalf("expected *InputError, got %T (%v)", err, err)
			}
			if len(inputErr.Fields) != len(tt.wantFields) {
				t.Errorf("fields = %v, want %v", inputErr.Fields, tt.wantFields)
			}
			for _, f := range tt.wantFields {
				if _, ok := inputErr.Field(f); !ok {
					t.Errorf("expected field %q in %v", f, inputErr.Fields)
				}
			}
		})
	}
}

func TestCandidate_BuildTrims(t *testing.T) {
	it, err := Candidate{Name: "  Lamp ", Category: " Home ", Price: 12.5}.Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if it.Name != "Lamp" || it.Category != "Home" || it.Price != 12.5 {
		t.Errorf("unexpected item %+v", it)
	}
}

func TestIDGenerator_UniqueUnderFrozenClock(t *testing.T) {
	frozen := time.UnixMilli(1_700_000_000_000)
	gen := NewIDGenerator(func() time.Time { return frozen })

	seen := make(map[int64]bool)
	for i := 0; i < 1000; i++ {
		id := gen.Next(0)
		if seen[id] {
			t.Fatalf("duplicate id %d", id)
		}
		seen[id] = true
	}
}

func TestIDGenerator_RespectsFloor(t *testing.T) {
	gen := NewIDGenerator(func() time.Time { return time.UnixMilli(5) })
	if id := gen.Next(100); id != 101 {
		t.Errorf("Next(100) = %d, want 101", id)
	}
	if id := gen.Next(0); id != 102 {
		t.Errorf("Next(0) = %d, want 102", id)
	}
}
