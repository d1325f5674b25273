package item

import (
	"encoding/json"
	"math"
)

// Item is a single catalog entry. Items are immutable once created.
type Item struct {
	ID       int64   `json:"id" msgpack:"id"`
	Name     string  `json:"name" msgpack:"name"`
	Category string  `json:"category" msgpack:"category"`
	Price    float64 `json:"price" msgpack:"price"`
}

// HasPrice reports whether the item carries a usable numeric price.
// Stored data may omit the price or hold a non-numeric value, which decodes to NaN.
func (i Item) HasPrice() bool {
	return !math.IsNaN(i.Price) && !math.IsInf(i.Price, 0)
}

type wireItem struct {
	ID       int64    `json:"id"`
	Name     string   `json:"name"`
	Category string   `json:"category"`
	Price    *float64 `json:"price"`
}

// MarshalJSON encodes invalid prices as null so a dataset with bad rows still serializes.
func (i Item) MarshalJSON() ([]byte, error) {
	w := wireItem{ID: i.ID, Name: i.Name, Category: i.Category}
	if i.HasPrice() {
		p := i.Price
		w.Price = &p
	}
	return json.Marshal(w)
}

// UnmarshalJSON decodes an item, mapping a missing, null or non-numeric price to NaN.
func (i *Item) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID       int64  `json:"id"`
		Name     string `json:"name"`
		Category string `json:"category"`
		Price    any    `json:"price"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	i.ID = raw.ID
	i.Name = raw.Name
	i.Category = raw.Category
	i.Price = math.NaN()
	if p, ok := raw.Price.(float64); ok {
		i.Price = p
	}
	return nil
}

// MaxID returns the largest id in items, or 0 for an empty slice.
func MaxID(items []Item) int64 {
	var max int64
	for _, it := range items {
		if it.ID > max {
			max = it.ID
		}
	}
	return max
}
