package testsupport

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/goliatone/go-catalog-cache/internal/seed"
	"github.com/goliatone/go-catalog-cache/item"
)

// LoadFixture loads test data from a fixture file.
// The path is relative to the test package directory.
func LoadFixture(t *testing.T, path string) []byte {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to load fixture from %s: %v", path, err)
	}

	return data
}

// LoadFixtureJSON loads JSON test data from a fixture file and unmarshals it.
// The path is relative to the test package directory.
func LoadFixtureJSON(t *testing.T, path string, dest any) {
	t.Helper()

	data := LoadFixture(t, path)
	if err := json.Unmarshal(data, dest); err != nil {
		t.Fatalf("failed to unmarshal JSON fixture from %s: %v", path, err)
	}
}

// FixturePath constructs a path to a fixture file relative to the testdata directory.
func FixturePath(filename string) string {
	return filepath.Join("testdata", filename)
}

// SampleItems returns the five canonical catalog items every generated dataset
// starts with.
func SampleItems() []item.Item {
	return seed.Canonical()
}

// NumberedItems returns n items with ids 1..n named "Item 1".."Item n", all in
// category "Bulk" with price equal to their id.
func NumberedItems(n int) []item.Item {
	items := make([]item.Item, n)
	for i := range items {
		id := int64(i + 1)
		items[i] = item.Item{
			ID:       id,
			Name:     "Item " + strconv.FormatInt(id, 10),
			Category: "Bulk",
			Price:    float64(id),
		}
	}
	return items
}

// WriteItemsJSON writes items as a JSON array into a fresh temp directory and
// returns the file path. The directory is removed when the test ends.
func WriteItemsJSON(t *testing.T, items []item.Item) string {
	t.Helper()

	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		t.Fatalf("failed to marshal items: %v", err)
	}

	path := filepath.Join(t.TempDir(), "items.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("failed to write items to %s: %v", path, err)
	}
	return path
}
