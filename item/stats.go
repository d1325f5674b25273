package item

// Stats is the aggregate exposed by the statistics endpoint.
type Stats struct {
	Total        int     `json:"total" msgpack:"total"`
	AveragePrice float64 `json:"averagePrice" msgpack:"averagePrice"`
}

// ComputeStats derives the aggregate for items. Items without a usable price count
// towards Total but are left out of the mean. The mean of no prices is 0.
func ComputeStats(items []Item) Stats {
	var (
		sum   float64
		count int
	)
	for _, it := range items {
		if !it.HasPrice() {
			continue
		}
		sum += it.Price
		count++
	}

	stats := Stats{Total: len(items)}
	if count > 0 {
		stats.AveragePrice = sum / float64(count)
	}
	return stats
}
