// Package seed generates realistic catalog datasets.
package seed

import (
	"math/rand/v2"

	"github.com/goliatone/go-catalog-cache/item"
)

type category struct {
	name     string
	products []string
	brands   []string
	minPrice int
	maxPrice int
}

var categories = []category{
	{
		name: "Electronics",
		products: []string{
			"Laptop", "Desktop Computer", "Tablet", "Smartphone", "Monitor", "Keyboard", "Mouse",
			"Headphones", "Speaker", "Camera", "Smartwatch", "Gaming Console", "Router", "Printer",
			"Hard Drive", "SSD", "Graphics Card", "Processor", "Motherboard", "Power Supply",
			"Wireless Earbuds", "Smart TV", "Projector", "Webcam", "Microphone",
		},
		brands:   []string{"Pro", "Ultra", "Smart", "Digital", "Wireless", "Premium", "Advanced", "Elite"},
		minPrice: 50, maxPrice: 3000,
	},
	{
		name: "Furniture",
		products: []string{
			"Chair", "Desk", "Table", "Sofa", "Bed", "Bookshelf", "Dresser", "Nightstand",
			"Coffee Table", "Dining Chair", "Ottoman", "Cabinet", "Wardrobe", "Bench",
			"Standing Desk", "Office Chair", "Bar Stool", "Recliner", "Sectional Sofa",
		},
		brands:   []string{"Modern", "Classic", "Luxury", "Comfort", "Ergonomic", "Designer", "Contemporary"},
		minPrice: 100, maxPrice: 2500,
	},
	{
		name: "Clothing",
		products: []string{
			"T-Shirt", "Jeans", "Dress", "Jacket", "Sweater", "Hoodie", "Pants", "Shorts", "Skirt",
			"Blouse", "Coat", "Sneakers", "Boots", "Sandals", "Hat", "Scarf", "Belt", "Socks",
			"Underwear", "Suit", "Tie", "Watch", "Sunglasses",
		},
		brands:   []string{"Premium", "Classic", "Designer", "Casual", "Sport", "Fashion", "Vintage"},
		minPrice: 15, maxPrice: 500,
	},
	{
		name: "Home & Garden",
		products: []string{
			"Vacuum Cleaner", "Coffee Maker", "Blender", "Microwave", "Toaster", "Air Fryer",
			"Garden Hose", "Lawn Mower", "Plant Pot", "Fertilizer", "Seeds", "Watering Can",
			"Outdoor Chair", "Grill", "Fire Pit", "Umbrella", "Cushions", "Solar Lights",
		},
		brands:   []string{"Home", "Garden", "Outdoor", "Kitchen", "Essential", "Pro"},
		minPrice: 10, maxPrice: 800,
	},
	{
		name: "Sports & Outdoors",
		products: []string{
			"Running Shoes", "Yoga Mat", "Dumbbells", "Bicycle", "Helmet", "Backpack", "Tent",
			"Sleeping Bag", "Hiking Boots", "Water Bottle", "Fitness Tracker", "Basketball",
			"Soccer Ball", "Tennis Racket", "Golf Clubs", "Skateboard",
		},
		brands:   []string{"Sport", "Active", "Pro", "Outdoor", "Athletic", "Performance"},
		minPrice: 20, maxPrice: 1200,
	},
	{
		name: "Books & Media",
		products: []string{
			"Novel", "Textbook", "Cookbook", "Biography", "Self-Help Book", "Comic Book", "DVD",
			"Blu-ray", "Vinyl Record", "Board Game", "Puzzle", "Magazine Subscription",
			"E-book Reader", "Audiobook", "Art Book", "Travel Guide",
		},
		brands:   []string{"Complete", "Ultimate", "Essential", "Comprehensive", "Deluxe"},
		minPrice: 5, maxPrice: 150,
	},
	{
		name: "Health & Beauty",
		products: []string{
			"Skincare Set", "Makeup Kit", "Hair Dryer", "Electric Toothbrush", "Perfume",
			"Moisturizer", "Sunscreen", "Vitamins", "Protein Powder", "Essential Oils", "Face Mask",
			"Nail Polish", "Shampoo", "Conditioner", "Body Lotion",
		},
		brands:   []string{"Natural", "Organic", "Premium", "Professional", "Beauty", "Care"},
		minPrice: 8, maxPrice: 300,
	},
	{
		name: "Toys & Games",
		products: []string{
			"Action Figure", "Doll", "Building Blocks", "Puzzle", "Board Game", "Video Game",
			"Remote Control Car", "Stuffed Animal", "Art Supplies", "Science Kit",
			"Musical Instrument", "Ball", "Tricycle", "Swing Set", "Trampoline",
		},
		brands:   []string{"Fun", "Educational", "Creative", "Interactive", "Classic", "Adventure"},
		minPrice: 10, maxPrice: 200,
	},
	{
		name: "Automotive",
		products: []string{
			"Car Charger", "Phone Mount", "Dash Cam", "Car Cover", "Floor Mats", "Seat Covers",
			"Air Freshener", "Tire Gauge", "Jump Starter", "Tool Kit", "Car Wax", "Cleaning Kit",
			"Bluetooth Adapter", "GPS Navigator",
		},
		brands:   []string{"Auto", "Car", "Drive", "Road", "Vehicle", "Motor"},
		minPrice: 15, maxPrice: 500,
	},
	{
		name: "Office Supplies",
		products: []string{
			"Notebook", "Pen Set", "Stapler", "Paper Clips", "Binder", "Calculator", "Desk Lamp",
			"File Cabinet", "Whiteboard", "Markers", "Sticky Notes", "Envelope", "Printer Paper",
			"Ink Cartridge", "Scissors", "Tape Dispenser",
		},
		brands:   []string{"Office", "Business", "Professional", "Essential", "Quality"},
		minPrice: 2, maxPrice: 150,
	},
}

var modifiers = []string{
	"Deluxe", "Premium", "Professional", "Advanced", "Compact", "Portable",
	"Heavy Duty", "Lightweight", "Extra Large", "Mini", "Wireless", "Smart",
}

const (
	modifierProbability = 0.4
	brandProbability    = 0.6
)

// Canonical returns the five items every generated dataset starts with.
func Canonical() []item.Item {
	return []item.Item{
		{ID: 1, Name: "Laptop Pro", Category: "Electronics", Price: 2499},
		{ID: 2, Name: "Noise Cancelling Headphones", Category: "Electronics", Price: 399},
		{ID: 3, Name: "Ultra-Wide Monitor", Category: "Electronics", Price: 999},
		{ID: 4, Name: "Ergonomic Chair", Category: "Furniture", Price: 799},
		{ID: 5, Name: "Standing Desk", Category: "Furniture", Price: 1199},
	}
}

// Categories lists the category names the generator draws from.
func Categories() []string {
	names := make([]string, len(categories))
	for i, c := range categories {
		names[i] = c.name
	}
	return names
}

// Generator produces items from a seeded source. The same seed always yields the
// same sequence. A Generator is not safe for concurrent use.
type Generator struct {
	rng *rand.Rand
}

// New returns a generator seeded with seed.
func New(seed uint64) *Generator {
	return &Generator{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Candidate returns a random name, category and price.
func (g *Generator) Candidate() (name, categoryName string, price float64) {
	c := categories[g.rng.IntN(len(categories))]
	name = pick(g.rng, c.products)
	brand := pick(g.rng, c.brands)

	if g.rng.Float64() < modifierProbability {
		name = pick(g.rng, modifiers) + " " + name
	}
	if g.rng.Float64() < brandProbability {
		name = brand + " " + name
	}
	price = float64(c.minPrice + g.rng.IntN(c.maxPrice-c.minPrice+1))
	return name, c.name, price
}

// Item returns a random item carrying id.
func (g *Generator) Item(id int64) item.Item {
	name, categoryName, price := g.Candidate()
	return item.Item{ID: id, Name: name, Category: categoryName, Price: price}
}

// Items returns count items with ids 1..count. The first five are the canonical
// items; a count below five returns a prefix of them.
func (g *Generator) Items(count int) []item.Item {
	if count <= 0 {
		return []item.Item{}
	}
	canonical := Canonical()
	if count <= len(canonical) {
		return canonical[:count]
	}

	items := make([]item.Item, 0, count)
	items = append(items, canonical...)
	for id := int64(len(canonical) + 1); id <= int64(count); id++ {
		items = append(items, g.Item(id))
	}
	return items
}

func pick(rng *rand.Rand, from []string) string {
	return from[rng.IntN(len(from))]
}
