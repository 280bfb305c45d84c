// ABOUTME: Static fallback records when no OpenAI API key is available.
// ABOUTME: Values are derived from each field's kind and name, deterministically per index.

package seed

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/2389/adminkit/internal/schema"
)

var (
	adjectives = []string{"Classic", "Organic", "Vintage", "Compact", "Deluxe", "Rugged", "Everyday", "Premium", "Minimal", "Handmade"}
	nouns      = []string{"Backpack", "Water Bottle", "Desk Lamp", "Notebook", "Headphones", "Coffee Mug", "Running Shoes", "Wool Scarf", "Phone Stand", "Tote Bag"}
	people     = []string{"alice.chen", "bob.martinez", "sarah.johnson", "dave.wilson", "emma.davis", "chris.lee", "jane.kim", "mike.brown"}
	sentences  = []string{
		"Built to last with reinforced stitching and a lifetime warranty.",
		"A customer favorite that pairs well with the rest of the collection.",
		"Made from recycled materials and shipped in plastic-free packaging.",
		"Lightweight enough for daily use and tough enough for travel.",
		"Limited run this season, restocks are not guaranteed.",
		"Designed in-house and tested by our support team for a month.",
	}
)

// generateStatic creates count records for cfg without any network calls.
func generateStatic(cfg *schema.EntityConfig, count int) []schema.Record {
	records := make([]schema.Record, count)
	for i := range records {
		rec := schema.Record{}
		for _, f := range cfg.FormFields {
			if f.Name == "id" {
				continue
			}
			schema.Assign(rec, f.Name, staticValue(f, i))
		}
		records[i] = rec
	}
	return records
}

func staticValue(f schema.FieldSchema, i int) any {
	name := strings.ToLower(f.Name)
	switch f.Kind {
	case schema.KindEmail:
		return fmt.Sprintf("%s@example.com", people[i%len(people)])
	case schema.KindNumber:
		lo, hi := numberRange(f)
		span := hi - lo
		v := lo + math.Mod(float64(i*37+11), span+1)
		if f.Step != nil && *f.Step < 1 {
			cents := float64((i*29+49)%100) / 100
			return math.Min(hi, math.Floor(v)+cents)
		}
		return math.Floor(v)
	case schema.KindTextarea:
		return sentences[i%len(sentences)]
	case schema.KindSelect:
		if len(f.Options) == 0 {
			return ""
		}
		return f.Options[i%len(f.Options)].Value
	case schema.KindCheckbox:
		return i%3 != 0
	case schema.KindFile:
		if f.Multiple {
			return []any{}
		}
		return ""
	case schema.KindDate:
		return time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i*3).Format("2006-01-02")
	}

	switch {
	case strings.Contains(name, "sku"):
		return fmt.Sprintf("SKU-%04d", i+1)
	case strings.Contains(name, "slug"):
		return strings.ToLower(strings.ReplaceAll(productName(i), " ", "-"))
	case strings.HasSuffix(name, "name") || name == "title":
		return productName(i)
	}
	return fmt.Sprintf("%s %d", f.DisplayLabel(), i+1)
}

func productName(i int) string {
	return adjectives[i%len(adjectives)] + " " + nouns[(i/len(adjectives)+i)%len(nouns)]
}

// numberRange returns the bounds used for generated numbers.
func numberRange(f schema.FieldSchema) (float64, float64) {
	lo, hi := 0.0, 100.0
	if f.Min != nil {
		lo = *f.Min
	} else if f.Validation.Min != nil {
		lo = *f.Validation.Min
	}
	if f.Max != nil {
		hi = *f.Max
	} else if f.Validation.Max != nil {
		hi = *f.Validation.Max
	}
	if hi < lo {
		hi = lo
	}
	return lo, hi
}
