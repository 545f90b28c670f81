// internal/specialists/listing-filter/config.go
package listingfilter

import "time"

type Config struct {
	Timeout    time.Duration
	MaxResults int
	// Ranking component weights.
	PriceWeight    float64
	LocationWeight float64
}

func LoadConfig() *Config {
	return &Config{
		Timeout:        5 * time.Second,
		MaxResults:     10,
		PriceWeight:    0.6,
		LocationWeight: 0.4,
	}
}
