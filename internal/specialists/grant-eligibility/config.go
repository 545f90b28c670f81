// internal/specialists/grant-eligibility/config.go
package granteligibility

import "time"

type Config struct {
	Timeout time.Duration
	Index   string
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 10 * time.Second,
		Index:   "housing-grants",
	}
}
