package config

import (
	"strconv"
	"strings"
	"time"
)

// parseDurationOrSeconds accepts either a time.ParseDuration string or a
// bare numeric value interpreted as seconds.
func parseDurationOrSeconds(v string) (time.Duration, error) {
	v = strings.TrimSpace(v)
	if td, err := time.ParseDuration(v); err == nil {
		return td, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, err
	}
	return time.Duration(f * float64(time.Second)), nil
}
