package main

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// parseDuration parses [[hh:]mm:]ss[.ss] durations. Hours and minutes
// are integers, seconds may be fractional.
func parseDuration(s string) (time.Duration, error) {
	fields := strings.Split(strings.TrimSpace(s), ":")
	if len(fields) > 3 {
		return 0, fmt.Errorf("invalid duration %q: too many fields", s)
	}
	seconds, err := strconv.ParseFloat(fields[len(fields)-1], 64)
	if err != nil || seconds < 0 || math.IsInf(seconds, 0) {
		return 0, fmt.Errorf("invalid duration %q: bad seconds", s)
	}
	d := time.Duration(seconds * float64(time.Second))
	units := []time.Duration{time.Minute, time.Hour}
	for i := len(fields) - 2; i >= 0; i-- {
		v, err := strconv.ParseUint(fields[i], 10, 32)
		if err != nil {
			return 0, fmt.Errorf("invalid duration %q: bad field %q", s, fields[i])
		}
		d += time.Duration(v) * units[len(fields)-2-i]
	}
	return d, nil
}
