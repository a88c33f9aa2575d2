// Wobble replaces every third bin with a bin up to 100 bins above it,
// the offset oscillates with time.
package main

import "math"

func Apply(elapsedMs uint64, bins [][2]float32) [][2]float32 {
	n := len(bins)
	out := make([][2]float32, n)
	offset := max(0, int(math.Sin(float64(elapsedMs)/40)*100))
	for i, b := range bins {
		if i%3 != 0 {
			out[i] = b
			continue
		}
		out[i] = bins[(i+offset)%n]
	}
	return out
}
