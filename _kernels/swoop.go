// Swoop rotates the spectrum down by one bin every 100 ms.
package main

func Apply(elapsedMs uint64, bins [][2]float32) [][2]float32 {
	n := len(bins)
	out := make([][2]float32, n)
	if n == 0 {
		return out
	}
	shift := int(elapsedMs/100) % n
	for i := range out {
		out[i] = bins[(i+shift)%n]
	}
	return out
}
