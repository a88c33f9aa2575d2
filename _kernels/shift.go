// Shift takes real parts three bins above and imaginary parts from a bin
// that moves up every 50 ms.
package main

func Apply(elapsedMs uint64, bins [][2]float32) [][2]float32 {
	n := len(bins)
	out := make([][2]float32, n)
	if n == 0 {
		return out
	}
	shift := int(elapsedMs/50) % n
	for i := range out {
		out[i] = [2]float32{bins[(i+3)%n][0], bins[(i+shift)%n][1]}
	}
	return out
}
