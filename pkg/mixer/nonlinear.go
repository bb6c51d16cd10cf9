// Package mixer implements the band-limited delta sample accumulator and
// the shared non-linear channel-mixing formulas used by the base APU and by
// MMC5 (which reuses the APU's own pulse-mixer rational approximation for
// its PCM channel).
package mixer

// PulseMix applies the classic two-pulse-channel non-linear mixer
// approximation to a summed pulse amplitude (0-30).
func PulseMix(pulseSum int) int {
	if pulseSum == 0 {
		return 0
	}
	return 65536 * 9552 / (100*812800/pulseSum + 10000)
}

// TNDMix applies the triangle/noise/DMC group's non-linear mixer
// approximation to a weighted sum (triangle*3 + noise*2 + dmc).
func TNDMix(tndSum int) int {
	if tndSum == 0 {
		return 0
	}
	return 65536 * 16367 / (100*2432900/tndSum + 10000)
}
