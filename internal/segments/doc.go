// Package segments selects candidate time ranges from source footage. A
// loudness pass over fixed audio windows supplies high-energy start times,
// backfilled with evenly spaced timestamps, then a greedy pass enforces
// minimum spacing before the final order is shuffled.
package segments
