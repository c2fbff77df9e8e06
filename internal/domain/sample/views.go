package sample

import "sort"

// LatestRegistered returns the last n samples, most recently registered first.
func LatestRegistered(samples []Sample, n int) []Sample {
	if n <= 0 || len(samples) == 0 {
		return []Sample{}
	}
	if n > len(samples) {
		n = len(samples)
	}
	return reversed(samples[len(samples)-n:])
}

// LatestEdited returns the n most recently updated samples. Samples with equal
// LastUpdated keep the later-registered one first.
func LatestEdited(samples []Sample, n int) []Sample {
	if n <= 0 || len(samples) == 0 {
		return []Sample{}
	}
	ordered := reversed(samples)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].LastUpdated.After(ordered[j].LastUpdated)
	})
	if n < len(ordered) {
		ordered = ordered[:n]
	}
	return ordered
}

// LatestEditedPositional reproduces the dashboard approximation of "latest
// edited": the n samples registered before the newest one, most recent
// first. Collections of at most one sample fall back to LatestRegistered.
func LatestEditedPositional(samples []Sample, n int) []Sample {
	if len(samples) <= 1 {
		return LatestRegistered(samples, n)
	}
	if n <= 0 {
		return []Sample{}
	}
	end := len(samples) - 1
	start := end - n
	if start < 0 {
		start = 0
	}
	return reversed(samples[start:end])
}

func reversed(samples []Sample) []Sample {
	out := make([]Sample, len(samples))
	for i, s := range samples {
		out[len(samples)-1-i] = s
	}
	return out
}
