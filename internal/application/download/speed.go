// Package download fetches queued items to disk and drives the worker loop.
package download

import "time"

// Sample is the cumulative byte count observed at At.
type Sample struct {
	At    time.Time
	Bytes int64
}

// CalculateSpeed returns bytes per second across the samples inside
// [now-window, now]. A zero window covers every sample.
func CalculateSpeed(samples []Sample, now time.Time, window time.Duration) float64 {
	var first, last *Sample
	for i := range samples {
		if window > 0 && samples[i].At.Before(now.Add(-window)) {
			continue
		}
		if first == nil {
			first = &samples[i]
		}
		last = &samples[i]
	}
	if first == nil || first == last {
		return 0
	}
	secs := last.At.Sub(first.At).Seconds()
	if secs <= 0 {
		return 0
	}
	return float64(last.Bytes-first.Bytes) / secs
}

// sampler keeps a sliding window of samples.
type sampler struct {
	samples   []Sample
	retention time.Duration
}

func (s *sampler) add(now time.Time, bytes int64) {
	s.samples = append(s.samples, Sample{At: now, Bytes: bytes})
	cut := 0
	for cut < len(s.samples) && s.samples[cut].At.Before(now.Add(-s.retention)) {
		cut++
	}
	s.samples = s.samples[cut:]
}
