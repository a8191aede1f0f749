package view

import (
	"sort"
	"time"

	"flowblog/internal/domain"
)

// GroupByInterval buckets view timestamps into hourly (24h) or daily (7d, 30d,
// 90d) counts ending at now. Every bucket in the window is present, zero or
// not. Events outside [now-range, now] are ignored.
func GroupByInterval(events []time.Time, interval domain.Interval, now time.Time) ([]domain.ViewBucket, error) {
	if !interval.IsValid() {
		return nil, domain.ErrInvalidInterval
	}

	now = now.UTC()
	start := now.Add(-interval.Range())
	layout := interval.KeyLayout()
	step := interval.Step()

	counts := make(map[string]int64)
	keys := make([]string, 0, int(interval.Range()/step)+1)
	for t := start; !t.After(now); t = t.Add(step) {
		key := t.Format(layout)
		if _, ok := counts[key]; ok {
			continue
		}
		counts[key] = 0
		keys = append(keys, key)
	}

	for _, e := range events {
		e = e.UTC()
		if e.Before(start) || e.After(now) {
			continue
		}
		key := e.Format(layout)
		if _, ok := counts[key]; ok {
			counts[key]++
		}
	}

	sort.Strings(keys)

	buckets := make([]domain.ViewBucket, 0, len(keys))
	for _, key := range keys {
		buckets = append(buckets, domain.ViewBucket{TimePeriod: key, ViewsCount: counts[key]})
	}
	return buckets, nil
}
