package main

import (
	"math"
	"sort"

	"github.com/san-kum/organelle/internal/storage"
)

// motionSeries reduces recorded rows to one sample per frame: the mean
// distance from the container centre and the mean displacement since the
// previous recorded frame.
func motionSeries(rows []storage.Row) (dist, speed []float64) {
	type sample struct{ x, y float64 }
	byFrame := make(map[int]map[string]sample)
	var order []int
	for _, r := range rows {
		m, ok := byFrame[r.Frame]
		if !ok {
			m = make(map[string]sample)
			byFrame[r.Frame] = m
			order = append(order, r.Frame)
		}
		m[r.ID] = sample{r.X, r.Y}
	}
	sort.Ints(order)

	var prev map[string]sample
	for _, idx := range order {
		cur := byFrame[idx]
		d := 0.0
		for _, s := range cur {
			d += math.Hypot(s.x, s.y)
		}
		dist = append(dist, d/float64(len(cur)))

		if prev != nil {
			moved, n := 0.0, 0
			for id, s := range cur {
				if p, ok := prev[id]; ok {
					moved += math.Hypot(s.x-p.x, s.y-p.y)
					n++
				}
			}
			if n > 0 {
				speed = append(speed, moved/float64(n))
			}
		}
		prev = cur
	}
	return dist, speed
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
