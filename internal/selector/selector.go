// Package selector picks the task to surface next, weighted by priority
// and overdue status.
package selector

import (
	"math/rand/v2"
	"time"

	"tasktimer/internal/model"
)

// Weight returns the relative likelihood of t being chosen at now.
// Priorities of 12 and above weigh nothing unless the task is overdue,
// in which case the weight is doubled and never below 1.
func Weight(t model.Task, now time.Time) int {
	w := 12 - int(t.Priority)
	if w < 0 {
		w = 0
	}
	if t.Overdue(now) {
		w = max(w*2, 1)
	}
	return w
}

// Choose picks one eligible task with probability weight/sum(weights).
// A task is eligible when it has no start or its start is before now.
// It reports false when nothing can be chosen.
func Choose(tasks []model.Task, now time.Time, rng *rand.Rand) (model.Task, bool) {
	weights := make([]int, len(tasks))
	total := 0
	for i, t := range tasks {
		if !t.Started(now) {
			continue
		}
		weights[i] = Weight(t, now)
		total += weights[i]
	}
	if total == 0 {
		return model.Task{}, false
	}

	var n int
	if rng != nil {
		n = rng.IntN(total)
	} else {
		n = rand.IntN(total)
	}
	for i, w := range weights {
		if n < w {
			return tasks[i], true
		}
		n -= w
	}
	// unreachable: n < total
	return model.Task{}, false
}
