// Package coalesce folds bursts of small messages from the same sender into
// single readable entries.
package coalesce

import (
	"time"

	"relaylog/pkg/models"
)

// DefaultWindow is the merge window applied when configuration leaves it
// unset.
const DefaultWindow = 5 * time.Minute

// CanMerge reports whether next may be folded into prev. Both messages need
// known timestamps and the same sender, neither kind may be merge-blocked,
// and next must land within window of prev.
func CanMerge(prev, next models.Message, window time.Duration) bool {
	if prev.Sender == "" || prev.Sender != next.Sender {
		return false
	}
	if !prev.Kind.Mergeable() || !next.Kind.Mergeable() {
		return false
	}
	if prev.At.IsZero() || next.At.IsZero() {
		return false
	}
	d := next.At.Sub(prev.At)
	return d >= 0 && d < window
}

// Merge folds next into acc, concatenating texts with a blank line and
// advancing the accumulator's timestamp so a long run of chatter eventually
// ages out of its own window.
func Merge(acc, next models.Message) models.Message {
	acc.Text = acc.Text + "\n\n" + next.Text
	acc.At = next.At
	acc.TS = next.TS
	return acc
}

// Coalesce merges adjacent mergeable runs in a chronologically ordered
// slice. Input order is assumed; the result is a fresh slice and the input
// is not modified. Applying Coalesce to its own output is a no-op.
func Coalesce(msgs []models.Message, window time.Duration) []models.Message {
	if len(msgs) == 0 {
		return nil
	}
	if window <= 0 {
		window = DefaultWindow
	}
	out := make([]models.Message, 0, len(msgs))
	acc := msgs[0]
	for _, m := range msgs[1:] {
		if CanMerge(acc, m, window) {
			acc = Merge(acc, m)
			continue
		}
		out = append(out, acc)
		acc = m
	}
	return append(out, acc)
}
