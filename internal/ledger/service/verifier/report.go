package verifier

import (
	"slices"

	"go.uber.org/zap/zapcore"
)

const (
	resultMatch       = "match"
	resultMismatch    = "mismatch"
	resultMissing     = "missing"
	resultPlaceholder = "placeholder"
	resultUnavailable = "unavailable"
)

// Mismatch is a stored block that disagrees with the node.
type Mismatch struct {
	Number uint64
	Reason string
}

// Report is the outcome of one verification run. Number lists are ascending.
type Report struct {
	Checked      int
	Matched      int
	Mismatches   []Mismatch
	Missing      []uint64
	Placeholders []uint64
	// Unavailable lists stored blocks the node could not serve for comparison.
	Unavailable []uint64
}

// Clean reports whether every checked block matched or could not be compared.
func (r Report) Clean() bool {
	return len(r.Mismatches) == 0 && len(r.Missing) == 0
}

func (r *Report) add(number uint64, result, reason string) {
	r.Checked++
	switch result {
	case resultMatch:
		r.Matched++
	case resultMismatch:
		r.Mismatches = append(r.Mismatches, Mismatch{Number: number, Reason: reason})
	case resultMissing:
		r.Missing = append(r.Missing, number)
	case resultPlaceholder:
		r.Placeholders = append(r.Placeholders, number)
	case resultUnavailable:
		r.Unavailable = append(r.Unavailable, number)
	}
}

func (r *Report) sort() {
	slices.SortFunc(r.Mismatches, func(a, b Mismatch) int {
		switch {
		case a.Number < b.Number:
			return -1
		case a.Number > b.Number:
			return 1
		}
		return 0
	})
	slices.Sort(r.Missing)
	slices.Sort(r.Placeholders)
	slices.Sort(r.Unavailable)
}

// MarshalLogObject implements zapcore.ObjectMarshaler.
func (r Report) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddInt("checked", r.Checked)
	enc.AddInt("matched", r.Matched)
	enc.AddInt("mismatched", len(r.Mismatches))
	enc.AddInt("missing", len(r.Missing))
	enc.AddInt("placeholders", len(r.Placeholders))
	enc.AddInt("unavailable", len(r.Unavailable))
	return nil
}
