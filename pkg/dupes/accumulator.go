package dupes

import (
	"context"

	"github.com/sdejongh/dupnorris/pkg/compare"
	"github.com/sdejongh/dupnorris/pkg/models"
)

// Fingerprinter computes the bucketing fingerprint of a file.
// *fingerprint.Fingerprinter satisfies it.
type Fingerprinter interface {
	Compute(path string) (uint32, error)
}

// Outcome tells what Add did with a path
type Outcome int

const (
	// OutcomeSkipped means the file could not be fingerprinted
	OutcomeSkipped Outcome = iota
	// OutcomeIndexed means no equivalent was found and the file joined its bucket
	OutcomeIndexed
	// OutcomeGrouped means the file joined the group of an earlier equivalent
	OutcomeGrouped
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSkipped:
		return "skipped"
	case OutcomeIndexed:
		return "indexed"
	case OutcomeGrouped:
		return "grouped"
	default:
		return "unknown"
	}
}

// Accumulator buckets files by fingerprint and groups equivalent files.
// It is fed one path at a time and is not safe for concurrent use.
type Accumulator struct {
	fp  Fingerprinter
	cmp compare.Comparator

	index  map[uint32][]string
	groups map[string][]string
	order  []string

	comparisons int
	collisions  int
	failures    int
}

// NewAccumulator creates an empty accumulator
func NewAccumulator(fp Fingerprinter, cmp compare.Comparator) *Accumulator {
	return &Accumulator{
		fp:     fp,
		cmp:    cmp,
		index:  make(map[uint32][]string),
		groups: make(map[string][]string),
	}
}

// Add fingerprints path and compares it against every earlier file in the
// same bucket, in insertion order. The first equivalent candidate wins: the
// path joins the candidate's group, creating it with the candidate as
// representative when needed. Otherwise the path is appended to the bucket.
//
// A fingerprint failure returns OutcomeSkipped with the error; the path is
// then absent from the index and from every group.
func (a *Accumulator) Add(ctx context.Context, path string) (Outcome, error) {
	sum, err := a.fp.Compute(path)
	if err != nil {
		return OutcomeSkipped, err
	}

	bucket := a.index[sum]
	for _, candidate := range bucket {
		a.comparisons++
		result := a.cmp.Compare(ctx, candidate, path)
		if result.Result == compare.Error {
			a.failures++
		}
		if !result.Equivalent() {
			continue
		}

		members, ok := a.groups[candidate]
		if !ok {
			members = []string{candidate}
			a.order = append(a.order, candidate)
		}
		a.groups[candidate] = append(members, path)
		return OutcomeGrouped, nil
	}

	if len(bucket) > 0 {
		a.collisions++
	}
	a.index[sum] = append(bucket, path)
	return OutcomeIndexed, nil
}

// Groups returns the equivalence groups in creation order
func (a *Accumulator) Groups() []models.Group {
	out := make([]models.Group, 0, len(a.order))
	for _, rep := range a.order {
		members := make([]string, len(a.groups[rep]))
		copy(members, a.groups[rep])
		out = append(out, models.Group{Representative: rep, Members: members})
	}
	return out
}

// GroupCount returns the number of groups created so far
func (a *Accumulator) GroupCount() int { return len(a.order) }

// Bucket returns the indexed paths for a fingerprint, in insertion order
func (a *Accumulator) Bucket(sum uint32) []string {
	return append([]string(nil), a.index[sum]...)
}

// Comparisons returns the number of pairwise comparisons performed
func (a *Accumulator) Comparisons() int { return a.comparisons }

// Collisions returns how many files landed in a non-empty bucket without
// matching any of its entries
func (a *Accumulator) Collisions() int { return a.collisions }

// Failures returns how many comparisons could not read a file
func (a *Accumulator) Failures() int { return a.failures }
