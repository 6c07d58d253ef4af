package timeevent

import "skirace/pkg/domain"

// Finisher is the minimal identity the propagation partition needs, lifted
// out of the ranked Finish TimeEvents and the StartEntries that placed
// them. StartlistID rides along so a newly created downstream StartEntry
// stays attached to the same Startlist as its source.
type Finisher struct {
	TimeEventID  string
	StartEntryID string
	StartlistID  string
	Bib          int
	Name         string
	Club         string
}

// Target is one finisher's assignment to one progression branch, with the
// branch's offset already folded in: GlobalPosition is this finisher's
// absolute rank within the whole target round (across all of that round's
// heats), not just within the source heat.
type Target struct {
	Letter         string // e.g. "SA", "SC", "FB" ("OUT" is never returned)
	GlobalPosition int
	Finisher       Finisher
}

// Propagate is the pure partition function: given a heat's Rule and its
// Finish ranking (best first), it returns where each ranked finisher goes
// next. It does no I/O and cannot fail — capacity
// checks and persistence are the caller's job (resolveTarget/applyPropagation
// in processor.go), kept deliberately separate so a failed write never
// leaves this step's results half-applied.
func Propagate(rule domain.Rule, ranked []Finisher) []Target {
	var out []Target
	remaining := ranked
	for _, branch := range rule {
		take := branch.Count
		if take > len(remaining) {
			take = len(remaining)
		}
		group := remaining[:take]
		remaining = remaining[take:]

		if branch.Target == "OUT" {
			continue
		}
		for i, f := range group {
			out = append(out, Target{
				Letter:         branch.Target,
				GlobalPosition: branch.Offset + i + 1,
				Finisher:       f,
			})
		}
	}
	return out
}
