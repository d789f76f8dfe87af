package reaper

import "fmt"

// Kind enumerates the resource kinds the reaper knows how to tear down.
type Kind string

const (
	KindInstance      Kind = "instance"
	KindKeyPair       Kind = "key-pair"
	KindSecurityGroup Kind = "security-group"
	KindBucket        Kind = "bucket"
	KindLocalFile     Kind = "local-file"
)

// ResourceRef identifies a resource. Identity is the (Kind, ID) pair, the
// name is for display only.
type ResourceRef struct {
	Kind Kind
	ID   string
	Name string
}

func (r ResourceRef) String() string {
	if r.Name != "" && r.Name != r.ID {
		return fmt.Sprintf("%s %s (%s)", r.Kind, r.ID, r.Name)
	}
	return fmt.Sprintf("%s %s", r.Kind, r.ID)
}

// Status is the per-resource result of a run.
type Status string

const (
	// StatusPlanned marks a resource that would have been deleted in a
	// non-dry run.
	StatusPlanned Status = "planned"
	StatusDeleted Status = "deleted"
	StatusSkipped Status = "skipped"
	StatusFailed  Status = "failed"
)

// Outcome is the result of processing a single resource.
type Outcome struct {
	Ref    ResourceRef
	Status Status
	Reason string
}

func planned(ref ResourceRef) Outcome {
	return Outcome{Ref: ref, Status: StatusPlanned}
}

func deleted(ref ResourceRef) Outcome {
	return Outcome{Ref: ref, Status: StatusDeleted}
}

func skipped(ref ResourceRef, reason string) Outcome {
	return Outcome{Ref: ref, Status: StatusSkipped, Reason: reason}
}

func failed(ref ResourceRef, err error) Outcome {
	return Outcome{Ref: ref, Status: StatusFailed, Reason: err.Error()}
}

// Counts aggregates outcome statuses.
type Counts struct {
	Planned int
	Deleted int
	Skipped int
	Failed  int
}

// Summary holds per-kind outcome counts for a run.
type Summary map[Kind]Counts

// Summarize folds a list of outcomes into per-kind counts.
func Summarize(outcomes []Outcome) Summary {
	summary := make(Summary)
	for _, outcome := range outcomes {
		counts := summary[outcome.Ref.Kind]
		switch outcome.Status {
		case StatusPlanned:
			counts.Planned++
		case StatusDeleted:
			counts.Deleted++
		case StatusSkipped:
			counts.Skipped++
		case StatusFailed:
			counts.Failed++
		}
		summary[outcome.Ref.Kind] = counts
	}
	return summary
}

// Total sums the counts over all kinds.
func (s Summary) Total() Counts {
	var total Counts
	for _, counts := range s {
		total.Planned += counts.Planned
		total.Deleted += counts.Deleted
		total.Skipped += counts.Skipped
		total.Failed += counts.Failed
	}
	return total
}
