package allocation

import (
	"fmt"

	allocationEntity "propshop.GO/model/entity/allocation"
)

// Conflict kinds and warning kinds surfaced by transition validation.
const (
	KindInsufficientStock = "insufficient_stock"
	KindInvalidRegression = "invalid_regression"
	KindSkippedState      = "skipped_state"
)

// Severity of a validation finding.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// Conflict is one validation finding. Severity "error" blocks the save,
// "warning" is informational and surfaces alongside a successful mutation.
type Conflict struct {
	Kind     string `json:"kind"`
	Message  string `json:"message"`
	Severity string `json:"severity"`
}

// Report is the outcome of validating one proposed transition. Valid is false
// exactly when Conflicts is non-empty; Warnings never block.
type Report struct {
	Valid     bool       `json:"valid"`
	Conflicts []Conflict `json:"conflicts"`
	Warnings  []Conflict `json:"warnings"`
}

func (r *Report) addConflict(kind, message string) {
	r.Conflicts = append(r.Conflicts, Conflict{Kind: kind, Message: message, Severity: SeverityError})
}

func (r *Report) addWarning(kind, message string) {
	r.Warnings = append(r.Warnings, Conflict{Kind: kind, Message: message, Severity: SeverityWarning})
}

// ValidateTransition checks a proposed status/quantity change for one
// reservation against the item's current availability. Pure function of its
// inputs: the same reservation, proposal and availability always yield the
// same report.
//
// available is the uncommitted quantity for the reservation's equipment item
// with this reservation excluded (see Ledger.Available).
//
// Policy: forward moves are permitted, skipping intermediate states only
// warns; any move backward in the workflow is blocked, as is reaching
// returned without the equipment ever having been checked out.
func ValidateTransition(resv *allocationEntity.Reservation, proposed allocationEntity.Status, proposedAllocated int, available int) Report {
	report := Report{}

	if !proposed.Valid() {
		report.addConflict(KindInvalidRegression, fmt.Sprintf("unknown status %q", string(proposed)))
		report.Valid = false
		return report
	}

	current := resv.Status

	if proposed.Active() && proposedAllocated > available {
		report.addConflict(KindInsufficientStock, fmt.Sprintf(
			"requested %d of equipment %d but only %d available",
			proposedAllocated, resv.EquipmentID, available))
	}

	if proposed == allocationEntity.StatusReturned &&
		(current == allocationEntity.StatusRequested || current == allocationEntity.StatusAllocated) {
		report.addConflict(KindInvalidRegression, fmt.Sprintf(
			"cannot return equipment that was never checked out (current status %s)", current))
	} else if proposed.Rank() < current.Rank() {
		report.addConflict(KindInvalidRegression, fmt.Sprintf(
			"cannot move backward from %s to %s", current, proposed))
	} else if proposed.Rank() > current.Rank()+1 && proposed != allocationEntity.StatusReturned {
		report.addWarning(KindSkippedState, fmt.Sprintf(
			"transition %s to %s skips intermediate workflow states", current, proposed))
	}

	report.Valid = len(report.Conflicts) == 0
	return report
}

// ClampAllocation enforces the policy that allocation never exceeds need.
// When need drops below the current allocation, the allocation follows it
// down as part of the same mutation; no conflict is raised.
func ClampAllocation(needed, allocated int) int {
	if allocated > needed {
		return needed
	}
	if allocated < 0 {
		return 0
	}
	return allocated
}
