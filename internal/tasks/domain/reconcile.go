package domain

// ReconcileAction is the decision taken for a task detail whose originating
// occupancy fact is about to be deleted.
type ReconcileAction int

const (
	// ReconcilePreserve keeps the detail and its full history, detaching it
	// from the deleted fact (source reference becomes null).
	ReconcilePreserve ReconcileAction = iota
	// ReconcileDelete removes the detail together with its DND checks and
	// status change logs. Nothing about work that never happened is worth
	// auditing.
	ReconcileDelete
)

// ReconcileActionFor decides whether a detail survives its source fact's
// deletion. The decision depends on business status, not on foreign-key
// presence: completed work is permanent audit evidence, unstarted work is not.
func ReconcileActionFor(status DetailStatus) ReconcileAction {
	if status == DetailStatusCompleted {
		return ReconcilePreserve
	}
	return ReconcileDelete
}
