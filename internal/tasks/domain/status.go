// Package domain provides core business rules for the tasks bounded context:
// status state machines, aggregate rollup, departure ranking, occupancy fact
// selection and countdown arithmetic. Everything here is pure and free of
// I/O so the rules can be tested without a database.
package domain

// TaskType identifies which kind of daily inspection a task covers.
type TaskType string

const (
	TaskTypeInHouse   TaskType = "in_house"
	TaskTypeArrival   TaskType = "arrival"
	TaskTypeDeparture TaskType = "departure"
)

// ParseTaskType validates a raw task type string.
func ParseTaskType(raw string) (TaskType, bool) {
	switch TaskType(raw) {
	case TaskTypeInHouse, TaskTypeArrival, TaskTypeDeparture:
		return TaskType(raw), true
	}
	return "", false
}

// TaskStatus is the derived status of a task aggregate.
type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusCompleted  TaskStatus = "completed"
)

// DetailStatus is the lifecycle status of a single room's inspection.
type DetailStatus string

const (
	DetailStatusPending    DetailStatus = "pending"
	DetailStatusDNDPending DetailStatus = "dnd_pending"
	DetailStatusCompleted  DetailStatus = "completed"
)

// IsTerminal returns true when no further mutation of the detail is allowed.
func (s DetailStatus) IsTerminal() bool {
	return s == DetailStatusCompleted
}

// detailTransitions is the single transition table for detail statuses.
// dnd_pending -> dnd_pending is a real transition: every DND check lands the
// detail back in dnd_pending regardless of how many checks have accumulated.
var detailTransitions = map[DetailStatus]map[DetailStatus]bool{
	DetailStatusPending: {
		DetailStatusCompleted:  true,
		DetailStatusDNDPending: true,
	},
	DetailStatusDNDPending: {
		DetailStatusCompleted:  true,
		DetailStatusDNDPending: true,
	},
	// completed is terminal: no outgoing transitions.
}

// CanTransition reports whether a detail may move from one status to another.
func CanTransition(from, to DetailStatus) bool {
	return detailTransitions[from][to]
}

// MinDNDChecks is the advisory minimum number of DND checks before a room is
// considered sufficiently attempted. It never changes engine behavior; it is
// surfaced to downstream consumers as metadata only.
const MinDNDChecks = 3

// MinChecksMet reports whether the advisory DND check threshold is reached.
func MinChecksMet(dndCount int) bool {
	return dndCount >= MinDNDChecks
}

// Rollup derives the aggregate task status from its detail statuses.
// Callers never set the aggregate status directly.
func Rollup(statuses []DetailStatus) TaskStatus {
	if len(statuses) == 0 {
		return TaskStatusPending
	}

	completed := 0
	dndPending := 0
	for _, s := range statuses {
		switch s {
		case DetailStatusCompleted:
			completed++
		case DetailStatusDNDPending:
			dndPending++
		}
	}

	switch {
	case completed == len(statuses):
		return TaskStatusCompleted
	case completed > 0 || dndPending > 0:
		return TaskStatusInProgress
	default:
		return TaskStatusPending
	}
}
