package domain

import "testing"

func TestCanTransitionTable(t *testing.T) {
	cases := []struct {
		from, to DetailStatus
		want     bool
	}{
		{DetailStatusPending, DetailStatusCompleted, true},
		{DetailStatusPending, DetailStatusDNDPending, true},
		{DetailStatusDNDPending, DetailStatusCompleted, true},
		{DetailStatusDNDPending, DetailStatusDNDPending, true},
		{DetailStatusCompleted, DetailStatusCompleted, false},
		{DetailStatusCompleted, DetailStatusDNDPending, false},
		{DetailStatusCompleted, DetailStatusPending, false},
		{DetailStatusPending, DetailStatusPending, false},
		{DetailStatusDNDPending, DetailStatusPending, false},
	}

	for _, tc := range cases {
		if got := CanTransition(tc.from, tc.to); got != tc.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestCompletedIsTerminal(t *testing.T) {
	if !DetailStatusCompleted.IsTerminal() {
		t.Fatal("completed must be terminal")
	}
	if DetailStatusPending.IsTerminal() || DetailStatusDNDPending.IsTerminal() {
		t.Fatal("pending and dnd_pending must not be terminal")
	}
}

func TestRollup(t *testing.T) {
	cases := []struct {
		name     string
		statuses []DetailStatus
		want     TaskStatus
	}{
		{"all pending", []DetailStatus{DetailStatusPending, DetailStatusPending}, TaskStatusPending},
		{"all completed", []DetailStatus{DetailStatusCompleted, DetailStatusCompleted}, TaskStatusCompleted},
		{"partial completion", []DetailStatus{DetailStatusPending, DetailStatusCompleted, DetailStatusPending}, TaskStatusInProgress},
		{"dnd only", []DetailStatus{DetailStatusPending, DetailStatusDNDPending}, TaskStatusInProgress},
		{"dnd and completed", []DetailStatus{DetailStatusDNDPending, DetailStatusCompleted}, TaskStatusInProgress},
		{"single pending", []DetailStatus{DetailStatusPending}, TaskStatusPending},
		{"single completed", []DetailStatus{DetailStatusCompleted}, TaskStatusCompleted},
		{"empty", nil, TaskStatusPending},
	}

	for _, tc := range cases {
		if got := Rollup(tc.statuses); got != tc.want {
			t.Errorf("%s: Rollup = %s, want %s", tc.name, got, tc.want)
		}
	}
}

func TestMinChecksMet(t *testing.T) {
	if MinChecksMet(2) {
		t.Fatal("2 checks must not meet the minimum")
	}
	if !MinChecksMet(3) || !MinChecksMet(7) {
		t.Fatal("3 or more checks must meet the minimum")
	}
}

func TestParseTaskType(t *testing.T) {
	for _, valid := range []string{"in_house", "arrival", "departure"} {
		if _, ok := ParseTaskType(valid); !ok {
			t.Errorf("ParseTaskType(%q) should succeed", valid)
		}
	}
	for _, invalid := range []string{"", "inhouse", "checkout", "IN_HOUSE"} {
		if _, ok := ParseTaskType(invalid); ok {
			t.Errorf("ParseTaskType(%q) should fail", invalid)
		}
	}
}

func TestReconcileActionFor(t *testing.T) {
	if ReconcileActionFor(DetailStatusCompleted) != ReconcilePreserve {
		t.Fatal("completed details must be preserved")
	}
	if ReconcileActionFor(DetailStatusPending) != ReconcileDelete {
		t.Fatal("pending details must be deleted")
	}
	if ReconcileActionFor(DetailStatusDNDPending) != ReconcileDelete {
		t.Fatal("dnd_pending details must be deleted")
	}
}
