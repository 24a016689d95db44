package domain

import (
	"testing"
	"time"
)

func timeAt(hour, minute int) *time.Time {
	t := time.Date(2025, 3, 1, hour, minute, 0, 0, time.UTC)
	return &t
}

func TestSelectLatestFactPerRoomNewestWins(t *testing.T) {
	facts := []Fact{
		{ID: 10, RoomID: 101},
		{ID: 25, RoomID: 101}, // re-uploaded, supersedes fact 10
		{ID: 12, RoomID: 102},
	}

	selected := SelectLatestFactPerRoom(facts)
	if len(selected) != 2 {
		t.Fatalf("expected 2 facts, got %d", len(selected))
	}
	if selected[0].RoomID != 101 || selected[0].ID != 25 {
		t.Fatalf("room 101 should keep fact 25, got %d", selected[0].ID)
	}
	if selected[1].RoomID != 102 || selected[1].ID != 12 {
		t.Fatalf("room 102 should keep fact 12, got %d", selected[1].ID)
	}
}

func TestBuildDetailSeedsDepartureRanking(t *testing.T) {
	facts := []Fact{
		{ID: 1, RoomID: 201, DepartureAt: timeAt(14, 0)},
		{ID: 2, RoomID: 202, DepartureAt: timeAt(9, 30)},
		{ID: 3, RoomID: 203, DepartureAt: timeAt(11, 0)},
		{ID: 4, RoomID: 204}, // no recorded departure time
	}

	seeds := BuildDetailSeeds(TaskTypeDeparture, facts)
	if len(seeds) != 4 {
		t.Fatalf("expected 4 seeds, got %d", len(seeds))
	}

	wantOrder := []int64{202, 203, 201, 204}
	for i, want := range wantOrder {
		if seeds[i].RoomID != want {
			t.Fatalf("position %d: expected room %d, got %d", i, want, seeds[i].RoomID)
		}
		if seeds[i].PriorityRank == nil || *seeds[i].PriorityRank != i+1 {
			t.Fatalf("room %d: expected rank %d, got %v", want, i+1, seeds[i].PriorityRank)
		}
	}

	if seeds[3].ScheduledAt != nil {
		t.Fatal("unscheduled room must keep a nil scheduled time")
	}
}

func TestBuildDetailSeedsArrivalCopiesScheduledTime(t *testing.T) {
	facts := []Fact{
		{ID: 1, RoomID: 301, ArrivalAt: timeAt(15, 45), DepartureAt: timeAt(10, 0)},
	}

	seeds := BuildDetailSeeds(TaskTypeArrival, facts)
	if len(seeds) != 1 {
		t.Fatalf("expected 1 seed, got %d", len(seeds))
	}
	if seeds[0].ScheduledAt == nil || seeds[0].ScheduledAt.Hour() != 15 {
		t.Fatalf("arrival seed must carry the arrival time, got %v", seeds[0].ScheduledAt)
	}
	if seeds[0].PriorityRank != nil {
		t.Fatal("arrival seeds must not be ranked")
	}
}

func TestBuildDetailSeedsInHouseCarriesNoSchedule(t *testing.T) {
	facts := []Fact{
		{ID: 1, RoomID: 101, ArrivalAt: timeAt(12, 0), DepartureAt: timeAt(11, 0)},
		{ID: 2, RoomID: 102},
		{ID: 3, RoomID: 103},
	}

	seeds := BuildDetailSeeds(TaskTypeInHouse, facts)
	if len(seeds) != 3 {
		t.Fatalf("expected 3 seeds, got %d", len(seeds))
	}
	for _, seed := range seeds {
		if seed.ScheduledAt != nil || seed.PriorityRank != nil {
			t.Fatalf("in-house seed for room %d must carry no schedule or rank", seed.RoomID)
		}
	}
}

func TestBuildDetailSeedsDedupesRooms(t *testing.T) {
	facts := []Fact{
		{ID: 5, RoomID: 101, DepartureAt: timeAt(10, 0)},
		{ID: 9, RoomID: 101, DepartureAt: timeAt(12, 0)}, // corrected departure
		{ID: 6, RoomID: 102, DepartureAt: timeAt(11, 0)},
	}

	seeds := BuildDetailSeeds(TaskTypeDeparture, facts)
	if len(seeds) != 2 {
		t.Fatalf("expected one seed per room, got %d", len(seeds))
	}
	// The corrected 12:00 departure ranks room 101 after room 102.
	if seeds[0].RoomID != 102 || *seeds[0].PriorityRank != 1 {
		t.Fatalf("room 102 should rank first, got room %d", seeds[0].RoomID)
	}
	if seeds[1].SourceRecordID != 9 {
		t.Fatalf("room 101 should reference the newest fact, got %d", seeds[1].SourceRecordID)
	}
}
