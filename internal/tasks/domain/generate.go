package domain

import (
	"sort"
	"time"
)

// Fact is the slice of an occupancy record the generator needs. Fact IDs are
// assigned by the occupancy store and increase monotonically with recency;
// the generator relies on that ordering when several facts cover one room.
type Fact struct {
	ID          int64
	RoomID      int64
	ArrivalAt   *time.Time
	DepartureAt *time.Time
}

// DetailSeed describes one task detail to be created for a room.
type DetailSeed struct {
	RoomID         int64
	SourceRecordID int64
	ScheduledAt    *time.Time
	PriorityRank   *int
}

// SelectLatestFactPerRoom keeps, for every room, the fact with the highest ID.
// When an upload supersedes an earlier one for the same room and date, the
// newer fact wins.
func SelectLatestFactPerRoom(facts []Fact) []Fact {
	latest := make(map[int64]Fact, len(facts))
	for _, fact := range facts {
		if current, ok := latest[fact.RoomID]; !ok || fact.ID > current.ID {
			latest[fact.RoomID] = fact
		}
	}

	result := make([]Fact, 0, len(latest))
	for _, fact := range latest {
		result = append(result, fact)
	}
	// Stable output order for deterministic detail creation.
	sort.Slice(result, func(i, j int) bool { return result[i].RoomID < result[j].RoomID })
	return result
}

// BuildDetailSeeds turns deduplicated occupancy facts into detail seeds for
// the given task type:
//   - arrival details carry the scheduled arrival time
//   - departure details carry the scheduled departure time and a priority
//     rank, ascending by departure time with unscheduled rooms ranked last
//   - in-house details carry neither
func BuildDetailSeeds(taskType TaskType, facts []Fact) []DetailSeed {
	deduped := SelectLatestFactPerRoom(facts)

	seeds := make([]DetailSeed, 0, len(deduped))
	for _, fact := range deduped {
		seed := DetailSeed{
			RoomID:         fact.RoomID,
			SourceRecordID: fact.ID,
		}
		switch taskType {
		case TaskTypeArrival:
			seed.ScheduledAt = fact.ArrivalAt
		case TaskTypeDeparture:
			seed.ScheduledAt = fact.DepartureAt
		}
		seeds = append(seeds, seed)
	}

	if taskType == TaskTypeDeparture {
		rankDepartures(seeds)
	}
	return seeds
}

// rankDepartures assigns priority ranks in place: earliest departure gets
// rank 1, rooms without a recorded time sort last. Ranks are frozen at
// generation time and never recomputed afterwards.
func rankDepartures(seeds []DetailSeed) {
	sort.SliceStable(seeds, func(i, j int) bool {
		a, b := seeds[i].ScheduledAt, seeds[j].ScheduledAt
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return clockOf(*a).Before(clockOf(*b))
		}
	})

	for i := range seeds {
		rank := i + 1
		seeds[i].PriorityRank = &rank
	}
}

// clockOf strips the calendar date, keeping only the time of day.
func clockOf(t time.Time) time.Time {
	return time.Date(0, 1, 1, t.Hour(), t.Minute(), t.Second(), 0, time.UTC)
}
