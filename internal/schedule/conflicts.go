package schedule

import (
	"github.com/atelierhq/fieldsync/internal/errors"
	"github.com/atelierhq/fieldsync/internal/models"
)

// ConflictMap maps an event id to the ids of the other events whose
// time ranges overlap it. Events with no conflicts are absent; callers
// must treat "absent" and "empty" identically.
type ConflictMap map[string][]string

// HasConflict reports whether the given event id has any conflicts.
func (m ConflictMap) HasConflict(id string) bool {
	return len(m[id]) > 0
}

// candidate is an event admitted to pairwise comparison.
type candidate struct {
	id       string
	interval Interval
}

// DetectConflicts computes, for every event in the list, the set of
// other events whose time ranges overlap it on the same calendar day.
//
// Events that are inactive, completed, or carry no scheduled time are
// excluded entirely: they can neither conflict nor be conflicted-with.
// Dates partition the comparison; they are compared by exact string
// equality with no timezone normalization. Within a date bucket every
// unordered pair is compared once, which is quadratic per bucket and
// fine for human-sized daily schedules.
//
// A malformed scheduled time fails the whole computation with a
// TIME_PARSE_ERROR rather than silently miscomputing conflicts.
func DetectConflicts(events []models.ScheduledEvent) (ConflictMap, error) {
	byDate := make(map[string][]candidate)

	for i := range events {
		e := &events[i]
		if !e.Schedulable() {
			continue
		}

		start, err := ParseClock(e.ScheduledTime)
		if err != nil {
			return nil, errors.Wrap(errors.ErrTimeParse, "event "+e.ID, err)
		}

		byDate[e.ScheduledDate] = append(byDate[e.ScheduledDate], candidate{
			id:       e.ID,
			interval: NewInterval(start, e.Duration()),
		})
	}

	conflicts := make(ConflictMap)

	for _, bucket := range byDate {
		for i := 0; i < len(bucket); i++ {
			for j := i + 1; j < len(bucket); j++ {
				if bucket[i].interval.Overlaps(bucket[j].interval) {
					conflicts[bucket[i].id] = append(conflicts[bucket[i].id], bucket[j].id)
					conflicts[bucket[j].id] = append(conflicts[bucket[j].id], bucket[i].id)
				}
			}
		}
	}

	return conflicts, nil
}

// ConflictInfo resolves the conflicts recorded for an event id back
// into full event records for display. Unknown ids and ids without
// conflicts both yield an empty slice, never an error.
func ConflictInfo(eventID string, conflicts ConflictMap, events []models.ScheduledEvent) []models.ScheduledEvent {
	ids := conflicts[eventID]
	if len(ids) == 0 {
		return []models.ScheduledEvent{}
	}

	byID := make(map[string]*models.ScheduledEvent, len(events))
	for i := range events {
		byID[events[i].ID] = &events[i]
	}

	resolved := make([]models.ScheduledEvent, 0, len(ids))
	for _, id := range ids {
		if e, ok := byID[id]; ok {
			resolved = append(resolved, *e)
		}
	}

	return resolved
}
