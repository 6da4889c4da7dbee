// Package schedule provides unit tests for the conflict detector.
package schedule

import (
	"sort"
	"testing"

	"github.com/atelierhq/fieldsync/internal/errors"
	"github.com/atelierhq/fieldsync/internal/models"
)

// event builds an active, uncompleted event for tests.
func event(id, date, clock string, duration int) models.ScheduledEvent {
	return models.ScheduledEvent{
		ID:              id,
		ScheduledDate:   date,
		ScheduledTime:   clock,
		DurationMinutes: &duration,
		IsActive:        true,
	}
}

// sortedIDs returns a sorted copy of an id list for set comparison.
func sortedIDs(ids []string) []string {
	out := append([]string(nil), ids...)
	sort.Strings(out)
	return out
}

// assertConflicts checks that the map holds exactly the expected id set for a key.
func assertConflicts(t *testing.T, m ConflictMap, id string, want []string) {
	t.Helper()
	got := sortedIDs(m[id])
	wantSorted := sortedIDs(want)
	if len(got) != len(wantSorted) {
		t.Fatalf("conflicts[%s] = %v, want %v", id, got, wantSorted)
	}
	for i := range got {
		if got[i] != wantSorted[i] {
			t.Fatalf("conflicts[%s] = %v, want %v", id, got, wantSorted)
		}
	}
}

// TestDetectConflictsScenario runs the canonical three-event scenario.
func TestDetectConflictsScenario(t *testing.T) {
	events := []models.ScheduledEvent{
		event("1", "2024-02-15", "09:00", 60),
		event("2", "2024-02-15", "09:30", 30),
		event("3", "2024-02-16", "09:00", 60),
	}

	conflicts, err := DetectConflicts(events)
	if err != nil {
		t.Fatalf("DetectConflicts failed: %v", err)
	}

	if len(conflicts) != 2 {
		t.Errorf("conflict map has %d keys, want 2", len(conflicts))
	}
	assertConflicts(t, conflicts, "1", []string{"2"})
	assertConflicts(t, conflicts, "2", []string{"1"})

	if _, ok := conflicts["3"]; ok {
		t.Error("event 3 is on another date and must be absent from the map")
	}
}

// TestDetectConflictsSymmetry verifies A conflicts B iff B conflicts A.
func TestDetectConflictsSymmetry(t *testing.T) {
	events := []models.ScheduledEvent{
		event("a", "2024-03-01", "08:00", 90),
		event("b", "2024-03-01", "08:30", 60),
		event("c", "2024-03-01", "09:00", 60),
		event("d", "2024-03-01", "12:00", 30),
	}

	conflicts, err := DetectConflicts(events)
	if err != nil {
		t.Fatalf("DetectConflicts failed: %v", err)
	}

	for id, others := range conflicts {
		for _, other := range others {
			found := false
			for _, back := range conflicts[other] {
				if back == id {
					found = true
					break
				}
			}
			if !found {
				t.Errorf("asymmetric conflict: %s -> %s but not %s -> %s", id, other, other, id)
			}
		}
	}
}

// TestDetectConflictsDatePartition verifies events on different dates never conflict.
func TestDetectConflictsDatePartition(t *testing.T) {
	events := []models.ScheduledEvent{
		event("1", "2024-02-15", "09:00", 480),
		event("2", "2024-02-16", "09:00", 480),
	}

	conflicts, err := DetectConflicts(events)
	if err != nil {
		t.Fatalf("DetectConflicts failed: %v", err)
	}

	if len(conflicts) != 0 {
		t.Errorf("expected empty conflict map across dates, got %v", conflicts)
	}
}

// TestDetectConflictsExemptions verifies filtering of ineligible events.
func TestDetectConflictsExemptions(t *testing.T) {
	inactive := event("inactive", "2024-02-15", "09:00", 60)
	inactive.IsActive = false

	completed := event("completed", "2024-02-15", "09:00", 60)
	completed.IsCompleted = true

	noTime := event("no-time", "2024-02-15", "", 60)

	events := []models.ScheduledEvent{
		event("live", "2024-02-15", "09:00", 60),
		inactive,
		completed,
		noTime,
	}

	conflicts, err := DetectConflicts(events)
	if err != nil {
		t.Fatalf("DetectConflicts failed: %v", err)
	}

	if len(conflicts) != 0 {
		t.Errorf("exempt events produced conflicts: %v", conflicts)
	}
}

// TestDetectConflictsHalfOpenBoundary verifies touching endpoints do not conflict.
func TestDetectConflictsHalfOpenBoundary(t *testing.T) {
	events := []models.ScheduledEvent{
		event("a", "2024-02-15", "09:00", 60),
		event("b", "2024-02-15", "10:00", 30),
	}

	conflicts, err := DetectConflicts(events)
	if err != nil {
		t.Fatalf("DetectConflicts failed: %v", err)
	}

	if len(conflicts) != 0 {
		t.Errorf("back-to-back events reported as conflicting: %v", conflicts)
	}
}

// TestDetectConflictsIdenticalSlots verifies exact double-bookings conflict.
func TestDetectConflictsIdenticalSlots(t *testing.T) {
	events := []models.ScheduledEvent{
		event("a", "2024-02-15", "14:00", 45),
		event("b", "2024-02-15", "14:00", 45),
	}

	conflicts, err := DetectConflicts(events)
	if err != nil {
		t.Fatalf("DetectConflicts failed: %v", err)
	}

	assertConflicts(t, conflicts, "a", []string{"b"})
	assertConflicts(t, conflicts, "b", []string{"a"})
}

// TestDetectConflictsZeroDuration verifies a zero-width event never conflicts.
func TestDetectConflictsZeroDuration(t *testing.T) {
	events := []models.ScheduledEvent{
		event("zero", "2024-02-15", "09:30", 0),
		event("hour", "2024-02-15", "09:00", 60),
	}

	conflicts, err := DetectConflicts(events)
	if err != nil {
		t.Fatalf("DetectConflicts failed: %v", err)
	}

	if len(conflicts) != 0 {
		t.Errorf("zero-duration event produced conflicts: %v", conflicts)
	}
}

// TestDetectConflictsDefaultDuration verifies missing duration defaults to 60 minutes.
func TestDetectConflictsDefaultDuration(t *testing.T) {
	noDuration := models.ScheduledEvent{
		ID:            "a",
		ScheduledDate: "2024-02-15",
		ScheduledTime: "09:00",
		IsActive:      true,
	}

	events := []models.ScheduledEvent{
		noDuration,
		event("b", "2024-02-15", "09:45", 30),
	}

	conflicts, err := DetectConflicts(events)
	if err != nil {
		t.Fatalf("DetectConflicts failed: %v", err)
	}

	// With the 60-minute default, [09:00, 10:00) overlaps [09:45, 10:15)
	assertConflicts(t, conflicts, "a", []string{"b"})
}

// TestDetectConflictsMalformedTime verifies fail-fast on bad time strings.
func TestDetectConflictsMalformedTime(t *testing.T) {
	events := []models.ScheduledEvent{
		event("ok", "2024-02-15", "09:00", 60),
		event("bad", "2024-02-15", "9am", 60),
	}

	_, err := DetectConflicts(events)
	if err == nil {
		t.Fatal("expected error for malformed time")
	}
	if !errors.Is(err, errors.ErrTimeParse) {
		t.Errorf("error code = %s, want TIME_PARSE_ERROR", errors.Code(err))
	}
}

// TestDetectConflictsIdempotent verifies repeated runs yield equal maps.
func TestDetectConflictsIdempotent(t *testing.T) {
	events := []models.ScheduledEvent{
		event("1", "2024-02-15", "09:00", 60),
		event("2", "2024-02-15", "09:30", 30),
		event("3", "2024-02-15", "09:45", 60),
		event("4", "2024-02-16", "09:00", 60),
	}

	first, err := DetectConflicts(events)
	if err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	second, err := DetectConflicts(events)
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}

	if len(first) != len(second) {
		t.Fatalf("map sizes differ: %d vs %d", len(first), len(second))
	}
	for id := range first {
		assertConflicts(t, second, id, first[id])
	}
}

// TestConflictInfo verifies id resolution back to full records.
func TestConflictInfo(t *testing.T) {
	events := []models.ScheduledEvent{
		event("1", "2024-02-15", "09:00", 60),
		event("2", "2024-02-15", "09:30", 30),
	}

	conflicts, err := DetectConflicts(events)
	if err != nil {
		t.Fatalf("DetectConflicts failed: %v", err)
	}

	info := ConflictInfo("1", conflicts, events)
	if len(info) != 1 {
		t.Fatalf("ConflictInfo returned %d events, want 1", len(info))
	}
	if info[0].ID != "2" {
		t.Errorf("ConflictInfo[0].ID = %s, want 2", info[0].ID)
	}
}

// TestConflictInfoUnknownID verifies a silent empty result for unknown ids.
func TestConflictInfoUnknownID(t *testing.T) {
	events := []models.ScheduledEvent{
		event("1", "2024-02-15", "09:00", 60),
	}

	conflicts, err := DetectConflicts(events)
	if err != nil {
		t.Fatalf("DetectConflicts failed: %v", err)
	}

	info := ConflictInfo("does-not-exist", conflicts, events)
	if info == nil {
		t.Fatal("ConflictInfo returned nil, want empty slice")
	}
	if len(info) != 0 {
		t.Errorf("ConflictInfo returned %d events, want 0", len(info))
	}
}

// TestDetectConflictsEmptyInput verifies the trivial input case.
func TestDetectConflictsEmptyInput(t *testing.T) {
	conflicts, err := DetectConflicts(nil)
	if err != nil {
		t.Fatalf("DetectConflicts failed: %v", err)
	}
	if len(conflicts) != 0 {
		t.Errorf("expected empty map, got %v", conflicts)
	}
}
