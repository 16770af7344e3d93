package visits

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleVisit(id string) Visit {
	return Visit{
		ID:           id,
		UserRecordID: "user-7",
		ClinicID:     "clinic-1",
		BookTime:     time.Date(2026, 6, 1, 11, 30, 0, 0, time.UTC),
		VisitTime:    time.Date(2026, 6, 1, 11, 30, 0, 0, time.UTC),
		Status:       StatusBooked,
	}
}

func TestOptimisticInsertDoesNotMutateInput(t *testing.T) {
	original := []Visit{sampleVisit("visit-1")}
	before := make([]Visit, len(original))
	copy(before, original)

	next := Apply(original, OptimisticInsert{Visit: sampleVisit("tmp-1")})

	assert.Equal(t, before, original, "input list must be untouched")
	require.Len(t, next, 2)
	assert.True(t, next[1].IsOptimistic, "inserted visit is always flagged optimistic")
}

func TestCommitReplaceSwapsTempID(t *testing.T) {
	temp := sampleVisit("tmp-1")
	temp.IsOptimistic = true
	original := []Visit{sampleVisit("visit-1"), temp}

	next := Apply(original, CommitReplace{TempID: "tmp-1", ServerID: "visit-2"})

	require.Len(t, next, 2)
	assert.Equal(t, "visit-2", next[1].ID)
	assert.False(t, next[1].IsOptimistic)
	// The original still holds the temporary record.
	assert.Equal(t, "tmp-1", original[1].ID)
	assert.True(t, original[1].IsOptimistic)
}

func TestCommitReplaceUnknownIDIsNoOp(t *testing.T) {
	original := []Visit{sampleVisit("visit-1")}

	next := Apply(original, CommitReplace{TempID: "tmp-missing", ServerID: "visit-9"})

	assert.Equal(t, original, next)
}

func TestRollbackRemove(t *testing.T) {
	original := []Visit{sampleVisit("visit-1"), sampleVisit("tmp-1")}

	next := Apply(original, RollbackRemove{ID: "tmp-1"})

	require.Len(t, next, 1)
	assert.Equal(t, "visit-1", next[0].ID)
	assert.Len(t, original, 2)
}

func TestListStateSnapshotIsACopy(t *testing.T) {
	list := NewListState()
	list.Replace([]Visit{sampleVisit("visit-1")})

	snap := list.Snapshot()
	snap[0].ID = "mutated"

	assert.Equal(t, "visit-1", list.Snapshot()[0].ID)
}

func TestTerminal(t *testing.T) {
	tests := []struct {
		status Status
		want   bool
	}{
		{StatusBooked, false},
		{StatusCheckedIn, true},
		{StatusCanceled, true},
	}
	for _, tt := range tests {
		v := sampleVisit("visit-1")
		v.Status = tt.status
		assert.Equal(t, tt.want, v.Terminal(), "status %s", tt.status)
	}
}
