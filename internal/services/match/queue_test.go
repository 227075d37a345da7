package match

import (
	"context"
	"testing"

	"github.com/careerhub-go/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryQueueEnqueue(t *testing.T) {
	q := &MemoryQueue{}

	err := q.Enqueue(context.Background(), models.MatchJob{
		Kind:  models.MatchJobProject,
		RefID: "p1",
	})
	require.NoError(t, err)

	jobs := q.Jobs()
	require.Len(t, jobs, 1)
	assert.Equal(t, models.MatchJobProject, jobs[0].Kind)
	assert.Equal(t, "p1", jobs[0].RefID)
	// Defaults are filled on enqueue
	assert.NotEmpty(t, jobs[0].ID)
	assert.False(t, jobs[0].EnqueuedAt.IsZero())
}

func TestMemoryQueueJobsReturnsCopy(t *testing.T) {
	q := &MemoryQueue{}
	require.NoError(t, q.Enqueue(context.Background(), models.MatchJob{Kind: models.MatchJobProfile, RefID: "u1"}))

	jobs := q.Jobs()
	jobs[0].RefID = "mutated"

	assert.Equal(t, "u1", q.Jobs()[0].RefID)
}
