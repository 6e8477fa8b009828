package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskPatchApply(t *testing.T) {
	assignee := int64(7)
	description := "numbers for Q3"
	due := time.Date(2026, 1, 2, 3, 4, 5, 0, time.FixedZone("CET", 3600))
	base := Task{
		ID:          1,
		Title:       "write report",
		Description: &description,
		Status:      TaskStatusPending,
		Priority:    TaskPriorityMedium,
		OwnerID:     3,
		AssigneeID:  &assignee,
		DueDate:     &due,
	}

	t.Run("empty patch leaves task untouched", func(t *testing.T) {
		task := base
		var patch TaskPatch
		assert.True(t, patch.Empty())
		patch.Apply(&task)
		assert.Equal(t, base, task)
	})

	t.Run("present fields are copied", func(t *testing.T) {
		task := base
		status := TaskStatusCompleted
		title := "final report"
		patch := TaskPatch{Status: &status, Title: &title}
		assert.False(t, patch.Empty())
		patch.Apply(&task)
		assert.Equal(t, TaskStatusCompleted, task.Status)
		assert.Equal(t, "final report", task.Title)
		assert.Equal(t, TaskPriorityMedium, task.Priority)
		assert.True(t, task.IsAssignee(7))
		require.NotNil(t, task.Description)
		assert.Equal(t, "numbers for Q3", *task.Description)
	})

	t.Run("explicit nulls clear nullable fields", func(t *testing.T) {
		task := base
		patch := TaskPatch{DescriptionSet: true, AssigneeSet: true, DueDateSet: true}
		assert.False(t, patch.Empty())
		patch.Apply(&task)
		assert.Nil(t, task.Description)
		assert.Nil(t, task.AssigneeID)
		assert.Nil(t, task.DueDate)
		assert.False(t, task.IsAssignee(7))
	})

	t.Run("due date is normalized to UTC and not aliased", func(t *testing.T) {
		task := base
		other := int64(9)
		patch := TaskPatch{AssigneeSet: true, AssigneeID: &other, DueDateSet: true, DueDate: &due}
		patch.Apply(&task)
		require.NotNil(t, task.DueDate)
		assert.Equal(t, time.UTC, task.DueDate.Location())
		assert.True(t, task.DueDate.Equal(due))

		other = 10
		assert.Equal(t, int64(9), *task.AssigneeID)
	})

	t.Run("description is copied, not aliased", func(t *testing.T) {
		task := base
		text := "draft"
		TaskPatch{DescriptionSet: true, Description: &text}.Apply(&task)
		text = "changed"
		require.NotNil(t, task.Description)
		assert.Equal(t, "draft", *task.Description)
	})
}

func TestForbiddenErrorUnwraps(t *testing.T) {
	err := Forbidden("not yours")
	assert.ErrorIs(t, err, ErrForbidden)
	assert.Equal(t, "not yours", err.Error())
}
