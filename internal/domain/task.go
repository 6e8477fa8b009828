package domain

import "time"

type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusInProgress TaskStatus = "in-progress"
	TaskStatusCompleted  TaskStatus = "completed"
)

func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted:
		return true
	}
	return false
}

type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
	TaskPriorityUrgent TaskPriority = "urgent"
)

func (p TaskPriority) Valid() bool {
	switch p {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh, TaskPriorityUrgent:
		return true
	}
	return false
}

// Task represents a unit of work tracked by the system.
type Task struct {
	ID          int64
	Title       string
	Description *string
	Status      TaskStatus
	Priority    TaskPriority
	OwnerID     int64
	AssigneeID  *int64
	DueDate     *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsOwner reports whether userID created the task.
func (t Task) IsOwner(userID int64) bool {
	return t.OwnerID == userID
}

// IsAssignee reports whether userID is the current assignee.
func (t Task) IsAssignee(userID int64) bool {
	return t.AssigneeID != nil && *t.AssigneeID == userID
}

// TaskInput is the payload of a task creation. Empty status and priority take defaults.
type TaskInput struct {
	Title       string
	Description *string
	Status      TaskStatus
	Priority    TaskPriority
	AssigneeID  *int64
	DueDate     *time.Time
}

// TaskPatch is a partial task update. A nil pointer leaves the field untouched.
// Nullable fields use explicit Set flags so a client can clear them.
type TaskPatch struct {
	Title    *string
	Status   *TaskStatus
	Priority *TaskPriority

	DescriptionSet bool
	Description    *string

	AssigneeSet bool
	AssigneeID  *int64

	DueDateSet bool
	DueDate    *time.Time
}

// Empty reports whether the patch changes nothing.
func (p TaskPatch) Empty() bool {
	return p.Title == nil && p.Status == nil && p.Priority == nil &&
		!p.DescriptionSet && !p.AssigneeSet && !p.DueDateSet
}

// Apply copies the fields present in the patch onto t.
func (p TaskPatch) Apply(t *Task) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.DescriptionSet {
		if p.Description == nil {
			t.Description = nil
		} else {
			d := *p.Description
			t.Description = &d
		}
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.AssigneeSet {
		t.AssigneeID = copyID(p.AssigneeID)
	}
	if p.DueDateSet {
		if p.DueDate == nil {
			t.DueDate = nil
		} else {
			d := p.DueDate.UTC()
			t.DueDate = &d
		}
	}
}

func copyID(id *int64) *int64 {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}
