package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"taskhub/internal/authz"
	"taskhub/internal/domain"
	"taskhub/internal/repository"
)

const (
	DefaultListLimit = 100
	MaxListLimit     = 1000
)

// TaskService applies task lifecycle operations on behalf of a principal.
// Every operation is authorized through the authz engine before the store is touched.
type TaskService interface {
	CreateTask(ctx context.Context, p domain.Principal, in domain.TaskInput) (*domain.Task, error)
	GetTask(ctx context.Context, p domain.Principal, id int64) (*domain.Task, error)
	ListTasks(ctx context.Context, p domain.Principal, skip, limit int) ([]domain.Task, error)
	UpdateTask(ctx context.Context, p domain.Principal, id int64, patch domain.TaskPatch) (*domain.Task, error)
	DeleteTask(ctx context.Context, p domain.Principal, id int64) error
}

type taskService struct {
	tasks  repository.TaskRepository
	users  repository.UserRepository
	engine *authz.Engine
	log    logrus.FieldLogger
	now    func() time.Time
}

func NewTaskService(tasks repository.TaskRepository, users repository.UserRepository, engine *authz.Engine, log logrus.FieldLogger) TaskService {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &taskService{
		tasks:  tasks,
		users:  users,
		engine: engine,
		log:    log,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *taskService) CreateTask(ctx context.Context, p domain.Principal, in domain.TaskInput) (*domain.Task, error) {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return nil, domain.Invalid("title", "title is required")
	}
	if in.Status == "" {
		in.Status = domain.TaskStatusPending
	}
	if in.Priority == "" {
		in.Priority = domain.TaskPriorityMedium
	}
	if err := validateEnums(&in.Status, &in.Priority); err != nil {
		return nil, err
	}

	decision := s.engine.Decide(authz.Request{Principal: p, Op: authz.OpCreateTask, Input: &in})
	if err := s.check(p, authz.OpCreateTask, 0, decision); err != nil {
		return nil, err
	}
	if decision.AssignTo != nil {
		in.AssigneeID = decision.AssignTo
	}
	if in.AssigneeID != nil && *in.AssigneeID != p.ID {
		if err := s.ensureUser(ctx, *in.AssigneeID); err != nil {
			return nil, err
		}
	}

	now := s.now()
	task := &domain.Task{
		Title:       in.Title,
		Description: in.Description,
		Status:      in.Status,
		Priority:    in.Priority,
		OwnerID:     p.ID,
		AssigneeID:  in.AssigneeID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if in.DueDate != nil {
		d := in.DueDate.UTC()
		task.DueDate = &d
	}

	if _, err := s.tasks.Create(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *taskService) GetTask(ctx context.Context, p domain.Principal, id int64) (*domain.Task, error) {
	task, err := s.tasks.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	decision := s.engine.Decide(authz.Request{Principal: p, Op: authz.OpReadTask, Task: task})
	if err := s.check(p, authz.OpReadTask, id, decision); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *taskService) ListTasks(ctx context.Context, p domain.Principal, skip, limit int) ([]domain.Task, error) {
	if skip < 0 {
		return nil, domain.Invalid("skip", "must not be negative")
	}
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}

	decision := s.engine.Decide(authz.Request{Principal: p, Op: authz.OpListTasks})
	if err := s.check(p, authz.OpListTasks, 0, decision); err != nil {
		return nil, err
	}

	return s.tasks.List(ctx, repository.TaskFilter{
		VisibleTo: decision.ScopeUserID,
		Offset:    skip,
		Limit:     limit,
	})
}

func (s *taskService) UpdateTask(ctx context.Context, p domain.Principal, id int64, patch domain.TaskPatch) (*domain.Task, error) {
	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			return nil, domain.Invalid("title", "title must not be empty")
		}
		patch.Title = &title
	}
	if err := validateEnums(patch.Status, patch.Priority); err != nil {
		return nil, err
	}

	current, err := s.tasks.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	decision := s.engine.Decide(authz.Request{Principal: p, Op: authz.OpUpdateTask, Task: current, Patch: &patch})
	if err := s.check(p, authz.OpUpdateTask, id, decision); err != nil {
		return nil, err
	}

	if patch.AssigneeSet && patch.AssigneeID != nil && !current.IsAssignee(*patch.AssigneeID) {
		if err := s.ensureUser(ctx, *patch.AssigneeID); err != nil {
			return nil, err
		}
	}

	updated := *current
	patch.Apply(&updated)
	updated.UpdatedAt = s.stamp(current.UpdatedAt)

	if err := s.tasks.Update(ctx, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *taskService) DeleteTask(ctx context.Context, p domain.Principal, id int64) error {
	task, err := s.tasks.Get(ctx, id)
	if err != nil {
		return err
	}
	decision := s.engine.Decide(authz.Request{Principal: p, Op: authz.OpDeleteTask, Task: task})
	if err := s.check(p, authz.OpDeleteTask, id, decision); err != nil {
		return err
	}

	deleted, err := s.tasks.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		// removed concurrently after the fetch
		s.log.WithField("task_id", id).Debug("task already deleted")
	}
	return nil
}

// stamp returns the next updated_at, strictly after prev.
func (s *taskService) stamp(prev time.Time) time.Time {
	now := s.now()
	if !now.After(prev) {
		now = prev.Add(time.Microsecond)
	}
	return now
}

func (s *taskService) check(p domain.Principal, op authz.Operation, taskID int64, d authz.Decision) error {
	if d.Allowed {
		return nil
	}
	s.log.WithFields(logrus.Fields{
		"principal": p.ID,
		"op":        op,
		"task_id":   taskID,
		"rule":      d.Rule,
		"reason":    d.Reason,
	}).Info("authorization denied")
	return d.Err()
}

func (s *taskService) ensureUser(ctx context.Context, id int64) error {
	if _, err := s.users.GetByID(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Invalid("assignedTo", fmt.Sprintf("user %d does not exist", id))
		}
		return err
	}
	return nil
}

func validateEnums(status *domain.TaskStatus, priority *domain.TaskPriority) error {
	if status != nil && !status.Valid() {
		return domain.Invalid("status", fmt.Sprintf("unknown status %q", *status))
	}
	if priority != nil && !priority.Valid() {
		return domain.Invalid("priority", fmt.Sprintf("unknown priority %q", *priority))
	}
	return nil
}
