// Package authz decides who may view, create, mutate, reassign or delete
// tasks and who may administer users. Every decision goes through one ordered
// rule table; callers never compare owner or assignee ids themselves.
package authz

import (
	"taskhub/internal/domain"
)

// Operation names an action a principal asks to perform.
type Operation string

const (
	OpCreateTask Operation = "task.create"
	OpReadTask   Operation = "task.read"
	OpListTasks  Operation = "task.list"
	OpUpdateTask Operation = "task.update"
	OpDeleteTask Operation = "task.delete"

	OpCreateUser Operation = "user.create"
	OpListUsers  Operation = "user.list"
	OpReadUser   Operation = "user.read"
	OpUpdateUser Operation = "user.update"
	OpDeleteUser Operation = "user.delete"
)

// Denial reasons surfaced to clients.
const (
	ReasonNotAuthorized      = "not authorized"
	ReasonCannotAssign       = "cannot assign to others"
	ReasonCannotReassign     = "cannot reassign to others"
	ReasonForbidden          = "forbidden"
	ReasonOwnerOnlyDeletion  = "only the task owner may delete it"
	ReasonTaskNotVisible     = "not authorized to access this task"
	ReasonTaskTargetRequired = "task target required"
)

// Request describes one authorization question.
type Request struct {
	Principal domain.Principal
	Op        Operation

	// Task is the stored target of read, update and delete.
	Task *domain.Task
	// Input is the creation payload of OpCreateTask.
	Input *domain.TaskInput
	// Patch is the change set of OpUpdateTask.
	Patch *domain.TaskPatch
	// Role is the role requested by OpCreateUser.
	Role domain.Role
}

// Decision is the outcome of Decide.
type Decision struct {
	Allowed bool
	Reason  string
	Rule    string

	// AssignTo is an implicit assignee override to apply on create.
	AssignTo *int64
	// ScopeUserID restricts a list to tasks owned by or assigned to this user.
	ScopeUserID *int64
}

// Err returns nil when allowed and a *domain.ForbiddenError otherwise.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	return domain.Forbidden(d.Reason)
}

type verdict int

const (
	next verdict = iota
	allow
	deny
)

type rule struct {
	name   string
	decide func(req Request) (verdict, Decision)
}

// Engine evaluates the rule table. The zero value is not usable; call New.
type Engine struct {
	rules []rule
}

// New returns an engine with the standard rule table.
func New() *Engine {
	return &Engine{rules: []rule{
		{name: "admin", decide: adminRule},
		{name: "task-scope", decide: taskScopeRule},
		{name: "task-create", decide: taskCreateRule},
		{name: "task-reassign", decide: taskReassignRule},
		{name: "user-admin", decide: userAdminRule},
	}}
}

// Decide walks the rules in precedence order. The first rule that allows or
// denies ends the walk; a request no rule settles is denied.
func (e *Engine) Decide(req Request) Decision {
	for _, r := range e.rules {
		v, d := r.decide(req)
		switch v {
		case allow:
			d.Allowed = true
			d.Rule = r.name
			return d
		case deny:
			d.Allowed = false
			d.Rule = r.name
			return d
		}
	}
	return Decision{Reason: ReasonNotAuthorized, Rule: "default"}
}

func adminRule(req Request) (verdict, Decision) {
	if req.Principal.IsAdmin() {
		return allow, Decision{}
	}
	return next, Decision{}
}

func taskScopeRule(req Request) (verdict, Decision) {
	switch req.Op {
	case OpListTasks:
		id := req.Principal.ID
		return allow, Decision{ScopeUserID: &id}
	case OpReadTask, OpUpdateTask, OpDeleteTask:
	default:
		return next, Decision{}
	}

	if req.Task == nil {
		return deny, Decision{Reason: ReasonTaskTargetRequired}
	}
	t := req.Task
	uid := req.Principal.ID
	if !t.IsOwner(uid) && !t.IsAssignee(uid) {
		return deny, Decision{Reason: ReasonTaskNotVisible}
	}

	switch req.Op {
	case OpReadTask:
		return allow, Decision{}
	case OpDeleteTask:
		if !t.IsOwner(uid) {
			return deny, Decision{Reason: ReasonOwnerOnlyDeletion}
		}
		return allow, Decision{}
	}
	// updates continue to the reassignment check
	return next, Decision{}
}

func taskCreateRule(req Request) (verdict, Decision) {
	if req.Op != OpCreateTask {
		return next, Decision{}
	}
	uid := req.Principal.ID
	if req.Input == nil || req.Input.AssigneeID == nil {
		return allow, Decision{AssignTo: &uid}
	}
	if *req.Input.AssigneeID != uid {
		return deny, Decision{Reason: ReasonCannotAssign}
	}
	return allow, Decision{}
}

func taskReassignRule(req Request) (verdict, Decision) {
	if req.Op != OpUpdateTask {
		return next, Decision{}
	}
	if req.Patch == nil || !req.Patch.AssigneeSet || req.Patch.AssigneeID == nil {
		return allow, Decision{}
	}
	to := *req.Patch.AssigneeID
	if to == req.Principal.ID {
		return allow, Decision{}
	}
	if req.Task != nil && req.Task.IsAssignee(to) {
		return allow, Decision{}
	}
	return deny, Decision{Reason: ReasonCannotReassign}
}

func userAdminRule(req Request) (verdict, Decision) {
	switch req.Op {
	case OpCreateUser:
		if req.Role == domain.RoleAdmin {
			return deny, Decision{Reason: ReasonForbidden}
		}
		return allow, Decision{}
	case OpListUsers, OpReadUser, OpUpdateUser, OpDeleteUser:
		return deny, Decision{Reason: ReasonForbidden}
	}
	return next, Decision{}
}
