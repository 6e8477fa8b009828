package authz

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskhub/internal/domain"
)

func id(v int64) *int64 { return &v }

var (
	admin = domain.Principal{ID: 1, Email: "admin@x.com", Role: domain.RoleAdmin}
	bob   = domain.Principal{ID: 2, Email: "bob@x.com", Role: domain.RoleRegular}
	carol = domain.Principal{ID: 3, Email: "carol@x.com", Role: domain.RoleRegular}
	dave  = domain.Principal{ID: 4, Email: "dave@x.com", Role: domain.RoleRegular}
)

// bob owns the task, carol is assigned
func sharedTask() *domain.Task {
	return &domain.Task{ID: 10, Title: "t", OwnerID: bob.ID, AssigneeID: id(carol.ID)}
}

func TestDecide_TaskScoping(t *testing.T) {
	e := New()
	cases := []struct {
		name      string
		principal domain.Principal
		op        Operation
		allowed   bool
		reason    string
	}{
		{"admin reads", admin, OpReadTask, true, ""},
		{"admin deletes", admin, OpDeleteTask, true, ""},
		{"owner reads", bob, OpReadTask, true, ""},
		{"assignee reads", carol, OpReadTask, true, ""},
		{"stranger reads", dave, OpReadTask, false, ReasonTaskNotVisible},
		{"owner deletes", bob, OpDeleteTask, true, ""},
		{"assignee deletes", carol, OpDeleteTask, false, ReasonOwnerOnlyDeletion},
		{"stranger deletes", dave, OpDeleteTask, false, ReasonTaskNotVisible},
		{"owner updates", bob, OpUpdateTask, true, ""},
		{"assignee updates", carol, OpUpdateTask, true, ""},
		{"stranger updates", dave, OpUpdateTask, false, ReasonTaskNotVisible},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := e.Decide(Request{Principal: tc.principal, Op: tc.op, Task: sharedTask(), Patch: &domain.TaskPatch{}})
			assert.Equal(t, tc.allowed, d.Allowed)
			assert.Equal(t, tc.reason, d.Reason)
		})
	}
}

func TestDecide_ListScope(t *testing.T) {
	e := New()

	d := e.Decide(Request{Principal: admin, Op: OpListTasks})
	require.True(t, d.Allowed)
	assert.Nil(t, d.ScopeUserID)

	d = e.Decide(Request{Principal: bob, Op: OpListTasks})
	require.True(t, d.Allowed)
	require.NotNil(t, d.ScopeUserID)
	assert.Equal(t, bob.ID, *d.ScopeUserID)
}

func TestDecide_CreateTask(t *testing.T) {
	e := New()

	d := e.Decide(Request{Principal: bob, Op: OpCreateTask, Input: &domain.TaskInput{Title: "x"}})
	require.True(t, d.Allowed)
	require.NotNil(t, d.AssignTo)
	assert.Equal(t, bob.ID, *d.AssignTo)

	d = e.Decide(Request{Principal: bob, Op: OpCreateTask, Input: &domain.TaskInput{Title: "x", AssigneeID: id(bob.ID)}})
	assert.True(t, d.Allowed)
	assert.Nil(t, d.AssignTo)

	d = e.Decide(Request{Principal: bob, Op: OpCreateTask, Input: &domain.TaskInput{Title: "x", AssigneeID: id(carol.ID)}})
	assert.False(t, d.Allowed)
	assert.Equal(t, ReasonCannotAssign, d.Reason)

	d = e.Decide(Request{Principal: admin, Op: OpCreateTask, Input: &domain.TaskInput{Title: "x", AssigneeID: id(carol.ID)}})
	assert.True(t, d.Allowed)
	assert.Nil(t, d.AssignTo, "admins are never implicitly assigned")
}

func TestDecide_Reassign(t *testing.T) {
	e := New()
	cases := []struct {
		name      string
		principal domain.Principal
		patch     domain.TaskPatch
		allowed   bool
		reason    string
	}{
		{"no assignee change", bob, domain.TaskPatch{}, true, ""},
		{"owner takes task", bob, domain.TaskPatch{AssigneeSet: true, AssigneeID: id(bob.ID)}, true, ""},
		{"owner keeps current assignee", bob, domain.TaskPatch{AssigneeSet: true, AssigneeID: id(carol.ID)}, true, ""},
		{"owner hands to third party", bob, domain.TaskPatch{AssigneeSet: true, AssigneeID: id(dave.ID)}, false, ReasonCannotReassign},
		{"assignee hands to third party", carol, domain.TaskPatch{AssigneeSet: true, AssigneeID: id(dave.ID)}, false, ReasonCannotReassign},
		{"assignee clears", carol, domain.TaskPatch{AssigneeSet: true}, true, ""},
		{"admin hands to anyone", admin, domain.TaskPatch{AssigneeSet: true, AssigneeID: id(dave.ID)}, true, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			patch := tc.patch
			d := e.Decide(Request{Principal: tc.principal, Op: OpUpdateTask, Task: sharedTask(), Patch: &patch})
			assert.Equal(t, tc.allowed, d.Allowed)
			assert.Equal(t, tc.reason, d.Reason)
		})
	}
}

func TestDecide_ScopeCheckedBeforeReassign(t *testing.T) {
	// dave would pass the reassignment check (self-assign) but may not touch the task at all
	d := New().Decide(Request{
		Principal: dave,
		Op:        OpUpdateTask,
		Task:      sharedTask(),
		Patch:     &domain.TaskPatch{AssigneeSet: true, AssigneeID: id(dave.ID)},
	})
	assert.False(t, d.Allowed)
	assert.Equal(t, ReasonTaskNotVisible, d.Reason)
	assert.Equal(t, "task-scope", d.Rule)
}

func TestDecide_UserAdministration(t *testing.T) {
	e := New()
	for _, op := range []Operation{OpListUsers, OpReadUser, OpUpdateUser, OpDeleteUser} {
		d := e.Decide(Request{Principal: bob, Op: op})
		assert.False(t, d.Allowed, op)
		assert.Equal(t, ReasonForbidden, d.Reason, op)

		assert.True(t, e.Decide(Request{Principal: admin, Op: op}).Allowed, op)
	}

	assert.True(t, e.Decide(Request{Op: OpCreateUser, Role: domain.RoleRegular}).Allowed)
	assert.False(t, e.Decide(Request{Op: OpCreateUser, Role: domain.RoleAdmin}).Allowed)
	assert.True(t, e.Decide(Request{Principal: admin, Op: OpCreateUser, Role: domain.RoleAdmin}).Allowed)
}

func TestDecide_UnknownOperation(t *testing.T) {
	d := New().Decide(Request{Principal: bob, Op: Operation("task.archive")})
	assert.False(t, d.Allowed)
	assert.Equal(t, ReasonNotAuthorized, d.Reason)

	err := d.Err()
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrForbidden))
	assert.Equal(t, ReasonNotAuthorized, err.Error())
}
