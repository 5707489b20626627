package workflow_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"procurement/internal/apperr"
	"procurement/internal/model"
	"procurement/internal/workflow"
)

var (
	now      = time.Date(2024, 4, 1, 9, 0, 0, 0, time.UTC)
	facility = model.User{ID: "phc-1", Name: "PHC One", Role: model.RoleBase, ReportsTo: "t-1"}
	taluka   = model.User{ID: "t-1", Name: "Taluka One", Role: model.RoleTaluka, ReportsTo: "d-1"}
	district = model.User{ID: "d-1", Name: "District One", Role: model.RoleDistrict, ReportsTo: "s"}
	state    = model.User{ID: "s", Name: "State", Role: model.RoleState}
)

func submitted(t *testing.T) *model.ProcurementRequest {
	t.Helper()
	req := &model.ProcurementRequest{ID: "REQ-1", Category: model.CategoryEquipment, ItemName: "Glucometer", Quantity: 3}
	require.NoError(t, workflow.Submit(req, facility, now))
	return req
}

func TestSubmitInitialisesRequest(t *testing.T) {
	req := submitted(t)
	assert.Equal(t, model.StatusPendingTaluka, req.Status)
	require.Len(t, req.AuditLog, 1)
	assert.Equal(t, model.ActionSubmitted, req.AuditLog[0].Action)
	assert.Equal(t, "PHC One", req.AuditLog[0].User)
	assert.Equal(t, "phc-1", req.SubmittedBy)

	err := workflow.Submit(&model.ProcurementRequest{}, district, now)
	assert.True(t, errors.Is(err, apperr.ErrForbidden))
}

func TestFullApprovalPath(t *testing.T) {
	req := submitted(t)
	require.NoError(t, workflow.ApplyDecision(req, taluka, workflow.Approve, "", now))
	assert.Equal(t, model.StatusPendingDistrict, req.Status)
	require.NoError(t, workflow.ApplyDecision(req, district, workflow.Approve, "ok", now))
	assert.Equal(t, model.StatusPendingState, req.Status)
	require.NoError(t, workflow.ApplyDecision(req, state, workflow.Approve, "", now))
	assert.Equal(t, model.StatusApproved, req.Status)

	require.Len(t, req.AuditLog, 4)
	last := req.AuditLog[len(req.AuditLog)-1]
	assert.Equal(t, model.ActionApproved, last.Action)
	assert.Equal(t, state.ID, last.UserID)
	for i, e := range req.AuditLog {
		assert.Equal(t, i+1, e.Seq)
	}
}

func TestRejectWithComment(t *testing.T) {
	req := submitted(t)
	require.NoError(t, workflow.ApplyDecision(req, taluka, workflow.Reject, "insufficient budget", now))
	assert.Equal(t, model.StatusRejected, req.Status)
	require.Len(t, req.AuditLog, 2)
	assert.Equal(t, model.ActionRejected, req.AuditLog[1].Action)
	assert.Equal(t, "insufficient budget", req.AuditLog[1].Comment)
}

func TestRejectedIsTerminal(t *testing.T) {
	req := submitted(t)
	require.NoError(t, workflow.ApplyDecision(req, taluka, workflow.Reject, "", now))

	for _, actor := range []model.User{taluka, district, state} {
		for _, d := range []workflow.Decision{workflow.Approve, workflow.Reject} {
			err := workflow.ApplyDecision(req, actor, d, "", now)
			assert.True(t, errors.Is(err, apperr.ErrInvalidTransition))
		}
	}
	assert.Equal(t, model.StatusRejected, req.Status)
	assert.Len(t, req.AuditLog, 2)
}

func TestWrongTierCannotDecide(t *testing.T) {
	req := submitted(t)
	for _, actor := range []model.User{facility, district, state} {
		err := workflow.ApplyDecision(req, actor, workflow.Approve, "", now)
		assert.True(t, errors.Is(err, apperr.ErrForbidden), "role %s", actor.Role)
	}
	assert.Equal(t, model.StatusPendingTaluka, req.Status)
	assert.Len(t, req.AuditLog, 1)
	assert.True(t, workflow.CanDecide(*req, taluka))
}

func TestUnknownDecision(t *testing.T) {
	req := submitted(t)
	err := workflow.ApplyDecision(req, taluka, workflow.Decision("escalate"), "", now)
	assert.True(t, errors.Is(err, apperr.ErrValidation))
	assert.Equal(t, model.StatusPendingTaluka, req.Status)
}

func TestNextAndStages(t *testing.T) {
	assert.Equal(t, []model.RequestStatus{
		model.StatusPendingTaluka, model.StatusPendingDistrict, model.StatusPendingState,
	}, workflow.Stages())

	_, err := workflow.Next(model.StatusApproved)
	assert.True(t, errors.Is(err, apperr.ErrInvalidTransition))

	status, ok := workflow.PendingStatusFor(model.RoleDistrict)
	require.True(t, ok)
	assert.Equal(t, model.StatusPendingDistrict, status)
	_, ok = workflow.PendingStatusFor(model.RoleBase)
	assert.False(t, ok)
}
