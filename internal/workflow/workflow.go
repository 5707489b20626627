// Package workflow holds the approval state machine. Requests climb
// taluka -> district -> state; the state tier finalises, any tier may reject.
package workflow

import (
	"fmt"
	"time"

	"procurement/internal/apperr"
	"procurement/internal/model"
)

// Decision is an approver's verdict.
type Decision string

const (
	Approve Decision = "approve"
	Reject  Decision = "reject"
)

// stages lists the pending statuses in approval order with the tier that owns each.
var stages = []struct {
	status model.RequestStatus
	tier   model.Role
}{
	{model.StatusPendingTaluka, model.RoleTaluka},
	{model.StatusPendingDistrict, model.RoleDistrict},
	{model.StatusPendingState, model.RoleState},
}

// Stages returns the pending statuses in order.
func Stages() []model.RequestStatus {
	out := make([]model.RequestStatus, len(stages))
	for i, s := range stages {
		out[i] = s.status
	}
	return out
}

// PendingStatusFor returns the pending status a tier decides on.
func PendingStatusFor(role model.Role) (model.RequestStatus, bool) {
	for _, s := range stages {
		if s.tier == role {
			return s.status, true
		}
	}
	return "", false
}

// TierFor returns the role that owns a pending status.
func TierFor(status model.RequestStatus) (model.Role, bool) {
	for _, s := range stages {
		if s.status == status {
			return s.tier, true
		}
	}
	return "", false
}

// InitialStatus is the first pending stage for a submitter. Only facility
// (base) users raise requests.
func InitialStatus(role model.Role) (model.RequestStatus, error) {
	if role != model.RoleBase {
		return "", fmt.Errorf("%w: %s users cannot submit requests", apperr.ErrForbidden, role)
	}
	return stages[0].status, nil
}

// Submit initialises status and records the submission entry.
func Submit(req *model.ProcurementRequest, submitter model.User, now time.Time) error {
	status, err := InitialStatus(submitter.Role)
	if err != nil {
		return err
	}
	req.SubmittedBy = submitter.ID
	req.Status = status
	req.CreatedAt = now
	req.UpdatedAt = now
	req.AuditLog = nil
	appendEntry(req, model.ActionSubmitted, submitter, now, "")
	return nil
}

// Next returns the status that follows an approval at status.
func Next(status model.RequestStatus) (model.RequestStatus, error) {
	for i, s := range stages {
		if s.status != status {
			continue
		}
		if i == len(stages)-1 {
			return model.StatusApproved, nil
		}
		return stages[i+1].status, nil
	}
	return "", fmt.Errorf("%w: %q is not a pending status", apperr.ErrInvalidTransition, status)
}

// CanDecide reports whether actor is the tier that owns the request's current stage.
func CanDecide(req model.ProcurementRequest, actor model.User) bool {
	tier, ok := TierFor(req.Status)
	return ok && actor.Role == tier
}

// ApplyDecision moves req to its next status and appends an audit entry.
// On error req is left unchanged.
func ApplyDecision(req *model.ProcurementRequest, actor model.User, d Decision, comment string, now time.Time) error {
	if req.Status.Terminal() {
		return fmt.Errorf("%w: request %s is already %s", apperr.ErrInvalidTransition, req.ID, req.Status)
	}
	tier, ok := TierFor(req.Status)
	if !ok {
		return fmt.Errorf("%w: request %s has unknown status %q", apperr.ErrInvalidTransition, req.ID, req.Status)
	}
	if actor.Role != tier {
		return fmt.Errorf("%w: %s user cannot act on %q", apperr.ErrForbidden, actor.Role, req.Status)
	}

	var (
		next   model.RequestStatus
		action string
		err    error
	)
	switch d {
	case Approve:
		next, err = Next(req.Status)
		if err != nil {
			return err
		}
		action = model.ActionApproved
	case Reject:
		next = model.StatusRejected
		action = model.ActionRejected
	default:
		return apperr.Invalid("decision", fmt.Sprintf("unknown decision %q", d))
	}

	req.Status = next
	req.UpdatedAt = now
	appendEntry(req, action, actor, now, comment)
	return nil
}

func appendEntry(req *model.ProcurementRequest, action string, actor model.User, now time.Time, comment string) {
	req.AuditLog = append(req.AuditLog, model.AuditEntry{
		RequestID: req.ID,
		Seq:       len(req.AuditLog) + 1,
		Action:    action,
		User:      actor.Name,
		UserID:    actor.ID,
		Date:      now,
		Comment:   comment,
	})
}
