// Package report derives per-viewer request lists, cost rollups and the
// nested groupings used by the reporting screens.
package report

import (
	"procurement/internal/model"
	"procurement/internal/workflow"
)

// Directory is the part of the user directory the engine reads.
type Directory interface {
	Get(id string) (model.User, bool)
	Users() []model.User
	DirectSubordinates(managerID string) []model.User
	SubordinateIDs(managerID string) map[string]struct{}
	NearestAncestor(userID string, role model.Role) (model.User, bool)
}

// VisibleRequests returns the requests viewer may see, in input order.
// It is a pure function of its arguments.
func VisibleRequests(all []model.ProcurementRequest, viewer model.User, dir Directory) []model.ProcurementRequest {
	out := []model.ProcurementRequest{}
	switch viewer.Role {
	case model.RoleBase:
		for _, r := range all {
			if r.SubmittedBy == viewer.ID {
				out = append(out, r)
			}
		}
	case model.RoleTaluka, model.RoleDistrict, model.RoleState:
		pending, _ := workflow.PendingStatusFor(viewer.Role)
		scope := Scope(viewer, dir)
		for _, r := range all {
			if r.Status != pending {
				continue
			}
			if scope != nil {
				if _, ok := scope[r.SubmittedBy]; !ok {
					continue
				}
			}
			out = append(out, r)
		}
	}
	return out
}

// Scope returns the submitter ids whose requests viewer oversees:
// direct reports for taluka, the whole subtree for district, nil (everyone)
// for state and just the viewer for a facility.
func Scope(viewer model.User, dir Directory) map[string]struct{} {
	switch viewer.Role {
	case model.RoleState:
		return nil
	case model.RoleDistrict:
		return dir.SubordinateIDs(viewer.ID)
	case model.RoleTaluka:
		subs := dir.DirectSubordinates(viewer.ID)
		scope := make(map[string]struct{}, len(subs))
		for _, u := range subs {
			scope[u.ID] = struct{}{}
		}
		return scope
	case model.RoleBase:
		return map[string]struct{}{viewer.ID: {}}
	}
	return map[string]struct{}{}
}

// InScope reports whether viewer oversees requests from submitterID.
func InScope(viewer model.User, submitterID string, dir Directory) bool {
	scope := Scope(viewer, dir)
	if scope == nil {
		return true
	}
	_, ok := scope[submitterID]
	return ok
}
