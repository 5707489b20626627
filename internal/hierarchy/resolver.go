package hierarchy

import (
	"fmt"

	"procurement/internal/apperr"
	"procurement/internal/model"
)

// DirectSubordinates returns users whose ReportsTo is managerID.
func (d *Directory) DirectSubordinates(managerID string) []model.User {
	ids := d.children[managerID]
	out := make([]model.User, 0, len(ids))
	for _, id := range ids {
		out = append(out, d.users[id])
	}
	return out
}

// SubordinateIDs returns every descendant of managerID at any depth.
// The result never contains managerID itself.
func (d *Directory) SubordinateIDs(managerID string) map[string]struct{} {
	out := make(map[string]struct{})
	stack := append([]string(nil), d.children[managerID]...)
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if id == managerID {
			continue
		}
		if _, seen := out[id]; seen {
			continue
		}
		out[id] = struct{}{}
		stack = append(stack, d.children[id]...)
	}
	return out
}

// IsSubordinate reports whether userID sits anywhere below managerID.
func (d *Directory) IsSubordinate(userID, managerID string) bool {
	seen := map[string]bool{}
	cur, ok := d.users[userID]
	for ok && cur.ReportsTo != "" && !seen[cur.ID] {
		if cur.ReportsTo == managerID {
			return true
		}
		seen[cur.ID] = true
		cur, ok = d.users[cur.ReportsTo]
	}
	return false
}

// Chain returns the users from the root down to and including userID.
func (d *Directory) Chain(userID string) ([]model.User, error) {
	u, ok := d.users[userID]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", userID, apperr.ErrNotFound)
	}
	var rev []model.User
	seen := map[string]bool{}
	for {
		if seen[u.ID] {
			return nil, fmt.Errorf("%w: reporting cycle through user %s", apperr.ErrConfiguration, u.ID)
		}
		seen[u.ID] = true
		rev = append(rev, u)
		if u.ReportsTo == "" {
			break
		}
		u, ok = d.users[u.ReportsTo]
		if !ok {
			break
		}
	}
	chain := make([]model.User, len(rev))
	for i, v := range rev {
		chain[len(rev)-1-i] = v
	}
	return chain, nil
}

// NearestAncestor finds the closest user above userID holding role.
func (d *Directory) NearestAncestor(userID string, role model.Role) (model.User, bool) {
	chain, err := d.Chain(userID)
	if err != nil {
		return model.User{}, false
	}
	for i := len(chain) - 2; i >= 0; i-- {
		if chain[i].Role == role {
			return chain[i], true
		}
	}
	return model.User{}, false
}
