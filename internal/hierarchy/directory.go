package hierarchy

import (
	"fmt"

	"procurement/internal/apperr"
	"procurement/internal/model"
)

// Directory is the immutable user directory together with a child index.
// It is built once at startup and shared by reference.
type Directory struct {
	users    map[string]model.User
	order    []string
	children map[string][]string
}

// New validates users and builds a Directory. Any structural problem
// (unknown manager, wrong tier, cycle) is reported as apperr.ErrConfiguration.
func New(users []model.User) (*Directory, error) {
	d := &Directory{
		users:    make(map[string]model.User, len(users)),
		order:    make([]string, 0, len(users)),
		children: make(map[string][]string),
	}
	for _, u := range users {
		if u.ID == "" {
			return nil, fmt.Errorf("%w: user with empty id", apperr.ErrConfiguration)
		}
		if _, dup := d.users[u.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate user id %s", apperr.ErrConfiguration, u.ID)
		}
		if !u.Role.Valid() {
			return nil, fmt.Errorf("%w: user %s has unknown role %q", apperr.ErrConfiguration, u.ID, u.Role)
		}
		d.users[u.ID] = u
		d.order = append(d.order, u.ID)
	}
	for _, id := range d.order {
		u := d.users[id]
		if err := d.checkManager(u); err != nil {
			return nil, err
		}
		if u.ReportsTo != "" {
			d.children[u.ReportsTo] = append(d.children[u.ReportsTo], u.ID)
		}
	}
	if err := d.checkAcyclic(); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Directory) checkManager(u model.User) error {
	parentRole, hasParent := u.Role.Parent()
	if !hasParent {
		if u.ReportsTo != "" {
			return fmt.Errorf("%w: %s user %s must not report to anyone", apperr.ErrConfiguration, u.Role, u.ID)
		}
		return nil
	}
	if u.ReportsTo == "" {
		return fmt.Errorf("%w: %s user %s has no manager", apperr.ErrConfiguration, u.Role, u.ID)
	}
	if u.ReportsTo == u.ID {
		return fmt.Errorf("%w: user %s reports to itself", apperr.ErrConfiguration, u.ID)
	}
	manager, ok := d.users[u.ReportsTo]
	if !ok {
		return fmt.Errorf("%w: user %s reports to unknown user %s", apperr.ErrConfiguration, u.ID, u.ReportsTo)
	}
	if manager.Role != parentRole {
		return fmt.Errorf("%w: %s user %s must report to a %s user, got %s (%s)",
			apperr.ErrConfiguration, u.Role, u.ID, parentRole, manager.ID, manager.Role)
	}
	return nil
}

// checkAcyclic walks every manager chain. The tier checks already rule out
// cycles, this keeps the guarantee independent of them.
func (d *Directory) checkAcyclic() error {
	done := make(map[string]bool, len(d.users))
	for _, id := range d.order {
		onPath := map[string]bool{}
		cur := id
		for cur != "" && !done[cur] {
			if onPath[cur] {
				return fmt.Errorf("%w: reporting cycle through user %s", apperr.ErrConfiguration, cur)
			}
			onPath[cur] = true
			cur = d.users[cur].ReportsTo
		}
		for p := range onPath {
			done[p] = true
		}
	}
	return nil
}

// Get returns the user with the given id.
func (d *Directory) Get(id string) (model.User, bool) {
	u, ok := d.users[id]
	return u, ok
}

// Users returns all users in directory file order.
func (d *Directory) Users() []model.User {
	out := make([]model.User, 0, len(d.order))
	for _, id := range d.order {
		out = append(out, d.users[id])
	}
	return out
}

// Roots returns users without a manager.
func (d *Directory) Roots() []model.User {
	var out []model.User
	for _, id := range d.order {
		if d.users[id].ReportsTo == "" {
			out = append(out, d.users[id])
		}
	}
	return out
}

func (d *Directory) Len() int { return len(d.order) }
