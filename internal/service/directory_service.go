package service

import (
	"fmt"

	"procurement/internal/apperr"
	"procurement/internal/hierarchy"
	"procurement/internal/model"
)

type DirectoryService interface {
	Subordinates(actorID string) ([]model.User, error)
	Chain(actorID, userID string) ([]model.User, error)
}

type directoryService struct {
	dir *hierarchy.Directory
}

func NewDirectoryService(dir *hierarchy.Directory) DirectoryService {
	return &directoryService{dir: dir}
}

// Subordinates lists the caller's direct reports.
func (s *directoryService) Subordinates(actorID string) ([]model.User, error) {
	actor, err := lookupActor(s.dir, actorID)
	if err != nil {
		return nil, err
	}
	return s.dir.DirectSubordinates(actor.ID), nil
}

// Chain returns userID's reporting chain, root first. Callers may look up
// themselves or anyone below them.
func (s *directoryService) Chain(actorID, userID string) ([]model.User, error) {
	actor, err := lookupActor(s.dir, actorID)
	if err != nil {
		return nil, err
	}
	if userID != actor.ID && actor.Role != model.RoleState && !s.dir.IsSubordinate(userID, actor.ID) {
		if _, ok := s.dir.Get(userID); !ok {
			return nil, fmt.Errorf("user %s: %w", userID, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("%w: %s is outside your hierarchy", apperr.ErrForbidden, userID)
	}
	return s.dir.Chain(userID)
}
