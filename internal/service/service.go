package service

import (
	"fmt"
	"time"

	"procurement/internal/apperr"
	"procurement/internal/hierarchy"
	"procurement/internal/model"
	"procurement/internal/report"
	"procurement/internal/websocket"
)

// Notifier receives request events after they are committed.
type Notifier interface {
	Publish(evt websocket.Event)
}

// EventAudience admits a connected user to a request event when the request
// is in that user's visibility scope. Users missing from the directory see
// nothing.
func EventAudience(dir *hierarchy.Directory) websocket.Audience {
	return func(viewerID, submittedBy string) bool {
		viewer, ok := dir.Get(viewerID)
		if !ok {
			return false
		}
		return report.InScope(viewer, submittedBy, dir)
	}
}

// Clock returns the current time. Services default to time.Now.
type Clock func() time.Time

// lookupActor resolves an authenticated caller against the directory.
func lookupActor(dir *hierarchy.Directory, id string) (model.User, error) {
	if id == "" {
		return model.User{}, fmt.Errorf("%w: no caller identity", apperr.ErrAuthentication)
	}
	u, ok := dir.Get(id)
	if !ok {
		return model.User{}, fmt.Errorf("%w: unknown user %q", apperr.ErrAuthentication, id)
	}
	return u, nil
}
