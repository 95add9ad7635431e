// Package app holds the client-side application state machine: the session
// lifecycle, the login/registration flow, the paginated task-list
// synchronizer and the mutation flow. Commands render this state; they never
// own it.
package app

import (
	"github.com/sirupsen/logrus"

	"taskdeck/internal/service"
	"taskdeck/internal/session"
)

// View is the active top-level view. The presence of a session credential is
// the sole discriminant.
type View int

const (
	// ViewAuth is the login/registration view.
	ViewAuth View = iota

	// ViewWorkspace is the authenticated task workspace.
	ViewWorkspace
)

// App wires the state machine together. The synchronizer is the sole owner
// of list/stat state; mutations go through Tasks and delegate refreshes back
// to Sync. An authorization failure anywhere clears the session and drops
// the app back to the auth view.
type App struct {
	Sessions *session.Store
	Auth     *AuthFlow
	Sync     *Synchronizer
	Tasks    *Mutator

	expired bool
}

// New builds the app over a session store and backend implementations.
func New(sessions *session.Store, auth service.Authenticator, svc service.Service, log *logrus.Logger) *App {
	if log == nil {
		log = logrus.New()
		log.SetLevel(logrus.WarnLevel)
	}
	a := &App{Sessions: sessions}
	a.Auth = NewAuthFlow(auth, sessions)
	a.Sync = NewSynchronizer(svc, log, a.expireSession)
	a.Tasks = NewMutator(svc, a.Sync, a.expireSession)
	return a
}

// View returns the active top-level view.
func (a *App) View() View {
	if a.Sessions != nil && a.Sessions.Active() {
		return ViewWorkspace
	}
	return ViewAuth
}

// SessionExpired reports whether an authorization failure forced a logout
// during this run.
func (a *App) SessionExpired() bool { return a.expired }

// expireSession is the authorization-failure shortcut: clear the persisted
// credential and transition to the unauthenticated view. In-flight state is
// simply abandoned.
func (a *App) expireSession() {
	if a.Sessions != nil {
		_ = a.Sessions.Clear()
	}
	a.expired = true
}
