package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/jwalitptl/pharmacy-portal/internal/model"
)

// Rotations remembers, for a short window, the session issued when a refresh
// token was spent. Requests racing on the same refresh cookie get that
// session instead of being signed out.
type Rotations struct {
	store  *gocache.Cache
	window time.Duration
}

func NewRotations(window, cleanup time.Duration) *Rotations {
	return &Rotations{store: gocache.New(window, cleanup), window: window}
}

func (r *Rotations) Remember(tokenID string, session *model.Session) {
	if tokenID == "" || session == nil || r.window <= 0 {
		return
	}
	r.store.Set(tokenID, session, gocache.DefaultExpiration)
}

func (r *Rotations) Recall(tokenID string) (*model.Session, bool) {
	v, found := r.store.Get(tokenID)
	if !found {
		return nil, false
	}
	session, ok := v.(*model.Session)
	return session, ok
}
