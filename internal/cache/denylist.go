package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Denylist remembers revoked token ids until their natural expiry.
type Denylist struct {
	store *gocache.Cache
}

func NewDenylist(cleanup time.Duration) *Denylist {
	return &Denylist{store: gocache.New(gocache.NoExpiration, cleanup)}
}

func (d *Denylist) Revoke(tokenID string, until time.Time) {
	ttl := time.Until(until)
	if tokenID == "" || ttl <= 0 {
		return
	}
	d.store.Set(tokenID, struct{}{}, ttl)
}

func (d *Denylist) Revoked(tokenID string) bool {
	_, found := d.store.Get(tokenID)
	return found
}
