// Package cache holds the in-process caches: rendered dashboard payloads and
// revoked session tokens.
package cache

import (
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

const keySep = "|"

// PageCache stores dashboard payloads per (path, viewer). Actions drop
// entries by path after they change the underlying data.
type PageCache struct {
	store *gocache.Cache
}

func NewPageCache(ttl, cleanup time.Duration) *PageCache {
	return &PageCache{store: gocache.New(ttl, cleanup)}
}

func pageKey(path, viewer string) string {
	return path + keySep + viewer
}

func (p *PageCache) Get(path, viewer string) (interface{}, bool) {
	return p.store.Get(pageKey(path, viewer))
}

func (p *PageCache) Set(path, viewer string, payload interface{}) {
	p.store.SetDefault(pageKey(path, viewer), payload)
}

// Revalidate drops the cached payloads of path for every viewer.
func (p *PageCache) Revalidate(path string) {
	for key := range p.store.Items() {
		if strings.HasPrefix(key, path+keySep) {
			p.store.Delete(key)
		}
	}
}

// RevalidateLayout drops every payload at or below path.
func (p *PageCache) RevalidateLayout(path string) {
	if path == "/" {
		p.store.Flush()
		return
	}
	prefix := strings.TrimSuffix(path, "/")
	for key := range p.store.Items() {
		if strings.HasPrefix(key, prefix+keySep) || strings.HasPrefix(key, prefix+"/") {
			p.store.Delete(key)
		}
	}
}

func (p *PageCache) Len() int {
	return p.store.ItemCount()
}
