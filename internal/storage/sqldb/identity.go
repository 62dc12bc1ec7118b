package sqldb

import "review_mapper/internal/domain"

// IdentityMap keeps one in-memory Review per persisted id. It is not safe
// for concurrent use. Mappers that must agree on object identity share one
// map via WithIdentityMap.
type IdentityMap struct{ m map[int64]*domain.Review }

func NewIdentityMap() *IdentityMap {
	return &IdentityMap{m: make(map[int64]*domain.Review)}
}

func (im *IdentityMap) Get(id int64) (*domain.Review, bool) {
	r, ok := im.m[id]
	return r, ok
}

func (im *IdentityMap) Put(id int64, r *domain.Review) { im.m[id] = r }

func (im *IdentityMap) Remove(id int64) { delete(im.m, id) }

func (im *IdentityMap) Len() int { return len(im.m) }

// Reset forgets every instance, e.g. after the table is dropped.
func (im *IdentityMap) Reset() { clear(im.m) }
