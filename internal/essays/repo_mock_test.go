package essays

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

var _ essayRepo = (*repoMock)(nil)

type repoMock struct {
	mutex     sync.Mutex
	essays    map[string]*Essay
	err       error
	listCalls int
}

func newRepoMock() *repoMock {
	return &repoMock{
		essays: map[string]*Essay{},
	}
}

func (r *repoMock) sorted() []*Essay {
	list := []*Essay{}
	for _, e := range r.essays {
		cp := *e
		list = append(list, &cp)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].SortOrder == list[j].SortOrder {
			return list[i].Slug < list[j].Slug
		}
		return list[i].SortOrder < list[j].SortOrder
	})
	return list
}

func (r *repoMock) List(_ context.Context, limit int) ([]*Essay, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.listCalls++
	if r.err != nil {
		return nil, r.err
	}
	list := r.sorted()
	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}

func (r *repoMock) Featured(_ context.Context, limit int) ([]*Essay, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	featured := []*Essay{}
	for _, e := range r.sorted() {
		if e.Featured && len(featured) < limit {
			featured = append(featured, e)
		}
	}
	return featured, nil
}

func (r *repoMock) BySlug(_ context.Context, slug string) (*Essay, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	for _, e := range r.essays {
		if e.Slug == slug {
			cp := *e
			return &cp, nil
		}
	}
	return nil, ErrEssayNotFound
}

func (r *repoMock) ByID(_ context.Context, id string) (*Essay, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	e, ok := r.essays[id]
	if !ok {
		return nil, ErrEssayNotFound
	}
	cp := *e
	return &cp, nil
}

func (r *repoMock) slugTaken(slug, exceptID string) bool {
	for id, e := range r.essays {
		if e.Slug == slug && id != exceptID {
			return true
		}
	}
	return false
}

func (r *repoMock) Create(_ context.Context, e *Essay) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if r.err != nil {
		return r.err
	}
	if e.Slug == "" {
		return errors.New("empty slug")
	}
	if r.slugTaken(e.Slug, "") {
		return ErrEssaySlugExists
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	e.CreatedAt = time.Now()
	e.UpdatedAt = e.CreatedAt
	cp := *e
	r.essays[e.ID] = &cp
	return nil
}

func (r *repoMock) Update(_ context.Context, e *Essay) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if r.err != nil {
		return r.err
	}
	if _, ok := r.essays[e.ID]; !ok {
		return ErrEssayNotFound
	}
	if r.slugTaken(e.Slug, e.ID) {
		return ErrEssaySlugExists
	}
	e.UpdatedAt = time.Now()
	cp := *e
	r.essays[e.ID] = &cp
	return nil
}

func (r *repoMock) Delete(_ context.Context, id string) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if r.err != nil {
		return r.err
	}
	if _, ok := r.essays[id]; !ok {
		return ErrEssayNotFound
	}
	delete(r.essays, id)
	return nil
}
