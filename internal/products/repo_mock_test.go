package products

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

var _ productRepo = (*repoMock)(nil)

type repoMock struct {
	mutex    sync.Mutex
	products map[string]*Product
	err      error
	allCalls int
}

func newRepoMock() *repoMock {
	return &repoMock{
		products: map[string]*Product{},
	}
}

func (r *repoMock) sorted() []*Product {
	list := []*Product{}
	for _, p := range r.products {
		cp := *p
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

func (r *repoMock) All(_ context.Context) ([]*Product, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.allCalls++
	if r.err != nil {
		return nil, r.err
	}
	return r.sorted(), nil
}

func (r *repoMock) Featured(_ context.Context, limit int) ([]*Product, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	featured := []*Product{}
	for _, p := range r.sorted() {
		if p.Featured && len(featured) < limit {
			featured = append(featured, p)
		}
	}
	return featured, nil
}

func (r *repoMock) BySlug(_ context.Context, slug string) (*Product, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	for _, p := range r.products {
		if p.Slug == slug {
			cp := *p
			return &cp, nil
		}
	}
	return nil, ErrProductNotFound
}

func (r *repoMock) ByID(_ context.Context, id string) (*Product, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	p, ok := r.products[id]
	if !ok {
		return nil, ErrProductNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *repoMock) slugTaken(slug, exceptID string) bool {
	for id, p := range r.products {
		if p.Slug == slug && id != exceptID {
			return true
		}
	}
	return false
}

func (r *repoMock) Create(_ context.Context, p *Product) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if r.err != nil {
		return r.err
	}
	if p.Slug == "" {
		return errors.New("empty slug")
	}
	if r.slugTaken(p.Slug, "") {
		return ErrProductSlugExists
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	normalizeLists(p)
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	cp := *p
	r.products[p.ID] = &cp
	return nil
}

func (r *repoMock) Update(_ context.Context, p *Product) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if r.err != nil {
		return r.err
	}
	if _, ok := r.products[p.ID]; !ok {
		return ErrProductNotFound
	}
	if r.slugTaken(p.Slug, p.ID) {
		return ErrProductSlugExists
	}
	normalizeLists(p)
	p.UpdatedAt = time.Now()
	cp := *p
	r.products[p.ID] = &cp
	return nil
}

func (r *repoMock) Delete(_ context.Context, id string) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if r.err != nil {
		return r.err
	}
	if _, ok := r.products[id]; !ok {
		return ErrProductNotFound
	}
	delete(r.products, id)
	return nil
}
