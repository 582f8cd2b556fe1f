package testutil

import (
	"context"

	"github.com/studentaid/disbursement/internal/domain/msfaa"
	ierr "github.com/studentaid/disbursement/internal/errors"
)

// InMemoryMSFAAStore implements msfaa.Repository
type InMemoryMSFAAStore struct {
	*InMemoryStore[*msfaa.Agreement]
}

var _ msfaa.Repository = (*InMemoryMSFAAStore)(nil)

func NewInMemoryMSFAAStore() *InMemoryMSFAAStore {
	return &InMemoryMSFAAStore{InMemoryStore: NewInMemoryStore[*msfaa.Agreement]()}
}

func (s *InMemoryMSFAAStore) Create(ctx context.Context, a *msfaa.Agreement) error {
	c := *a
	return s.InMemoryStore.Create(ctx, a.ID, &c)
}

func (s *InMemoryMSFAAStore) GetByNumber(ctx context.Context, number string) (*msfaa.Agreement, error) {
	items, err := s.InMemoryStore.List(ctx, number, func(_ context.Context, a *msfaa.Agreement, _ interface{}) bool {
		return a.Number == number
	}, nil)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ierr.NewErrorf("msfaa %s not found", number).Mark(ierr.ErrNotFound)
	}
	c := *items[0]
	return &c, nil
}
