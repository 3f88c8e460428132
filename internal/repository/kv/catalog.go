package kv

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"slices"
	"sync"
	"time"

	"melodybot/internal/codec"
	"melodybot/internal/domain"
	"melodybot/internal/storage"
)

// CatalogRepo implements repository.CatalogRepository
type CatalogRepo struct {
	store storage.Store

	// indexMu serializes read-modify-write cycles of the id index
	indexMu sync.Mutex

	rngMu sync.Mutex
	rng   *rand.Rand
}

// NewCatalogRepo creates a catalog repository. A zero seed picks a
// time-based one; any other seed makes random picks reproducible.
func NewCatalogRepo(store storage.Store, seed int64) *CatalogRepo {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &CatalogRepo{
		store: store,
		rng:   rand.New(rand.NewSource(seed)),
	}
}

// GetItem returns the item with the given id, or nil if there is none
func (r *CatalogRepo) GetItem(ctx context.Context, id uint64) (*domain.QuizItem, error) {
	key := itemKey(id)
	data, err := r.store.Get(ctx, key)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get item %d: %w", id, err)
	}

	var item domain.QuizItem
	if err := codec.Unmarshal(data, &item); err != nil {
		return nil, &domain.DecodeError{Key: string(key), Err: err}
	}
	return &item, nil
}

// PutItem validates and stores an item, replacing one with the same id
func (r *CatalogRepo) PutItem(ctx context.Context, item *domain.QuizItem) error {
	if err := item.Validate(); err != nil {
		return err
	}

	data, err := codec.Marshal(item)
	if err != nil {
		return fmt.Errorf("encode item %d: %w", item.ID, err)
	}

	// The item is written before it is indexed so a picked id normally
	// resolves; ids whose item is missing are tolerated by PickRandomItem.
	if err := r.store.Put(ctx, itemKey(item.ID), data); err != nil {
		return fmt.Errorf("put item %d: %w", item.ID, err)
	}

	r.indexMu.Lock()
	defer r.indexMu.Unlock()

	ids, err := r.loadIndex(ctx)
	if err != nil {
		return err
	}
	pos, found := slices.BinarySearch(ids, item.ID)
	if found {
		return nil
	}
	return r.saveIndex(ctx, slices.Insert(ids, pos, item.ID))
}

// DeleteItem removes an item. Deleting an absent item is not an error.
func (r *CatalogRepo) DeleteItem(ctx context.Context, id uint64) error {
	r.indexMu.Lock()
	ids, err := r.loadIndex(ctx)
	if err == nil {
		if pos, found := slices.BinarySearch(ids, id); found {
			err = r.saveIndex(ctx, slices.Delete(ids, pos, pos+1))
		}
	}
	r.indexMu.Unlock()
	if err != nil {
		return err
	}

	if err := r.store.Delete(ctx, itemKey(id)); err != nil {
		return fmt.Errorf("delete item %d: %w", id, err)
	}
	return nil
}

// PickRandomItem returns a uniformly chosen item, or nil if the catalog is
// empty. Indexed ids whose item has vanished are skipped.
func (r *CatalogRepo) PickRandomItem(ctx context.Context) (*domain.QuizItem, error) {
	ids, err := r.loadIndex(ctx)
	if err != nil {
		return nil, err
	}

	for len(ids) > 0 {
		n := r.intn(len(ids))

		item, err := r.GetItem(ctx, ids[n])
		if err != nil {
			return nil, err
		}
		if item != nil {
			return item, nil
		}

		ids = slices.Delete(ids, n, n+1)
	}

	return nil, nil
}

// ListIDs returns all indexed item ids in ascending order
func (r *CatalogRepo) ListIDs(ctx context.Context) ([]uint64, error) {
	return r.loadIndex(ctx)
}

func (r *CatalogRepo) intn(n int) int {
	r.rngMu.Lock()
	defer r.rngMu.Unlock()
	return r.rng.Intn(n)
}

func (r *CatalogRepo) loadIndex(ctx context.Context) ([]uint64, error) {
	data, err := r.store.Get(ctx, []byte(indexKey))
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get catalog index: %w", err)
	}

	var ids []uint64
	if err := codec.Unmarshal(data, &ids); err != nil {
		return nil, &domain.DecodeError{Key: indexKey, Err: err}
	}
	return ids, nil
}

func (r *CatalogRepo) saveIndex(ctx context.Context, ids []uint64) error {
	data, err := codec.Marshal(ids)
	if err != nil {
		return fmt.Errorf("encode catalog index: %w", err)
	}
	if err := r.store.Put(ctx, []byte(indexKey), data); err != nil {
		return fmt.Errorf("put catalog index: %w", err)
	}
	return nil
}
