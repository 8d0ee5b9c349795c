package repository

import (
	"context"
	"errors"
	"time"

	"github.com/gdugdh24/kindred-backend/internal/domain"
	"github.com/graph-gophers/dataloader/v7"
)

// ProfileLoader batches profile lookups issued during one request into a
// single GetByIDs call. Create one per request; its cache is not invalidated.
type ProfileLoader struct {
	loader *dataloader.Loader[int, *domain.Profile]
}

func NewProfileLoader(repo ProfileRepository) *ProfileLoader {
	return &ProfileLoader{
		loader: dataloader.NewBatchedLoader(
			profileBatchFn(repo),
			dataloader.WithWait[int, *domain.Profile](2*time.Millisecond),
		),
	}
}

// LoadMany returns profiles in key order. Missing ids are skipped; any other
// failure aborts the whole load.
func (l *ProfileLoader) LoadMany(ctx context.Context, ids []int) ([]*domain.Profile, error) {
	if len(ids) == 0 {
		return []*domain.Profile{}, nil
	}

	profiles, errs := l.loader.LoadMany(ctx, ids)()
	out := make([]*domain.Profile, 0, len(profiles))
	for i, p := range profiles {
		if i < len(errs) && errs[i] != nil {
			if errors.Is(errs[i], domain.ErrProfileNotFound) {
				continue
			}
			return nil, errs[i]
		}
		if p != nil {
			out = append(out, p)
		}
	}
	return out, nil
}

func profileBatchFn(repo ProfileRepository) dataloader.BatchFunc[int, *domain.Profile] {
	return func(ctx context.Context, keys []int) []*dataloader.Result[*domain.Profile] {
		results := make([]*dataloader.Result[*domain.Profile], len(keys))

		found, err := repo.GetByIDs(ctx, keys)
		for i, key := range keys {
			if err != nil {
				results[i] = &dataloader.Result[*domain.Profile]{Error: err}
				continue
			}
			p, ok := found[key]
			if !ok {
				results[i] = &dataloader.Result[*domain.Profile]{Error: domain.ErrProfileNotFound}
				continue
			}
			results[i] = &dataloader.Result[*domain.Profile]{Data: p}
		}
		return results
	}
}
