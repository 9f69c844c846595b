package kv

import (
	"context"

	"azoom-rental-backend/internal/domain"
	"azoom-rental-backend/internal/repository"
	"azoom-rental-backend/internal/storage"
)

type damageRequestRepository struct {
	kv storage.KeyValueStore
}

func NewDamageRequestRepository(kv storage.KeyValueStore) repository.DamageRequestRepository {
	return &damageRequestRepository{kv: kv}
}

func (r *damageRequestRepository) ListDamageRequests(ctx context.Context) ([]domain.DamageRequest, error) {
	return loadList[domain.DamageRequest](ctx, r.kv, KeyDamageRequests)
}

func (r *damageRequestRepository) GetDamageRequest(ctx context.Context, id string) (*domain.DamageRequest, error) {
	reqs, err := r.ListDamageRequests(ctx)
	if err != nil {
		return nil, err
	}
	for i := range reqs {
		if reqs[i].ID == id {
			return &reqs[i], nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *damageRequestRepository) CreateDamageRequest(ctx context.Context, req *domain.DamageRequest) error {
	return updateList(ctx, r.kv, KeyDamageRequests, func(reqs []domain.DamageRequest) ([]domain.DamageRequest, error) {
		return append(reqs, *req), nil
	})
}

func (r *damageRequestRepository) UpdateDamageRequest(ctx context.Context, id string, fn func(r *domain.DamageRequest) error) (*domain.DamageRequest, error) {
	var updated domain.DamageRequest
	err := updateList(ctx, r.kv, KeyDamageRequests, func(reqs []domain.DamageRequest) ([]domain.DamageRequest, error) {
		for i := range reqs {
			if reqs[i].ID != id {
				continue
			}
			if err := fn(&reqs[i]); err != nil {
				return nil, err
			}
			updated = reqs[i]
			return reqs, nil
		}
		return nil, repository.ErrNotFound
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (r *damageRequestRepository) ReplaceDamageRequests(ctx context.Context, reqs []domain.DamageRequest) error {
	return updateList(ctx, r.kv, KeyDamageRequests, func([]domain.DamageRequest) ([]domain.DamageRequest, error) {
		return reqs, nil
	})
}

type inspectionQueueRepository struct {
	kv storage.KeyValueStore
}

func NewInspectionQueueRepository(kv storage.KeyValueStore) repository.InspectionQueueRepository {
	return &inspectionQueueRepository{kv: kv}
}

func (r *inspectionQueueRepository) ListInspectionTasks(ctx context.Context) ([]domain.InspectionTask, error) {
	return loadList[domain.InspectionTask](ctx, r.kv, KeyInspectionQueue)
}

func (r *inspectionQueueRepository) EnqueueInspection(ctx context.Context, task *domain.InspectionTask) error {
	return updateList(ctx, r.kv, KeyInspectionQueue, func(tasks []domain.InspectionTask) ([]domain.InspectionTask, error) {
		for _, t := range tasks {
			if t.BookingID == task.BookingID {
				return nil, storage.ErrSkipWrite
			}
		}
		return append(tasks, *task), nil
	})
}

func (r *inspectionQueueRepository) DequeueInspection(ctx context.Context, bookingID string) (bool, error) {
	var found bool
	err := updateList(ctx, r.kv, KeyInspectionQueue, func(tasks []domain.InspectionTask) ([]domain.InspectionTask, error) {
		found = false
		kept := tasks[:0]
		for _, t := range tasks {
			if t.BookingID == bookingID {
				found = true
				continue
			}
			kept = append(kept, t)
		}
		if !found {
			return nil, storage.ErrSkipWrite
		}
		return kept, nil
	})
	return found, err
}

func (r *inspectionQueueRepository) ReplaceInspectionTasks(ctx context.Context, tasks []domain.InspectionTask) error {
	return updateList(ctx, r.kv, KeyInspectionQueue, func([]domain.InspectionTask) ([]domain.InspectionTask, error) {
		return tasks, nil
	})
}
