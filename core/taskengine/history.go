package taskengine

import (
	"errors"
	"fmt"

	"github.com/AvaProtocol/avax-workflow/model"
	"github.com/AvaProtocol/avax-workflow/storage"
	"github.com/AvaProtocol/avax-workflow/storage/schema"
)

// History keeps finished run outcomes in storage
type History struct {
	db storage.Storage
}

func NewHistory(db storage.Storage) *History {
	return &History{db: db}
}

func (h *History) Save(run *model.RunOutcome) error {
	if h.db == nil {
		return errors.New(StorageUnavailableError)
	}

	body, err := run.ToJSON()
	if err != nil {
		return fmt.Errorf("%s: %w", StorageWriteError, err)
	}

	if err := h.db.Set(schema.RunStorageKey(run.RunID), body); err != nil {
		return fmt.Errorf("%s: %w", StorageWriteError, err)
	}
	return nil
}

func (h *History) Get(runID string) (*model.RunOutcome, error) {
	if h.db == nil {
		return nil, errors.New(StorageUnavailableError)
	}

	body, err := h.db.GetKey(schema.RunStorageKey(runID))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%s: %s", RunNotFoundError, runID)
		}
		return nil, err
	}

	run := &model.RunOutcome{}
	if err := run.FromStorageData(body); err != nil {
		return nil, fmt.Errorf("%s: %w", RunStorageCorruptedError, err)
	}
	return run, nil
}

// List returns at most limit runs, newest first. A limit <= 0 returns all.
func (h *History) List(limit int) ([]*model.RunOutcome, error) {
	if h.db == nil {
		return nil, errors.New(StorageUnavailableError)
	}

	items, err := h.db.GetByPrefix([]byte(schema.RunPrefix))
	if err != nil {
		return nil, err
	}

	runs := make([]*model.RunOutcome, 0, len(items))
	// ULID keys sort by creation time, walk backward for newest first
	for i := len(items) - 1; i >= 0; i-- {
		run := &model.RunOutcome{}
		if err := run.FromStorageData(items[i].Value); err != nil {
			continue
		}
		runs = append(runs, run)
		if limit > 0 && len(runs) >= limit {
			break
		}
	}
	return runs, nil
}

func (h *History) Count() (int64, error) {
	if h.db == nil {
		return 0, errors.New(StorageUnavailableError)
	}
	return h.db.CountKeysByPrefix([]byte(schema.RunPrefix))
}

// Prune deletes all but the keep most recent runs and returns how many were
// removed
func (h *History) Prune(keep int) (int, error) {
	if h.db == nil {
		return 0, errors.New(StorageUnavailableError)
	}
	if keep < 0 {
		keep = 0
	}

	keys, err := h.db.ListKeys(schema.RunPrefix + "*")
	if err != nil {
		return 0, err
	}
	if len(keys) <= keep {
		return 0, nil
	}

	stale := keys[:len(keys)-keep]
	for _, k := range stale {
		if err := h.db.Delete([]byte(k)); err != nil {
			return 0, fmt.Errorf("%s: %w", StorageWriteError, err)
		}
	}

	if err := h.db.Vacuum(); err != nil {
		return len(stale), err
	}
	return len(stale), nil
}
