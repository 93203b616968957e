package pebbledb

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"path/filepath"

	"github.com/cockroachdb/pebble/v2"
	"github.com/hedera-audit/contract-census/entities"
	"github.com/pkg/errors"
)

const lastRunKey = "last-run"

// Store keeps the summary of the last completed fetch run so the status
// endpoint can report it without reading the snapshot artifact.
type Store struct {
	db *pebble.DB
}

func NewRunStore(storeDir string) (*Store, error) {
	db, err := pebble.Open(filepath.Join(storeDir, "census-run-store"), &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("opening pebble db: %v", err)
	}

	return &Store{db: db}, nil
}

func (ps *Store) SetLastRun(info entities.RunInfo) error {
	value, err := json.Marshal(info)
	if err != nil {
		return errors.Wrap(err, "marshalling run info")
	}

	err = ps.db.Set([]byte(lastRunKey), value, pebble.Sync)
	if err != nil {
		return errors.Wrapf(err, "setting key [%s]", lastRunKey)
	}

	return nil
}

func (ps *Store) GetLastRun() (entities.RunInfo, error) {
	value, closer, err := ps.db.Get([]byte(lastRunKey))
	if errors.Is(err, pebble.ErrNotFound) {
		return entities.RunInfo{}, entities.ErrStoreEntityNotFound
	}
	if err != nil {
		return entities.RunInfo{}, errors.Wrapf(err, "getting value for key [%s]", lastRunKey)
	}
	defer func(closer io.Closer) {
		if err := closer.Close(); err != nil {
			log.Printf("[ERROR] closing db: %v", err)
		}
	}(closer)

	var info entities.RunInfo
	if err := json.Unmarshal(value, &info); err != nil {
		return entities.RunInfo{}, errors.Wrap(err, "unmarshalling run info")
	}
	return info, nil
}

func (ps *Store) Close() error {
	return ps.db.Close()
}
