package store

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/hedera-audit/contract-census/entities"
	"github.com/pkg/errors"
)

const (
	SnapshotFileName = "snapshot.json"
	ReportFileName   = "wallet-report.json"
)

// FileStore persists the snapshot and wallet report artifacts as indented
// JSON. Files are written to a temp file first and renamed into place so a
// failed run never leaves a half-written artifact behind.
type FileStore struct {
	dir string
}

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "creating output folder [%s]", dir)
	}
	return &FileStore{dir: dir}, nil
}

func (fs *FileStore) SnapshotPath() string {
	return filepath.Join(fs.dir, SnapshotFileName)
}

func (fs *FileStore) ReportPath() string {
	return filepath.Join(fs.dir, ReportFileName)
}

func (fs *FileStore) SaveSnapshot(snapshot *entities.Snapshot) error {
	if err := fs.writeJSON(fs.SnapshotPath(), snapshot); err != nil {
		return errors.Wrap(err, "writing snapshot")
	}
	return nil
}

func (fs *FileStore) LoadSnapshot() (*entities.Snapshot, error) {
	data, err := os.ReadFile(fs.SnapshotPath())
	if os.IsNotExist(err) {
		return nil, entities.ErrStoreEntityNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "reading snapshot [%s]", fs.SnapshotPath())
	}
	var snapshot entities.Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, errors.Wrap(err, "unmarshalling snapshot")
	}
	return &snapshot, nil
}

func (fs *FileStore) SaveReport(report *entities.WalletReport) error {
	if err := fs.writeJSON(fs.ReportPath(), report); err != nil {
		return errors.Wrap(err, "writing wallet report")
	}
	return nil
}

func (fs *FileStore) writeJSON(path string, artifact interface{}) error {
	data, err := json.MarshalIndent(artifact, "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshalling artifact")
	}

	tmp, err := os.CreateTemp(fs.dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return errors.Wrap(err, "creating temp file")
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return errors.Wrap(err, "writing temp file")
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return errors.Wrap(err, "closing temp file")
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		_ = os.Remove(tmp.Name())
		return errors.Wrapf(err, "renaming temp file to [%s]", path)
	}
	return nil
}
