package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"
)

const snapshotSuffix = ".dataset.json"

// Snapshot is the persisted form of a registered dataset.
type Snapshot struct {
	DatasetID DatasetID     `json:"dataset_id"`
	SavedAt   int64         `json:"saved_at"`
	Dataset   DatasetConfig `json:"dataset"`
}

// SnapshotPath returns the file a dataset's snapshot is written to.
func SnapshotPath(dir string, id DatasetID) string {
	return filepath.Join(dir, string(id)+snapshotSuffix)
}

// EncodeSnapshotJSON encodes a snapshot to JSON format.
func EncodeSnapshotJSON(snapshot Snapshot) ([]byte, error) {
	normalize(&snapshot.Dataset)
	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return data, nil
}

// DecodeSnapshotJSON decodes a snapshot and checks the embedded dataset
// against the dataset schema.
func DecodeSnapshotJSON(data []byte) (Snapshot, error) {
	var raw struct {
		DatasetID DatasetID       `json:"dataset_id"`
		SavedAt   int64           `json:"saved_at"`
		Dataset   json.RawMessage `json:"dataset"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return Snapshot{}, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	if err := ValidateDatasetID(raw.DatasetID); err != nil {
		return Snapshot{}, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	cfg, err := DecodeDatasetJSON(raw.Dataset)
	if err != nil {
		return Snapshot{}, fmt.Errorf("snapshot %s: %w", raw.DatasetID, err)
	}
	return Snapshot{DatasetID: raw.DatasetID, SavedAt: raw.SavedAt, Dataset: cfg}, nil
}

// SaveSnapshot writes cfg to dir under id. The file is written to a temporary
// name first and renamed into place.
func SaveSnapshot(dir string, id DatasetID, cfg DatasetConfig) error {
	if err := ValidateDatasetID(id); err != nil {
		return err
	}
	data, err := EncodeSnapshotJSON(Snapshot{
		DatasetID: id,
		SavedAt:   time.Now().Unix(),
		Dataset:   cfg,
	})
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create snapshot dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+string(id)+"-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create snapshot file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := os.Rename(tmpName, SnapshotPath(dir, id)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to store snapshot: %w", err)
	}
	return nil
}

// RemoveSnapshot deletes the snapshot of id. A missing file is not an error.
func RemoveSnapshot(dir string, id DatasetID) error {
	err := os.Remove(SnapshotPath(dir, id))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove snapshot %s: %w", id, err)
	}
	return nil
}

// LoadSnapshots reads every snapshot in dir, sorted by dataset id. Files that
// fail to decode are logged and skipped. A missing dir yields no snapshots.
func LoadSnapshots(dir string, logger Logger) ([]Snapshot, error) {
	logger = orNoOp(logger)

	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read snapshot dir: %w", err)
	}

	var out []Snapshot
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), snapshotSuffix) {
			continue
		}
		path := filepath.Join(dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			logger.Warnf("snapshot skipped: file=%s error=%v", path, err)
			continue
		}
		snap, err := DecodeSnapshotJSON(data)
		if err != nil {
			logger.Warnf("snapshot skipped: file=%s error=%v", path, err)
			continue
		}
		if want := strings.TrimSuffix(e.Name(), snapshotSuffix); string(snap.DatasetID) != want {
			logger.Warnf("snapshot skipped: file=%s error=dataset id %s does not match file name", path, snap.DatasetID)
			continue
		}
		out = append(out, snap)
	}

	slices.SortFunc(out, func(a, b Snapshot) int {
		return strings.Compare(string(a.DatasetID), string(b.DatasetID))
	})
	logger.Debugf("snapshots loaded: dir=%s count=%d", dir, len(out))
	return out, nil
}

// Restore builds every snapshot and puts it into reg. Snapshots that fail to
// build are logged and skipped. It returns the number restored.
func Restore(reg *Registry, snapshots []Snapshot, logger Logger) int {
	logger = orNoOp(logger)
	n := 0
	for _, snap := range snapshots {
		ds, err := BuildDataset(snap.Dataset, logger)
		if err != nil {
			logger.Warnf("snapshot not restored: id=%s error=%v", snap.DatasetID, err)
			continue
		}
		if _, err := reg.Put(snap.DatasetID, ds); err != nil {
			logger.Warnf("snapshot not restored: id=%s error=%v", snap.DatasetID, err)
			continue
		}
		n++
	}
	return n
}
