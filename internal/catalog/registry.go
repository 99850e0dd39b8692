package catalog

import (
	"fmt"
	"regexp"
	"slices"
	"sync"
)

// DatasetID names a dataset held by a Registry.
type DatasetID string

var datasetIDPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]{0,63}$`)

// ValidateDatasetID rejects ids that are not safe to use as URL path
// segments and snapshot file names.
func ValidateDatasetID(id DatasetID) error {
	if !datasetIDPattern.MatchString(string(id)) {
		return fmt.Errorf("invalid dataset id %q: must be 1-64 letters, digits, '-' or '_'", id)
	}
	return nil
}

// Registry holds named datasets. Datasets are immutable, so replacing one
// only swaps the pointer; callers holding the old value keep a consistent view.
type Registry struct {
	mu       sync.RWMutex
	datasets map[DatasetID]*Dataset
	logger   Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(logger Logger) *Registry {
	return &Registry{
		datasets: make(map[DatasetID]*Dataset),
		logger:   orNoOp(logger),
	}
}

// Create adds a dataset under id.
// Returns an error if a dataset with that id already exists
func (r *Registry) Create(id DatasetID, ds *Dataset) error {
	if err := ValidateDatasetID(id); err != nil {
		return err
	}
	if ds == nil {
		return fmt.Errorf("dataset %s is nil", id)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.datasets[id]; exists {
		return fmt.Errorf("dataset with id %s already exists", id)
	}
	r.datasets[id] = ds
	r.logger.Infof("dataset created: id=%s name=%s version=%s", id, ds.Name, ds.Version)
	return nil
}

// Put creates or replaces the dataset under id. It reports whether an
// existing dataset was replaced.
func (r *Registry) Put(id DatasetID, ds *Dataset) (bool, error) {
	if err := ValidateDatasetID(id); err != nil {
		return false, err
	}
	if ds == nil {
		return false, fmt.Errorf("dataset %s is nil", id)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	_, replaced := r.datasets[id]
	r.datasets[id] = ds
	if replaced {
		r.logger.Infof("dataset replaced: id=%s name=%s version=%s", id, ds.Name, ds.Version)
	} else {
		r.logger.Infof("dataset created: id=%s name=%s version=%s", id, ds.Name, ds.Version)
	}
	return replaced, nil
}

// Get retrieves a dataset by id
func (r *Registry) Get(id DatasetID) (*Dataset, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ds, ok := r.datasets[id]
	return ds, ok
}

// Delete removes a dataset by id
// Returns an error if the dataset doesn't exist
func (r *Registry) Delete(id DatasetID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.datasets[id]; !exists {
		return fmt.Errorf("dataset with id %s does not exist", id)
	}
	delete(r.datasets, id)
	r.logger.Infof("dataset deleted: id=%s", id)
	return nil
}

// List returns all dataset ids in sorted order.
func (r *Registry) List() []DatasetID {
	r.mu.RLock()
	ids := make([]DatasetID, 0, len(r.datasets))
	for id := range r.datasets {
		ids = append(ids, id)
	}
	r.mu.RUnlock()

	slices.Sort(ids)
	return ids
}

// Len returns the number of datasets held.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.datasets)
}
