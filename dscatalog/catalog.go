// Package dscatalog implements a named registry of datasets, optionally
// populated from a YAML or JSON catalog file. A catalog entry maps a
// dataset name to a dataset type, a filepath, and the arguments the
// adapter needs; credentials are kept in a separate map and referenced by
// name, so catalog files never contain secrets.
package dscatalog

import (
	"fmt"
	"sync"

	"github.com/launchdarkly/go-sdk-common/v3/ldlog"
	"github.com/launchdarkly/go-sdk-common/v3/ldvalue"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	datasets "github.com/datacraft-oss/go-dataset-sdk"
)

type entry struct {
	dataset  datasets.Dataset
	typeName string
}

// Catalog is a registry of named datasets. It is safe for concurrent use.
type Catalog struct {
	loggers ldlog.Loggers

	lock    sync.RWMutex
	entries map[string]entry
}

// NewCatalog creates an empty catalog.
func NewCatalog(loggers ldlog.Loggers) *Catalog {
	return &Catalog{
		loggers: loggers,
		entries: make(map[string]entry),
	}
}

// Add registers a dataset under a name. Registering a name twice is an
// error; use Replace to overwrite.
func (c *Catalog) Add(name, typeName string, ds datasets.Dataset) error {
	c.lock.Lock()
	defer c.lock.Unlock()
	if _, ok := c.entries[name]; ok {
		return datasets.NewErrorf(datasets.ErrorKindConfiguration,
			"dataset %q is already registered in the catalog", name)
	}
	c.entries[name] = entry{dataset: ds, typeName: typeName}
	return nil
}

// Replace registers a dataset under a name, overwriting any previous entry.
func (c *Catalog) Replace(name, typeName string, ds datasets.Dataset) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.entries[name] = entry{dataset: ds, typeName: typeName}
}

// Get returns the dataset registered under name.
func (c *Catalog) Get(name string) (datasets.Dataset, error) {
	c.lock.RLock()
	defer c.lock.RUnlock()
	e, ok := c.entries[name]
	if !ok {
		return nil, datasets.NewErrorf(datasets.ErrorKindNotFound,
			"dataset %q is not registered in the catalog", name)
	}
	return e.dataset, nil
}

// Names returns the registered dataset names in sorted order.
func (c *Catalog) Names() []string {
	c.lock.RLock()
	defer c.lock.RUnlock()
	names := maps.Keys(c.entries)
	slices.Sort(names)
	return names
}

// Len returns the number of registered datasets.
func (c *Catalog) Len() int {
	c.lock.RLock()
	defer c.lock.RUnlock()
	return len(c.entries)
}

// Release releases every dataset's cached state.
func (c *Catalog) Release() {
	c.lock.RLock()
	defer c.lock.RUnlock()
	for _, e := range c.entries {
		e.dataset.Release()
	}
}

// Summary returns an object value describing the catalog's contents:
// the total dataset count and a count per dataset type. It contains no
// names or paths, so it is safe to include in telemetry.
func (c *Catalog) Summary() ldvalue.Value {
	c.lock.RLock()
	defer c.lock.RUnlock()
	typeCounts := make(map[string]int)
	for _, e := range c.entries {
		typeCounts[e.typeName]++
	}
	countsBuilder := ldvalue.ObjectBuild()
	types := maps.Keys(typeCounts)
	slices.Sort(types)
	for _, t := range types {
		countsBuilder.Set(t, ldvalue.Int(typeCounts[t]))
	}
	return ldvalue.ObjectBuild().
		Set("number_of_datasets", ldvalue.Int(len(c.entries))).
		Set("datasets_by_type", countsBuilder.Build()).
		Build()
}

// Describe returns the diagnostic description of every dataset, keyed by
// name.
func (c *Catalog) Describe() ldvalue.Value {
	c.lock.RLock()
	defer c.lock.RUnlock()
	b := ldvalue.ObjectBuild()
	for name, e := range c.entries {
		b.Set(name, e.dataset.Describe())
	}
	return b.Build()
}

func (c *Catalog) String() string {
	return fmt.Sprintf("Catalog(%d datasets)", c.Len())
}
