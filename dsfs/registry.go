package dsfs

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/launchdarkly/go-sdk-common/v3/ldlog"
	"github.com/launchdarkly/go-sdk-common/v3/ldvalue"
	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
	"golang.org/x/sync/singleflight"
)

// Factory constructs a FileSystem from storage options (merged credentials
// and constructor arguments).
type Factory func(storageOptions map[string]ldvalue.Value, loggers ldlog.Loggers) (FileSystem, error)

// Idle instances are eventually dropped and transparently rebuilt on next
// use. Implementations whose state must outlive eviction (the memory
// filesystem's contents) keep that state at package level.
const instanceTTL = 30 * time.Minute

var (
	registryLock sync.RWMutex
	factories    = make(map[string]Factory)
	instances    = gocache.New(instanceTTL, 10*time.Minute)
	buildGroup   singleflight.Group
)

// RegisterProtocol makes a factory available under a protocol prefix.
// Driver packages call this from init; registering the same protocol twice
// replaces the previous factory.
func RegisterProtocol(protocol string, factory Factory) {
	registryLock.Lock()
	defer registryLock.Unlock()
	factories[strings.ToLower(protocol)] = factory
}

// ForProtocol returns the shared FileSystem instance for a protocol and
// storage-option combination, constructing it on first use. Concurrent
// callers asking for the same combination share one construction.
func ForProtocol(protocol string, storageOptions map[string]ldvalue.Value, loggers ldlog.Loggers) (FileSystem, error) {
	protocol = strings.ToLower(protocol)
	registryLock.RLock()
	factory, ok := factories[protocol]
	registryLock.RUnlock()
	if !ok {
		return nil, fmt.Errorf("no filesystem is registered for protocol %q", protocol)
	}

	key := instanceKey(protocol, storageOptions)
	if inst, found := instances.Get(key); found {
		return inst.(FileSystem), nil
	}
	built, err, _ := buildGroup.Do(key, func() (interface{}, error) {
		if inst, found := instances.Get(key); found {
			return inst, nil
		}
		fs, err := factory(storageOptions, loggers)
		if err != nil {
			return nil, err
		}
		instances.Set(key, fs, gocache.DefaultExpiration)
		return fs, nil
	})
	if err != nil {
		return nil, err
	}
	return built.(FileSystem), nil
}

// instanceKey canonicalizes a protocol+options combination. Option order
// must not matter, so keys are sorted before serialization.
func instanceKey(protocol string, storageOptions map[string]ldvalue.Value) string {
	if len(storageOptions) == 0 {
		return protocol
	}
	keys := maps.Keys(storageOptions)
	slices.Sort(keys)
	var b strings.Builder
	b.WriteString(protocol)
	for _, k := range keys {
		b.WriteByte('\x00')
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(storageOptions[k].JSONString())
	}
	return b.String()
}
