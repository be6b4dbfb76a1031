package datasets

import (
	"sync"
	"time"

	"github.com/launchdarkly/go-sdk-common/v3/ldvalue"
)

// VersionTokenFormat is the time layout for generated version tokens.
// Colons are replaced with dots so tokens are valid path segments on every
// supported filesystem, and the fixed-width microsecond layout makes tokens
// sort lexicographically in creation order.
const VersionTokenFormat = "2006-01-02T15.04.05.000000Z"

// Version selects which copy of a versioned dataset to read and which to
// write. Either field may be empty:
//
//   - an empty Load means "the most recent version that exists at load time"
//   - an empty Save means "generate a fresh token at save time"
//
// A dataset with a nil *Version is unversioned and reads and writes the raw
// filepath in place.
type Version struct {
	// Load is the exact version token to read, if any.
	Load ldvalue.OptionalString
	// Save is the exact version token to write, if any.
	Save ldvalue.OptionalString
}

// NewVersion creates a Version from plain strings; empty strings mean
// undefined.
func NewVersion(load, save string) *Version {
	var v Version
	if load != "" {
		v.Load = ldvalue.NewOptionalString(load)
	}
	if save != "" {
		v.Save = ldvalue.NewOptionalString(save)
	}
	return &v
}

var (
	versionTokenLock sync.Mutex
	lastVersionToken string
)

// GenerateVersionToken returns a new version token for the current moment.
// Tokens are strictly increasing within a process even when the clock has
// not advanced past the previous token's resolution, so repeated unversioned
// saves always produce distinct, correctly ordered paths.
func GenerateVersionToken() string {
	versionTokenLock.Lock()
	defer versionTokenLock.Unlock()
	now := time.Now().UTC()
	token := now.Format(VersionTokenFormat)
	for token <= lastVersionToken {
		now = now.Add(time.Microsecond)
		token = now.Format(VersionTokenFormat)
	}
	lastVersionToken = token
	return token
}
