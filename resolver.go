package datasets

import (
	"golang.org/x/exp/slices"
)

// ExistsFunc and GlobFunc are the two filesystem capabilities version
// resolution depends on. They are passed as plain functions so the resolver
// has no dependency on any particular filesystem implementation.
type (
	ExistsFunc func(path string) (bool, error)
	GlobFunc   func(pattern string) ([]string, error)
)

// PathResolver computes the concrete load and save paths for one dataset.
// It holds no cached state: every call re-resolves, because "latest" can
// change between calls as new versions are written.
type PathResolver struct {
	basePath string
	version  *Version
	exists   ExistsFunc
	glob     GlobFunc
}

// NewPathResolver creates a resolver for the given base path. A nil version
// disables versioning, in which case every method resolves to the base path
// itself.
func NewPathResolver(basePath string, version *Version, exists ExistsFunc, glob GlobFunc) *PathResolver {
	return &PathResolver{basePath: basePath, version: version, exists: exists, glob: glob}
}

// Versioned reports whether version resolution is enabled.
func (r *PathResolver) Versioned() bool { return r.version != nil }

// BasePath returns the unversioned base path.
func (r *PathResolver) BasePath() string { return r.basePath }

// LoadVersion returns the version token a load would use right now: the
// explicitly requested token if one was configured, otherwise the greatest
// token for which an artifact currently exists. It returns an
// ErrorKindVersionNotFound error when versioning is enabled but nothing has
// been saved yet, and "" when versioning is disabled.
func (r *PathResolver) LoadVersion() (string, error) {
	if r.version == nil {
		return "", nil
	}
	if r.version.Load.IsDefined() {
		return r.version.Load.StringValue(), nil
	}
	pattern := VersionedPath(r.basePath, "*")
	matches, err := r.glob(pattern)
	if err != nil {
		return "", WrapError(ErrorKindIO, "could not list versions for "+r.basePath, err)
	}
	tokens := make([]string, 0, len(matches))
	for _, m := range matches {
		if t := versionTokenOf(r.basePath, m); t != "" {
			tokens = append(tokens, t)
		}
	}
	slices.Sort(tokens)
	// Newest first; globs can race with deletions, so confirm existence.
	for i := len(tokens) - 1; i >= 0; i-- {
		ok, err := r.exists(VersionedPath(r.basePath, tokens[i]))
		if err != nil {
			return "", WrapError(ErrorKindIO, "could not check version of "+r.basePath, err)
		}
		if ok {
			return tokens[i], nil
		}
	}
	return "", NewErrorf(ErrorKindVersionNotFound,
		"did not find any versions for %s", r.basePath)
}

// ResolveLoadPath returns the concrete path a load should read.
func (r *PathResolver) ResolveLoadPath() (string, error) {
	if r.version == nil {
		return r.basePath, nil
	}
	token, err := r.LoadVersion()
	if err != nil {
		return "", err
	}
	return VersionedPath(r.basePath, token), nil
}

// ResolveSavePath returns the concrete path a save should write. With no
// explicit save version, a fresh token is generated on each call, so
// repeated saves produce distinct paths. Saving over an existing version is
// refused: versions are immutable once written.
func (r *PathResolver) ResolveSavePath() (string, error) {
	if r.version == nil {
		return r.basePath, nil
	}
	token := r.version.Save.OrElse(GenerateVersionToken())
	p := VersionedPath(r.basePath, token)
	ok, err := r.exists(p)
	if err != nil {
		return "", WrapError(ErrorKindIO, "could not check save path "+p, err)
	}
	if ok {
		return "", NewErrorf(ErrorKindInvalidOperation,
			"save path %s for %s must not exist if versioning is enabled", p, r.basePath)
	}
	return p, nil
}

// Exists reports whether the dataset's current load target exists. An
// unresolvable version means "does not exist", not an error.
func (r *PathResolver) Exists() (bool, error) {
	p, err := r.ResolveLoadPath()
	if err != nil {
		if IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return r.exists(p)
}
