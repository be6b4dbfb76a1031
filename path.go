package datasets

import (
	"path"
	"strings"
)

// ProtocolDelimiter separates a protocol prefix from the rest of a
// filepath.
const ProtocolDelimiter = "://"

// DefaultProtocol is assumed when a filepath carries no protocol prefix.
const DefaultProtocol = "file"

// SplitProtocol splits a filepath into its protocol and the remaining
// path. "s3://bucket/raw/cars.csv" yields ("s3", "bucket/raw/cars.csv");
// a bare path yields ("file", path). Windows drive letters are not treated
// as protocols.
func SplitProtocol(filepath string) (protocol, rest string) {
	i := strings.Index(filepath, ProtocolDelimiter)
	if i <= 1 { // absent, or a single-letter drive prefix
		return DefaultProtocol, filepath
	}
	return strings.ToLower(filepath[:i]), filepath[i+len(ProtocolDelimiter):]
}

// QualifyPath re-attaches a protocol prefix to a resolved path. Local paths
// are returned bare: prefixing "file://" confuses libraries that expect a
// plain OS path, and local reads never need storage options.
func QualifyPath(protocol, p string) string {
	if protocol == DefaultProtocol {
		return p
	}
	return protocol + ProtocolDelimiter + p
}

// VersionedPath returns the concrete path for one version of a dataset:
// <base>/<token>/<basename>.
func VersionedPath(base, token string) string {
	return path.Join(base, token, path.Base(base))
}

// versionTokenOf extracts the version token from a path produced by
// VersionedPath, or "" if p does not have that shape under base.
func versionTokenOf(base, p string) string {
	prefix := base + "/"
	if !strings.HasPrefix(p, prefix) {
		return ""
	}
	rest := strings.TrimPrefix(p, prefix)
	parts := strings.SplitN(rest, "/", 2)
	if len(parts) != 2 || parts[1] != path.Base(base) {
		return ""
	}
	return parts[0]
}
