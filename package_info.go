// Package datasets is the core of the dataset SDK: it defines the generic
// load/save contract implemented by the dataset adapter packages (dscsv,
// dsparquet, dslazy), the versioned path resolution rules shared by all of
// them, and the common configuration surface that binds an adapter to a
// filesystem from the dsfs registry.
//
// A dataset adapter is a thin translation layer: it resolves a concrete
// path for the current operation, hands the byte I/O to a dsfs.FileSystem,
// and hands the encoding to a tabular codec. The behavior worth
// specifying lives in the resolution rules, which this package owns:
//
//   - a filepath is protocol-qualified ("s3://bucket/data/cars.csv"); the
//     protocol selects the filesystem implementation, and "file" is assumed
//     when no protocol is given
//   - when versioning is enabled, artifacts live at
//     <base>/<version token>/<basename>; version tokens sort
//     lexicographically by creation time, loads with no explicit version
//     resolve to the most recent existing token, and saves never overwrite
//     an existing token
//
// Concrete paths are recomputed on every operation so that "latest" always
// reflects data written since the previous call.
package datasets
