// Package tabio implements the tabular codecs (CSV, Parquet) shared by the
// dataset adapter packages. Adapters translate their configured load/save
// args into calls here; this package knows nothing about paths, versions,
// or filesystems beyond the readers and writers it is handed.
package tabio
