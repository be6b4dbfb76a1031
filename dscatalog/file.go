package dscatalog

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/launchdarkly/go-sdk-common/v3/ldlog"
	"github.com/launchdarkly/go-sdk-common/v3/ldvalue"
	yaml "gopkg.in/ghodss/yaml.v1"

	datasets "github.com/datacraft-oss/go-dataset-sdk"
	"github.com/datacraft-oss/go-dataset-sdk/dscsv"
	"github.com/datacraft-oss/go-dataset-sdk/dslazy"
	"github.com/datacraft-oss/go-dataset-sdk/dsparquet"
)

// FileOptions supplies the out-of-band inputs for LoadFile. Credentials are
// kept separate from the catalog file and referenced from entries by name.
type FileOptions struct {
	// Credentials maps credential set names to their contents.
	Credentials map[string]map[string]ldvalue.Value
	// LoadVersions pins versioned datasets to explicit load versions,
	// keyed by dataset name.
	LoadVersions map[string]string
	// SaveVersion is the save version applied to every versioned dataset,
	// so that one run writes a consistent set of versions. Empty means each
	// save generates its own version.
	SaveVersion string
}

// datasetFileConfig is one entry of a catalog file.
type datasetFileConfig struct {
	Type        string                   `json:"type"`
	Filepath    string                   `json:"filepath"`
	FileFormat  string                   `json:"file_format"`
	LoadArgs    map[string]ldvalue.Value `json:"load_args"`
	SaveArgs    map[string]ldvalue.Value `json:"save_args"`
	FSArgs      map[string]ldvalue.Value `json:"fs_args"`
	Credentials string                   `json:"credentials"`
	Versioned   bool                     `json:"versioned"`
	Metadata    map[string]ldvalue.Value `json:"metadata"`
}

type builderFunc func(config datasets.CommonConfig, fileConfig datasetFileConfig) (datasets.Dataset, error)

// Dataset construction is dispatched on the entry's type tag through this
// table; there is no reflection or dynamic class lookup.
var builders = map[string]builderFunc{
	"csv": func(config datasets.CommonConfig, _ datasetFileConfig) (datasets.Dataset, error) {
		return dscsv.New(config)
	},
	"parquet": func(config datasets.CommonConfig, _ datasetFileConfig) (datasets.Dataset, error) {
		return dsparquet.New(config)
	},
	"lazy": func(config datasets.CommonConfig, fileConfig datasetFileConfig) (datasets.Dataset, error) {
		return dslazy.New(config, fileConfig.FileFormat)
	},
}

// DatasetTypes returns the type tags LoadFile accepts.
func DatasetTypes() []string {
	types := make([]string, 0, len(builders))
	for t := range builders {
		types = append(types, t)
	}
	return types
}

// LoadFile reads a catalog file and constructs every dataset it declares.
// The file is parsed as JSON if its extension is .json and as YAML
// otherwise. Any invalid entry fails the whole load.
func LoadFile(path string, options FileOptions, loggers ldlog.Loggers) (*Catalog, error) {
	rawData, err := os.ReadFile(path)
	if err != nil {
		return nil, datasets.WrapError(datasets.ErrorKindIO, "could not read catalog file "+path, err)
	}
	var fileConfigs map[string]datasetFileConfig
	if strings.ToLower(filepath.Ext(path)) == ".json" {
		err = json.Unmarshal(rawData, &fileConfigs)
	} else {
		err = yaml.Unmarshal(rawData, &fileConfigs)
	}
	if err != nil {
		return nil, datasets.WrapError(datasets.ErrorKindConfiguration, "could not parse catalog file "+path, err)
	}

	catalog := NewCatalog(loggers)
	for name, fileConfig := range fileConfigs {
		ds, err := buildDataset(name, fileConfig, options, loggers)
		if err != nil {
			return nil, err
		}
		if err := catalog.Add(name, strings.ToLower(fileConfig.Type), ds); err != nil {
			return nil, err
		}
	}
	return catalog, nil
}

func buildDataset(name string, fileConfig datasetFileConfig, options FileOptions, loggers ldlog.Loggers) (datasets.Dataset, error) {
	builder, ok := builders[strings.ToLower(fileConfig.Type)]
	if !ok {
		return nil, datasets.NewErrorf(datasets.ErrorKindConfiguration,
			"dataset %q has unknown type %q (accepted: %s)",
			name, fileConfig.Type, strings.Join(DatasetTypes(), ", "))
	}

	var credentials map[string]ldvalue.Value
	if fileConfig.Credentials != "" {
		credentials, ok = options.Credentials[fileConfig.Credentials]
		if !ok {
			return nil, datasets.NewErrorf(datasets.ErrorKindConfiguration,
				"dataset %q references undefined credentials %q", name, fileConfig.Credentials)
		}
	}

	var version *datasets.Version
	if fileConfig.Versioned {
		version = datasets.NewVersion(options.LoadVersions[name], options.SaveVersion)
	} else if _, pinned := options.LoadVersions[name]; pinned {
		loggers.Warnf("Load version given for dataset %q, which is not versioned", name)
	}

	config := datasets.CommonConfig{
		Filepath:    fileConfig.Filepath,
		LoadArgs:    fileConfig.LoadArgs,
		SaveArgs:    fileConfig.SaveArgs,
		Version:     version,
		Credentials: credentials,
		FSArgs:      splitFSArgs(fileConfig.FSArgs),
		Metadata:    fileConfig.Metadata,
		Loggers:     loggers,
	}
	ds, err := builder(config, fileConfig)
	if err != nil {
		return nil, datasets.WrapError(datasets.ErrorKindConfiguration,
			"could not construct dataset "+name, err)
	}
	return ds, nil
}

// splitFSArgs separates the open_args_load and open_args_save sections from
// the rest of the filesystem arguments.
func splitFSArgs(fsArgs map[string]ldvalue.Value) datasets.FSArgs {
	var out datasets.FSArgs
	for k, v := range fsArgs {
		switch k {
		case "open_args_load":
			out.OpenArgsLoad = objectToMap(v)
		case "open_args_save":
			out.OpenArgsSave = objectToMap(v)
		default:
			if out.Args == nil {
				out.Args = make(map[string]ldvalue.Value)
			}
			out.Args[k] = v
		}
	}
	return out
}

func objectToMap(v ldvalue.Value) map[string]ldvalue.Value {
	if v.Type() != ldvalue.ObjectType {
		return nil
	}
	out := make(map[string]ldvalue.Value, v.Count())
	for _, k := range v.Keys(nil) {
		out[k] = v.GetByKey(k)
	}
	return out
}
