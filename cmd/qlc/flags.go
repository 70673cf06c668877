package main

import (
	"bytes"
	"flag"
	"fmt"

	"github.com/hanpama/qlc/internal/config"
)

// flagValues holds the raw compile flags. Which of them were given is
// recovered with FlagSet.Visit so that unset flags never override the rc
// file.
type flagValues struct {
	configFile            string
	schemaFile            string
	useCustomScalars      bool
	customScalarPrefix    string
	rootDirImportPrefix   string
	globalTypesModuleName string
	documentNodeModule    string
	disableReadonlyTypes  bool
	showDeprecations      bool
	numThreads            int
	target                string
	goPackage             string
	noColor               bool
	logLevel              string
	otelEndpoint          string
	otelService           string
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(new(bytes.Buffer)) // silence automatic output
	return fs
}

func (v *flagValues) registerSource(fs *flag.FlagSet) {
	fs.StringVar(&v.configFile, "c", "", "RC file")
	fs.StringVar(&v.configFile, "config-file", "", "RC file")
	fs.StringVar(&v.schemaFile, "s", "", "Introspection JSON")
	fs.StringVar(&v.schemaFile, "schema-file", "", "Introspection JSON")
}

func (v *flagValues) register(fs *flag.FlagSet) {
	v.registerSource(fs)
	fs.BoolVar(&v.useCustomScalars, "use-custom-scalars", false, "Name custom scalars")
	fs.StringVar(&v.customScalarPrefix, "custom-scalar-prefix", "", "Custom scalar prefix")
	fs.StringVar(&v.rootDirImportPrefix, "root-dir-import-prefix", "", "Root import prefix")
	fs.StringVar(&v.globalTypesModuleName, "global-types-module-name", "", "Globals module name")
	fs.StringVar(&v.documentNodeModule, "typed-graphql-documentnode-module-name", "", "Typed document node module")
	fs.BoolVar(&v.disableReadonlyTypes, "disable-readonly-types", false, "Do not mark fields readonly")
	fs.BoolVar(&v.showDeprecations, "show-deprecation-warnings", false, "Warn on deprecated fields")
	fs.IntVar(&v.numThreads, "num-threads", 0, "Worker count")
	fs.StringVar(&v.target, "target", "", "Output language")
	fs.StringVar(&v.goPackage, "go-package", "", "Go package name")
	fs.BoolVar(&v.noColor, "no-color", false, "Disable color")
	fs.StringVar(&v.logLevel, "log-level", "", "Log level")
	fs.StringVar(&v.otelEndpoint, "otel-endpoint", "", "OTLP collector endpoint")
	fs.StringVar(&v.otelService, "otel-service", "", "OpenTelemetry service name")
}

// overrides returns the values of the flags that were set on fs.
func (v *flagValues) overrides(fs *flag.FlagSet) config.Overrides {
	var o config.Overrides
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "c", "config-file":
			o.ConfigFile = &v.configFile
		case "s", "schema-file":
			o.SchemaFile = &v.schemaFile
		case "use-custom-scalars":
			o.UseCustomScalars = &v.useCustomScalars
		case "custom-scalar-prefix":
			o.CustomScalarPrefix = &v.customScalarPrefix
		case "root-dir-import-prefix":
			o.RootDirImportPrefix = &v.rootDirImportPrefix
		case "global-types-module-name":
			o.GlobalTypesModuleName = &v.globalTypesModuleName
		case "typed-graphql-documentnode-module-name":
			o.DocumentNodeModule = &v.documentNodeModule
		case "disable-readonly-types":
			o.DisableReadonlyTypes = &v.disableReadonlyTypes
		case "show-deprecation-warnings":
			o.ShowDeprecationWarnings = &v.showDeprecations
		case "num-threads":
			o.NumThreads = &v.numThreads
		case "target":
			o.Target = &v.target
		case "go-package":
			o.GoPackage = &v.goPackage
		case "no-color":
			o.NoColor = &v.noColor
		case "log-level":
			o.LogLevel = &v.logLevel
		case "otel-endpoint":
			o.OtelEndpoint = &v.otelEndpoint
		case "otel-service":
			o.OtelService = &v.otelService
		}
	})
	return o
}

// parseInterleaved parses flags that may appear before and after the
// positional arguments, which are returned.
func parseInterleaved(fs *flag.FlagSet, args []string) ([]string, error) {
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		args = fs.Args()
		if len(args) == 0 {
			return positional, nil
		}
		positional = append(positional, args[0])
		args = args[1:]
	}
}

// rootDir returns the single optional positional argument.
func rootDir(positional []string) (string, error) {
	switch len(positional) {
	case 0:
		return ".", nil
	case 1:
		return positional[0], nil
	default:
		return "", fmt.Errorf("unexpected arguments %q", positional[1:])
	}
}
