// Package config resolves the compiler settings from defaults, an rc file
// and command line overrides.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// Target selects the output language.
type Target string

const (
	TargetTypeScript Target = "typescript"
	TargetGo         Target = "go"
)

const (
	DefaultGlobalTypesModuleName = "graphql-globals"
	DefaultDocumentNodeModule    = "@notarize/qlc-cli/typed-documentnode"
	DefaultOtelService           = "qlc"
	maxDefaultThreads            = 8
)

// rcNames are tried in order when no rc file is given explicitly.
var rcNames = []string{".qlcrc.json", ".qlcrc.yaml", ".qlcrc.yml"}

// Config is the fully resolved configuration of a run.
type Config struct {
	RootDir string
	// ConfigFile is the rc file that was read, empty when none was found.
	ConfigFile string
	SchemaFile string

	UseCustomScalars        bool
	CustomScalarPrefix      string
	RootDirImportPrefix     string
	GlobalTypesModuleName   string
	DocumentNodeModule      string
	DisableReadonlyTypes    bool
	ShowDeprecationWarnings bool
	NumThreads              int
	Target                  Target
	// GoPackage overrides the package name of generated Go files.
	GoPackage string

	NoColor      bool
	LogLevel     zerolog.Level
	OtelEndpoint string
	OtelService  string
}

// Default returns the built-in configuration for rootDir.
func Default(rootDir string) *Config {
	return &Config{
		RootDir:               rootDir,
		SchemaFile:            filepath.Join(rootDir, "schema.json"),
		GlobalTypesModuleName: DefaultGlobalTypesModuleName,
		DocumentNodeModule:    DefaultDocumentNodeModule,
		NumThreads:            DefaultThreads(),
		Target:                TargetTypeScript,
		LogLevel:              zerolog.WarnLevel,
		OtelService:           DefaultOtelService,
	}
}

// DefaultThreads is the number of CPUs, capped at 8.
func DefaultThreads() int {
	return min(runtime.NumCPU(), maxDefaultThreads)
}

// GlobalsFile is the path of the aggregate globals module for the target.
func (c *Config) GlobalsFile() string {
	ext := ".ts"
	if c.Target == TargetGo {
		ext = ".go"
	}
	return filepath.Join(c.RootDir, c.GlobalTypesModuleName+ext)
}

// GlobalsImport is the module specifier generated documents import the
// global types from.
func (c *Config) GlobalsImport() string {
	return c.RootDirImportPrefix + c.GlobalTypesModuleName
}

// Error reports an rc file that could not be read or decoded.
type Error struct {
	Path string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("error in config file `%s`: %v", e.Path, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// rcFile mirrors the keys of `.qlcrc.json`. Pointers distinguish absent keys.
type rcFile struct {
	SchemaFile              *string `yaml:"schemaFile"`
	UseCustomScalars        *bool   `yaml:"useCustomScalars"`
	CustomScalarPrefix      *string `yaml:"customScalarPrefix"`
	RootDirImportPrefix     *string `yaml:"rootDirImportPrefix"`
	GlobalTypesModuleName   *string `yaml:"globalTypesModuleName"`
	DocumentNodeModule      *string `yaml:"typedGraphqlDocumentnodeModuleName"`
	DisableReadonlyTypes    *bool   `yaml:"disableReadonlyTypes"`
	ShowDeprecationWarnings *bool   `yaml:"showDeprecationWarnings"`
	NumThreads              *int    `yaml:"numThreads"`
	Target                  *string `yaml:"target"`
	GoPackage               *string `yaml:"goPackage"`
}

// Overrides are the command line values. Nil fields were not given.
type Overrides struct {
	ConfigFile              *string
	SchemaFile              *string
	UseCustomScalars        *bool
	CustomScalarPrefix      *string
	RootDirImportPrefix     *string
	GlobalTypesModuleName   *string
	DocumentNodeModule      *string
	DisableReadonlyTypes    *bool
	ShowDeprecationWarnings *bool
	NumThreads              *int
	Target                  *string
	GoPackage               *string
	NoColor                 *bool
	LogLevel                *string
	OtelEndpoint            *string
	OtelService             *string
}

// Load resolves defaults, then the rc file, then o.
func Load(rootDir string, o Overrides) (*Config, error) {
	c := Default(rootDir)

	rc, path, err := readRC(rootDir, o.ConfigFile)
	if err != nil {
		return nil, err
	}
	if rc != nil {
		c.ConfigFile = path
		if err := c.applyRC(rc, filepath.Dir(path)); err != nil {
			return nil, &Error{Path: path, Err: err}
		}
	}
	if err := c.applyOverrides(o); err != nil {
		return nil, err
	}
	if c.NumThreads == 0 {
		c.NumThreads = DefaultThreads()
	}
	return c, nil
}

// readRC returns nil without error when the default rc file does not exist.
func readRC(rootDir string, explicit *string) (*rcFile, string, error) {
	if explicit != nil {
		rc, err := decodeFile(*explicit)
		if err != nil {
			return nil, "", &Error{Path: *explicit, Err: err}
		}
		return rc, *explicit, nil
	}
	for _, name := range rcNames {
		path := filepath.Join(rootDir, name)
		rc, err := decodeFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, "", &Error{Path: path, Err: err}
		}
		return rc, path, nil
	}
	return nil, "", nil
}

func decodeFile(path string) (*rcFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return decode(path, data)
}

func decode(path string, data []byte) (*rcFile, error) {
	if filepath.Ext(path) == ".json" {
		// YAML rejects tab indentation; valid JSON only has tabs as whitespace.
		data = []byte(strings.ReplaceAll(string(data), "\t", " "))
	}
	dec := yaml.NewDecoder(strings.NewReader(string(data)))
	dec.KnownFields(true)
	var rc rcFile
	if err := dec.Decode(&rc); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return &rc, nil
}

func (c *Config) applyRC(rc *rcFile, dir string) error {
	if rc.SchemaFile != nil {
		c.SchemaFile = *rc.SchemaFile
		if !filepath.IsAbs(c.SchemaFile) {
			c.SchemaFile = filepath.Join(dir, c.SchemaFile)
		}
	}
	setBool(&c.UseCustomScalars, rc.UseCustomScalars)
	setString(&c.CustomScalarPrefix, rc.CustomScalarPrefix)
	setString(&c.RootDirImportPrefix, rc.RootDirImportPrefix)
	setString(&c.GlobalTypesModuleName, rc.GlobalTypesModuleName)
	setString(&c.DocumentNodeModule, rc.DocumentNodeModule)
	setBool(&c.DisableReadonlyTypes, rc.DisableReadonlyTypes)
	setBool(&c.ShowDeprecationWarnings, rc.ShowDeprecationWarnings)
	setString(&c.GoPackage, rc.GoPackage)
	if rc.NumThreads != nil {
		if *rc.NumThreads < 0 {
			return fmt.Errorf("numThreads must not be negative, got %d", *rc.NumThreads)
		}
		c.NumThreads = *rc.NumThreads
	}
	if rc.Target != nil {
		t, err := ParseTarget(*rc.Target)
		if err != nil {
			return err
		}
		c.Target = t
	}
	if c.CustomScalarPrefix != "" {
		c.UseCustomScalars = true
	}
	return nil
}

func (c *Config) applyOverrides(o Overrides) error {
	setString(&c.SchemaFile, o.SchemaFile)
	setBool(&c.UseCustomScalars, o.UseCustomScalars)
	setString(&c.CustomScalarPrefix, o.CustomScalarPrefix)
	setString(&c.RootDirImportPrefix, o.RootDirImportPrefix)
	setString(&c.GlobalTypesModuleName, o.GlobalTypesModuleName)
	setString(&c.DocumentNodeModule, o.DocumentNodeModule)
	setBool(&c.DisableReadonlyTypes, o.DisableReadonlyTypes)
	setBool(&c.ShowDeprecationWarnings, o.ShowDeprecationWarnings)
	setString(&c.GoPackage, o.GoPackage)
	setBool(&c.NoColor, o.NoColor)
	setString(&c.OtelEndpoint, o.OtelEndpoint)
	setString(&c.OtelService, o.OtelService)
	if o.NumThreads != nil {
		if *o.NumThreads < 0 {
			return fmt.Errorf("--num-threads must not be negative, got %d", *o.NumThreads)
		}
		c.NumThreads = *o.NumThreads
	}
	if o.Target != nil {
		t, err := ParseTarget(*o.Target)
		if err != nil {
			return err
		}
		c.Target = t
	}
	if o.LogLevel != nil {
		level, err := zerolog.ParseLevel(*o.LogLevel)
		if err != nil || *o.LogLevel == "" {
			return fmt.Errorf("unknown log level %q", *o.LogLevel)
		}
		c.LogLevel = level
	}
	if c.CustomScalarPrefix != "" {
		c.UseCustomScalars = true
	}
	return nil
}

// ParseTarget accepts "typescript" (or "ts") and "go".
func ParseTarget(s string) (Target, error) {
	switch strings.ToLower(s) {
	case "typescript", "ts":
		return TargetTypeScript, nil
	case "go":
		return TargetGo, nil
	default:
		return "", fmt.Errorf("unknown target %q, expected typescript or go", s)
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}
