package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/hanpama/qlc/internal/config"
)

func ptr[T any](v T) *T { return &v }

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
}

func TestDefaults(t *testing.T) {
	root := t.TempDir()
	c, err := config.Load(root, config.Overrides{})
	require.NoError(t, err)

	require.Equal(t, root, c.RootDir)
	require.Empty(t, c.ConfigFile)
	require.Equal(t, filepath.Join(root, "schema.json"), c.SchemaFile)
	require.Equal(t, "graphql-globals", c.GlobalTypesModuleName)
	require.Equal(t, "@notarize/qlc-cli/typed-documentnode", c.DocumentNodeModule)
	require.Equal(t, config.TargetTypeScript, c.Target)
	require.Equal(t, zerolog.WarnLevel, c.LogLevel)
	require.Equal(t, "qlc", c.OtelService)
	require.Equal(t, config.DefaultThreads(), c.NumThreads)
	require.LessOrEqual(t, c.NumThreads, 8)
	require.Positive(t, c.NumThreads)
	require.False(t, c.UseCustomScalars)
	require.Equal(t, filepath.Join(root, "graphql-globals.ts"), c.GlobalsFile())
	require.Equal(t, "graphql-globals", c.GlobalsImport())
}

func TestJSONFile(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ".qlcrc.json"), "{\n\t\"schemaFile\": \"gql/schema.json\",\n\t\"customScalarPrefix\": \"Scalar\",\n\t\"rootDirImportPrefix\": \"@/\",\n\t\"numThreads\": 3,\n\t\"showDeprecationWarnings\": true\n}\n")

	c, err := config.Load(root, config.Overrides{})
	require.NoError(t, err)
	require.Equal(t, filepath.Join(root, ".qlcrc.json"), c.ConfigFile)
	require.Equal(t, filepath.Join(root, "gql", "schema.json"), c.SchemaFile)
	require.Equal(t, "Scalar", c.CustomScalarPrefix)
	require.True(t, c.UseCustomScalars)
	require.Equal(t, 3, c.NumThreads)
	require.True(t, c.ShowDeprecationWarnings)
	require.Equal(t, "@/graphql-globals", c.GlobalsImport())
}

func TestYAMLFile(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ".qlcrc.yaml"), "target: go\ngoPackage: queries\nglobalTypesModuleName: globals\n")

	c, err := config.Load(root, config.Overrides{})
	require.NoError(t, err)
	require.Equal(t, config.TargetGo, c.Target)
	require.Equal(t, "queries", c.GoPackage)
	require.Equal(t, filepath.Join(root, "globals.go"), c.GlobalsFile())
}

func TestSchemaFileRelativeToRCDirectory(t *testing.T) {
	root := t.TempDir()
	rc := filepath.Join(root, "conf", "qlc.json")
	writeFile(t, rc, `{"schemaFile": "../api/schema.json"}`)

	c, err := config.Load(root, config.Overrides{ConfigFile: ptr(rc)})
	require.NoError(t, err)
	require.Equal(t, filepath.Join(root, "api", "schema.json"), c.SchemaFile)
}

func TestOverridesWin(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ".qlcrc.json"), `{"numThreads": 3, "disableReadonlyTypes": false, "target": "go"}`)

	c, err := config.Load(root, config.Overrides{
		NumThreads:           ptr(5),
		DisableReadonlyTypes: ptr(true),
		Target:               ptr("typescript"),
		SchemaFile:           ptr("other.json"),
		LogLevel:             ptr("debug"),
		NoColor:              ptr(true),
	})
	require.NoError(t, err)
	require.Equal(t, 5, c.NumThreads)
	require.True(t, c.DisableReadonlyTypes)
	require.Equal(t, config.TargetTypeScript, c.Target)
	require.Equal(t, "other.json", c.SchemaFile)
	require.Equal(t, zerolog.DebugLevel, c.LogLevel)
	require.True(t, c.NoColor)
}

func TestZeroThreadsMeansDefault(t *testing.T) {
	c, err := config.Load(t.TempDir(), config.Overrides{NumThreads: ptr(0)})
	require.NoError(t, err)
	require.Equal(t, config.DefaultThreads(), c.NumThreads)
}

func TestEmptyFile(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ".qlcrc.json"), "")
	c, err := config.Load(root, config.Overrides{})
	require.NoError(t, err)
	require.Equal(t, "graphql-globals", c.GlobalTypesModuleName)
}

func TestErrors(t *testing.T) {
	root := t.TempDir()
	rcPath := filepath.Join(root, ".qlcrc.json")

	t.Run("unknown key", func(t *testing.T) {
		writeFile(t, rcPath, `{"schemaFiel": "x.json"}`)
		_, err := config.Load(root, config.Overrides{})
		var cerr *config.Error
		require.ErrorAs(t, err, &cerr)
		require.Equal(t, rcPath, cerr.Path)
		require.Contains(t, err.Error(), "error in config file `"+rcPath+"`: ")
	})

	t.Run("wrong type", func(t *testing.T) {
		writeFile(t, rcPath, `{"numThreads": "many"}`)
		_, err := config.Load(root, config.Overrides{})
		var cerr *config.Error
		require.ErrorAs(t, err, &cerr)
	})

	t.Run("bad target", func(t *testing.T) {
		writeFile(t, rcPath, `{"target": "rust"}`)
		_, err := config.Load(root, config.Overrides{})
		require.EqualError(t, err, "error in config file `"+rcPath+"`: unknown target \"rust\", expected typescript or go")
	})

	t.Run("missing explicit file", func(t *testing.T) {
		missing := filepath.Join(root, "nope.json")
		_, err := config.Load(root, config.Overrides{ConfigFile: ptr(missing)})
		var cerr *config.Error
		require.ErrorAs(t, err, &cerr)
		require.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("negative threads", func(t *testing.T) {
		_, err := config.Load(t.TempDir(), config.Overrides{NumThreads: ptr(-1)})
		require.Error(t, err)
	})

	t.Run("bad log level", func(t *testing.T) {
		_, err := config.Load(t.TempDir(), config.Overrides{LogLevel: ptr("loud")})
		require.EqualError(t, err, `unknown log level "loud"`)
	})
}

func TestParseTarget(t *testing.T) {
	for in, want := range map[string]config.Target{
		"typescript": config.TargetTypeScript,
		"ts":         config.TargetTypeScript,
		"Go":         config.TargetGo,
	} {
		got, err := config.ParseTarget(in)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
}
