package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gemcook/internal/testutil"
)

// ---------- Command tree tests ----------

func TestRootCommandHasSubcommands(t *testing.T) {
	root := newRootCommand()
	names := make([]string, 0, len(root.Commands()))
	for _, cmd := range root.Commands() {
		names = append(names, cmd.Name())
	}
	for _, name := range []string{"convert", "deps", "build"} {
		assert.Contains(t, names, name, "missing subcommand: %s", name)
	}
}

func TestRootCommandVersion(t *testing.T) {
	root := newRootCommand()
	assert.Equal(t, "dev", root.Version)
}

func TestConvertCommandFlags(t *testing.T) {
	cmd := newConvertCommand()
	for _, name := range []string{
		"output", "entry-point", "version", "gem-path",
		"install-dir", "allow-missing-dependencies",
	} {
		assert.NotNil(t, cmd.Flags().Lookup(name), "missing flag: %s", name)
	}
	assert.Equal(t, "o", cmd.Flags().Lookup("output").Shorthand)
}

func TestBuildCommandFlags(t *testing.T) {
	cmd := newBuildCommand()
	for _, name := range []string{"base", "entry-point", "version", "gem-path", "install-dir"} {
		assert.NotNil(t, cmd.Flags().Lookup(name), "missing flag: %s", name)
	}
}

func TestDepsCommandFlags(t *testing.T) {
	cmd := newDepsCommand()
	assert.NotNil(t, cmd.Flags().Lookup("gem-path"))
	assert.Nil(t, cmd.Flags().Lookup("output"))
}

// ---------- Helper function tests ----------

func TestResolveString(t *testing.T) {
	tests := []struct {
		name     string
		cmd      *cobra.Command
		value    string
		expected string
	}{
		{
			name:     "nil cmd with value returns value",
			cmd:      nil,
			value:    "explicit",
			expected: "explicit",
		},
		{
			name:     "nil cmd empty value returns empty",
			cmd:      nil,
			value:    "",
			expected: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := resolveString(tt.cmd, tt.value, "test_key", "test-flag")
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestResolveStrings(t *testing.T) {
	got := resolveStrings(nil, []string{"a", "b"}, "test_key", "test-flag")
	assert.Equal(t, []string{"a", "b"}, got)

	got = resolveStrings(nil, nil, "test_key", "test-flag")
	assert.Empty(t, got)
}

func TestResolveBool(t *testing.T) {
	assert.True(t, resolveBool(nil, true, "test_key", "test-flag"))
	assert.False(t, resolveBool(nil, false, "test_key", "test-flag"))
}

func TestFlagChanged(t *testing.T) {
	assert.False(t, flagChanged(nil, "anything"), "nil cmd should return false")
	assert.False(t, flagChanged(nil, ""), "nil cmd with empty name")

	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().String("myflag", "", "test flag")
	assert.False(t, flagChanged(cmd, "myflag"), "unchanged flag")
	assert.False(t, flagChanged(cmd, "nonexistent"), "nonexistent flag")

	require.NoError(t, cmd.Flags().Set("myflag", "val"))
	assert.True(t, flagChanged(cmd, "myflag"))
}

func TestResolveGemSourceDefaults(t *testing.T) {
	t.Cleanup(viper.Reset)
	t.Setenv("GEM_PATH", "")
	t.Setenv("GEM_HOME", filepath.Join("srv", "gems"))

	cmd := newDepsCommand()
	require.NoError(t, bindGemSourceFlags(cmd))
	source := resolveGemSource(cmd, "mygem", depsOptions{}.gemSourceOptions)
	assert.Equal(t, "mygem", source.Gem)
	assert.Equal(t, []string{filepath.Join("srv", "gems")}, source.GemPaths)
	assert.Equal(t, defaultInstallDir(), source.InstallDir)
	assert.False(t, source.AllowMissingDependencies)
}

// ---------- Exit code tests ----------

func TestExitCodeForError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{
			name: "invalid argument",
			err: errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg("invalid dependency: bad"),
			expected: 2,
		},
		{
			name: "unknown entry point",
			err: errbuilder.New().
				WithCode(errbuilder.CodeFailedPrecondition).
				WithMsg("unable to find a default entry point"),
			expected: 3,
		},
		{
			name: "permission denied",
			err: errbuilder.New().
				WithCode(errbuilder.CodePermissionDenied).
				WithMsg("possible symlink deletion attack"),
			expected: 3,
		},
		{
			name: "not found",
			err: errbuilder.New().
				WithCode(errbuilder.CodeNotFound).
				WithMsg("cannot find a gem to satisfy nope"),
			expected: 4,
		},
		{
			name: "conversion error",
			err: errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("boom"),
			expected: 5,
		},
		{
			name:     "unknown error",
			err:      assert.AnError,
			expected: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, exitCodeForError(tt.err))
		})
	}
}

// ---------- Execution tests ----------

func executeRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Cleanup(viper.Reset)
	root := newRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs(append(args, "--log-level", "error"))
	err := root.ExecuteContext(t.Context())
	return out.String(), err
}

func sourceGem() testutil.Gem {
	return testutil.Gem{
		Name:         "mygem",
		Version:      "1.0.0",
		Dependencies: []testutil.GemDependency{{Name: "halite"}},
		Requirements: []string{"other ~> 2.1"},
		Files: map[string]string{
			"lib/mygem.rb":         "require 'mygem/version'\n",
			"lib/mygem/version.rb": "VERSION = '1.0.0'\n",
		},
	}
}

func TestConvertCommandRuns(t *testing.T) {
	root := testutil.WriteSourceTree(t, t.TempDir(), sourceGem())
	output := filepath.Join(t.TempDir(), "cookbook")

	out, err := executeRoot(t, "convert", root,
		"-o", output,
		"--gem-path", t.TempDir(),
		"--install-dir", t.TempDir(),
	)
	require.NoError(t, err)
	assert.Equal(t, "converted mygem 1.0.0 into "+output+"\n", out)

	data, err := os.ReadFile(filepath.Join(output, "libraries", "mygem__version.rb"))
	require.NoError(t, err)
	assert.Equal(t, "if ENV['HALITE_LOAD'] == 'mygem'; VERSION = '1.0.0'\nend\n", string(data))
}

func TestDepsCommandRuns(t *testing.T) {
	root := testutil.WriteSourceTree(t, t.TempDir(), sourceGem())

	out, err := executeRoot(t, "deps", root, "--gem-path", t.TempDir(), "--install-dir", t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "mygem 1.0.0 (cookbook mygem)\n- other ~> 2.1 (requirements)\n", out)
}

func TestConvertCommandMissingGem(t *testing.T) {
	_, err := executeRoot(t, "convert", "nope",
		"-o", t.TempDir(),
		"--gem-path", t.TempDir(),
		"--install-dir", t.TempDir(),
	)
	require.Error(t, err)
	assert.Equal(t, 4, exitCodeForError(err))
}
