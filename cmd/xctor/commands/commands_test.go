package commands

import (
	"bytes"
	"os"
	"testing"

	"github.com/fatih/color"
	"github.com/pterm/pterm"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-mizu/xctor/internal/config"
)

func setup(t *testing.T) afero.Fs {
	t.Helper()
	prevFs, prevColor, prevPterm := config.AppFs, color.NoColor, pterm.PrintColor
	config.AppFs = afero.NewMemMapFs()
	t.Cleanup(func() {
		config.AppFs = prevFs
		color.NoColor = prevColor
		if prevPterm {
			pterm.EnableColor()
		}
	})
	for _, k := range []string{"XCTOR_DRIVER", "XCTOR_DSN", "XCTOR_TIMEOUT", "XCTOR_MAX_ROWS", "DATABASE_URL"} {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
	return config.AppFs
}

func run(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--driver", "sqlite3", "--dsn", ":memory:", "--no-color"}, args...))
	err = cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestDescribe(t *testing.T) {
	setup(t)

	out, _, err := run(t, "describe", "SELECT 1, 'a', NULL, 2.5")
	require.NoError(t, err)

	assert.Contains(t, out, "Columns")
	assert.Regexp(t, `#\s*\|\s*GO TYPE\s*\|\s*PRIMITIVE`, out)
	assert.Regexp(t, `1\s*\|\s*int64\s*\|\s*int64`, out)
	assert.Regexp(t, `2\s*\|\s*string\s*\|\s*string`, out)
	assert.Regexp(t, `3\s*\|\s*NULL\s*\|\s*any`, out)
	assert.Regexp(t, `4\s*\|\s*float64\s*\|\s*float64`, out)
	assert.Contains(t, out, "func(int64, string, any, float64)")
	assert.Contains(t, out, "Rows (1)")
	assert.Contains(t, out, `(1, "a", NULL, 2.5)`)
}

func TestDescribe_SingleColumnAndMaxRows(t *testing.T) {
	setup(t)
	t.Setenv("XCTOR_MAX_ROWS", "1")

	out, _, err := run(t, "describe", "SELECT 1 UNION ALL SELECT 2 UNION ALL SELECT 3")
	require.NoError(t, err)

	assert.Contains(t, out, "func(int64)")
	assert.Contains(t, out, "Rows (3)")
	assert.Contains(t, out, "  (1)\n")
	assert.NotContains(t, out, "(2)")
	assert.Contains(t, out, "... 2 more")
}

func TestDescribe_File(t *testing.T) {
	fs := setup(t)
	require.NoError(t, afero.WriteFile(fs, "/q.sql", []byte("\nSELECT 'x' AS s;\n"), 0o644))

	out, _, err := run(t, "describe", "--file", "/q.sql")
	require.NoError(t, err)
	assert.Contains(t, out, "func(string)")
	assert.Contains(t, out, `("x")`)
}

func TestDescribe_NoRows(t *testing.T) {
	setup(t)

	out, _, err := run(t, "describe", "SELECT 1 WHERE 0")
	require.NoError(t, err)
	assert.Equal(t, "no rows\n", out)
}

func TestDescribe_Verbose(t *testing.T) {
	setup(t)

	_, stderr, err := run(t, "-v", "describe", "SELECT 1, 2")
	require.NoError(t, err)
	assert.Contains(t, stderr, "configuration loaded")
	assert.Contains(t, stderr, "resolved constructor")
	assert.Contains(t, stderr, "fast_path=true")
}

func TestDescribe_Errors(t *testing.T) {
	fs := setup(t)
	require.NoError(t, afero.WriteFile(fs, "/empty.sql", []byte("  \n"), 0o644))

	tests := []struct {
		name string
		args []string
		msg  string
	}{
		{"no query", []string{"describe"}, "no query given"},
		{"blank query", []string{"describe", "  "}, "no query given"},
		{"query and file", []string{"describe", "--file", "/q.sql", "SELECT 1"}, "not both"},
		{"missing file", []string{"describe", "--file", "/nope.sql"}, "reading query file"},
		{"empty file", []string{"describe", "--file", "/empty.sql"}, "query file /empty.sql is empty"},
		{"bad sql", []string{"describe", "SELEKT"}, "running query"},
		{"unknown driver", []string{"--driver", "oracle", "describe", "SELECT 1"}, `opening oracle database`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := run(t, tc.args...)
			assert.ErrorContains(t, err, tc.msg)
		})
	}
}

func TestDescribe_MissingDSN(t *testing.T) {
	setup(t)

	var out bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"describe", "SELECT 1"})
	err := cmd.Execute()
	assert.ErrorContains(t, err, `no dsn for driver "sqlite3"`)
}

func TestVersion(t *testing.T) {
	setup(t)

	var out bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"version"})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "xctor dev")
	assert.Contains(t, out.String(), "Go Version:")
}
