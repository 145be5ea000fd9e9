package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oleg578/streamcsv"
	"github.com/oleg578/streamcsv/internal/transcode"
)

func runCLI(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	rootCmd := NewRootCmd()
	var stdout bytes.Buffer
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs(append([]string{"--log-level", "error"}, args...))

	err := rootCmd.ExecuteContext(context.Background())
	return stdout.String(), err
}

func TestNormalizeCommand(t *testing.T) {
	t.Run("stdin to stdout", func(t *testing.T) {
		out, err := runCLI(t, "\"a\",b\r\n\"c\"\"d\",\"e\nf\"\rlast", "normalize")
		require.NoError(t, err)
		assert.Equal(t, "a,b\n\"c\"\"d\",\"e\nf\"\nlast\n", out)
	})

	t.Run("file to file", func(t *testing.T) {
		dir := t.TempDir()
		in := filepath.Join(dir, "in.csv")
		outPath := filepath.Join(dir, "out.csv")
		require.NoError(t, os.WriteFile(in, []byte("x,\"y\"\r\n"), 0o600))

		stdout, err := runCLI(t, "", "normalize", in, "-o", outPath)
		require.NoError(t, err)
		assert.Empty(t, stdout)

		data, err := os.ReadFile(outPath)
		require.NoError(t, err)
		assert.Equal(t, "x,y\n", string(data))
	})

	t.Run("strict flag", func(t *testing.T) {
		_, err := runCLI(t, "\"open", "--strict", "normalize")
		assert.ErrorIs(t, err, streamcsv.ErrUnterminatedQuote)
	})

	t.Run("lenient by default", func(t *testing.T) {
		out, err := runCLI(t, "\"open", "normalize")
		require.NoError(t, err)
		assert.Equal(t, "open\n", out)
	})

	t.Run("missing input", func(t *testing.T) {
		_, err := runCLI(t, "", "normalize", filepath.Join(t.TempDir(), "nope.csv"))
		assert.ErrorContains(t, err, "open input")
	})
}

func TestInspectCommand(t *testing.T) {
	const input = "id,name\n1,apple\n2,\"pear, green\"\n"

	out, err := runCLI(t, input, "inspect", "--head", "1")
	require.NoError(t, err)
	assert.Equal(t, "Rows: 3\nFields per row: min 2, max 2\n\nHeader:\nColumn 1: id\nColumn 2: name\n\nRow 1:\n  id: 1\n  name: apple\n", out)
}

func TestInspectCommandReuseRecord(t *testing.T) {
	const (
		input = "id,name\n1,apple\n2,pear\n"
		want  = "Rows: 3\nFields per row: min 2, max 2\n\nHeader:\nColumn 1: id\nColumn 2: name\n\nRow 1:\n  id: 1\n  name: apple\n"
	)

	t.Run("env", func(t *testing.T) {
		t.Setenv("CSVCODEC_READER_REUSE_RECORD", "true")

		out, err := runCLI(t, input, "inspect", "--head", "1")
		require.NoError(t, err)
		assert.Equal(t, want, out)
	})

	t.Run("config file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "csvcodec.yaml")
		require.NoError(t, os.WriteFile(path, []byte("reader:\n  reuse_record: true\n"), 0o600))

		out, err := runCLI(t, input, "--config", path, "inspect", "--head", "1")
		require.NoError(t, err)
		assert.Equal(t, want, out)
	})
}

func TestCheckCommand(t *testing.T) {
	out, err := runCLI(t, "a,b\n", "check")
	require.NoError(t, err)
	assert.Empty(t, out)

	out, err = runCLI(t, "\"a\",b\n", "check")
	assert.ErrorIs(t, err, transcode.ErrNotNormalized)
	assert.Equal(t, "-\"a\",b\n+a,b\n", out)
}

func TestConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "csvcodec.yaml")
	require.NoError(t, os.WriteFile(path, []byte("reader:\n  strict: true\ninspect:\n  head: 1\n"), 0o600))

	_, err := runCLI(t, "a,\"b", "--config", path, "normalize")
	assert.ErrorIs(t, err, streamcsv.ErrUnterminatedQuote)

	out, err := runCLI(t, "h\nr1\nr2\n", "--config", path, "inspect")
	require.NoError(t, err)
	assert.Contains(t, out, "Row 1:\n  h: r1\n")
	assert.NotContains(t, out, "r2")

	out, err = runCLI(t, "a,\"b", "--config", path, "--strict=false", "normalize")
	require.NoError(t, err)
	assert.Equal(t, "a,b\n", out)
}

func TestLogFlags(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{name: "json warn", args: []string{"--log-format", "json", "--log-level", "warn"}},
		{name: "console debug", args: []string{"--log-format", "console", "--log-level", "debug"}},
		{name: "bad level", args: []string{"--log-level", "loud"}, wantErr: "invalid log level"},
		{name: "bad format", args: []string{"--log-format", "xml"}, wantErr: "invalid log format"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rootCmd := NewRootCmd()
			var stdout bytes.Buffer
			rootCmd.SetIn(strings.NewReader("\"a\",b\n"))
			rootCmd.SetOut(&stdout)
			rootCmd.SetErr(&bytes.Buffer{})
			rootCmd.SetArgs(append(tc.args, "normalize"))

			err := rootCmd.Execute()
			if tc.wantErr != "" {
				assert.ErrorContains(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "a,b\n", stdout.String())
		})
	}
}

func TestExecuteExitCode(t *testing.T) {
	saved := os.Args
	t.Cleanup(func() { os.Args = saved })

	os.Args = []string{"csvcodec", "normalize", filepath.Join(t.TempDir(), "missing.csv"), "--log-level", "error"}
	assert.Equal(t, 1, Execute(context.Background()))
}
