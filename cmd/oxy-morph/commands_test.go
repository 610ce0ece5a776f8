package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const manifest = `title = "inspect test"

[[variant]]
name = "men"
hue = [0.7, 0.3]
source = "men.asc"

[[variant]]
name = "women"
hue = [0.1, 0.4]
source = "women.asc"

[[variant]]
name = ">50% men"
hue = [0.6, 1.1]
derive = { base = "men", other = "women", compare = "greater" }

[[variant]]
name = "missing"
hue = [0.0, 1.0]
source = "missing.asc"
`

const men = `ncols 3
nrows 2
xllcorner -180
yllcorner -90
cellsize 60
NODATA_value -9999
10 20 30
40 -9999 60
`

const women = `ncols 3
nrows 2
xllcorner -180
yllcorner -90
cellsize 60
NODATA_value -9999
30 20 10
60 50 40
`

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd(slog.New(slog.NewTextHandler(io.Discard, nil)))
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestInspect(t *testing.T) {
	dir := t.TempDir()
	for name, body := range map[string]string{"morph.toml": manifest, "men.asc": men, "women.asc": women} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}

	out, err := run(t, "inspect", filepath.Join(dir, "morph.toml"))
	require.NoError(t, err)

	assert.Contains(t, out, "men")
	assert.Contains(t, out, ">50% men")
	assert.Contains(t, out, "10..60")
	assert.Contains(t, out, "missing")
	assert.Contains(t, out, "dropped")
	assert.Contains(t, out, "missing cells: 1 of 6")
}

func TestInspectErrors(t *testing.T) {
	_, err := run(t, "inspect")
	assert.Error(t, err, "manifest argument is required")

	_, err = run(t, "inspect", filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)

	_, err = run(t, "view", "a.toml", "b.toml")
	assert.Error(t, err)
}
