package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand_RejectsArguments(t *testing.T) {
	t.Parallel()

	cmd := newRootCommand()
	cmd.SetArgs([]string{"extra"})
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)

	assert.Error(t, cmd.Execute())
}

func TestRun_WritesDataset(t *testing.T) {
	t.Parallel()

	srv := newFakeSite(t)
	cfg := testConfig(srv.URL, filepath.Join(t.TempDir(), "pokemon_db.csv"))
	cfg.LogLevel = "error"

	var out bytes.Buffer
	require.NoError(t, run(context.Background(), cfg, &out))

	data, err := os.ReadFile(cfg.Output)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"0025"`)
	assert.Contains(t, out.String(), "Bulbasaur")
}
