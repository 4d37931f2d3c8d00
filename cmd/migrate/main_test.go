package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	require.NoError(t, cmd.Execute())
	return out.String()
}

func TestListEmbedded(t *testing.T) {
	out := run(t, "list")

	assert.Contains(t, out, "000001  init_schema")
	assert.Contains(t, out, "000002  search_indexes")
}

func TestCreateThenList(t *testing.T) {
	dir := t.TempDir()

	out := run(t, "create", "Add Coupons", "--dir", dir)
	assert.Contains(t, out, "000001_add_coupons.up.sql")

	_, err := os.Stat(filepath.Join(dir, "000001_add_coupons.down.sql"))
	require.NoError(t, err)

	assert.Contains(t, run(t, "list", "--dir", dir), "000001  add_coupons")
}

func TestStepRejectsExtraArgs(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"step"})

	assert.Error(t, cmd.Execute())
}
