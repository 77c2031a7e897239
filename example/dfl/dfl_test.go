package main

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseGrids(t *testing.T) {

	grids, err := parseGrids(" 80, 40,20,")
	require.NoError(t, err)
	assert.Equal(t, []int{80, 40, 20}, grids)

	_, err = parseGrids("80,x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid grid size "x"`)

	var numErr *strconv.NumError
	assert.ErrorAs(t, errors.Cause(err), &numErr)
}

func TestReadFloat32File(t *testing.T) {

	file := filepath.Join(t.TempDir(), "reg0.bin")

	// 1.0 and 2.0 little endian
	require.NoError(t, os.WriteFile(file, []byte{0, 0, 0x80, 0x3f, 0, 0, 0, 0x40}, 0o644))

	buf, err := readFloat32File(file, 2)
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2}, buf)

	_, err = readFloat32File(file, 3)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading 3 values")

	_, err = readFloat32File(filepath.Join(t.TempDir(), "missing.bin"), 1)
	require.Error(t, err)
	assert.True(t, os.IsNotExist(errors.Cause(err)))
}
