package workreport

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteUnique_FailedWriteLeavesNoFile(t *testing.T) {
	dir := t.TempDir()
	boom := errors.New("disk full")
	src := io.MultiReader(strings.NewReader("date,client\n"), iotest.ErrReader(boom))

	_, err := writeUnique(dir, "work_reports_all.csv", src)
	require.ErrorIs(t, err, boom)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestWriteUnique_SuffixesExistingName(t *testing.T) {
	dir := t.TempDir()

	first, err := writeUnique(dir, "work_reports_all.csv", strings.NewReader("a"))
	require.NoError(t, err)
	second, err := writeUnique(dir, "work_reports_all.csv", strings.NewReader("b"))
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "work_reports_all.csv"), first)
	assert.Equal(t, filepath.Join(dir, "work_reports_all (1).csv"), second)
	got, err := os.ReadFile(second)
	require.NoError(t, err)
	assert.Equal(t, "b", string(got))
}
