package annotations

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "annotations.csv")
	return NewStore(path), path
}

func TestLookupMissingFileCreatesEmpty(t *testing.T) {
	s, path := newTestStore(t)

	_, _, found, err := s.Lookup("ext-1", "sanitizer")
	require.NoError(t, err)
	assert.False(t, found)

	_, err = os.Stat(path)
	assert.NoError(t, err, "first access creates the backing file")
}

func TestPutAndLookup(t *testing.T) {
	s, _ := newTestStore(t)

	require.NoError(t, s.Put("ext-1", "sanitizer", true, "verified by hand"))

	verdict, comment, found, err := s.Lookup("ext-1", "sanitizer")
	require.NoError(t, err)
	require.True(t, found)
	assert.True(t, verdict)
	assert.Equal(t, "verified by hand", comment)
}

func TestPutReplacesInPlace(t *testing.T) {
	s, path := newTestStore(t)

	require.NoError(t, s.Put("ext-1", "sanitizer", true, "first pass"))
	require.NoError(t, s.Put("ext-2", "exploitable", false, "fixed host"))
	require.NoError(t, s.Put("ext-1", "sanitizer", false, "regression"))

	verdict, comment, found, err := s.Lookup("ext-1", "sanitizer")
	require.NoError(t, err)
	require.True(t, found)
	assert.False(t, verdict)
	assert.Equal(t, "regression", comment)

	// The unrelated record stays intact and no duplicate line appears.
	verdict, _, found, err = s.Lookup("ext-2", "exploitable")
	require.NoError(t, err)
	require.True(t, found)
	assert.False(t, verdict)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "ext-1,sanitizer,false,regression\next-2,exploitable,false,fixed host\n", string(raw))
}

func TestLookupDistinguishesChecks(t *testing.T) {
	s, _ := newTestStore(t)

	require.NoError(t, s.Put("ext-1", "sanitizer", true, ""))

	_, _, found, err := s.Lookup("ext-1", "exploitable")
	require.NoError(t, err)
	assert.False(t, found, "a different check on the same subject is a separate record")
}

func TestLookupMalformedVerdict(t *testing.T) {
	s, path := newTestStore(t)
	require.NoError(t, os.WriteFile(path, []byte("ext-1,sanitizer,maybe,huh\n"), 0o644))

	_, _, _, err := s.Lookup("ext-1", "sanitizer")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "malformed annotation")
}

func TestCommentMayContainCommas(t *testing.T) {
	s, _ := newTestStore(t)
	require.NoError(t, s.Put("ext-1", "sanitizer", true, "checked replace, then parseInt"))

	_, comment, found, err := s.Lookup("ext-1", "sanitizer")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "checked replace, then parseInt", comment)
}
