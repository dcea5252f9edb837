package state

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDB(t *testing.T) *State {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := LoadAt(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

const testTarget = "/srv/blog/public"

// --- LoadAt / Close ---

func TestLoadAt_CreatesDB(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "sub", "state.db")
	s, err := LoadAt(dbPath)
	require.NoError(t, err)
	require.NoError(t, s.Close())
}

func TestLoad_UsesStateFileInDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), ".folio")
	s, err := Load(dir)
	require.NoError(t, err)
	require.NoError(t, s.Close())
	assert.FileExists(t, filepath.Join(dir, "state.db"))
}

func TestLoadAt_ReopensExistingDB(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "state.db")

	s1, err := LoadAt(dbPath)
	require.NoError(t, err)
	require.NoError(t, s1.InitTarget(testTarget))
	require.NoError(t, s1.SetPage(testTarget, PageRecord{Path: "index.html", Hash: "abc"}))
	require.NoError(t, s1.Close())

	s2, err := LoadAt(dbPath)
	require.NoError(t, err)
	defer s2.Close()

	rec, err := s2.GetPage(testTarget, "index.html")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "abc", rec.Hash)
}

// --- Pages ---

func TestGetPage_NotFound(t *testing.T) {
	s := testDB(t)
	rec, err := s.GetPage(testTarget, "missing.html")
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestSetPage_RequiresInit(t *testing.T) {
	s := testDB(t)
	err := s.SetPage(testTarget, PageRecord{Path: "index.html"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not initialized")
}

func TestSetPage_RoundTrip(t *testing.T) {
	s := testDB(t)
	require.NoError(t, s.InitTarget(testTarget))

	want := PageRecord{Path: "post/hello.html", Hash: "deadbeef", Size: 2048, ExportedAt: 1704412800}
	require.NoError(t, s.SetPage(testTarget, want))

	got, err := s.GetPage(testTarget, "post/hello.html")
	require.NoError(t, err)
	assert.Equal(t, &want, got)
}

func TestSetPage_Overwrite(t *testing.T) {
	s := testDB(t)
	require.NoError(t, s.InitTarget(testTarget))
	require.NoError(t, s.SetPage(testTarget, PageRecord{Path: "a.html", Hash: "old"}))
	require.NoError(t, s.SetPage(testTarget, PageRecord{Path: "a.html", Hash: "new"}))

	got, err := s.GetPage(testTarget, "a.html")
	require.NoError(t, err)
	assert.Equal(t, "new", got.Hash)
}

func TestDeletePage(t *testing.T) {
	s := testDB(t)
	require.NoError(t, s.InitTarget(testTarget))
	require.NoError(t, s.SetPage(testTarget, PageRecord{Path: "a.html"}))
	require.NoError(t, s.DeletePage(testTarget, "a.html"))

	got, err := s.GetPage(testTarget, "a.html")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestDeletePage_UninitializedTarget(t *testing.T) {
	s := testDB(t)
	assert.NoError(t, s.DeletePage("other", "a.html"))
}

func TestAllPages(t *testing.T) {
	s := testDB(t)
	require.NoError(t, s.InitTarget(testTarget))
	require.NoError(t, s.SetPage(testTarget, PageRecord{Path: "a.html", Hash: "1"}))
	require.NoError(t, s.SetPage(testTarget, PageRecord{Path: "b.html", Hash: "2"}))

	all, err := s.AllPages(testTarget)
	require.NoError(t, err)
	assert.Len(t, all, 2)
	assert.Equal(t, "2", all["b.html"].Hash)
}

func TestAllPages_TargetsIsolated(t *testing.T) {
	s := testDB(t)
	require.NoError(t, s.InitTarget("one"))
	require.NoError(t, s.InitTarget("two"))
	require.NoError(t, s.SetPage("one", PageRecord{Path: "a.html"}))

	all, err := s.AllPages("two")
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestAllPages_Empty(t *testing.T) {
	s := testDB(t)
	all, err := s.AllPages("nothing")
	require.NoError(t, err)
	assert.Empty(t, all)
}

// --- Last run ---

func TestLastRun_NoneByDefault(t *testing.T) {
	s := testDB(t)
	run, err := s.LastRun(testTarget)
	require.NoError(t, err)
	assert.Nil(t, run)
}

func TestSetLastRun_RoundTrip(t *testing.T) {
	s := testDB(t)
	want := ExportRun{Time: 1704412800, Origin: "https://blog.example.com", Written: 3, Unchanged: 4, Removed: 1}
	require.NoError(t, s.SetLastRun(testTarget, want))

	got, err := s.LastRun(testTarget)
	require.NoError(t, err)
	assert.Equal(t, &want, got)
}
