package state

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jebin2/neko-launcher/internal/model"
)

// Reading a Store whose file has never been written yields a fresh
// Document at the default cursors, never an error.
func TestReadMissingFileReturnsDefaultDocument(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "state.json"))
	doc := s.Read()

	assert.Equal(t, DefaultServerPort, doc.NextServerPort)
	assert.Equal(t, DefaultDebugPort, doc.NextDebugPort)
	assert.Equal(t, DefaultWebRTCPort, doc.NextWebRTCPort)
	assert.Empty(t, doc.Allocations)
}

// Malformed JSON on disk yields a fresh default Document rather than an
// error, matching StateStore.read's "never raise" contract.
func TestReadMalformedFileReturnsDefaultDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte("{not valid json"), 0o644))

	s := New(path)
	doc := s.Read()

	assert.Equal(t, DefaultServerPort, doc.NextServerPort)
	assert.Empty(t, doc.Allocations)
}

// A Document written then re-read round-trips its cursors and allocations
// exactly.
func TestWriteThenReadRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	s := New(path)

	doc := defaultDocument()
	doc.NextServerPort = 8090
	doc.NextDebugPort = 9300
	doc.NextWebRTCPort = 53000
	doc.Allocations["neko-1"] = model.Allocation{ServerPort: 8081, DebugPort: 9224, WebRTCStart: 52000}

	require.NoError(t, s.Write(doc))

	reread := s.Read()
	assert.Equal(t, uint16(8090), reread.NextServerPort)
	assert.Equal(t, uint16(9300), reread.NextDebugPort)
	assert.Equal(t, uint16(53000), reread.NextWebRTCPort)
	require.Contains(t, reread.Allocations, "neko-1")
	assert.Equal(t, model.Allocation{ServerPort: 8081, DebugPort: 9224, WebRTCStart: 52000}, reread.Allocations["neko-1"])
}

// An unknown top-level key from a newer tool version survives a
// read-then-write cycle unchanged, rather than being silently dropped.
func TestUnknownTopLevelKeySurvivesRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"next_server_port": 8081,
		"next_debug_port": 9224,
		"next_webrtc_port": 52000,
		"allocations": {},
		"schema_version": 2
	}`), 0o644))

	s := New(path)
	doc := s.Read()
	require.Contains(t, doc.Extra, "schema_version")
	assert.JSONEq(t, "2", string(doc.Extra["schema_version"]))

	require.NoError(t, s.Write(doc))

	reread := s.Read()
	require.Contains(t, reread.Extra, "schema_version")
	assert.JSONEq(t, "2", string(reread.Extra["schema_version"]))
}

// IsEmpty reports true only when the allocation map has no entries.
func TestIsEmpty(t *testing.T) {
	doc := defaultDocument()
	assert.True(t, doc.IsEmpty())

	doc.Allocations["neko-1"] = model.Allocation{}
	assert.False(t, doc.IsEmpty())
}

// ResetCursors restores all three cursors to their defaults regardless of
// their current value.
func TestResetCursors(t *testing.T) {
	doc := defaultDocument()
	doc.NextServerPort = 9999
	doc.NextDebugPort = 9999
	doc.NextWebRTCPort = 9999

	doc.ResetCursors()

	assert.Equal(t, DefaultServerPort, doc.NextServerPort)
	assert.Equal(t, DefaultDebugPort, doc.NextDebugPort)
	assert.Equal(t, DefaultWebRTCPort, doc.NextWebRTCPort)
}
