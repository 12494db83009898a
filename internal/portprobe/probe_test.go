package portprobe

import (
	"fmt"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// A port with no listener on it must report free.
func TestTCPFreeOnUnusedPort(t *testing.T) {
	p := New()

	port, err := p.FindFreeTCP(50000, nil)
	require.NoError(t, err, "expected a free tcp port in the 50000+ range")

	assert.True(t, p.TCPFree(port))
}

// A port with an active listener must report not free.
func TestTCPFreeOnBoundPort(t *testing.T) {
	listener, err := net.Listen("tcp", ":0")
	require.NoError(t, err)
	defer func() { _ = listener.Close() }()

	port := uint16(listener.Addr().(*net.TCPAddr).Port)

	p := New()
	assert.False(t, p.TCPFree(port))
}

// UDPRangeFree must return true only when every port in the interval binds.
func TestUDPRangeFreeAllFree(t *testing.T) {
	p := New()
	start, err := p.FindFreeUDPRange(52000, nil, 10)
	require.NoError(t, err)

	assert.True(t, p.UDPRangeFree(start, 10))
}

// A single occupied port inside the candidate interval must fail the whole
// range, even though the rest of the interval is free — the runtime
// publishes the range atomically so partial availability is unacceptable.
func TestUDPRangeFreePartiallyOccupied(t *testing.T) {
	p := New()
	start, err := p.FindFreeUDPRange(53000, nil, 10)
	require.NoError(t, err)

	conn, err := net.ListenPacket("udp", fmt.Sprintf(":%d", start+5))
	require.NoError(t, err)
	defer func() { _ = conn.Close() }()

	assert.False(t, p.UDPRangeFree(start, 10))
}

// FindFreeTCP must skip every port named in excluded even when it is
// otherwise free.
func TestFindFreeTCPSkipsExcluded(t *testing.T) {
	p := New()

	first, err := p.FindFreeTCP(54000, nil)
	require.NoError(t, err)

	excluded := map[uint16]struct{}{first: {}}
	second, err := p.FindFreeTCP(first, excluded)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.Greater(t, second, first)
}

// FindFreeTCP must fail with a port-exhaustion error once the scan passes
// 65535 — simulated here by starting the scan at 65535 with that last port
// excluded.
func TestFindFreeTCPExhaustion(t *testing.T) {
	p := New()
	_, err := p.FindFreeTCP(65535, map[uint16]struct{}{65535: {}})
	assert.Error(t, err)
}

// A search that starts at an excluded interval's own start overlaps it, so
// FindFreeUDPRange must skip past the excluded interval entirely rather
// than returning a start inside it.
func TestFindFreeUDPRangeSkipsOverlappingExcluded(t *testing.T) {
	p := New()

	base, err := p.FindFreeUDPRange(56000, nil, 101)
	require.NoError(t, err)

	excluded := []uint16{base}
	next, err := p.FindFreeUDPRange(base, excluded, 101)
	require.NoError(t, err)

	assert.False(t, overlapsAny(next, excluded, 101), "returned range must not overlap the excluded interval")
}
