package portprobe

import (
	"fmt"
	"net"

	"github.com/jebin2/neko-launcher/internal/model"
)

// maxPort is the highest valid TCP/UDP port number.
const maxPort = 65535

// Prober checks port availability against the host's real network stack.
// It is stateless — defined as a struct rather than bare functions so it can
// be passed around as an injectable collaborator, keeping probing and
// allocation as separately testable concerns.
type Prober struct{}

// New creates a Prober. No configuration is needed today, but the
// constructor leaves room for a future bind-address override.
func New() *Prober {
	return &Prober{}
}

// TCPFree reports whether port is free for TCP right now. It binds :port
// (all interfaces) and closes immediately — Docker publishes ports on all
// interfaces, so the probe checks the same address space to avoid false
// positives. The listener is opened with Go's default socket options,
// which on unix include SO_REUSEADDR, so a port held only by TIME-WAIT
// sockets reports free.
func (p *Prober) TCPFree(port uint16) bool {
	l, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return false
	}
	_ = l.Close()
	return true
}

// UDPRangeFree reports whether every port in [start, start+size) binds for
// UDP. The runtime publishes a WebRTC range atomically, so a partially free
// interval is treated as unavailable — the first bind failure short-circuits
// the scan.
func (p *Prober) UDPRangeFree(start uint16, size int) bool {
	for i := 0; i < size; i++ {
		port := int(start) + i
		if port > maxPort {
			return false
		}
		conn, err := net.ListenPacket("udp", fmt.Sprintf(":%d", port))
		if err != nil {
			return false
		}
		_ = conn.Close()
	}
	return true
}

// FindFreeTCP scans upward from start for the first port that is neither in
// excluded nor already bound, returning a PortExhaustion model.CLIError if
// the scan passes 65535 without success.
func (p *Prober) FindFreeTCP(start uint16, excluded map[uint16]struct{}) (uint16, error) {
	for port := int(start); port <= maxPort; port++ {
		candidate := uint16(port)
		if _, skip := excluded[candidate]; skip {
			continue
		}
		if p.TCPFree(candidate) {
			return candidate, nil
		}
	}
	return 0, model.NewPortExhaustionError("", fmt.Sprintf("no free tcp port found starting at %d", start))
}

// FindFreeUDPRange scans upward in steps of size for the first interval
// [candidate, candidate+size) that neither overlaps any interval seeded by
// excludedStarts nor fails UDPRangeFree. Two intervals [a,a+size) and
// [b,b+size) overlap iff a < b+size && b < a+size.
func (p *Prober) FindFreeUDPRange(start uint16, excludedStarts []uint16, size int) (uint16, error) {
	for candidate := int(start); candidate+size-1 <= maxPort; candidate += size {
		c := uint16(candidate)
		if overlapsAny(c, excludedStarts, size) {
			continue
		}
		if p.UDPRangeFree(c, size) {
			return c, nil
		}
	}
	return 0, model.NewPortExhaustionError("", fmt.Sprintf("no free udp range of size %d found starting at %d", size, start))
}

// overlapsAny reports whether the interval [a, a+size) overlaps any interval
// [b, b+size) seeded by excludedStarts.
func overlapsAny(a uint16, excludedStarts []uint16, size int) bool {
	aStart, aEnd := int(a), int(a)+size
	for _, b := range excludedStarts {
		bStart, bEnd := int(b), int(b)+size
		if aStart < bEnd && bStart < aEnd {
			return true
		}
	}
	return false
}
