// Package endpoint resolves the transport address of a project's daemon.
//
// There is no registry: the address is a pure function of the canonical
// project path, so any client and the daemon itself arrive at the same
// endpoint independently. The daemon listener and every client dialer must
// go through Resolve; a second derivation anywhere else breaks discovery
// silently.
package endpoint

import (
	"encoding/binary"
	"fmt"
	"net"
	"runtime"

	"cid/internal/paths"
)

// Network identifies the transport kind of an endpoint.
type Network string

const (
	// Unix is a local-domain socket endpoint.
	Unix Network = "unix"
	// TCP is a loopback TCP endpoint.
	TCP Network = "tcp"
)

const (
	portRangeBase = 49152
	portRangeSize = 10000
)

// Endpoint is the transport-specific address used to reach the daemon.
// Never persisted; always recomputed from the project path.
type Endpoint struct {
	Network Network
	Address string
}

// String returns the endpoint in network://address form.
func (e Endpoint) String() string {
	return string(e.Network) + "://" + e.Address
}

// Resolve derives the daemon endpoint for a project directory.
// Local sockets are used wherever the platform supports them; Windows
// falls back to a deterministic loopback TCP port.
func Resolve(projectDir string) (Endpoint, error) {
	return resolve(projectDir, runtime.GOOS == "windows")
}

func resolve(projectDir string, useTCP bool) (Endpoint, error) {
	if useTCP {
		port, err := Port(projectDir)
		if err != nil {
			return Endpoint{}, err
		}
		return Endpoint{
			Network: TCP,
			Address: net.JoinHostPort("127.0.0.1", fmt.Sprintf("%d", port)),
		}, nil
	}

	sock, err := paths.SocketPath(projectDir)
	if err != nil {
		return Endpoint{}, err
	}
	return Endpoint{Network: Unix, Address: sock}, nil
}

// Port derives the loopback TCP port for a project.
//
// Known limitation: 49152 + digest % 10000 can collide across distinct
// projects. Kept for compatibility with existing deployments; a client
// that connects to a colliding daemon gets answers about the wrong
// project rather than an error.
func Port(projectDir string) (int, error) {
	digest, err := paths.ProjectDigest(projectDir)
	if err != nil {
		return 0, err
	}
	n := binary.BigEndian.Uint64(digest[:8])
	return portRangeBase + int(n%portRangeSize), nil
}
