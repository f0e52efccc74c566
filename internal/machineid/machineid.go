// Package machineid derives a stable, host-specific identifier used as
// key-derivation input for the encrypted credential file.
//
// The identifier is resolved once per process and cached; it is never
// persisted and never leaves the machine. Resolution is platform-specific
// (see the build-tagged platformID implementations) with a portable
// fallback based on hostname and the hardware address of the first up,
// non-loopback network interface.
package machineid

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"net"
	"os"
	"sort"
	"sync"
	"time"
)

// platformIDTimeout bounds platform resolution that shells out to an
// external tool (ioreg on macOS). The child is killed on expiry.
const platformIDTimeout = 10 * time.Second

// Resolver memoizes the machine identity behind a lock. Resolution can be
// expensive (file reads, subprocess on macOS), so it runs at most once.
type Resolver struct {
	mu sync.RWMutex
	id string
}

// ID returns the machine identity, resolving it on first call. It never
// fails: every resolution strategy has a further fallback, ending with a
// hash of the hostname alone.
func (r *Resolver) ID(ctx context.Context) string {
	r.mu.RLock()
	id := r.id
	r.mu.RUnlock()
	if id != "" {
		return id
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	// Another caller may have resolved while we waited for the lock.
	if r.id != "" {
		return r.id
	}
	r.id = resolve(ctx)
	return r.id
}

var defaultResolver Resolver

// ID resolves the machine identity through the process-wide resolver.
func ID(ctx context.Context) string {
	return defaultResolver.ID(ctx)
}

func resolve(ctx context.Context) string {
	ctx, cancel := context.WithTimeout(ctx, platformIDTimeout)
	defer cancel()

	if id, err := platformID(ctx); err == nil && id != "" {
		return id
	} else if err != nil {
		slog.Debug("platform machine id unavailable", "error", err)
	}

	if id := hardwareID(); id != "" {
		return id
	}

	return hashOf(hostname())
}

// hardwareID hashes the hostname together with the hardware address of the
// first up, non-loopback interface. Interfaces are sorted by name so the
// result is reproducible across runs regardless of enumeration order.
func hardwareID() string {
	ifaces, err := net.Interfaces()
	if err != nil {
		return ""
	}
	sort.Slice(ifaces, func(i, j int) bool { return ifaces[i].Name < ifaces[j].Name })

	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		if len(iface.HardwareAddr) == 0 {
			continue
		}
		return hashOf(hostname() + iface.HardwareAddr.String())
	}
	return ""
}

func hostname() string {
	name, err := os.Hostname()
	if err != nil || name == "" {
		return "localhost"
	}
	return name
}

func hashOf(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
