//go:build !linux && !darwin

package machineid

import (
	"context"
	"fmt"
)

// platformID has no native source on this platform; the resolver falls
// through to the hardware-address fallback.
func platformID(_ context.Context) (string, error) {
	return "", fmt.Errorf("no native machine id source on this platform")
}
