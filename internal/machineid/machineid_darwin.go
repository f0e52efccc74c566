//go:build darwin

package machineid

import (
	"context"
	"fmt"
	"os/exec"
	"regexp"
)

var platformUUIDRe = regexp.MustCompile(`"IOPlatformUUID"\s*=\s*"([^"]+)"`)

// platformID queries the IORegistry for the hardware platform UUID. The
// context carries the resolver's timeout; CommandContext kills ioreg if it
// does not return in time.
func platformID(ctx context.Context) (string, error) {
	out, err := exec.CommandContext(ctx, "ioreg", "-rd1", "-c", "IOPlatformExpertDevice").Output()
	if err != nil {
		return "", fmt.Errorf("ioreg: %w", err)
	}
	m := platformUUIDRe.FindSubmatch(out)
	if m == nil {
		return "", fmt.Errorf("ioreg output missing IOPlatformUUID")
	}
	return string(m[1]), nil
}
