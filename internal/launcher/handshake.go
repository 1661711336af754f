package launcher

import (
	"fmt"
	"net"
	"strings"

	"github.com/angariumd/rsm/internal/models"
)

// ParseHandshake extracts the address from the job's output, which must be
// the single line "RSTUDIO-<host:port>". The address is whatever follows the
// last '-'.
func ParseHandshake(output string) (string, error) {
	line := strings.TrimSpace(output)
	if !strings.HasPrefix(line, models.HandshakePrefix) || strings.ContainsAny(line, "\r\n") {
		return "", fmt.Errorf("%w, job output:\n%s", models.ErrStartupFailed, line)
	}
	addr := line[strings.LastIndexByte(line, '-')+1:]
	if host, port, err := net.SplitHostPort(addr); err != nil || host == "" || port == "" {
		return "", fmt.Errorf("%w, job reported an unusable address %q:\n%s", models.ErrStartupFailed, addr, line)
	}
	return addr, nil
}
