// Package surl parses the command-line addressing inputs: the fsp:// locator
// naming a host and resource, and the name server's ip:port.
package surl

import (
	"errors"
	"fmt"
	"net/netip"
	"regexp"
	"strings"

	"github.com/danmuck/fileget/internal/fault"
	"github.com/danmuck/fileget/internal/protocol/whereis"
)

const Scheme = "fsp"

var (
	ErrScheme   = errors.New("surl: scheme must be fsp://")
	ErrHostname = errors.New("surl: invalid hostname")
	ErrPath     = errors.New("surl: missing resource path")
)

var hostPattern = regexp.MustCompile(`^[0-9A-Za-z_.-]+$`)

// Locator is a parsed fsp://<host>/<path>. Path keeps any inner slashes and
// may be the wildcard "*".
type Locator struct {
	Host string
	Path string
}

func (l Locator) String() string {
	return Scheme + "://" + l.Host + "/" + l.Path
}

func Parse(raw string) (Locator, error) {
	const op = "parse locator"
	raw = strings.TrimSpace(raw)
	scheme, rest, ok := strings.Cut(raw, "://")
	if !ok || !strings.EqualFold(scheme, Scheme) {
		return Locator{}, fault.E(fault.KindLocator, op, fmt.Errorf("%w: %q", ErrScheme, raw))
	}
	host, path, ok := strings.Cut(rest, "/")
	if !hostPattern.MatchString(host) {
		return Locator{}, fault.E(fault.KindLocator, op, fmt.Errorf("%w: %q", ErrHostname, host))
	}
	if !ok || path == "" {
		return Locator{}, fault.E(fault.KindLocator, op, fmt.Errorf("%w: %q", ErrPath, raw))
	}
	return Locator{Host: host, Path: path}, nil
}

// ParseNameServer parses the resolver endpoint as <ipv4>:<port>.
func ParseNameServer(raw string) (netip.AddrPort, error) {
	addr, err := whereis.ParseAddrPort(strings.TrimSpace(raw))
	if err != nil {
		return netip.AddrPort{}, fault.E(fault.KindAddress, "parse name server", err)
	}
	return addr, nil
}
