// Package whereis encodes name-server queries and parses their replies.
//
//	query: WHEREIS <hostname>
//	reply: OK <ip>:<port> | ERR [reason]
package whereis

import (
	"fmt"
	"net/netip"
	"strconv"
	"strings"

	"github.com/danmuck/fileget/internal/protocol"
)

const (
	Command       = "WHEREIS"
	ReplyOK       = "OK"
	ReplyErr      = "ERR"
	MaxReplyBytes = 1024
)

// Query returns the datagram asking the name server for hostname.
func Query(hostname string) ([]byte, error) {
	if hostname == "" || strings.ContainsAny(hostname, " \t\r\n") {
		return nil, fmt.Errorf("%w: hostname %q", protocol.ErrInvalidField, hostname)
	}
	return []byte(Command + " " + hostname), nil
}

// ParseReply returns the file-server address carried by an OK reply.
// An ERR reply yields protocol.ErrHostNotFound.
func ParseReply(b []byte) (netip.AddrPort, error) {
	msg := strings.TrimSpace(string(b))
	status, rest, _ := strings.Cut(msg, " ")
	switch status {
	case ReplyOK:
		addr, err := ParseAddrPort(rest)
		if err != nil {
			return netip.AddrPort{}, err
		}
		return addr, nil
	case ReplyErr:
		if rest != "" {
			return netip.AddrPort{}, fmt.Errorf("%w: %s", protocol.ErrHostNotFound, rest)
		}
		return netip.AddrPort{}, protocol.ErrHostNotFound
	default:
		return netip.AddrPort{}, fmt.Errorf("%w: %q", protocol.ErrMalformedReply, msg)
	}
}

// ParseAddrPort parses "<ipv4>:<port>".
func ParseAddrPort(raw string) (netip.AddrPort, error) {
	host, port, ok := strings.Cut(strings.TrimSpace(raw), ":")
	if !ok {
		return netip.AddrPort{}, fmt.Errorf("%w: %q", protocol.ErrAddressFormat, raw)
	}
	ip, err := netip.ParseAddr(host)
	if err != nil || !ip.Is4() {
		return netip.AddrPort{}, fmt.Errorf("%w: ip %q", protocol.ErrAddressFormat, host)
	}
	p, err := strconv.ParseUint(strings.TrimSpace(port), 10, 16)
	if err != nil {
		return netip.AddrPort{}, fmt.Errorf("%w: port %q", protocol.ErrAddressFormat, port)
	}
	return netip.AddrPortFrom(ip, uint16(p)), nil
}
