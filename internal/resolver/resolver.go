// Package resolver turns a logical hostname into a file-server address with
// one WHEREIS datagram exchange.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/netip"

	"github.com/danmuck/fileget/internal/fault"
	"github.com/danmuck/fileget/internal/observability"
	"github.com/danmuck/fileget/internal/protocol"
	"github.com/danmuck/fileget/internal/protocol/session"
	"github.com/danmuck/fileget/internal/protocol/whereis"
	"github.com/rs/zerolog/log"
)

var (
	ErrTimeout           = errors.New("resolver: no reply from name server")
	ErrMalformedResponse = protocol.ErrMalformedReply
	ErrAddressFormat     = protocol.ErrAddressFormat
	ErrNotFound          = protocol.ErrHostNotFound
)

type Resolver struct {
	cfg session.Config
}

func New(cfg session.Config) *Resolver {
	return &Resolver{cfg: cfg.WithDefaults()}
}

// Resolve sends one query to nameServer and waits for one reply. Only a
// reply whose source equals nameServer is accepted.
func (r *Resolver) Resolve(ctx context.Context, nameServer netip.AddrPort, hostname string) (netip.AddrPort, error) {
	const op = "resolve"

	query, err := whereis.Query(hostname)
	if err != nil {
		return netip.AddrPort{}, fault.E(fault.KindLocator, op, err)
	}

	network := "udp4"
	if !nameServer.Addr().Unmap().Is4() {
		network = "udp6"
	}
	conn, err := net.ListenUDP(network, nil)
	if err != nil {
		observability.RecordResolve(observability.ResultError)
		return netip.AddrPort{}, fault.E(fault.KindConnection, op, err)
	}
	defer conn.Close()

	stop, err := session.Bind(ctx, conn, r.cfg.Timeout)
	if err != nil {
		return netip.AddrPort{}, fault.E(fault.KindConnection, op, err)
	}
	defer stop()

	log.Debug().Str("name_server", nameServer.String()).Str("hostname", hostname).Msg("whereis query")
	if _, err := conn.WriteToUDPAddrPort(query, nameServer); err != nil {
		observability.RecordResolve(observability.ResultError)
		return netip.AddrPort{}, fault.E(fault.KindConnection, op, err)
	}

	buf := make([]byte, whereis.MaxReplyBytes)
	n, from, err := conn.ReadFromUDPAddrPort(buf)
	if err != nil {
		if session.IsTimeout(err) {
			observability.RecordResolve(observability.ResultTimeout)
			return netip.AddrPort{}, fault.E(fault.KindConnection, op,
				fmt.Errorf("%w: %s after %v: %w", ErrTimeout, nameServer, r.cfg.Timeout, err))
		}
		observability.RecordResolve(observability.ResultError)
		return netip.AddrPort{}, fault.E(fault.KindConnection, op, err)
	}

	if !sameEndpoint(from, nameServer) {
		observability.RecordResolve(observability.ResultMalformed)
		return netip.AddrPort{}, fault.E(fault.KindResponse, op,
			fmt.Errorf("%w: reply from %s, expected %s", ErrMalformedResponse, from, nameServer))
	}

	addr, err := whereis.ParseReply(buf[:n])
	if err != nil {
		kind, result := classifyReply(err)
		observability.RecordResolve(result)
		return netip.AddrPort{}, fault.E(kind, op, fmt.Errorf("hostname %q: %w", hostname, err))
	}

	observability.RecordResolve(observability.ResultOK)
	log.Debug().Str("hostname", hostname).Str("file_server", addr.String()).Msg("whereis resolved")
	return addr, nil
}

func classifyReply(err error) (fault.Kind, string) {
	switch {
	case errors.Is(err, ErrNotFound):
		return fault.KindServer, observability.ResultNotFound
	case errors.Is(err, ErrAddressFormat):
		return fault.KindAddress, observability.ResultBadAddress
	default:
		return fault.KindResponse, observability.ResultMalformed
	}
}

func sameEndpoint(a, b netip.AddrPort) bool {
	return a.Addr().Unmap() == b.Addr().Unmap() && a.Port() == b.Port()
}
