// Package transfer fetches one named resource from a file server over a
// single FSP/1.0 exchange.
package transfer

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"net/netip"
	"time"

	"github.com/danmuck/fileget/internal/fault"
	"github.com/danmuck/fileget/internal/observability"
	"github.com/danmuck/fileget/internal/protocol"
	"github.com/danmuck/fileget/internal/protocol/fsp"
	"github.com/danmuck/fileget/internal/protocol/session"
	"github.com/rs/zerolog/log"
)

// ServerError is a well-formed failure status; Message is the server's body.
type ServerError struct {
	Name    string
	Status  fsp.Status
	Message string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Name, e.Status, e.Message)
}

type Client struct {
	cfg session.Config
}

func NewClient(cfg session.Config) *Client {
	return &Client{cfg: cfg.WithDefaults()}
}

// Fetch requests name from fileServer and returns exactly the declared body.
// A failure status yields a *ServerError classified as fault.KindServer.
func (c *Client) Fetch(ctx context.Context, fileServer netip.AddrPort, hostname, name string) ([]byte, error) {
	op := "fetch " + name
	start := time.Now()

	if err := fsp.ValidateName(name); err != nil {
		return nil, classify(op, err)
	}

	req := fsp.Request{Name: name, Hostname: hostname, Agent: c.cfg.Agent}
	deadline := session.Deadline(ctx, c.cfg.Timeout)
	dialer := net.Dialer{}
	dialCtx, cancel := context.WithDeadline(ctx, deadline)
	defer cancel()
	conn, err := dialer.DialContext(dialCtx, "tcp", fileServer.String())
	if err != nil {
		observability.RecordFetch(observability.ResultError, 0, time.Since(start))
		return nil, fault.E(fault.KindConnection, op, err)
	}
	defer conn.Close()

	stop, err := session.BindDeadline(ctx, conn, deadline)
	if err != nil {
		return nil, fault.E(fault.KindConnection, op, err)
	}
	defer stop()

	log.Debug().Str("file_server", fileServer.String()).Str("name", name).Msg("fsp request")
	if err := fsp.WriteRequest(conn, req); err != nil {
		observability.RecordFetch(observability.ResultError, 0, time.Since(start))
		return nil, classify(op, err)
	}

	br := bufio.NewReader(conn)
	h, err := fsp.ReadHeader(br, c.cfg.Limits)
	if err != nil {
		observability.RecordFetch(observability.ResultMalformed, 0, time.Since(start))
		return nil, classify(op, err)
	}
	body, err := fsp.ReadBody(br, h.Length)
	if err != nil {
		observability.RecordFetch(observability.ResultError, 0, time.Since(start))
		return nil, classify(op, err)
	}

	observability.RecordFetch(h.Status.String(), len(body), time.Since(start))
	log.Debug().Str("name", name).Str("status", h.Status.String()).Int64("length", h.Length).Msg("fsp response")

	if !h.Status.OK() {
		return nil, fault.E(fault.KindServer, op, &ServerError{Name: name, Status: h.Status, Message: string(body)})
	}
	return body, nil
}

// classify maps exchange errors to kinds: wire grammar violations are
// response errors, everything on the socket is a connection error.
func classify(op string, err error) error {
	switch {
	case errors.Is(err, protocol.ErrTruncated), errors.Is(err, protocol.ErrShortHeader):
		return fault.E(fault.KindConnection, op, err)
	case errors.Is(err, protocol.ErrInvalidField):
		return fault.E(fault.KindLocator, op, err)
	case errors.Is(err, protocol.ErrUnknownStatus),
		errors.Is(err, protocol.ErrInvalidLength),
		errors.Is(err, protocol.ErrSeparator),
		errors.Is(err, protocol.ErrLineTooLong),
		errors.Is(err, protocol.ErrPayloadTooLarge):
		return fault.E(fault.KindResponse, op, err)
	default:
		return fault.E(fault.KindConnection, op, err)
	}
}
