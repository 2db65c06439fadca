package download

import (
	"context"
	"errors"
	"fmt"
	"net/netip"
	"strings"
	"unicode/utf8"

	"github.com/danmuck/fileget/internal/fault"
	"github.com/danmuck/fileget/internal/protocol/fsp"
	"github.com/danmuck/fileget/internal/transfer"
	"github.com/rs/zerolog/log"
)

var ErrIndexEncoding = errors.New("download: index is not valid UTF-8")

type Resolver interface {
	Resolve(ctx context.Context, nameServer netip.AddrPort, hostname string) (netip.AddrPort, error)
}

type Fetcher interface {
	Fetch(ctx context.Context, fileServer netip.AddrPort, hostname, name string) ([]byte, error)
}

type Writer interface {
	WriteFile(path string, data []byte) error
}

// Outcome is the result of one file fetch. Err is nil on success.
type Outcome struct {
	Name  string
	Path  string
	Bytes int
	Err   error
}

// Report lists outcomes in fetch order. The index fetch is not included.
type Report struct {
	Outcomes []Outcome
}

func (r Report) Failed() []Outcome {
	var out []Outcome
	for _, o := range r.Outcomes {
		if o.Err != nil {
			out = append(out, o)
		}
	}
	return out
}

func (r Report) Written() int {
	return len(r.Outcomes) - len(r.Failed())
}

type Orchestrator struct {
	resolver Resolver
	fetcher  Fetcher
	writer   Writer
}

func New(r Resolver, f Fetcher, w Writer) *Orchestrator {
	return &Orchestrator{resolver: r, fetcher: f, writer: w}
}

// Run resolves the session's host and downloads its resource. The returned
// report is valid even when err is non-nil and covers what ran before it.
func (o *Orchestrator) Run(ctx context.Context, s *Session) (Report, error) {
	var report Report
	if err := o.resolve(ctx, s); err != nil {
		return report, err
	}
	if s.IsWildcard() {
		return o.runWildcard(ctx, s)
	}

	body, err := o.fetcher.Fetch(ctx, s.fileServer, s.Hostname, s.ResourcePath)
	if err != nil {
		report.Outcomes = append(report.Outcomes, Outcome{Name: s.ResourcePath, Path: s.LocalTarget, Err: err})
		return report, err
	}
	if err := o.writer.WriteFile(s.LocalTarget, body); err != nil {
		report.Outcomes = append(report.Outcomes, Outcome{Name: s.ResourcePath, Path: s.LocalTarget, Err: err})
		return report, err
	}
	report.Outcomes = append(report.Outcomes, Outcome{Name: s.ResourcePath, Path: s.LocalTarget, Bytes: len(body)})
	log.Info().Str("name", s.ResourcePath).Str("path", s.LocalTarget).Int("bytes", len(body)).Msg("downloaded")
	return report, nil
}

func (o *Orchestrator) resolve(ctx context.Context, s *Session) error {
	if s.fileServer.IsValid() {
		return nil
	}
	addr, err := o.resolver.Resolve(ctx, s.NameServer, s.Hostname)
	if err != nil {
		return err
	}
	s.fileServer = addr
	log.Debug().Str("hostname", s.Hostname).Str("file_server", addr.String()).Msg("resolved")
	return nil
}

func (o *Orchestrator) runWildcard(ctx context.Context, s *Session) (Report, error) {
	var report Report
	names, err := o.index(ctx, s)
	if err != nil {
		return report, err
	}
	log.Debug().Int("files", len(names)).Msg("index fetched")

	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return report, fault.E(fault.KindConnection, "download", err)
		}
		out := Outcome{Name: name}
		path, err := Destination(s.OutputDir, name)
		if err != nil {
			out.Err = fault.E(fault.KindFile, "download "+name, err)
			report.Outcomes = append(report.Outcomes, out)
			log.Warn().Str("name", name).Err(err).Msg("skipped")
			continue
		}
		out.Path = path

		body, err := o.fetcher.Fetch(ctx, s.fileServer, s.Hostname, name)
		if err != nil {
			out.Err = err
			report.Outcomes = append(report.Outcomes, out)
			var se *transfer.ServerError
			if errors.As(err, &se) {
				log.Warn().Str("name", name).Str("status", se.Status.String()).Msg(se.Message)
				continue
			}
			return report, err
		}
		if err := o.writer.WriteFile(path, body); err != nil {
			out.Err = err
			report.Outcomes = append(report.Outcomes, out)
			return report, err
		}
		out.Bytes = len(body)
		report.Outcomes = append(report.Outcomes, out)
		log.Info().Str("name", name).Str("path", path).Int("bytes", len(body)).Msg("downloaded")
	}
	return report, nil
}

// index fetches the listing and splits it on whitespace. A failure status
// here is a protocol violation: the index must always be served.
func (o *Orchestrator) index(ctx context.Context, s *Session) ([]string, error) {
	op := "fetch " + fsp.IndexName
	body, err := o.fetcher.Fetch(ctx, s.fileServer, s.Hostname, fsp.IndexName)
	if err != nil {
		var se *transfer.ServerError
		if errors.As(err, &se) {
			return nil, fault.E(fault.KindResponse, op, fmt.Errorf("index unavailable: %w", se))
		}
		return nil, err
	}
	if !utf8.Valid(body) {
		return nil, fault.E(fault.KindResponse, op, ErrIndexEncoding)
	}
	return strings.Fields(string(body)), nil
}
