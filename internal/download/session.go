package download

import (
	"errors"
	"fmt"
	"net/netip"
	"path/filepath"
	"strings"

	"github.com/danmuck/fileget/internal/fault"
	"github.com/danmuck/fileget/internal/protocol/fsp"
)

// Wildcard requests every file listed by the server's index.
const Wildcard = "*"

var (
	ErrHostnameRequired   = errors.New("download: hostname required")
	ErrResourceRequired   = errors.New("download: resource path required")
	ErrNameServerRequired = errors.New("download: name server address required")
	ErrUnsafeName         = errors.New("download: name escapes the output directory")
)

// Session is the unit of work for one invocation. The file-server address
// is set once, by the first successful resolution.
type Session struct {
	NameServer   netip.AddrPort
	Hostname     string
	ResourcePath string
	// LocalTarget is where a single-resource fetch is written.
	LocalTarget string
	// OutputDir roots wildcard entries: each lands at OutputDir/<name>.
	OutputDir string

	fileServer netip.AddrPort
}

// NewSession builds a session writing under outputDir. A single-resource
// fetch lands at outputDir/resourcePath.
func NewSession(nameServer netip.AddrPort, hostname, resourcePath, outputDir string) (*Session, error) {
	s := &Session{
		NameServer:   nameServer,
		Hostname:     strings.TrimSpace(hostname),
		ResourcePath: resourcePath,
		OutputDir:    outputDir,
	}
	if s.OutputDir == "" {
		s.OutputDir = "."
	}
	if err := s.validate(); err != nil {
		return nil, fault.E(fault.KindArgument, "new session", err)
	}
	if !s.IsWildcard() {
		if err := fsp.ValidateName(s.ResourcePath); err != nil {
			return nil, fault.E(fault.KindLocator, "new session", err)
		}
		target, err := Destination(s.OutputDir, s.ResourcePath)
		if err != nil {
			return nil, fault.E(fault.KindLocator, "new session", err)
		}
		s.LocalTarget = target
	}
	return s, nil
}

// Destination places a server-side name under root. Names that are absolute
// or climb out of root are rejected.
func Destination(root, name string) (string, error) {
	local := filepath.FromSlash(name)
	if !filepath.IsLocal(local) {
		return "", fmt.Errorf("%w: %q", ErrUnsafeName, name)
	}
	return filepath.Join(root, local), nil
}

func (s *Session) validate() error {
	if !s.NameServer.IsValid() {
		return ErrNameServerRequired
	}
	if s.Hostname == "" {
		return ErrHostnameRequired
	}
	if s.ResourcePath == "" {
		return ErrResourceRequired
	}
	return nil
}

func (s *Session) IsWildcard() bool {
	return s.ResourcePath == Wildcard
}

// FileServer returns the resolved address and whether resolution happened.
func (s *Session) FileServer() (netip.AddrPort, bool) {
	return s.fileServer, s.fileServer.IsValid()
}
