// Package fsp implements the FSP/1.0 file-transfer framing.
//
// Request:
//
//	GET <name> FSP/1.0\r\n
//	Hostname: <hostname>\r\n
//	Agent: <agent>\r\n
//	\r\n
//
// Response:
//
//	FSP/1.0 <status>\r\n
//	Length: <n>\r\n
//	\r\n
//	<n body bytes>
package fsp

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/danmuck/fileget/internal/protocol"
)

const (
	Version      = "FSP/1.0"
	Method       = "GET"
	LengthPrefix = "Length:"
	// IndexName is the reserved resource listing every file for wildcard requests.
	IndexName = "index"
)

var crlf = []byte("\r\n")

type Status uint8

const (
	StatusSuccess Status = iota + 1
	StatusBadRequest
	StatusNotFound
	StatusServerError
)

var statusText = map[Status]string{
	StatusSuccess:     "Success",
	StatusBadRequest:  "Bad Request",
	StatusNotFound:    "Not Found",
	StatusServerError: "Server Error",
}

func (s Status) String() string {
	if text, ok := statusText[s]; ok {
		return text
	}
	return fmt.Sprintf("status(%d)", uint8(s))
}

// OK reports whether s carries file content rather than an error message.
func (s Status) OK() bool {
	return s == StatusSuccess
}

// ParseStatusLine accepts exactly "FSP/1.0 <status>" for the four known statuses.
func ParseStatusLine(line string) (Status, error) {
	text, ok := strings.CutPrefix(line, Version+" ")
	if ok {
		for status, name := range statusText {
			if text == name {
				return status, nil
			}
		}
	}
	return 0, fmt.Errorf("%w: %q", protocol.ErrUnknownStatus, line)
}

// Limits constrains response decode memory use.
type Limits struct {
	MaxLineBytes int
	MaxBodyBytes int64
}

func DefaultLimits() Limits {
	return Limits{
		MaxLineBytes: 1024,
		MaxBodyBytes: 1 << 30,
	}
}

// Request is one GET exchange.
type Request struct {
	Name     string
	Hostname string
	Agent    string
}

// Header is the decoded response preamble.
type Header struct {
	Status Status
	Length int64
}

// ValidateName reports whether name fits in a request line.
func ValidateName(name string) error {
	if name == "" || strings.ContainsAny(name, " \r\n") {
		return fmt.Errorf("%w: name %q", protocol.ErrInvalidField, name)
	}
	return nil
}

func WriteRequest(w io.Writer, req Request) error {
	if err := ValidateName(req.Name); err != nil {
		return err
	}
	if strings.ContainsAny(req.Hostname, "\r\n") || strings.ContainsAny(req.Agent, "\r\n") {
		return fmt.Errorf("%w: header value", protocol.ErrInvalidField)
	}
	var buf bytes.Buffer
	buf.WriteString(Method + " " + req.Name + " " + Version + "\r\n")
	buf.WriteString("Hostname: " + req.Hostname + "\r\n")
	buf.WriteString("Agent: " + req.Agent + "\r\n")
	buf.WriteString("\r\n")
	_, err := w.Write(buf.Bytes())
	return err
}

// ReadRequest decodes a request written by WriteRequest.
func ReadRequest(br *bufio.Reader, limits Limits) (Request, error) {
	line, err := readLine(br, limits.MaxLineBytes)
	if err != nil {
		return Request{}, err
	}
	parts := strings.Split(string(line), " ")
	if len(parts) != 3 || parts[0] != Method || parts[2] != Version {
		return Request{}, fmt.Errorf("%w: request line %q", protocol.ErrInvalidField, line)
	}
	req := Request{Name: parts[1]}
	for {
		line, err := readLine(br, limits.MaxLineBytes)
		if err != nil {
			return Request{}, err
		}
		if len(line) == 0 {
			return req, nil
		}
		key, value, _ := strings.Cut(string(line), ":")
		switch key {
		case "Hostname":
			req.Hostname = strings.TrimSpace(value)
		case "Agent":
			req.Agent = strings.TrimSpace(value)
		}
	}
}

// ReadHeader reads the status line, the Length line, and the empty
// separator. Body bytes already buffered stay in br.
func ReadHeader(br *bufio.Reader, limits Limits) (Header, error) {
	line, err := readLine(br, limits.MaxLineBytes)
	if err != nil {
		return Header{}, err
	}
	status, err := ParseStatusLine(string(line))
	if err != nil {
		return Header{}, err
	}

	line, err = readLine(br, limits.MaxLineBytes)
	if err != nil {
		return Header{}, err
	}
	length, err := ParseLength(string(line))
	if err != nil {
		return Header{}, err
	}
	if limits.MaxBodyBytes > 0 && length > limits.MaxBodyBytes {
		return Header{}, fmt.Errorf("%w: %d > %d", protocol.ErrPayloadTooLarge, length, limits.MaxBodyBytes)
	}

	line, err = readLine(br, limits.MaxLineBytes)
	if err != nil {
		return Header{}, err
	}
	if len(line) != 0 {
		return Header{}, fmt.Errorf("%w: %q", protocol.ErrSeparator, line)
	}
	return Header{Status: status, Length: length}, nil
}

// ParseLength parses "Length: <n>" into a non-negative byte count.
func ParseLength(line string) (int64, error) {
	rest, ok := strings.CutPrefix(line, LengthPrefix)
	if !ok {
		return 0, fmt.Errorf("%w: %q", protocol.ErrInvalidLength, line)
	}
	n, err := strconv.ParseUint(strings.TrimSpace(rest), 10, 63)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", protocol.ErrInvalidLength, line)
	}
	return int64(n), nil
}

// ReadBody fills exactly n bytes from r. Reads never exceed the remaining
// capacity, so bytes past the declared length are left unread.
func ReadBody(r io.Reader, n int64) ([]byte, error) {
	body := make([]byte, n)
	got, err := io.ReadFull(r, body)
	if err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: got %d of %d bytes", protocol.ErrTruncated, got, n)
		}
		return nil, err
	}
	return body, nil
}

// WriteResponse frames body under status.
func WriteResponse(w io.Writer, status Status, body []byte) error {
	if _, ok := statusText[status]; !ok {
		return fmt.Errorf("%w: %s", protocol.ErrUnknownStatus, status)
	}
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%s %s\r\n%s %d\r\n\r\n", Version, status, LengthPrefix, len(body))
	buf.Write(body)
	_, err := w.Write(buf.Bytes())
	return err
}

// readLine returns one line without its CRLF. A bare LF does not end a line.
func readLine(br *bufio.Reader, max int) ([]byte, error) {
	var line []byte
	for {
		chunk, err := br.ReadSlice('\n')
		line = append(line, chunk...)
		if max > 0 && len(line) > max {
			return nil, fmt.Errorf("%w: over %d bytes", protocol.ErrLineTooLong, max)
		}
		switch {
		case err == nil:
			if bytes.HasSuffix(line, crlf) {
				return line[:len(line)-len(crlf)], nil
			}
		case errors.Is(err, bufio.ErrBufferFull):
		case errors.Is(err, io.EOF):
			return nil, protocol.ErrShortHeader
		default:
			return nil, err
		}
	}
}
