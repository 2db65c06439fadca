package protocol

import "errors"

var (
	ErrUnknownStatus   = errors.New("protocol: unknown status line")
	ErrInvalidLength   = errors.New("protocol: invalid Length header")
	ErrSeparator       = errors.New("protocol: non-empty header separator")
	ErrLineTooLong     = errors.New("protocol: header line too long")
	ErrPayloadTooLarge = errors.New("protocol: payload too large")
	ErrTruncated       = errors.New("protocol: connection closed before full body")
	ErrShortHeader     = errors.New("protocol: connection closed inside header")
	ErrMalformedReply  = errors.New("protocol: malformed name-server reply")
	ErrAddressFormat   = errors.New("protocol: invalid address or port")
	ErrHostNotFound    = errors.New("protocol: hostname not found")
	ErrInvalidField    = errors.New("protocol: field contains forbidden characters")
)
