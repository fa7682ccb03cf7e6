package snapindex

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
)

// ErrorType classifies snapshot-index errors for Suggestion().
type ErrorType int

const (
	ErrTypeNetwork ErrorType = iota
	ErrTypeParsing
	ErrTypeValidation
	ErrTypeTimeout
	ErrTypeDNS
	ErrTypeConnection
	ErrTypeTLS
)

// ErrInvalidSnapshotDirectory is the sentinel wrapped by any IndexError
// produced when a directory key's classification disagrees with its
// parsed value's variant.
var ErrInvalidSnapshotDirectory = errors.New("snapindex: invalid snapshot directory")

// IndexError is the structured error type for every snapindex operation.
type IndexError struct {
	Type    ErrorType
	Message string
	Err     error
}

func (e *IndexError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("snapindex: %s: %v", e.Message, e.Err)
	}
	return fmt.Sprintf("snapindex: %s", e.Message)
}

func (e *IndexError) Unwrap() error { return e.Err }

// Suggestion returns an actionable hint for the error, or "" if none applies.
func (e *IndexError) Suggestion() string {
	switch e.Type {
	case ErrTypeTimeout:
		return "Check your internet connection and try again"
	case ErrTypeDNS:
		return "Check your DNS settings and internet connection"
	case ErrTypeConnection:
		return "The snapshot directory host may be down or blocked"
	case ErrTypeTLS:
		return "There may be a certificate issue; check your system clock"
	case ErrTypeValidation:
		return "The snapshot directory document is malformed; report this upstream"
	default:
		return ""
	}
}

// classifyError unwraps a network error down to the most specific
// ErrorType available, so Suggestion() can give advice tailored to DNS
// failures, TLS issues, timeouts, and the like instead of a generic
// network message.
func classifyError(err error) ErrorType {
	if err == nil {
		return ErrTypeNetwork
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTypeTimeout
	}
	if errors.Is(err, context.Canceled) {
		return ErrTypeNetwork
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		if dnsErr.IsTimeout {
			return ErrTypeTimeout
		}
		return ErrTypeDNS
	}
	var certErr *tls.CertificateVerificationError
	if errors.As(err, &certErr) {
		return ErrTypeTLS
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		if opErr.Timeout() {
			return ErrTypeTimeout
		}
		var innerDNS *net.DNSError
		if errors.As(opErr.Err, &innerDNS) {
			return ErrTypeDNS
		}
		return ErrTypeConnection
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		if urlErr.Timeout() {
			return ErrTypeTimeout
		}
		if strings.Contains(urlErr.Err.Error(), "certificate") ||
			strings.Contains(urlErr.Err.Error(), "tls") ||
			strings.Contains(urlErr.Err.Error(), "x509") {
			return ErrTypeTLS
		}
		return classifyError(urlErr.Err)
	}
	return ErrTypeNetwork
}

func wrapNetworkError(err error, message string) *IndexError {
	return &IndexError{Type: classifyError(err), Message: message, Err: err}
}
