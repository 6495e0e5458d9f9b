package transcribe

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"syscall"
)

// Kind classifies transcription failures for user messaging. None of them
// are retried.
type Kind int

const (
	KindAudioFile Kind = iota + 1
	KindNetworkConnect
	KindNetworkTimeout
	KindNetworkOther
	KindProviderRequest
	KindResponseParse
	KindUnsupported
)

func (k Kind) String() string {
	switch k {
	case KindAudioFile:
		return "audio file"
	case KindNetworkConnect:
		return "network connect"
	case KindNetworkTimeout:
		return "network timeout"
	case KindNetworkOther:
		return "network"
	case KindProviderRequest:
		return "provider request"
	case KindResponseParse:
		return "response parse"
	case KindUnsupported:
		return "unsupported"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Error is the single error type returned by transcribers. Message is
// suitable for direct display.
type Error struct {
	Kind    Kind
	Status  int // HTTP status for KindProviderRequest
	Message string
	Err     error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Err }

// statusMessages maps HTTP status codes to guidance. %[1]s is the
// provider display name.
var statusMessages = map[int]string{
	http.StatusUnauthorized:        "%[1]s API key is invalid or expired. Please run 'ostt auth' to update your API key.",
	http.StatusForbidden:           "You don't have permission to use %[1]s's API. Check your API key and account status.",
	http.StatusTooManyRequests:     "Too many requests to %[1]s. You've hit the API rate limit. Please wait and try again.",
	http.StatusInternalServerError: "%[1]s API server is experiencing issues. Please try again later.",
	http.StatusBadGateway:          "%[1]s API server is experiencing issues. Please try again later.",
	http.StatusServiceUnavailable:  "%[1]s API server is experiencing issues. Please try again later.",
	http.StatusGatewayTimeout:      "%[1]s API server is experiencing issues. Please try again later.",
}

// statusError builds the error for a non-2xx response. body is nil when
// it could not be read.
func statusError(p Provider, status int, body []byte) *Error {
	msg, ok := statusMessages[status]
	if ok {
		msg = fmt.Sprintf(msg, p.DisplayName())
	} else {
		text := "Unknown error"
		if body != nil {
			text = string(body)
		}
		msg = fmt.Sprintf("%s API error (status %d): %s", p.DisplayName(), status, text)
	}
	return &Error{Kind: KindProviderRequest, Status: status, Message: msg}
}

// networkRules classify transport failures, first match wins. Connect
// failures come first so a dial that times out reports the connection.
var networkRules = []struct {
	match   func(err error) bool
	kind    Kind
	message func(provider string, err error) string
}{
	{isConnectError, KindNetworkConnect, func(p string, _ error) string {
		return fmt.Sprintf("Failed to connect to %s API server. Check your internet connection.", p)
	}},
	{isTimeout, KindNetworkTimeout, func(p string, _ error) string {
		return fmt.Sprintf("Request to %s timed out. The API server is not responding.", p)
	}},
	{isBuildError, KindNetworkOther, func(p string, err error) string {
		return fmt.Sprintf("Failed to build %s API request: %v. This may be a configuration error.", p, err)
	}},
}

// networkError classifies err from sending a request.
func networkError(p Provider, err error) *Error {
	for _, rule := range networkRules {
		if rule.match(err) {
			return &Error{Kind: rule.kind, Message: rule.message(p.DisplayName(), err), Err: err}
		}
	}
	return &Error{
		Kind:    KindNetworkOther,
		Message: fmt.Sprintf("%s network error: %v", p.DisplayName(), err),
		Err:     err,
	}
}

// buildError marks failures constructing a request before it is sent.
type buildError struct{ err error }

func (e *buildError) Error() string { return "builder error: " + e.err.Error() }

func (e *buildError) Unwrap() error { return e.err }

func isBuildError(err error) bool {
	var be *buildError
	if errors.As(err, &be) {
		return true
	}
	// Malformed endpoints are only detected by the client when sending.
	var uerr *url.Error
	if !errors.As(err, &uerr) || uerr.Err == nil {
		return false
	}
	msg := uerr.Err.Error()
	return strings.Contains(msg, "unsupported protocol scheme") ||
		strings.Contains(msg, "no Host in request URL")
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

func isConnectError(err error) bool {
	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ENETUNREACH) || errors.Is(err, syscall.EHOSTUNREACH) {
		return true
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return true
	}
	var uerr *url.Error
	return errors.As(err, &uerr) && uerr.Err != nil && strings.Contains(uerr.Err.Error(), "connect")
}
