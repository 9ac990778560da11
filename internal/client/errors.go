package client

import (
	"context"
	"errors"
	"net"
	"net/url"
	"strings"
)

// errorKind buckets a transport failure for the retry decision.
type errorKind string

const (
	errKindTimeout         errorKind = "timeout"
	errKindNetwork         errorKind = "network_error"
	errKindBackendStarting errorKind = "backend_starting"
	errKindOther           errorKind = "other"
)

// Signatures of a backend whose database has not finished initializing.
// These get a doubled backoff step to give slow-starting backends more room.
var backendStartingSignatures = []string{
	"database not initialized",
	"database is starting",
	"not yet initialized",
	"starting up",
}

// classifyError buckets a failed attempt. Only errors are classified here;
// any completed HTTP response, whatever the status code, never reaches this
// path.
func classifyError(err error) errorKind {
	if err == nil {
		return ""
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return errKindTimeout
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return errKindTimeout
	}

	msg := strings.ToLower(err.Error())

	for _, signature := range backendStartingSignatures {
		if strings.Contains(msg, signature) {
			return errKindBackendStarting
		}
	}

	if strings.Contains(msg, "timeout") || strings.Contains(msg, "deadline exceeded") {
		return errKindTimeout
	}

	if strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "connection reset") ||
		strings.Contains(msg, "no such host") ||
		strings.Contains(msg, "network") ||
		strings.Contains(msg, "abort") ||
		strings.Contains(msg, "unreachable") {
		return errKindNetwork
	}

	// A failed round trip with no recognizable signature is still a
	// transport-level fetch failure.
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return errKindNetwork
	}

	return errKindOther
}

func (k errorKind) retryable() bool {
	switch k {
	case errKindTimeout, errKindNetwork, errKindBackendStarting:
		return true
	default:
		return false
	}
}
