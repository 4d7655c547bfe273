package hko

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"503", &HTTPError{Status: 503}, true},
		{"429", &HTTPError{Status: 429}, true},
		{"404", &HTTPError{Status: 404}, false},
		{"decode", &DecodeError{Err: errors.New("bad json")}, false},
		{"connection refused", &TransportError{Err: &url.Error{Op: "Get", Err: &net.OpError{Op: "dial", Err: os.NewSyscallError("connect", syscall.ECONNREFUSED)}}}, true},
		{"connection reset", &TransportError{Err: fmt.Errorf("read: %w", syscall.ECONNRESET)}, true},
		{"deadline", &TransportError{Err: &url.Error{Op: "Get", Err: context.DeadlineExceeded}}, true},
		{"cancelled", &TransportError{Err: &url.Error{Op: "Get", Err: context.Canceled}}, false},
		{"dns failure", &TransportError{Err: &net.DNSError{Err: "no such host", Name: "nowhere.invalid", IsNotFound: true}}, false},
		{"malformed url", &TransportError{Err: errors.New("missing scheme or host")}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRetryable(tt.err))
		})
	}
}

func TestErrorMessages(t *testing.T) {
	assert.Equal(t, "request http://x/y: status 503", (&HTTPError{URL: "http://x/y", Status: 503}).Error())
	assert.Equal(t, "request http://x/y: status 500: boom", (&HTTPError{URL: "http://x/y", Status: 500, Body: "boom"}).Error())

	inner := errors.New("eof")
	assert.ErrorIs(t, &TransportError{URL: "u", Err: inner}, inner)
	assert.ErrorIs(t, &DecodeError{URL: "u", Err: inner}, inner)
}
