package telegram

import (
	"errors"
	"io"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"
)

type scriptedTransport struct {
	errs  []error
	calls int
	body  []string
}

func (s *scriptedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	s.calls++
	if req.Body != nil {
		b, _ := io.ReadAll(req.Body)
		s.body = append(s.body, string(b))
	}
	if len(s.errs) > 0 {
		err := s.errs[0]
		s.errs = s.errs[1:]
		if err != nil {
			return nil, err
		}
	}
	return &http.Response{StatusCode: http.StatusOK, Body: http.NoBody, Request: req}, nil
}

var errDial = &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}

func TestRetryTransportReplaysDialErrors(t *testing.T) {
	base := &scriptedTransport{errs: []error{errDial, errDial}}
	rt := &retryTransport{base: base, retries: 3, backoff: time.Millisecond}

	req, _ := http.NewRequest(http.MethodPost, "https://api.telegram.org/botX/sendMessage", strings.NewReader(`{"text":"hi"}`))
	resp, err := rt.RoundTrip(req)
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("round trip = %v, %v", resp, err)
	}
	if base.calls != 3 {
		t.Fatalf("calls = %d, want 3", base.calls)
	}
	for i, b := range base.body {
		if b != `{"text":"hi"}` {
			t.Fatalf("attempt %d body = %q", i+1, b)
		}
	}
}

func TestRetryTransportGivesUp(t *testing.T) {
	base := &scriptedTransport{errs: []error{errDial, errDial, errDial}}
	rt := &retryTransport{base: base, retries: 2, backoff: time.Millisecond}
	req, _ := http.NewRequest(http.MethodGet, "https://api.telegram.org/botX/getMe", nil)
	if _, err := rt.RoundTrip(req); !errors.Is(err, errDial) {
		t.Fatalf("err = %v, want dial error", err)
	}
	if base.calls != 3 {
		t.Fatalf("calls = %d, want 3", base.calls)
	}
}

func TestRetryTransportSkipsUnreplayable(t *testing.T) {
	base := &scriptedTransport{errs: []error{errDial}}
	rt := &retryTransport{base: base, retries: 3, backoff: time.Millisecond}
	req, _ := http.NewRequest(http.MethodPost, "https://api.telegram.org/botX/sendDocument", io.NopCloser(strings.NewReader("blob")))
	req.GetBody = nil
	if _, err := rt.RoundTrip(req); err == nil {
		t.Fatal("unreplayable request must not be retried")
	}
	if base.calls != 1 {
		t.Fatalf("calls = %d, want 1", base.calls)
	}

	other := &scriptedTransport{errs: []error{errors.New("tls: bad certificate")}}
	rt.base = other
	get, _ := http.NewRequest(http.MethodGet, "https://api.telegram.org/botX/getMe", nil)
	if _, err := rt.RoundTrip(get); err == nil || other.calls != 1 {
		t.Fatalf("permanent error retried: calls=%d err=%v", other.calls, err)
	}
}

func TestBuildHTTPClientStretchesLongPoll(t *testing.T) {
	c := BuildHTTPClient(HTTPOptions{LongPoll: 30 * time.Second})
	if c.Timeout <= 30*time.Second {
		t.Fatalf("client timeout %s must exceed the long poll", c.Timeout)
	}
	tr := c.Transport.(*retryTransport).base.(*http.Transport)
	if tr.ResponseHeaderTimeout <= 30*time.Second {
		t.Fatalf("header timeout %s must exceed the long poll", tr.ResponseHeaderTimeout)
	}
}
