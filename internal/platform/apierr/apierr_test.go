package apierr

import (
	"errors"
	"net/http"
	"testing"
)

func TestErrorString(t *testing.T) {
	cases := []struct {
		err  *Error
		want string
	}{
		{BadRequest("invalid_request", errors.New("bad body")), "bad body"},
		{New(http.StatusConflict, "conflict", nil), "conflict"},
		{New(http.StatusTeapot, "", nil), "api error (418)"},
		{&Error{}, "api error"},
	}
	for _, tc := range cases {
		if got := tc.err.Error(); got != tc.want {
			t.Fatalf("Error() = %q, want %q", got, tc.want)
		}
	}
	var nilErr *Error
	if nilErr.Error() != "" {
		t.Fatalf("nil error should render empty")
	}
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("cause")
	if !errors.Is(TooManyRequests("rate_limited", cause), cause) {
		t.Fatalf("Unwrap should expose the cause")
	}
}
