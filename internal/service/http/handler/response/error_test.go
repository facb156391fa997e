package response

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/reusedev/cutout-hub/internal/modules/errs"
	"github.com/stretchr/testify/require"
)

func TestFromError(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{errs.New(errs.KindSizeExceeded, "too big"), http.StatusRequestEntityTooLarge},
		{fmt.Errorf("wrapped: %w", errs.New(errs.KindDecodeError, "bad")), http.StatusUnprocessableEntity},
		{errs.ForProvider(errs.KindUnconfigured, "clipdrop", 0, "missing credential"), http.StatusBadRequest},
		{errs.ForProvider(errs.KindRateLimited, "clipdrop", 429, "slow"), http.StatusTooManyRequests},
		{errs.New(errs.KindAllProvidersFailed, "3 providers tried"), http.StatusBadGateway},
		{errs.New(errs.KindToolInvocationFailure, "gs"), http.StatusInternalServerError},
	}
	for _, c := range cases {
		status, body := FromError(c.err)
		require.Equal(t, c.status, status, c.err.Error())
		require.Equal(t, c.err.Error(), body["message"])
	}

	status, body := FromError(errors.New("dial tcp: secret host"))
	require.Equal(t, http.StatusInternalServerError, status)
	require.Equal(t, InternalError, body)
}
