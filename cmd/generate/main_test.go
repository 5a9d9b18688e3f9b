package main

import (
	"errors"
	"fmt"
	"testing"

	"realaddress_backend/platform/apperr"
)

func TestExitCode(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{apperr.Validation("invalid input"), 2},
		{apperr.BadRequest("bad"), 2},
		{fmt.Errorf("generate: %w", apperr.Unavailable("no address")), 3},
		{errors.New("boom"), 1},
	}
	for _, tc := range cases {
		if got := exitCode(tc.err); got != tc.want {
			t.Fatalf("exitCode(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}
