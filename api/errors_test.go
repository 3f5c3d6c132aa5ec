package api

import (
	"errors"
	"fmt"
	"testing"
)

func TestError_UnwrapMatchesSentinel(t *testing.T) {
	cases := []struct {
		code ErrorCode
		want error
	}{
		{ErrCodeAllocation, ErrAllocation},
		{ErrCodeInvalidCapacity, ErrInvalidCapacity},
		{ErrCodeInvalidArgument, ErrInvalidArgument},
	}
	for _, tc := range cases {
		err := fmt.Errorf("wrapped: %w", NewError(tc.code, "boom"))
		if !errors.Is(err, tc.want) {
			t.Errorf("code %s: expected errors.Is to match %v", tc.code, tc.want)
		}
	}
	if errors.Is(NewError(ErrCodeInternal, "x"), ErrAllocation) {
		t.Error("internal code must not match ErrAllocation")
	}
}

func TestError_WithContext(t *testing.T) {
	e := (&Error{Code: ErrCodeAllocation, Message: "out of budget"}).WithContext("requested", 8)
	if got := e.Error(); got != "out of budget (context: map[requested:8])" {
		t.Errorf("unexpected message %q", got)
	}
	if NewError(ErrCodeOK, "plain").Error() != "plain" {
		t.Error("empty context must render message only")
	}
}

func TestAllocatorStats_Balanced(t *testing.T) {
	if !(AllocatorStats{Allocs: 3, Frees: 3}).Balanced() {
		t.Error("expected balanced")
	}
	if (AllocatorStats{Allocs: 3, Frees: 2, InUse: 4}).Balanced() {
		t.Error("expected unbalanced")
	}
}
