package engine

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPassError_Error(t *testing.T) {
	cause := errors.New("detached parent")
	tests := []struct {
		name string
		err  *PassError
		want string
	}{
		{
			name: "bare",
			err:  &PassError{Code: ErrCodeUnitQuota, Message: "too many"},
			want: "UNIT_QUOTA: too many",
		},
		{
			name: "with root",
			err:  &PassError{Code: ErrCodeHookOrder, Message: "shape changed", RootID: "r1", Pass: 3},
			want: "HOOK_ORDER: shape changed (root=r1, pass=3)",
		},
		{
			name: "with fiber and cause",
			err:  &PassError{Code: ErrCodeHostFailure, Message: "append child failed", RootID: "r1", Pass: 2, Fiber: "div[0]", Err: cause},
			want: "HOST_FAILURE: append child failed (root=r1, pass=2, fiber=div[0]): detached parent",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestPassError_Helpers(t *testing.T) {
	cause := errors.New("boom")
	hostErr := fmt.Errorf("tick: %w", newHostError("set id", "div[0]", cause))
	quotaErr := fmt.Errorf("tick: %w", NewQuotaEnforcer(1).checkAfter(2))
	hookErr := checkCellShape([]*cell{{typ: "int"}}, nil, true)

	assert.True(t, IsHostError(hostErr))
	assert.ErrorIs(t, hostErr, cause)
	assert.False(t, IsQuotaError(hostErr))

	assert.True(t, IsHookOrderError(hookErr))
	assert.False(t, IsHostError(hookErr))

	assert.True(t, IsQuotaError(quotaErr))
	assert.False(t, IsHookOrderError(quotaErr))
	assert.False(t, IsHostError(cause))
	assert.False(t, IsHookOrderError(nil))
}

func TestCheckCellShape(t *testing.T) {
	prev := []*cell{{typ: "int"}, {typ: "string"}}

	assert.NoError(t, checkCellShape(prev, []*cell{{typ: "int"}, {typ: "string"}}, true))
	assert.NoError(t, checkCellShape(nil, []*cell{{typ: "int"}}, false), "first render has nothing to compare")

	err := checkCellShape(prev, []*cell{{typ: "string"}, {typ: "int"}}, true)
	var pe *PassError
	if assert.ErrorAs(t, err, &pe) {
		assert.Equal(t, "0", pe.Details["cell"])
		assert.Equal(t, "int", pe.Details["previous"])
	}
}
