package mutation

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInvokeSuccessLifecycle(t *testing.T) {
	c := New[int]()
	assert.Equal(t, StatusIdle, c.Status())

	var calls []string
	result, err := c.Invoke(context.Background(), func(context.Context) (int, error) {
		assert.Equal(t, StatusPending, c.Status())
		return 42, nil
	}, Options[int]{
		OnSuccess: func(v int) {
			calls = append(calls, "success")
			assert.Equal(t, 42, v)
		},
		OnError:   func(error) { calls = append(calls, "error") },
		OnSettled: func() { calls = append(calls, "settled") },
	})

	require.NoError(t, err)
	assert.Equal(t, 42, result)
	assert.Equal(t, []string{"success", "settled"}, calls)
	assert.Equal(t, StatusSuccess, c.Status())
	assert.Equal(t, 42, c.Result())
	assert.NoError(t, c.Err())
	assert.False(t, c.IsPending())
}

func TestInvokeErrorLifecycle(t *testing.T) {
	boom := errors.New("boom")
	c := New[string]()

	var calls []string
	result, err := c.Invoke(context.Background(), func(context.Context) (string, error) {
		return "partial", boom
	}, Options[string]{
		OnSuccess: func(string) { calls = append(calls, "success") },
		OnError: func(err error) {
			calls = append(calls, "error")
			assert.ErrorIs(t, err, boom)
		},
		OnSettled: func() { calls = append(calls, "settled") },
	})

	require.NoError(t, err, "errors are swallowed unless Rethrow is set")
	assert.Empty(t, result, "failed invocations never expose a result")
	assert.Equal(t, []string{"error", "settled"}, calls)
	assert.Equal(t, StatusError, c.Status())
	assert.ErrorIs(t, c.Err(), boom)
}

func TestInvokeRethrow(t *testing.T) {
	boom := errors.New("boom")
	c := New[int]()

	_, err := c.Invoke(context.Background(), func(context.Context) (int, error) {
		return 0, boom
	}, Options[int]{Rethrow: true})

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, StatusError, c.Status())
}

func TestSettledFiresExactlyOncePerOutcome(t *testing.T) {
	c := New[int]()

	settled := 0
	opts := Options[int]{OnSettled: func() { settled++ }}

	_, _ = c.Invoke(context.Background(), func(context.Context) (int, error) { return 1, nil }, opts)
	assert.Equal(t, 1, settled)

	_, _ = c.Invoke(context.Background(), func(context.Context) (int, error) { return 0, errors.New("x") }, opts)
	assert.Equal(t, 2, settled)
}

func TestSuccessClearsPreviousError(t *testing.T) {
	c := New[int]()

	_, _ = c.Invoke(context.Background(), func(context.Context) (int, error) {
		return 0, errors.New("first try")
	}, Options[int]{})
	require.Error(t, c.Err())

	result, err := c.Invoke(context.Background(), func(context.Context) (int, error) {
		return 7, nil
	}, Options[int]{})

	require.NoError(t, err)
	assert.Equal(t, 7, result)
	assert.NoError(t, c.Err())
	assert.Equal(t, StatusSuccess, c.Status())
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "idle", StatusIdle.String())
	assert.Equal(t, "pending", StatusPending.String())
	assert.Equal(t, "success", StatusSuccess.String())
	assert.Equal(t, "error", StatusError.String())
}
