package actions

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRegistryDispatch(t *testing.T) {
	r := NewRegistry()
	r.Register(HandlerFunc{
		ActionType: "greet",
		Fn: func(ctx context.Context) (string, error) {
			return "hello", nil
		},
	})

	result, err := r.Execute(context.Background(), "greet")
	require.NoError(t, err)
	assert.Equal(t, "hello", result)

	assert.True(t, r.Has("greet"))
	assert.False(t, r.Has("other"))
	assert.Equal(t, []string{"greet"}, r.Names())
}

func TestRegistryUnknownActionType(t *testing.T) {
	r := NewRegistry()

	_, err := r.Execute(context.Background(), "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing")
}

func TestCommandHandlerRunsCommand(t *testing.T) {
	h := NewCommandHandler("echo", "echo hello world", zap.NewNop().Sugar())

	result, err := h.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "hello world", result)
}

func TestCommandHandlerFailure(t *testing.T) {
	h := NewCommandHandler("fail", "exit 3", zap.NewNop().Sugar())

	_, err := h.Execute(context.Background())
	assert.Error(t, err)
}

func TestCommandHandlerCancellation(t *testing.T) {
	h := NewCommandHandler("sleep", "sleep 30", zap.NewNop().Sugar())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := h.Execute(ctx)
	assert.Error(t, err)
}

func TestRegistryFromConfig(t *testing.T) {
	r := RegistryFromConfig(map[string]string{
		"backup": "echo backed up",
		"report": "echo reported",
	}, zap.NewNop().Sugar())

	assert.ElementsMatch(t, []string{"backup", "report"}, r.Names())

	result, err := r.Execute(context.Background(), "backup")
	require.NoError(t, err)
	assert.Equal(t, "backed up", result)
}
