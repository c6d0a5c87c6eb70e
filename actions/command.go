package actions

import (
	"context"
	"os/exec"
	"strings"

	"go.uber.org/zap"

	"github.com/loopwork/actiond/errors"
)

// maxResultBytes caps how much command output is stored as a job result
const maxResultBytes = 4096

// CommandHandler runs a shell command for an action type. The command is
// executed through the shell so config entries can use pipes and arguments.
type CommandHandler struct {
	actionType string
	command    string
	log        *zap.SugaredLogger
}

// NewCommandHandler creates a handler that runs command when actionType fires
func NewCommandHandler(actionType, command string, log *zap.SugaredLogger) *CommandHandler {
	return &CommandHandler{
		actionType: actionType,
		command:    command,
		log:        log,
	}
}

// Name returns the action type this handler serves
func (h *CommandHandler) Name() string { return h.actionType }

// Execute runs the command and returns its combined output. Cancelling the
// context kills the process.
func (h *CommandHandler) Execute(ctx context.Context) (string, error) {
	h.log.Infow("Running action command",
		"action_type", h.actionType,
		"command", h.command)

	cmd := exec.CommandContext(ctx, "/bin/sh", "-c", h.command)
	out, err := cmd.CombinedOutput()

	result := strings.TrimSpace(string(out))
	if len(result) > maxResultBytes {
		result = result[:maxResultBytes]
	}

	if err != nil {
		if result != "" {
			return "", errors.Wrapf(err, "command failed: %s", result)
		}
		return "", errors.Wrap(err, "command failed")
	}
	return result, nil
}

// RegistryFromConfig builds a registry with a command handler per
// configured action
func RegistryFromConfig(commands map[string]string, log *zap.SugaredLogger) *Registry {
	registry := NewRegistry()
	for actionType, command := range commands {
		registry.Register(NewCommandHandler(actionType, command, log))
	}
	return registry
}
