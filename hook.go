package dita

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/google/shlex"
)

// Hook is a user command run after a release lands in the library, eg a
// replaygain scanner or a library indexer poke. The marker <files> in the
// argument list expands to the destination paths.
type Hook struct {
	command string
	args    []string
}

const markerFiles = "<files>"

func NewHook(conf string) (Hook, error) {
	parts, err := shlex.Split(conf)
	if err != nil {
		return Hook{}, err
	}
	if len(parts) == 0 {
		return Hook{}, fmt.Errorf("no command provided")
	}
	return Hook{command: parts[0], args: parts[1:]}, nil
}

func (h Hook) ProcessRelease(ctx context.Context, paths []string) error {
	var args []string
	for _, arg := range h.args {
		switch arg {
		case markerFiles:
			args = append(args, paths...)
		default:
			args = append(args, arg)
		}
	}

	cmd := exec.CommandContext(ctx, h.command, args...)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("run cmd: %w", err)
	}
	return nil
}

func (h Hook) String() string {
	args := fmt.Sprintf("%q", append([]string{h.command}, h.args...))
	args = strings.TrimPrefix(args, "[")
	args = strings.TrimSuffix(args, "]")
	return fmt.Sprintf("hook (%s)", args)
}
