package speak

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
)

// Command speaks text by shelling out to a platform TTS binary. Say blocks
// until the subprocess finishes, so playback is complete when it returns.
type Command struct {
	Name string
	Args []string
}

func NewCommand(name string, args ...string) *Command {
	return &Command{Name: name, Args: args}
}

// DefaultCommand picks the platform speech binary: "say" on macOS, espeak
// elsewhere.
func DefaultCommand() *Command {
	if runtime.GOOS == "darwin" {
		return NewCommand("say")
	}
	return NewCommand("espeak")
}

func (c *Command) Say(ctx context.Context, text string) error {
	if text == "" {
		return nil
	}
	cmd := exec.CommandContext(ctx, c.Name, c.argv(text)...)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s failed: %w", c.Name, err)
	}
	return nil
}

func (c *Command) argv(text string) []string {
	argv := make([]string, 0, len(c.Args)+1)
	argv = append(argv, c.Args...)
	return append(argv, text)
}
