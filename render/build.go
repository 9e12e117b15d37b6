package render

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/kballard/go-shellquote"
	log "github.com/sirupsen/logrus"
)

// RunBuild executes a generator's build command on a rendered output
// file. The command is split with shell quoting rules, and every
// occurrence of {output} in its words is replaced by the output path.
// The command runs in dir and inherits stdout and stderr.
func RunBuild(ctx context.Context, command, output, dir string) error {
	words, err := shellquote.Split(command)
	if err != nil {
		return fmt.Errorf("failed to parse build command: %w", err)
	}
	if len(words) == 0 {
		return fmt.Errorf("build command is empty")
	}

	for i, word := range words {
		words[i] = strings.ReplaceAll(word, "{output}", output)
	}

	log.Debugf("running build command: %s", strings.Join(words, " "))

	cmd := exec.CommandContext(ctx, words[0], words[1:]...)
	cmd.Dir = dir
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("build command failed: %w", err)
	}
	return nil
}
