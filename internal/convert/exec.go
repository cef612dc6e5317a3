package convert

import (
	"bytes"
	"context"
	"os/exec"
	"strings"

	"github.com/sitepipe/sitepipe/internal/errors"
)

// Wrapper functions for exec to allow testing
var execLookPath = exec.LookPath
var execCommandContext = exec.CommandContext

// invocation describes one run of an external converter.
type invocation struct {
	tool  string
	args  []string
	dir   string
	stdin []byte
}

// run resolves and executes inv. A lookup or start failure is a
// ConverterUnavailableError; a non-zero exit is returned as *exec.ExitError
// alongside captured stderr so callers can classify it.
func run(ctx context.Context, inv invocation) (stdout, stderr []byte, err error) {
	bin, err := execLookPath(inv.tool)
	if err != nil {
		return nil, nil, errors.NewConverterUnavailableError(inv.tool, err)
	}

	cmd := execCommandContext(ctx, bin, inv.args...)
	cmd.Dir = inv.dir
	if inv.stdin != nil {
		cmd.Stdin = bytes.NewReader(inv.stdin)
	}
	var out, errOut bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errOut

	if err := cmd.Start(); err != nil {
		return nil, nil, errors.NewConverterUnavailableError(inv.tool, err)
	}
	err = cmd.Wait()
	if ctx.Err() != nil {
		return nil, nil, ctx.Err()
	}
	return out.Bytes(), errOut.Bytes(), err
}

// firstLine returns the first non-empty line of b, trimmed.
func firstLine(b []byte) string {
	for line := range strings.SplitSeq(string(b), "\n") {
		if s := strings.TrimSpace(line); s != "" {
			return s
		}
	}
	return ""
}
