package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/kbuild/internal/core/domain"
	"github.com/custodia-labs/kbuild/internal/logger"
)

// withRuntime opens the runtime before fn and closes it afterwards.
func withRuntime(fn func(cmd *cobra.Command, args []string, rt *runtime) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		rt, err := openRuntime(cmd.Context())
		if err != nil {
			return err
		}
		defer func() {
			if err := rt.Close(); err != nil {
				logger.Warn("failed to close knowledge base: %v", err)
			}
		}()
		return fn(cmd, args, rt)
	}
}

// progressPrinter renders backfill progress. On a terminal each table's
// line is redrawn in place; otherwise every report gets its own line.
type progressPrinter struct {
	out     io.Writer
	inPlace bool
	open    bool
}

func newProgressPrinter(out io.Writer) *progressPrinter {
	p := &progressPrinter{out: out}
	if f, ok := out.(*os.File); ok {
		p.inPlace = term.IsTerminal(int(f.Fd()))
	}
	return p
}

// Report matches driving.ProgressFunc.
func (p *progressPrinter) Report(kind domain.SourceKind, done, total int) {
	if !p.inPlace {
		fmt.Fprintf(p.out, "  %s: %d/%d\n", kind.Description(), done, total)
		return
	}

	fmt.Fprintf(p.out, "\r  %s: %d/%d", kind.Description(), done, total)
	p.open = true
	if done == total {
		p.Finish()
	}
}

// Finish terminates a line left open by an in-place report.
func (p *progressPrinter) Finish() {
	if p.open {
		fmt.Fprintln(p.out)
		p.open = false
	}
}
