package output

import (
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mitchellh/colorstring"
)

// BatchStats summarizes one compile invocation across every function in
// the program, printed when --stats is given (§13.4).
type BatchStats struct {
	TotalFunctions    int
	RejectedFunctions int
	TotalBlocks       int
	TotalInstrs       int
	RenameFailures    int
	Elapsed           time.Duration
}

// Print writes a humanized summary to w. Color escape sequences are added
// only when isTTY is true; otherwise every line is written plain, for
// predictable output in redirected/piped runs.
func (s BatchStats) Print(w io.Writer, isTTY bool) {
	compiled := s.TotalFunctions - s.RejectedFunctions

	line := fmt.Sprintf("compiled %s of %s functions (%s blocks, %s instructions) in %s",
		humanize.Comma(int64(compiled)),
		humanize.Comma(int64(s.TotalFunctions)),
		humanize.Comma(int64(s.TotalBlocks)),
		humanize.Comma(int64(s.TotalInstrs)),
		s.Elapsed.Round(time.Millisecond),
	)
	if isTTY {
		line = colorstring.Color("[green]" + line + "[reset]")
	}
	fmt.Fprintln(w, line)

	if s.RejectedFunctions > 0 {
		rejectedLine := fmt.Sprintf("%s functions rejected by a fatal parse/block error", humanize.Comma(int64(s.RejectedFunctions)))
		if isTTY {
			rejectedLine = colorstring.Color("[red]" + rejectedLine + "[reset]")
		}
		fmt.Fprintln(w, rejectedLine)
	}

	if s.RenameFailures > 0 {
		warnLine := fmt.Sprintf("%s SSA rename failures (use before any reaching definition)", humanize.Comma(int64(s.RenameFailures)))
		if isTTY {
			warnLine = colorstring.Color("[yellow]" + warnLine + "[reset]")
		}
		fmt.Fprintln(w, warnLine)
	}
}
