package progress

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/schollz/progressbar/v3"
)

// Reporter provides progress feedback while directories are prefetched.
// Implementations are safe for concurrent use.
type Reporter interface {
	Start(total int)
	Step(message string)
	Finish()
}

// NewReporter returns a TerminalReporter if running in an interactive terminal,
// or a CIReporter if the CI environment variable is set.
func NewReporter() Reporter {
	if os.Getenv("CI") != "" || os.Getenv("GITHUB_ACTIONS") != "" {
		return &CIReporter{Out: os.Stderr}
	}
	return &TerminalReporter{}
}

// TerminalReporter displays a progress bar in the terminal.
type TerminalReporter struct {
	mu  sync.Mutex
	bar *progressbar.ProgressBar
}

func (r *TerminalReporter) Start(total int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bar = progressbar.NewOptions(total,
		progressbar.OptionSetDescription("Prefetching directories"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
}

func (r *TerminalReporter) Step(message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.bar != nil {
		r.bar.Describe(message)
		_ = r.bar.Add(1)
	}
}

func (r *TerminalReporter) Finish() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.bar != nil {
		_ = r.bar.Finish()
	}
}

// CIReporter prints line-by-line progress suitable for CI logs.
type CIReporter struct {
	Out io.Writer

	mu      sync.Mutex
	total   int
	current int
}

func (r *CIReporter) Start(total int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.total = total
	r.current = 0
	fmt.Fprintf(r.Out, "Prefetching %d directories\n", total)
}

func (r *CIReporter) Step(message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.current++
	fmt.Fprintf(r.Out, "[%d/%d] %s\n", r.current, r.total, message)
}

func (r *CIReporter) Finish() {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintln(r.Out, "Prefetch complete")
}
