// Package repl implements the interactive `>: ` command loop: select a
// target process, then issue listing or pattern-search commands against it.
package repl

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/go-delve/liner"
	"github.com/sirupsen/logrus"

	"github.com/shadowmem/procinspect"
)

// REPL owns the line editor and the currently selected target: a prompt
// string, a *liner.State, and a Run loop dispatching parsed commands. The
// command set is small and fixed, so dispatch is a short switch rather than
// a registry keyed by arbitrary strings.
type REPL struct {
	prompt string
	line   *liner.State
	out    io.Writer
	log    *logrus.Logger
	cfg    procinspect.Config

	pid       uint32
	hasTarget bool
	aborted   int32
}

// New constructs a REPL writing listings to out and diagnostics through log.
func New(cfg procinspect.Config, out io.Writer, log *logrus.Logger) *REPL {
	return &REPL{
		prompt: ">: ",
		line:   liner.NewLiner(),
		out:    out,
		log:    log,
		cfg:    cfg,
	}
}

// Run reads commands until quit or EOF. SIGINT sets an abort flag that the
// scanner polls between blocks: in-flight work finishes, unclaimed work is
// skipped.
func (r *REPL) Run() error {
	defer r.line.Close()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	go func() {
		for range sigCh {
			atomic.StoreInt32(&r.aborted, 1)
		}
	}()
	defer signal.Stop(sigCh)

	r.printHelp()

	for {
		atomic.StoreInt32(&r.aborted, 0)

		line, err := r.line.Prompt(r.prompt)
		if err != nil {
			if err == io.EOF {
				fmt.Fprintln(r.out, "exit")
				return nil
			}
			return fmt.Errorf("repl: read input: %w", err)
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		r.line.AppendHistory(line)

		if quit := r.dispatch(line); quit {
			return nil
		}
	}
}

func (r *REPL) isAborted() bool {
	return atomic.LoadInt32(&r.aborted) != 0
}

// dispatch parses and executes one command line, returning true if the REPL
// should terminate. The first token selects the command; the remainder (if
// any) is its argument.
func (r *REPL) dispatch(line string) bool {
	fields := strings.Fields(line)
	cmd := fields[0]

	switch cmd {
	case "q":
		return true
	case "help":
		r.printHelp()
		return false
	case "lp":
		r.cmdListProcesses()
		return false
	case "p":
		r.cmdSelectPID(fields)
		return false
	}

	if !r.requireTarget() {
		return false
	}

	switch cmd {
	case "lM":
		r.cmdListModules()
	case "lt":
		r.cmdListThreads()
	case "th":
		r.cmdTraverseHeaps(false, false)
	case "the":
		r.cmdTraverseHeaps(false, true)
	case "thb":
		r.cmdTraverseHeaps(true, false)
	default:
		r.cmdSearch(line)
	}

	return false
}

func (r *REPL) requireTarget() bool {
	if r.hasTarget {
		return true
	}
	fmt.Fprintln(r.out, "Select the PID first!")
	return false
}

func (r *REPL) printHelp() {
	fmt.Fprintln(r.out, "--------------------------------")
	fmt.Fprintln(r.out, "p <pid>\t\t\t - select PID")
	fmt.Fprintln(r.out, "lp\t\t\t - list system PIDs")
	fmt.Fprintln(r.out, "lM\t\t\t - list modules of selected process")
	fmt.Fprintln(r.out, "lt\t\t\t - list threads of selected process")
	fmt.Fprintln(r.out, "th\t\t\t - traverse process heaps (slow)")
	fmt.Fprintln(r.out, "the\t\t\t - traverse process heaps, calculate entropy (slower)")
	fmt.Fprintln(r.out, "thb\t\t\t - traverse process heaps, list heap blocks (extra slow)")
	fmt.Fprintln(r.out, "<text>\t\t\t - search selected process memory for a literal pattern")
	fmt.Fprintln(r.out, "q\t\t\t - quit")
	fmt.Fprintln(r.out, "--------------------------------")
}

// cmdSelectPID parses a decimal or hex pid: a "0x" prefix or any hex-only
// digit selects base 16, otherwise base 10.
func (r *REPL) cmdSelectPID(fields []string) {
	if len(fields) < 2 {
		fmt.Fprintln(r.out, "PID missing.")
		return
	}
	arg := fields[1]
	base := 10
	trimmed := arg
	if strings.HasPrefix(strings.ToLower(arg), "0x") {
		base = 16
		trimmed = arg[2:]
	} else if looksHex(arg) {
		base = 16
	}

	pid, err := strconv.ParseUint(trimmed, base, 32)
	if err != nil {
		fmt.Fprintln(r.out, "Invalid PID!")
		return
	}

	r.pid = uint32(pid)
	r.hasTarget = true
}

func looksHex(s string) bool {
	for _, c := range s {
		if (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F') {
			return true
		}
	}
	return false
}

func (r *REPL) cmdListProcesses() {
	infos, err := procinspect.ListProcesses()
	if err != nil {
		r.log.WithError(err).Error("list processes failed")
		return
	}
	procinspect.WriteProcessList(r.out, infos)
}

func (r *REPL) cmdListModules() {
	infos, err := procinspect.ListModules(r.pid)
	if err != nil {
		r.log.WithError(err).Error("list modules failed")
		return
	}
	procinspect.WriteModuleList(r.out, infos)
}

func (r *REPL) cmdListThreads() {
	target, err := procinspect.OpenTarget(r.pid)
	if err != nil {
		r.log.WithError(err).Error("open target failed")
		return
	}
	defer target.Close()

	infos, err := procinspect.ListThreads(target, r.pid)
	if err != nil {
		r.log.WithError(err).Error("list threads failed")
		return
	}
	procinspect.WriteThreadList(r.out, infos)
}

func (r *REPL) cmdTraverseHeaps(listBlocks, calculateEntropy bool) {
	target, err := procinspect.OpenTarget(r.pid)
	if err != nil {
		r.log.WithError(err).Error("open target failed")
		return
	}
	defer target.Close()

	reports, err := procinspect.TraverseHeaps(target, r.pid, listBlocks, calculateEntropy)
	if err != nil {
		r.log.WithError(err).Error("traverse heaps failed")
		return
	}
	procinspect.WriteHeapReports(r.out, reports, listBlocks)
}

func (r *REPL) cmdSearch(pattern string) {
	scanner, err := procinspect.NewScanner(r.pid, r.cfg, r.log)
	if err != nil {
		r.log.WithError(err).Error("open target failed")
		return
	}
	defer scanner.Close()

	fmt.Fprintln(r.out, "Searching committed memory...")
	report, err := scanner.Scan([]byte(pattern), r.isAborted)
	if err != nil {
		r.log.WithError(err).Error("scan failed")
		return
	}
	procinspect.WriteReport(r.out, report)
}
