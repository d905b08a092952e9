// Command procinspect is an interactive inspector for a live Windows
// process: select a target by PID, then list its processes, modules,
// threads, and heaps, or search its committed memory for a literal pattern.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/shadowmem/procinspect"
	"github.com/shadowmem/procinspect/internal/repl"
)

func main() {
	cfg := procinspect.DefaultConfig()

	root := &cobra.Command{
		Use:   "procinspect",
		Short: "Interactive inspector for a live process's memory",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cfg)
		},
	}
	procinspect.BindFlags(root, &cfg)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cfg procinspect.Config) error {
	logFile, err := setupLogFile()
	log := procinspect.NewTextLogger(cfg)
	if err != nil {
		log.WithError(err).Warn("could not create log file, logging to stderr only")
	} else {
		defer logFile.Close()
		log.SetOutput(logFile)
	}

	out := procinspect.ConsoleWriter()
	r := repl.New(cfg, out, log)
	return r.Run()
}

// setupLogFile creates a timestamped log file for this session.
func setupLogFile() (*os.File, error) {
	name := fmt.Sprintf("procinspect_%s.log", time.Now().Format("2006-01-02_15-04-05"))
	return os.OpenFile(name, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
}
