package procinspect

import "github.com/spf13/cobra"

// BindFlags registers the scanner's tuning options on cmd, binding each flag
// directly to its cfg field with the cmd.Flags().XxxVar helpers, so the
// parsed values are already in cfg when RunE runs, rather than using a
// package of global flag.Var calls.
func BindFlags(cmd *cobra.Command, cfg *Config) {
	cmd.Flags().Uint64Var(&cfg.MemoryBudget, "budget", cfg.MemoryBudget,
		"maximum bytes checked out by the worker pool at once")
	cmd.Flags().Uint64Var(&cfg.StrideFactor, "stride-factor", cfg.StrideFactor,
		"multiplier applied to the host allocation granularity to form the block stride")
	cmd.Flags().IntVar(&cfg.WorkerCeiling, "workers", cfg.WorkerCeiling,
		"maximum number of concurrent reader-matcher workers")
	cmd.Flags().BoolVar(&cfg.VerboseReads, "verbose", cfg.VerboseReads,
		"report short reads and read failures with region metadata")
	cmd.Flags().IntVar(&cfg.ResultCeiling, "result-ceiling", cfg.ResultCeiling,
		"suppress the detailed match listing above this many matches")
}
