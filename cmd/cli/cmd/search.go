package cmd

import (
	"fmt"
	"io"
	"math/big"
	"os"

	"github.com/spf13/cobra"

	"github.com/sofa-bound/internal/parser"
	"github.com/sofa-bound/internal/sofa"
	"github.com/sofa-bound/internal/solver"
	apperrors "github.com/sofa-bound/pkg/errors"
)

var (
	// Search command flags
	inputFile      string
	workersFlag    int
	batchIterFlag  int
	targetOverride string
)

// searchCmd represents the search command
var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Run the branch-and-bound search on a problem definition",
	Long: `Search reads a problem definition (rotation angles as Pythagorean
triples, the pivot index, the initial pool size and the target area),
builds the initial candidate pool and prunes it until it is empty.

Every candidate kept at any point has area at least the target, so an
empty final pool proves the target is an upper bound for the supplied
set of rotation angles.`,
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().StringVarP(&inputFile, "input", "i", "", "Problem definition file (default: stdin)")
	searchCmd.Flags().IntVar(&workersFlag, "workers", 0, "Number of parallel workers (default: from config)")
	searchCmd.Flags().IntVar(&batchIterFlag, "batch-iterations", 0, "Iterations per worker per batch (default: from config)")
	searchCmd.Flags().StringVar(&targetOverride, "target", "", "Target area as p/q, overriding the problem definition")
}

func runSearch(cmd *cobra.Command, args []string) error {
	var in io.Reader = os.Stdin
	if inputFile != "" {
		f, err := os.Open(inputFile)
		if err != nil {
			return apperrors.Wrap(apperrors.CodeInvalidInput, "cannot open input", err)
		}
		defer f.Close()
		in = f
	}

	problem, err := parser.Parse(in)
	if err != nil {
		return err
	}
	if targetOverride != "" {
		t, ok := new(big.Rat).SetString(targetOverride)
		if !ok {
			return apperrors.Newf(apperrors.CodeInvalidInput, "target %q is not a rational", targetOverride)
		}
		problem.Target = t
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Using the following normal vectors:")
	fmt.Fprintln(out)
	for _, n := range problem.Normals {
		fmt.Fprintf(out, "%s,\n", n)
	}
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Number of initial sofas: %d\n", problem.NumSofas)
	fmt.Fprintf(out, "Target: %s\n", problem.Target.RatString())
	fmt.Fprintln(out, "\nInitializing...")
	fmt.Fprintln(out)

	pool := sofa.APrioriSofas(problem.Normals, problem.MuFixIdx, problem.NumSofas)

	scfg := solver.Config{
		Workers:          cfg.Solver.Workers,
		BatchIterations:  cfg.Solver.BatchIterations,
		ProgressInterval: cfg.Solver.ProgressInterval,
	}
	if workersFlag > 0 {
		scfg.Workers = workersFlag
	}
	if batchIterFlag > 0 {
		scfg.BatchIterations = batchIterFlag
	}

	result, err := solver.New(problem.Target, scfg, logger).Run(cmd.Context(), pool)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, "Done.")
	fmt.Fprintf(out, "Total iteration: %d\n", result.TotalIterations)
	return nil
}
