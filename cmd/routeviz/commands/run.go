package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/DrSkyle/routeviz/internal/app"
	"github.com/DrSkyle/routeviz/pkg/algo"
)

var (
	runAlgorithm string
	runStart     int
	runEnd       int

	replayFormat   string
	replayOutput   string
	replayMaxSteps int
)

// errRejected marks a validate run that found a blocking problem.
var errRejected = errors.New("the network would be rejected")

// addGraphFlags registers the flags that pick a graph and a route.
func addGraphFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&scenarioName, "scenario", "s", "", "Saved scenario name")
	cmd.Flags().StringVarP(&scenarioFile, "file", "f", "", "Scenario file (.yaml or .hcl)")
	cmd.Flags().StringVarP(&runAlgorithm, "algorithm", "a", "", "dijkstra or bellman-ford (default from the scenario, else dijkstra)")
	cmd.Flags().IntVar(&runStart, "start", -1, "Start node index (default from the scenario)")
	cmd.Flags().IntVar(&runEnd, "end", -1, "End node index (default from the scenario)")
}

func runSpec() (app.RunSpec, error) {
	spec := app.RunSpec{Start: runStart, End: runEnd}
	if runAlgorithm != "" {
		alg, err := algo.ParseAlgorithm(runAlgorithm)
		if err != nil {
			return spec, err
		}
		spec.Algorithm = alg
	}
	return spec, nil
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check a network against the run rules and the backend",
	Long: `Runs every local admission rule and asks the algorithm service to
validate the network, without running an algorithm.

Example:
  routeviz validate
  routeviz validate --file city.hcl --algorithm bellman-ford`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		spec, err := runSpec()
		if err != nil {
			return err
		}
		a, err := headlessApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close(cmd.Context())

		sc, err := a.Resolve(cmd.Context(), scenarioName, scenarioFile)
		if err != nil {
			return err
		}
		res, err := a.Validate(cmd.Context(), sc, spec)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "scenario: %s\n", sc.Name)
		fmt.Fprintf(out, "route: %s N%d -> N%d\n", res.Run.Algorithm.Title(), res.Run.Start, res.Run.End)
		s := res.Summary
		fmt.Fprintf(out, "graph: %d nodes, %d edges, %d components, negative edges: %s\n",
			s.Nodes, s.Edges, s.Components, yesNo(s.HasNegativeEdges))

		for _, v := range s.Violations {
			fmt.Fprintf(out, "[FAIL] %s: %s\n", v.ID, v.Message)
		}
		switch {
		case res.RemoteErr != nil:
			printError(out, res.RemoteErr)
		case !res.Remote.Valid:
			msg := res.Remote.Error
			if res.Remote.Field != "" {
				msg += " (" + res.Remote.Field + ")"
			}
			fmt.Fprintf(out, "[FAIL] backend: %s\n", msg)
		default:
			fmt.Fprintf(out, "backend: valid, connected: %s, negative edges: %s\n",
				yesNo(res.Remote.Connected), yesNo(res.Remote.HasNegativeEdges))
		}

		if !res.OK() {
			return errRejected
		}
		fmt.Fprintln(out, "[OK] the run would be admitted")
		return nil
	},
}

var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Run an algorithm and print its playback",
	Long: `Runs the algorithm through the same checks as the editor, then steps
the playback to the end and prints every frame with the distance table.

Example:
  routeviz replay --start 0 --end 6
  routeviz replay --scenario city --format json --output city.json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		spec, err := runSpec()
		if err != nil {
			return err
		}
		switch replayFormat {
		case "text", "json", "csv":
		default:
			return fmt.Errorf("unknown format %q (text, json or csv)", replayFormat)
		}

		a, err := headlessApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close(cmd.Context())

		sc, err := a.Resolve(cmd.Context(), scenarioName, scenarioFile)
		if err != nil {
			return err
		}
		t, err := a.Replay(cmd.Context(), sc, spec, replayMaxSteps)
		if err != nil {
			return err
		}

		if replayOutput == "" || replayOutput == "-" {
			return t.Write(cmd.OutOrStdout(), replayFormat)
		}
		f, err := os.Create(replayOutput)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		if err := t.Write(f, replayFormat); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", replayOutput)
		return nil
	},
}

func init() {
	addGraphFlags(validateCmd)
	addGraphFlags(replayCmd)
	replayCmd.Flags().StringVar(&replayFormat, "format", "text", "Output format: text, json or csv")
	replayCmd.Flags().StringVarP(&replayOutput, "output", "o", "", "Write to a file instead of stdout")
	replayCmd.Flags().IntVar(&replayMaxSteps, "max-steps", 0, "Stop after this many steps (0: whole trace)")
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
