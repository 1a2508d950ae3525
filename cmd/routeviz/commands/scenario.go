package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/DrSkyle/routeviz/internal/app"
)

var saveName string

var scenarioCmd = &cobra.Command{
	Use:   "scenario",
	Short: "Manage saved scenarios",
	Long: `Scenarios are saved networks. They live in the store named by
scenarios.url: a directory, an S3 bucket or an embedded database.`,
}

var scenarioListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved scenarios",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := headlessApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close(cmd.Context())

		names, err := a.Scenarios.List(cmd.Context())
		if err != nil {
			return err
		}
		if len(names) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No saved scenarios.")
			return nil
		}
		for _, n := range names {
			fmt.Fprintln(cmd.OutOrStdout(), n)
		}
		return nil
	},
}

var scenarioShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Print a saved scenario as YAML",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := headlessApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close(cmd.Context())

		sc, err := a.Scenarios.Load(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		data, err := sc.Encode()
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

// storeFile reads a YAML or HCL file and saves it, optionally renamed.
func storeFile(cmd *cobra.Command, path string) error {
	a, err := headlessApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close(cmd.Context())

	sc, err := app.ReadFile(path, a.Canvas())
	if err != nil {
		return err
	}
	if saveName != "" {
		sc.Name = saveName
	}
	name, err := a.Scenarios.Save(cmd.Context(), sc)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Saved scenario %s (%d nodes, %d edges).\n", name, len(sc.Nodes), len(sc.Edges))
	return nil
}

var scenarioSaveCmd = &cobra.Command{
	Use:   "save <file.yaml>",
	Short: "Validate a YAML scenario file and store it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return storeFile(cmd, args[0])
	},
}

var scenarioImportCmd = &cobra.Command{
	Use:   "import <file.hcl>",
	Short: "Import an HCL network description",
	Long: `Reads an HCL file of node and edge blocks and stores it as a scenario.

  node "depot" {
    x = canvas.width / 2
    y = 100
  }
  edge {
    from = "depot"
    to   = "market"
    cost = 4
  }`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return storeFile(cmd, args[0])
	},
}

var scenarioDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a saved scenario",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := headlessApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close(cmd.Context())

		if err := a.Scenarios.Delete(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted scenario %s.\n", args[0])
		return nil
	},
}

var scenarioLoadCmd = &cobra.Command{
	Use:   "load [name]",
	Short: "Open a saved scenario in the editor",
	Long:  "Opens the editor on a saved scenario. Without a name, pick one from a list.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := ""
		if len(args) == 1 {
			name = args[0]
		} else {
			a, err := headlessApp(cmd)
			if err != nil {
				return err
			}
			names, err := a.Scenarios.List(cmd.Context())
			a.Close(cmd.Context())
			if err != nil {
				return err
			}
			if len(names) == 0 {
				return errors.New("no saved scenarios")
			}
			name, err = PromptForScenario(names)
			if err != nil {
				return err
			}
			if name == "" {
				return nil
			}
		}
		scenarioName, scenarioFile = name, ""
		return rootCmd.RunE(cmd, nil)
	},
}

func init() {
	scenarioSaveCmd.Flags().StringVar(&saveName, "name", "", "Store under this name instead of the file's")
	scenarioImportCmd.Flags().StringVar(&saveName, "name", "", "Store under this name instead of the file's")

	scenarioCmd.AddCommand(scenarioListCmd, scenarioShowCmd, scenarioSaveCmd, scenarioImportCmd, scenarioDeleteCmd, scenarioLoadCmd)
}
