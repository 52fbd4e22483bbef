package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/discochess/contagion/internal/scenario"
)

var scenariosCmd = &cobra.Command{
	Use:   "scenarios",
	Short: "Inspect stored scenarios",
	Long: `List and show the scenarios in the configured store.

Examples:
  # Built-in scenarios
  contagion scenarios list

  # Scenarios in an S3 bucket
  CONTAGION_STORE=s3 CONTAGION_STORE_BUCKET=epi contagion scenarios list

  # Print one scenario with defaults filled in
  contagion scenarios show small-town`,
}

var scenariosListCmd = &cobra.Command{
	Use:   "list",
	Short: "List scenario names",
	Args:  cobra.NoArgs,
	RunE:  runScenariosList,
}

var scenariosShowCmd = &cobra.Command{
	Use:   "show NAME",
	Short: "Print a scenario as YAML",
	Args:  cobra.ExactArgs(1),
	RunE:  runScenariosShow,
}

func init() {
	scenariosCmd.AddCommand(scenariosListCmd, scenariosShowCmd)
	rootCmd.AddCommand(scenariosCmd)
}

func runScenariosList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer log.Sync()

	st, _, err := openStore(cmd.Context(), cfg, log)
	if err != nil {
		return err
	}
	defer st.Close()

	names, err := st.List(cmd.Context())
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tDESCRIPTION")
	for _, name := range names {
		sc, err := scenario.Load(cmd.Context(), st, name)
		if err != nil {
			fmt.Fprintf(tw, "%s\t(invalid: %v)\n", name, err)
			continue
		}
		fmt.Fprintf(tw, "%s\t%s\n", name, sc.Description)
	}
	return tw.Flush()
}

func runScenariosShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer log.Sync()

	st, _, err := openStore(cmd.Context(), cfg, log)
	if err != nil {
		return err
	}
	defer st.Close()

	sc, err := scenario.Load(cmd.Context(), st, args[0])
	if err != nil {
		return err
	}
	data, err := sc.Marshal()
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}
