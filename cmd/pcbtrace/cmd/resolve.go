package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/OpenTracePCB/pkg/connectivity"
	"github.com/OpenTraceLab/OpenTracePCB/pkg/nodeid"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <project> <node-id>",
	Short: "Print the electrical type of a Node ID",
	Args:  cobra.ExactArgs(2),
	RunE:  runResolve,
}

func init() {
	rootCmd.AddCommand(resolveCmd)
}

func runResolve(cmd *cobra.Command, args []string) error {
	id, ok := nodeid.Parse(args[1])
	if !ok {
		return fmt.Errorf("invalid node id %q", args[1])
	}
	p, err := loadProject(args[0])
	if err != nil {
		return err
	}
	typ := connectivity.NewResolver(p.store).Type(id)
	fmt.Fprintf(cmd.OutOrStdout(), "%v: %s\n", id, typ)
	return nil
}
