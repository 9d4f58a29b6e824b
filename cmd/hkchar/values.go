package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var valuesLimit int

var valuesCmd = &cobra.Command{
	Use:   "values <characteristic>",
	Short: "Enumerate the valid values of a numeric characteristic",
	Args:  cobra.ExactArgs(1),
	RunE:  runValues,
}

func init() {
	valuesCmd.Flags().IntVarP(&valuesLimit, "limit", "n", 1000, "Stop after n values, 0 for no limit")
	rootCmd.AddCommand(valuesCmd)
}

func runValues(cmd *cobra.Command, args []string) error {
	c, err := newCharacteristic(args[0])
	if err != nil {
		return err
	}
	seq, err := c.ValidValues()
	if err != nil {
		return err
	}

	n := 0
	for v := range seq {
		if valuesLimit > 0 && n == valuesLimit {
			fmt.Fprintln(cmd.OutOrStdout(), "...")
			break
		}
		fmt.Fprintln(cmd.OutOrStdout(), v)
		n++
	}
	return nil
}
