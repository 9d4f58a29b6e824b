package main

import (
	"context"

	"github.com/spf13/cobra"
)

var (
	describeValue string
	describeIID   uint64
)

var describeCmd = &cobra.Command{
	Use:   "describe <characteristic>",
	Short: "Print the accessory database entry of a characteristic",
	Args:  cobra.ExactArgs(1),
	RunE:  runDescribe,
}

func init() {
	describeCmd.Flags().StringVar(&describeValue, "value", "", "Value to store first (json)")
	describeCmd.Flags().Uint64Var(&describeIID, "iid", 1, "Instance id")
	rootCmd.AddCommand(describeCmd)
}

func runDescribe(cmd *cobra.Command, args []string) error {
	c, err := newCharacteristic(args[0])
	if err != nil {
		return err
	}
	c.SetIID(describeIID)
	if cmd.Flags().Changed("value") {
		c.UpdateValue(parseValue(describeValue))
	}

	d, err := c.ToHAP(context.Background(), nil, false)
	if err != nil {
		return err
	}
	return printJSON(cmd, d)
}
