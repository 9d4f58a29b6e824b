package main

import (
	"github.com/spf13/cobra"

	"github.com/hkontrol/hkaccessory"
)

var formatCmd = &cobra.Command{
	Use:   "format <characteristic> <value>",
	Short: "Show the wire form of a value",
	Long: `format stores the value the way an application update would, coercing it
when needed, and prints what a controller would receive.`,
	Args: cobra.ExactArgs(2),
	RunE: runFormat,
}

func init() {
	rootCmd.AddCommand(formatCmd)
}

func runFormat(cmd *cobra.Command, args []string) error {
	c, err := newCharacteristic(args[0])
	if err != nil {
		return err
	}
	var warnings []string
	c.OnWarning(func(w hkaccessory.Warning) {
		warnings = append(warnings, w.Message)
	})
	c.UpdateValue(parseValue(args[1]))

	return printJSON(cmd, struct {
		Stored   any      `json:"stored"`
		Wire     any      `json:"wire"`
		Warnings []string `json:"warnings,omitempty"`
	}{
		Stored:   c.Value(),
		Wire:     hkaccessory.FormatOutgoingValue(c.Value(), c.Props()),
		Warnings: warnings,
	})
}
