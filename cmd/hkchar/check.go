package main

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/hkontrol/hkaccessory"
)

var checkCmd = &cobra.Command{
	Use:   "check <characteristic> <value>",
	Short: "Validate a controller write",
	Long: `check runs the value through the set request path of a controller write
and prints the resulting HAP status.`,
	Args: cobra.ExactArgs(2),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	c, err := newCharacteristic(args[0])
	if err != nil {
		return err
	}

	type result struct {
		Status  hkaccessory.HAPStatus `json:"status"`
		Message string                `json:"message"`
		Value   any                   `json:"value,omitempty"`
	}

	_, err = c.HandleSetRequest(context.Background(), parseValue(args[1]), cli{}, nil)
	if err != nil {
		var status hkaccessory.HAPStatus
		if !errors.As(err, &status) {
			return err
		}
		return printJSON(cmd, result{Status: status, Message: status.String()})
	}
	return printJSON(cmd, result{
		Status:  hkaccessory.StatusSuccess,
		Message: hkaccessory.StatusSuccess.String(),
		Value:   hkaccessory.FormatOutgoingValue(c.Value(), c.Props()),
	})
}
