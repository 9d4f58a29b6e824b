package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/hkontrol/hkaccessory"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "List the characteristic catalog",
	Args:  cobra.NoArgs,
	RunE:  runCatalog,
}

func init() {
	rootCmd.AddCommand(catalogCmd)
}

func runCatalog(cmd *cobra.Command, args []string) error {
	catalog, err := loadCatalog()
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tTYPE\tFORMAT\tPERMS\tUNIT")
	for _, d := range catalog.Definitions() {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", d.Name, hkaccessory.ShortUUID(d.UUID), d.Format, d.Perms, d.Unit)
	}
	return w.Flush()
}
