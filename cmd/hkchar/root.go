package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/pion/logging"
	"github.com/spf13/cobra"

	"github.com/hkontrol/hkaccessory"
)

var (
	catalogPath string
	verbose     bool
)

var rootCmd = &cobra.Command{
	Use:   "hkchar",
	Short: "Inspect HAP characteristics",
	Long: `hkchar works on the characteristic catalog: it renders accessory database
entries, enumerates valid values, formats outgoing values, checks controller
writes and encodes or decodes TLV8 payloads.

Characteristics are addressed by catalog name (Brightness) or by short or
long uuid (8, 00000008-0000-1000-8000-0026BB765291).`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&catalogPath, "catalog", "c", "", "Catalog yaml file (default: built in catalog)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log characteristic diagnostics")
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func loadCatalog() (*hkaccessory.Catalog, error) {
	if catalogPath == "" {
		return hkaccessory.DefaultCatalog()
	}
	f, err := os.Open(catalogPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return hkaccessory.LoadCatalog(f)
}

func config() hkaccessory.Config {
	lf := logging.NewDefaultLoggerFactory()
	lf.DefaultLogLevel = logging.LogLevelError
	if verbose {
		lf.DefaultLogLevel = logging.LogLevelDebug
	}
	return hkaccessory.Config{LoggerFactory: lf}
}

func newCharacteristic(name string) (*hkaccessory.Characteristic, error) {
	catalog, err := loadCatalog()
	if err != nil {
		return nil, err
	}
	return catalog.New(name, config())
}

// parseValue reads a json value, bare words are taken as strings.
func parseValue(s string) any {
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return s
	}
	return v
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// cli is the Connection used for writes issued from the command line.
type cli struct{}

func (cli) ID() string { return "hkchar" }
