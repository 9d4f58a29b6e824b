package main

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hkontrol/hkaccessory/tlv8"
)

var tlvBase64 bool

var tlvCmd = &cobra.Command{
	Use:   "tlv",
	Short: "Encode and decode TLV8 payloads",
}

var tlvDecodeCmd = &cobra.Command{
	Use:   "decode <payload>",
	Short: "Decode a hex (or --base64) TLV8 payload",
	Args:  cobra.ExactArgs(1),
	RunE:  runTLVDecode,
}

var tlvEncodeCmd = &cobra.Command{
	Use:   "encode <tag>=<hex>...",
	Short: "Encode items given as tag=hexvalue",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runTLVEncode,
}

func init() {
	tlvCmd.PersistentFlags().BoolVar(&tlvBase64, "base64", false, "Payloads are base64 instead of hex")
	tlvCmd.AddCommand(tlvDecodeCmd, tlvEncodeCmd)
	rootCmd.AddCommand(tlvCmd)
}

func runTLVDecode(cmd *cobra.Command, args []string) error {
	var b []byte
	var err error
	if tlvBase64 {
		b, err = base64.StdEncoding.DecodeString(args[0])
	} else {
		b, err = hex.DecodeString(args[0])
	}
	if err != nil {
		return fmt.Errorf("payload: %w", err)
	}

	items, err := tlv8.DecodeItems(b)
	if err != nil {
		return err
	}
	for _, it := range items {
		fmt.Fprintln(cmd.OutOrStdout(), it)
	}
	return nil
}

func runTLVEncode(cmd *cobra.Command, args []string) error {
	items := make([]tlv8.Item, 0, len(args))
	for _, a := range args {
		tag, value, ok := strings.Cut(a, "=")
		if !ok {
			return fmt.Errorf("item %q: expected tag=hex", a)
		}
		t, err := strconv.ParseUint(tag, 0, 8)
		if err != nil {
			return fmt.Errorf("item %q: tag: %w", a, err)
		}
		v, err := hex.DecodeString(value)
		if err != nil {
			return fmt.Errorf("item %q: value: %w", a, err)
		}
		items = append(items, tlv8.Item{Tag: byte(t), Value: v})
	}

	b := tlv8.Encode(items...)
	if tlvBase64 {
		fmt.Fprintln(cmd.OutOrStdout(), base64.StdEncoding.EncodeToString(b))
	} else {
		fmt.Fprintln(cmd.OutOrStdout(), hex.EncodeToString(b))
	}
	return nil
}
