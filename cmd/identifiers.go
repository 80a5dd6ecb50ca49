package cmd

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"cover-manager/core/bib"
	"cover-manager/core/config"

	"github.com/spf13/cobra"
)

var identifiersMMSID string

// identifiersCmd extracts identifiers from a local record without any network call.
var identifiersCmd = &cobra.Command{
	Use:   "identifiers <file>",
	Short: "Print the identifiers and cover annotations of a local record",
	Long: `Reads a catalog record (JSON) or a bare MARCXML body from a file, or
from stdin when the file is "-", and prints the extracted identifiers and
cover annotations.`,
	Args: cobra.ExactArgs(1),
	RunE: runIdentifiers,
}

func init() {
	identifiersCmd.Flags().StringVar(&identifiersMMSID, "mms-id", "", "Record id to use for a bare MARCXML body")
	RootCmd.AddCommand(identifiersCmd)
}

// extraction is the printed result of the identifiers command.
type extraction struct {
	Identifiers bib.IdentifierSet `json:"identifiers"`
	Available   *bib.CoverIDs     `json:"available"`
	Active      *bib.CoverIDs     `json:"active"`
}

func runIdentifiers(cmd *cobra.Command, args []string) error {
	var (
		data []byte
		err  error
	)
	if args[0] == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(args[0])
	}
	if err != nil {
		return fmt.Errorf("failed to read record: %w", err)
	}

	schema := bib.DefaultSchema()
	if cfg, err := config.LoadConfig("."); err == nil {
		schema = cfg.Schema
	}

	ex, err := extract(data, identifiersMMSID, schema)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), ex)
}

// extract parses data as a catalog record, or as MARCXML when it is not JSON.
func extract(data []byte, mmsID string, schema bib.Schema) (*extraction, error) {
	var rec *bib.Record
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '{' {
		decoded, err := bib.Decode(trimmed)
		if err != nil {
			return nil, err
		}
		rec = decoded
	} else {
		rec = &bib.Record{MMSID: mmsID, Anies: []string{string(data)}}
	}

	rec, err := bib.Parse(rec)
	if err != nil {
		return nil, err
	}

	annotations := bib.ExtractCovers(rec, schema)
	return &extraction{
		Identifiers: bib.Identifiers(rec, schema),
		Available:   annotations.Available,
		Active:      annotations.Active,
	}, nil
}
