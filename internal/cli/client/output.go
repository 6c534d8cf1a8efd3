package client

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

const (
	outputText = "text"
	outputJSON = "json"
)

// AddOutputFlag registers the persistent --output flag on the root command.
func AddOutputFlag(cmd *cobra.Command) {
	cmd.PersistentFlags().StringP("output", "o", outputText, "Output format: text or json")
}

func wantJSON(cmd *cobra.Command) (bool, error) {
	format, err := cmd.Flags().GetString("output")
	if err != nil {
		return false, nil
	}
	switch format {
	case "", outputText:
		return false, nil
	case outputJSON:
		return true, nil
	default:
		return false, fmt.Errorf("unknown output format %q (want text or json)", format)
	}
}

func printJSON(w io.Writer, v any) error {
	output, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(output))
	return err
}
