package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

const (
	outputJSON = "json"
	outputYAML = "yaml"
)

func addOutputFlag(cmd *cobra.Command) {
	cmd.PersistentFlags().StringP(flagOutput, "o", outputJSON, "Output format (json|yaml)")
}

// printOutput writes v in the format selected by the output flag. YAML is
// derived from the JSON encoding so wide integers keep their string form.
func printOutput(cmd *cobra.Command, v interface{}) error {
	format, err := cmd.Flags().GetString(flagOutput)
	if err != nil {
		format = outputJSON
	}

	bz, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	switch format {
	case outputJSON:
	case outputYAML:
		var generic interface{}
		if err := json.Unmarshal(bz, &generic); err != nil {
			return err
		}
		if bz, err = yaml.Marshal(generic); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), strings.TrimRight(string(bz), "\n"))
	return err
}
