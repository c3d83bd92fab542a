package main

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/resuai/internal/schemas"
)

// schemaNames maps the command argument to the embedded schema.
var schemaNames = map[string]string{
	"analysis":      schemas.Analysis,
	"portfolio":     schemas.Portfolio,
	"parsed-resume": schemas.ParsedResume,
	"edited-resume": schemas.EditedResume,
}

var validateCmd = &cobra.Command{
	Use:   "validate <schema> <json-file>",
	Short: "Validate a JSON file against an embedded schema",
	Long:  "Schemas: " + strings.Join(sortedSchemaNames(), ", ") + ".",
	Args:  cobra.ExactArgs(2),
	RunE:  runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	schema, ok := schemaNames[args[0]]
	if !ok {
		return fmt.Errorf("unknown schema %q (want one of %s)", args[0], strings.Join(sortedSchemaNames(), ", "))
	}

	if err := schemas.ValidateFile(schema, args[1]); err != nil {
		var validationErr *schemas.ValidationError
		if errors.As(err, &validationErr) {
			for _, fe := range validationErr.Errors {
				fmt.Fprintf(cmd.ErrOrStderr(), "  %s: %s\n", fe.Field, fe.Message)
			}
			return fmt.Errorf("%s does not match %s", args[1], args[0])
		}
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s is a valid %s document\n", args[1], args[0])
	return nil
}

func sortedSchemaNames() []string {
	names := make([]string, 0, len(schemaNames))
	for name := range schemaNames {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
