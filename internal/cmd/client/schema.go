package client

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewSchemaCommand constructs the `schema` command group and subcommands.
func NewSchemaCommand(baseURL BaseURLFunc) *cobra.Command {
	schemaCmd := &cobra.Command{Use: "schema", Short: "Payload schema operations"}
	schemaCmd.AddCommand(newSchemaRegisterCommand(baseURL), newSchemaListCommand(baseURL))
	return schemaCmd
}

// newSchemaRegisterCommand constructs the `schema register` subcommand.
func newSchemaRegisterCommand(baseURL BaseURLFunc) *cobra.Command {
	registerCmd := &cobra.Command{
		Use:   "register",
		Short: "Register a payload schema for an entity type",
		RunE: func(cmd *cobra.Command, _ []string) error {
			et, _ := cmd.Flags().GetString("type")
			required, _ := cmd.Flags().GetStringSlice("required")
			constraint, _ := cmd.Flags().GetString("constraint")
			maxBytes, _ := cmd.Flags().GetInt("max-bytes")
			body := map[string]any{
				"entity_type":       et,
				"required_fields":   required,
				"constraint":        constraint,
				"max_payload_bytes": maxBytes,
			}
			if err := httpPostJSON(cmd.Context(), baseURL(), "/v1/schemas/register", body, nil); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "status:", "OK")
			return nil
		},
	}
	registerCmd.Flags().StringP("type", "t", "", "Entity type")
	registerCmd.Flags().StringSlice("required", nil, "Required top-level fields")
	registerCmd.Flags().String("constraint", "", "CEL constraint over the payload")
	registerCmd.Flags().Int("max-bytes", 0, "Per-type payload size limit (0 = tenant default)")
	return registerCmd
}

// newSchemaListCommand constructs the `schema list` subcommand.
func newSchemaListCommand(baseURL BaseURLFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered schemas",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var out map[string]any
			if err := httpGetJSON(cmd.Context(), baseURL(), "/v1/schemas", nil, &out); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}
}
