package client

import (
	"github.com/spf13/cobra"
)

// NewRoot constructs a root Cobra command for the OneVault client.
// It registers the record, tenant, schema, and audit command groups.
func NewRoot(baseURL BaseURLFunc) *cobra.Command {
	root := &cobra.Command{
		Use:   "onevault",
		Short: "OneVault client commands",
	}
	root.AddCommand(NewRecordCommand(baseURL))
	root.AddCommand(NewTenantCommand(baseURL))
	root.AddCommand(NewSchemaCommand(baseURL))
	root.AddCommand(NewAuditCommand(baseURL))
	return root
}
