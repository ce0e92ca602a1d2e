package client

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewTenantCommand constructs the `tenant` command group and subcommands.
func NewTenantCommand(baseURL BaseURLFunc) *cobra.Command {
	tenantCmd := &cobra.Command{Use: "tenant", Short: "Tenant operations"}
	tenantCmd.AddCommand(newTenantCreateCommand(baseURL), newTenantListCommand(baseURL))
	return tenantCmd
}

// newTenantCreateCommand constructs the `tenant create` subcommand.
func newTenantCreateCommand(baseURL BaseURLFunc) *cobra.Command {
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a tenant",
		RunE: func(cmd *cobra.Command, _ []string) error {
			name, _ := cmd.Flags().GetString("name")
			body := map[string]string{"tenant": name}
			if err := httpPostJSON(cmd.Context(), baseURL(), "/v1/tenants/create", body, nil); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "status:", "OK")
			return nil
		},
	}
	createCmd.Flags().String("name", "", "Tenant name")
	return createCmd
}

// newTenantListCommand constructs the `tenant list` subcommand.
func newTenantListCommand(baseURL BaseURLFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List tenants",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var out map[string]any
			if err := httpGetJSON(cmd.Context(), baseURL(), "/v1/tenants", nil, &out); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}
}
