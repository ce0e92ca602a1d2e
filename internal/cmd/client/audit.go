package client

import (
	"net/url"
	"strconv"

	"github.com/spf13/cobra"
)

// NewAuditCommand constructs the `audit` command group and subcommands.
func NewAuditCommand(baseURL BaseURLFunc) *cobra.Command {
	auditCmd := &cobra.Command{Use: "audit", Short: "Audit trail operations"}
	auditCmd.AddCommand(newAuditTailCommand(baseURL))
	return auditCmd
}

// newAuditTailCommand constructs the `audit tail` subcommand.
func newAuditTailCommand(baseURL BaseURLFunc) *cobra.Command {
	tailCmd := &cobra.Command{
		Use:   "tail",
		Short: "Read change events from the audit trail",
		RunE: func(cmd *cobra.Command, _ []string) error {
			start, _ := cmd.Flags().GetUint64("start-seq")
			limit, _ := cmd.Flags().GetInt("limit")
			filter, _ := cmd.Flags().GetString("filter")

			q := url.Values{}
			if start > 0 {
				q.Set("start_seq", strconv.FormatUint(start, 10))
			}
			if limit > 0 {
				q.Set("limit", strconv.Itoa(limit))
			}
			if filter != "" {
				q.Set("filter", filter)
			}
			var out map[string]any
			if err := httpGetJSON(cmd.Context(), baseURL(), "/v1/audit/tail", q, &out); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}
	tailCmd.Flags().Uint64("start-seq", 0, "Resume from this entry seq")
	tailCmd.Flags().Int("limit", 0, "Max entries (0 = all)")
	tailCmd.Flags().String("filter", "", "CEL filter (server-side)")
	return tailCmd
}
