package client

import (
	"net/url"
	"strconv"

	"github.com/spf13/cobra"
)

// NewRecordCommand constructs the `record` command group and subcommands.
func NewRecordCommand(baseURL BaseURLFunc) *cobra.Command {
	recordCmd := &cobra.Command{Use: "record", Short: "Entity record operations"}

	recordCmd.AddCommand(
		newRecordWriteCommand(baseURL),
		newRecordCurrentCommand(baseURL),
		newRecordAsOfCommand(baseURL),
		newRecordCloseCommand(baseURL),
		newRecordHistoryCommand(baseURL),
		newRecordLookupCommand(baseURL),
	)

	return recordCmd
}

func entityFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("type", "t", "", "Entity type")
	cmd.Flags().String("tenant", "default", "Tenant")
	cmd.Flags().StringP("key", "k", "", "Business key")
}

func entityQuery(cmd *cobra.Command) url.Values {
	et, _ := cmd.Flags().GetString("type")
	tenant, _ := cmd.Flags().GetString("tenant")
	key, _ := cmd.Flags().GetString("key")
	return url.Values{
		"entity_type":  {et},
		"tenant":       {tenant},
		"business_key": {key},
	}
}

// newRecordWriteCommand constructs the `record write` subcommand.
func newRecordWriteCommand(baseURL BaseURLFunc) *cobra.Command {
	writeCmd := &cobra.Command{
		Use:   "write",
		Short: "Record a new entity state (no-op if payload is unchanged)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			et, _ := cmd.Flags().GetString("type")
			tenant, _ := cmd.Flags().GetString("tenant")
			key, _ := cmd.Flags().GetString("key")
			payloadArg, _ := cmd.Flags().GetString("payload")
			actor, _ := cmd.Flags().GetString("actor")
			source, _ := cmd.Flags().GetString("source")

			payload, err := readPayloadArg(cmd.InOrStdin(), payloadArg)
			if err != nil {
				return err
			}
			body := map[string]any{
				"entity_type":  et,
				"tenant":       tenant,
				"business_key": key,
				"payload":      payload,
				"actor":        actor,
				"source_tag":   source,
			}
			var out map[string]any
			if err := httpPostJSON(cmd.Context(), baseURL(), "/v1/records/write", body, &out); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}
	entityFlags(writeCmd)
	writeCmd.Flags().StringP("payload", "p", "", "Payload JSON, @file, or - for stdin")
	writeCmd.Flags().String("actor", "cli", "Acting principal")
	writeCmd.Flags().String("source", "", "Source tag")
	return writeCmd
}

// newRecordCurrentCommand constructs the `record current` subcommand.
func newRecordCurrentCommand(baseURL BaseURLFunc) *cobra.Command {
	currentCmd := &cobra.Command{
		Use:   "current",
		Short: "Read the current version of an entity",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var out map[string]any
			if err := httpGetJSON(cmd.Context(), baseURL(), "/v1/records/current", entityQuery(cmd), &out); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}
	entityFlags(currentCmd)
	return currentCmd
}

// newRecordAsOfCommand constructs the `record asof` subcommand.
func newRecordAsOfCommand(baseURL BaseURLFunc) *cobra.Command {
	asofCmd := &cobra.Command{
		Use:   "asof",
		Short: "Read the version effective at a past instant",
		RunE: func(cmd *cobra.Command, _ []string) error {
			at, _ := cmd.Flags().GetString("at")
			q := entityQuery(cmd)
			q.Set("at", at)
			var out map[string]any
			if err := httpGetJSON(cmd.Context(), baseURL(), "/v1/records/asof", q, &out); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}
	entityFlags(asofCmd)
	asofCmd.Flags().String("at", "", "Instant: RFC3339 or Unix ms")
	return asofCmd
}

// newRecordCloseCommand constructs the `record close` subcommand.
func newRecordCloseCommand(baseURL BaseURLFunc) *cobra.Command {
	closeCmd := &cobra.Command{
		Use:   "close",
		Short: "Mark an entity inactive",
		RunE: func(cmd *cobra.Command, _ []string) error {
			et, _ := cmd.Flags().GetString("type")
			tenant, _ := cmd.Flags().GetString("tenant")
			key, _ := cmd.Flags().GetString("key")
			actor, _ := cmd.Flags().GetString("actor")
			body := map[string]any{
				"entity_type":  et,
				"tenant":       tenant,
				"business_key": key,
				"actor":        actor,
			}
			var out map[string]any
			if err := httpPostJSON(cmd.Context(), baseURL(), "/v1/records/close", body, &out); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}
	entityFlags(closeCmd)
	closeCmd.Flags().String("actor", "cli", "Acting principal")
	return closeCmd
}

// newRecordHistoryCommand constructs the `record history` subcommand.
func newRecordHistoryCommand(baseURL BaseURLFunc) *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "List an entity's version history",
		RunE: func(cmd *cobra.Command, _ []string) error {
			limit, _ := cmd.Flags().GetInt("limit")
			reverse, _ := cmd.Flags().GetBool("reverse")
			q := entityQuery(cmd)
			if limit > 0 {
				q.Set("limit", strconv.Itoa(limit))
			}
			if reverse {
				q.Set("reverse", "true")
			}
			var out map[string]any
			if err := httpGetJSON(cmd.Context(), baseURL(), "/v1/records/history", q, &out); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}
	entityFlags(historyCmd)
	historyCmd.Flags().Int("limit", 0, "Max versions (0 = all)")
	historyCmd.Flags().Bool("reverse", false, "Newest first")
	return historyCmd
}

// newRecordLookupCommand constructs the `record lookup` subcommand.
func newRecordLookupCommand(baseURL BaseURLFunc) *cobra.Command {
	lookupCmd := &cobra.Command{
		Use:   "lookup",
		Short: "Resolve the identity record for a business key",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var out map[string]any
			if err := httpGetJSON(cmd.Context(), baseURL(), "/v1/identities/lookup", entityQuery(cmd), &out); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}
	entityFlags(lookupCmd)
	return lookupCmd
}
