package cmd

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/medfleet/config"
	"github.com/kilianp07/medfleet/core/dispatch/logging"
	"github.com/kilianp07/medfleet/core/model"
	"github.com/kilianp07/medfleet/pkg/export"
)

var (
	actionsSince     time.Duration
	actionsAmbulance string
	actionsKind      string
	actionsLimit     int
	actionsFormat    string
)

var actionsCmd = &cobra.Command{
	Use:   "actions",
	Short: "Show the action journal",
	RunE:  runActions,
}

func init() {
	actionsCmd.Flags().DurationVar(&actionsSince, "since", 24*time.Hour, "only show actions newer than this duration")
	actionsCmd.Flags().StringVar(&actionsAmbulance, "ambulance", "", "filter by ambulance id")
	actionsCmd.Flags().StringVar(&actionsKind, "action", "", "filter by action (request, dispatch, cancel, alert, optimize, hospital_call)")
	actionsCmd.Flags().IntVar(&actionsLimit, "limit", 50, "maximum number of records, newest kept")
	actionsCmd.Flags().StringVar(&actionsFormat, "format", "table", "output format: table, json or csv")
	rootCmd.AddCommand(actionsCmd)
}

func runActions(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	q := logging.LogQuery{AmbulanceID: actionsAmbulance, Limit: actionsLimit}
	if actionsSince > 0 {
		q.Start = time.Now().Add(-actionsSince)
	}
	if actionsKind != "" {
		k, ok := model.ParseActionKind(actionsKind)
		if !ok {
			return fmt.Errorf("unknown action %q", actionsKind)
		}
		q.Action = k
	}

	store, err := logging.NewStore(cfg.Logging)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer func() { _ = store.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	recs, err := store.Query(ctx, q)
	if err != nil {
		return err
	}

	if actionsFormat != "" && actionsFormat != "table" {
		format, err := export.ParseFormat(actionsFormat)
		if err != nil {
			return err
		}
		if format == export.FormatCSV {
			return export.WriteActionsCSV(cmd.OutOrStdout(), recs)
		}
		return export.WriteJSON(cmd.OutOrStdout(), recs)
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	if _, err := fmt.Fprintln(w, "TIME\tACTION\tAMBULANCE\tOUTCOME\tLATENCY\tERROR"); err != nil {
		return err
	}
	for _, r := range recs {
		if _, err := fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%dms\t%s\n",
			r.Timestamp.Local().Format(time.DateTime), r.Action, r.AmbulanceID, r.Outcome, r.LatencyMS, r.Error); err != nil {
			return err
		}
	}
	return w.Flush()
}
