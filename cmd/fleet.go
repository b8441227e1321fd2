package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kilianp07/medfleet/config"
	"github.com/kilianp07/medfleet/core/fleet"
	"github.com/kilianp07/medfleet/core/model"
	"github.com/kilianp07/medfleet/pkg/export"
)

var (
	lsZone   string
	lsStatus string
	lsFormat string
)

var fleetCmd = &cobra.Command{
	Use:   "fleet",
	Short: "Fleet related commands",
}

var fleetLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List the configured ambulances",
	RunE:  runFleetLs,
}

func init() {
	fleetLsCmd.Flags().StringVar(&lsZone, "zone", "", "only list ambulances of this zone")
	fleetLsCmd.Flags().StringVar(&lsStatus, "status", "", "only list ambulances with this status (available, on-call)")
	fleetLsCmd.Flags().StringVar(&lsFormat, "format", "table", "output format: table, json or csv")
	fleetCmd.AddCommand(fleetLsCmd)
	rootCmd.AddCommand(fleetCmd)
}

func runFleetLs(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	store := fleet.NewSeededStore(nil)
	if cfg.SeedFile != "" {
		seed, err := fleet.LoadSeed(cfg.SeedFile)
		if err != nil {
			return fmt.Errorf("seed: %w", err)
		}
		if store, err = fleet.NewStore(seed.Ambulances, seed.Hospitals, nil); err != nil {
			return fmt.Errorf("seed: %w", err)
		}
	}
	f := fleet.Filter{Zone: lsZone}
	if lsStatus != "" {
		st, err := model.ParseStatus(lsStatus)
		if err != nil {
			return err
		}
		f.Status = &st
	}

	ambulances := store.Ambulances(f)
	if lsFormat != "" && lsFormat != "table" {
		format, err := export.ParseFormat(lsFormat)
		if err != nil {
			return err
		}
		if format == export.FormatCSV {
			return export.WriteAmbulancesCSV(cmd.OutOrStdout(), ambulances)
		}
		return export.WriteJSON(cmd.OutOrStdout(), ambulances)
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	if _, err := fmt.Fprintln(w, "ID\tSTATUS\tZONE\tDRIVER\tTYPE\tRESPONSE"); err != nil {
		return err
	}
	for _, a := range ambulances {
		if _, err := fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%.1f min\n",
			a.ID, a.Status, a.Zone, a.Driver, a.VehicleType, a.ResponseTimeMinutes); err != nil {
			return err
		}
	}
	sum := store.Summary()
	if _, err := fmt.Fprintf(w, "\n%d ambulances, %d available, %d on call, avg response %.1f min\n",
		sum.Total, sum.Available, sum.OnCall, sum.AvgResponseMinutes); err != nil {
		return err
	}
	return w.Flush()
}
