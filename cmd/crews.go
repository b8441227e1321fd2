package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/medfleet/config"
	"github.com/kilianp07/medfleet/core/fleet"
	"github.com/kilianp07/medfleet/core/model"
	"github.com/kilianp07/medfleet/crewsim"
	"github.com/kilianp07/medfleet/infra/logger"
)

var (
	crewInterval time.Duration
	crewLatency  time.Duration
	crewDropRate float64
)

var crewsCmd = &cobra.Command{
	Use:   "crews",
	Short: "Simulate ambulance crews on MQTT",
	RunE:  runCrews,
}

func init() {
	crewsCmd.Flags().DurationVar(&crewInterval, "interval", 5*time.Second, "periodic report interval")
	crewsCmd.Flags().DurationVar(&crewLatency, "report-latency", 500*time.Millisecond, "delay before reporting a status change")
	crewsCmd.Flags().Float64Var(&crewDropRate, "drop-rate", 0, "probability of ignoring an order")
	rootCmd.AddCommand(crewsCmd)
}

func runCrews(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	ambulances := model.SeedAmbulances()
	if cfg.SeedFile != "" {
		seed, err := fleet.LoadSeed(cfg.SeedFile)
		if err != nil {
			return fmt.Errorf("seed: %w", err)
		}
		ambulances = seed.Ambulances
	}
	sim, err := crewsim.New(crewsim.Config{
		Broker:        cfg.MQTT.Broker,
		OrderPrefix:   cfg.MQTT.TopicPrefix,
		StatePrefix:   cfg.Telemetry.StatePrefix,
		Interval:      crewInterval,
		ReportLatency: crewLatency,
		DropRate:      crewDropRate,
	}, crewsim.FromAmbulances(ambulances), logger.New("crewsim"))
	if err != nil {
		return err
	}
	return sim.Run(ctx)
}
