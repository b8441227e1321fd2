package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/kilianp07/medfleet/config"
	coremqtt "github.com/kilianp07/medfleet/core/mqtt"
	"github.com/kilianp07/medfleet/core/model"
	"github.com/kilianp07/medfleet/infra/logger"
	"github.com/kilianp07/medfleet/infra/mqtt"
)

var (
	orderAction  string
	orderMessage string
)

var orderCmd = &cobra.Command{
	Use:   "order [ambulance id]",
	Short: "Publish a test crew order over MQTT",
	Args:  cobra.MaximumNArgs(1),
	RunE:  publishOrder,
}

func init() {
	orderCmd.Flags().StringVar(&orderAction, "action", "dispatch", "order action")
	orderCmd.Flags().StringVar(&orderMessage, "message", "", "message shown to the crew")
	rootCmd.AddCommand(orderCmd)
}

func publishOrder(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if !cfg.MQTT.Enabled() {
		return fmt.Errorf("mqtt broker is not configured")
	}
	kind, ok := model.ParseActionKind(orderAction)
	if !ok {
		return fmt.Errorf("unknown action %q", orderAction)
	}

	logg := logger.New("order-command")
	client, err := mqtt.NewPahoClient(cfg.MQTT)
	if err != nil {
		return fmt.Errorf("mqtt client: %w", err)
	}
	defer client.Disconnect()

	o := coremqtt.Order{CommandID: uuid.NewString(), Action: kind, Message: orderMessage, Time: time.Now()}
	if len(args) == 1 {
		o.AmbulanceID = args[0]
	}
	ctx, cancel := context.WithTimeout(ctx, cfg.Dispatch.OrderTimeout())
	defer cancel()
	if err := client.PublishOrder(ctx, o); err != nil {
		return fmt.Errorf("publish order: %w", err)
	}
	logg.Infof("order %s published on %s", o.CommandID, client.Topic(o))
	return nil
}
