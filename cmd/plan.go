package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/FilipeDoria/genetic-load-manager/config"
	"github.com/FilipeDoria/genetic-load-manager/infra/mqtt"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Plan related commands",
}

var planShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the last plan retained on the broker",
	RunE:  runPlanShow,
}

func init() {
	planCmd.AddCommand(planShowCmd)
	rootCmd.AddCommand(planCmd)
}

func runPlanShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	mqttCfg := cfg.MQTT
	// A unique client ID keeps the broker from kicking the running service.
	suffix := time.Now().UnixNano()
	if mqttCfg.ClientID != "" {
		mqttCfg.ClientID = fmt.Sprintf("%s-%d", mqttCfg.ClientID, suffix)
	} else {
		mqttCfg.ClientID = fmt.Sprintf("plan-show-%d", suffix)
	}
	client, err := mqtt.NewPahoClient(mqttCfg)
	if err != nil {
		return fmt.Errorf("mqtt client: %w", err)
	}
	defer client.Disconnect()

	payloads := make(chan []byte, 1)
	err = client.Subscribe(client.Topic(), func(_ string, payload []byte) {
		select {
		case payloads <- payload:
		default:
		}
	})
	if err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	select {
	case payload := <-payloads:
		fmt.Fprintln(cmd.OutOrStdout(), string(payload))
		return nil
	case <-ctx.Done():
		return fmt.Errorf("no plan retained on %s", client.Topic())
	}
}
