package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/borncrazy123/CamLink/internal/device"
	"github.com/borncrazy123/CamLink/internal/infrastructure/logging"
)

func newDeviceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "device",
		Short: "Manage registered cameras",
	}
	cmd.AddCommand(newDeviceRegisterCmd(), newDeviceListCmd())
	return cmd
}

func newDeviceRegisterCmd() *cobra.Command {
	var d device.Device

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register a camera by hardware and client ID",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			log := logging.New(cfg.Logging, version)

			db, err := openDatabase(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer db.Close() //nolint:errcheck // CLI exit

			registry := device.NewRegistry(device.NewSQLiteRepository(db.DB))
			registry.SetLogger(log)
			if err := registry.Register(ctx, &d); err != nil {
				return fmt.Errorf("registering device: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "registered %s as %s\n", d.HardwareID, d.ClientID)
			return nil
		},
	}
	cmd.Flags().StringVar(&d.HardwareID, "hardware-id", "", "stable hardware ID (required)")
	cmd.Flags().StringVar(&d.ClientID, "client-id", "", "MQTT client ID used in topics (required)")
	cmd.Flags().StringVar(&d.Hotel, "hotel", "", "hotel name")
	cmd.Flags().StringVar(&d.Location, "location", "", "install location")
	cmd.Flags().StringVar(&d.WiFiName, "wifi", "", "Wi-Fi network name")
	cmd.Flags().StringVar(&d.FirmwareVersion, "firmware", "", "firmware version")
	_ = cmd.MarkFlagRequired("hardware-id")
	_ = cmd.MarkFlagRequired("client-id")
	return cmd
}

func newDeviceListCmd() *cobra.Command {
	var flagLimit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print registered cameras as JSON",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			db, err := openDatabase(ctx, cfg, logging.New(cfg.Logging, version))
			if err != nil {
				return err
			}
			defer db.Close() //nolint:errcheck // CLI exit

			devices, err := device.NewSQLiteRepository(db.DB).List(ctx, flagLimit)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(devices)
		},
	}
	cmd.Flags().IntVar(&flagLimit, "limit", device.DefaultListLimit, "maximum devices to print")
	return cmd
}
