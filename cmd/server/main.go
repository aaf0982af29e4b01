package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"vesync-bridge/internal/bridge"
	"vesync-bridge/internal/config"
	"vesync-bridge/internal/discovery"
	"vesync-bridge/internal/entity"
	"vesync-bridge/internal/events"
	"vesync-bridge/internal/logger"
	"vesync-bridge/internal/mqtt"
	"vesync-bridge/internal/storage"
	"vesync-bridge/internal/types"
	"vesync-bridge/internal/vesync"
)

var (
	configPath     = "./config"
	dbPath         = "./data/state.db"
	mqttBroker     = "tcp://localhost:1883"
	mqttUser       = ""
	mqttPass       = ""
	logLevel       = "error"
	apiURL         = ""
	vesyncEmail    = ""
	vesyncPassword = ""
	pollInterval   = 30
	rescanInterval = 300
	metricsAddr    = ""
	topicPrefix    = "vesync"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "vesync-bridge",
		Short: "Bridge VeSync humidifiers to Home Assistant over MQTT",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level, err := logger.ParseLevel(logLevel)
			if err != nil {
				level = logger.ERROR
				log.Printf("Invalid log level '%s', using ERROR", logLevel)
			}
			logger.Init(level, true) // true = use colors

			if vesyncEmail == "" {
				vesyncEmail = os.Getenv("VESYNC_EMAIL")
			}
			if vesyncPassword == "" {
				vesyncPassword = os.Getenv("VESYNC_PASSWORD")
			}
		},
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", configPath, "Configuration directory path")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", dbPath, "Database file path")
	rootCmd.PersistentFlags().StringVar(&mqttBroker, "mqtt-broker", mqttBroker, "MQTT broker URL (tcp://host:port)")
	rootCmd.PersistentFlags().StringVar(&mqttUser, "mqtt-user", mqttUser, "MQTT username")
	rootCmd.PersistentFlags().StringVar(&mqttPass, "mqtt-pass", mqttPass, "MQTT password")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", logLevel, "Log level (debug, info, warn, error, critical)")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", apiURL, "Override the VeSync cloud API URL")
	rootCmd.PersistentFlags().StringVar(&vesyncEmail, "vesync-email", vesyncEmail, "VeSync account email (or VESYNC_EMAIL)")
	rootCmd.PersistentFlags().StringVar(&vesyncPassword, "vesync-password", vesyncPassword, "VeSync account password (or VESYNC_PASSWORD)")

	rootCmd.AddCommand(runCmd())
	rootCmd.AddCommand(discoverCmd())

	if err := rootCmd.Execute(); err != nil {
		logger.Critical("Fatal error: %v", err)
		os.Exit(1)
	}
}

func runCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the bridge",
		Run: func(cmd *cobra.Command, args []string) {
			if err := runServer(); err != nil {
				logger.Critical("Server error: %v", err)
				os.Exit(1)
			}
		},
	}

	cmd.Flags().IntVar(&pollInterval, "poll-interval", pollInterval, "Device poll interval in seconds")
	cmd.Flags().IntVar(&rescanInterval, "rescan-interval", rescanInterval, "Account rescan interval in seconds")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", metricsAddr, "Prometheus listen address (empty disables)")
	cmd.Flags().StringVar(&topicPrefix, "topic-prefix", topicPrefix, "MQTT topic prefix for bridge state and commands")
	return cmd
}

func discoverCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "discover",
		Short: "List supported devices and generate configuration",
		Run: func(cmd *cobra.Command, args []string) {
			if err := runDiscovery(); err != nil {
				logger.Critical("Discovery error: %v", err)
				os.Exit(1)
			}
		},
	}
}

func newCloudClient(ctx context.Context) (*vesync.Client, error) {
	client := vesync.NewClient(vesync.Config{
		BaseURL:  apiURL,
		Email:    vesyncEmail,
		Password: vesyncPassword,
	})

	if err := client.Login(ctx); err != nil {
		return nil, err
	}
	return client, nil
}

func runDiscovery() error {
	logger.Info("Starting device discovery...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := newCloudClient(ctx)
	if err != nil {
		return err
	}

	infos, err := client.Devices(ctx)
	if err != nil {
		return err
	}

	var devices []*types.Device
	for _, info := range infos {
		sku, ok := entity.Lookup(info.DeviceType)
		if !ok {
			logger.Warn("%s - Unknown device type - %s", info.DeviceName, info.DeviceType)
			continue
		}

		logger.Info("Found %s (%s, presets %v)", info.DeviceName, info.DeviceType, sku.Presets)
		devices = append(devices, &types.Device{
			ID:    info.CID,
			Name:  info.DeviceName,
			Model: info.DeviceType,
			CID:   info.CID,
			UUID:  info.UUID,
		})
	}

	if len(devices) == 0 {
		logger.Warn("No supported devices discovered")
		return nil
	}

	devicesYAMLPath := configPath + "/devices/devices.yaml"
	if err := config.GenerateDevicesYAML(devices, devicesYAMLPath); err != nil {
		return err
	}
	logger.Info("Generated: %s", devicesYAMLPath)

	logger.Info("Discovery complete!")
	return nil
}

func runServer() error {
	logger.Info("Starting VeSync bridge...")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Name overrides are optional; a missing devices.yaml just means
	// cloud names are used as-is
	overrides := make(map[string]string)
	devicesYAMLPath := configPath + "/devices/devices.yaml"
	if deviceConfig, err := config.LoadDevicesYAML(devicesYAMLPath); err == nil {
		for _, dev := range deviceConfig.Devices {
			overrides[dev.ID] = dev.Name
		}
		logger.Info("Loaded %d device name(s) from %s", len(overrides), devicesYAMLPath)
	}

	store, err := storage.New(dbPath)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("Error closing storage: %v", err)
		}
	}()
	logger.Debug("Storage initialized")

	client, err := newCloudClient(ctx)
	if err != nil {
		return err
	}
	logger.Info("VeSync cloud session established")

	mqttClient, err := mqtt.NewClient(mqtt.Config{
		Broker:   mqttBroker,
		ClientID: "vesync-bridge-" + time.Now().Format("20060102150405"),
		Username: mqttUser,
		Password: mqttPass,
	})
	if err != nil {
		return err
	}
	defer mqttClient.Disconnect()
	logger.Info("MQTT connected")

	bus := events.New()
	go traceEvents(bus.Subscribe(64))

	br := bridge.New(mqttClient, store, bus, bridge.Options{
		TopicPrefix:   topicPrefix,
		PollInterval:  time.Duration(pollInterval) * time.Second,
		NameOverrides: overrides,
	})

	if metricsAddr != "" {
		registry := prometheus.NewRegistry()
		registry.MustRegister(bridge.MetricsCollectors()...)

		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
		go func() {
			logger.Info("Metrics listening on %s", metricsAddr)
			if err := http.ListenAndServe(metricsAddr, mux); err != nil {
				logger.Error("Metrics server stopped: %v", err)
			}
		}()
	}

	watcher := discovery.NewWatcher(client, time.Duration(rescanInterval)*time.Second)
	go watcher.Run(ctx)
	go br.Run(ctx, watcher.Events())

	logger.Info("Bridge is running. Press Ctrl+C to stop.")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	return nil
}

func traceEvents(ch chan *types.Event) {
	for event := range ch {
		logger.Debug("Event %s/%s device=%s", event.Source, event.Type, event.Device)
	}
}
