package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/shossk/cocoro-sdk/internal/bridge"
	"github.com/shossk/cocoro-sdk/internal/cocoro"
	"github.com/shossk/cocoro-sdk/internal/config"
	"github.com/shossk/cocoro-sdk/internal/logging"
	"github.com/shossk/cocoro-sdk/internal/state"
	"github.com/shossk/cocoro-sdk/internal/tui"
	"github.com/shossk/cocoro-sdk/internal/ui"
)

// Command flags
var (
	appKeyFlag     string
	showProperties bool
	brokerURL      string
	nameFamily     string
	forceInit      bool
)

func init() {
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(devicesCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(nameCmd)
	rootCmd.AddCommand(bridgeCmd)
	rootCmd.AddCommand(configCmd)

	loginCmd.Flags().StringVar(&appKeyFlag, "app-key", "", "Application key (prompted when omitted)")
	showCmd.Flags().BoolVar(&showProperties, "properties", false, "Also list the property catalogue")
	bridgeCmd.Flags().StringVar(&brokerURL, "broker", "", "MQTT broker URL (overrides the config file)")
	nameCmd.Flags().StringVar(&nameFamily, "family", "", "Appliance family override (aircon, purifier)")
	configInitCmd.Flags().BoolVar(&forceInit, "force", false, "Overwrite an existing config file")

	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configPathCmd)
}

// loginCmd stores credentials after checking them against the cloud
var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Store and check cloud credentials",
	Long: `Log in to the Cocoro cloud and store the credentials in the config file.

The application secret is read without echo when stdin is a terminal.
COCORO_APP_SECRET and COCORO_APP_KEY override the stored values.`,
	Example: `  # Prompt for both values
  cocoro login

  # Supply the key, prompt for the secret
  cocoro login --app-key 0123456789abcdef`,
	Args: cobra.NoArgs,
	RunE: runLogin,
}

func runLogin(cmd *cobra.Command, args []string) error {
	reg, err := config.LoadRegistry()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	in := bufio.NewReader(cmd.InOrStdin())
	out := cmd.OutOrStdout()

	key := strings.TrimSpace(appKeyFlag)
	if key == "" {
		fmt.Fprint(out, "App key: ")
		line, err := in.ReadString('\n')
		if err != nil && line == "" {
			return fmt.Errorf("failed to read app key: %w", err)
		}
		key = strings.TrimSpace(line)
	}

	secret, err := readSecret(in, out)
	if err != nil {
		return err
	}

	if err := cocoro.ValidateCredentials(secret, key); err != nil {
		return err
	}

	opts := []cocoro.Option{}
	if reg.BaseURL != "" {
		opts = append(opts, cocoro.WithBaseURL(reg.BaseURL))
	}
	client := cocoro.NewClient(secret, key, opts...)

	ctx, cancel := withTimeout(cmd)
	defer cancel()

	printer := ui.NewPrinter(out)
	if err := client.Login(ctx); err != nil {
		printer.PrintError("Login failed", err, hints(err)...)
		return err
	}

	reg.SetCredentials(secret, key)
	if err := reg.Save(); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	path, _ := reg.Path()
	printer.PrintSuccess("Logged in", ui.Param{Key: "Config", Value: path})
	return nil
}

// readSecret prompts for the app secret, without echo on a terminal
func readSecret(in *bufio.Reader, out io.Writer) (string, error) {
	fmt.Fprint(out, "App secret: ")

	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		b, err := term.ReadPassword(fd)
		fmt.Fprintln(out)
		if err != nil {
			return "", fmt.Errorf("failed to read app secret: %w", err)
		}
		return strings.TrimSpace(string(b)), nil
	}

	line, err := in.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("failed to read app secret: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// devicesCmd lists every device registered to the account
var devicesCmd = &cobra.Command{
	Use:     "devices",
	Aliases: []string{"ls"},
	Short:   "List devices",
	Long: `List every appliance registered to the account, with its family and
power state. Nicknames from the config file are shown when set.`,
	Example: `  cocoro devices
  cocoro devices --format json`,
	Args: cobra.NoArgs,
	RunE: runDevices,
}

func runDevices(cmd *cobra.Command, args []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}

	ctx, cancel := withTimeout(cmd)
	defer cancel()

	devices, err := s.client.QueryDevices(ctx)
	if err != nil {
		ui.NewPrinter(cmd.OutOrStdout()).PrintError("Failed to list devices", err, hints(err)...)
		return err
	}
	s.touch(devices...)

	out := cmd.OutOrStdout()
	now := time.Now()

	switch outputFormat {
	case "json":
		states := make([]bridge.DeviceState, 0, len(devices))
		for _, d := range devices {
			states = append(states, bridge.NewDeviceState(d, now))
		}
		return writeJSON(out, states)
	default:
		if len(devices) == 0 {
			fmt.Fprintln(out, "No devices registered to this account.")
			return nil
		}
		fmt.Fprintf(out, "Found %d device(s):\n\n", len(devices))
		for i, d := range devices {
			fmt.Fprintf(out, "%d. %s\n", i+1, s.label(d))
			fmt.Fprintf(out, "   %s\n", d.Summary())
		}
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Use 'cocoro show <device>' to view a device's status")
		fmt.Fprintln(out, "Use 'cocoro name <device-id> <nickname>' to give a device a short name")
	}
	return nil
}

// showCmd displays one device's status
var showCmd = &cobra.Command{
	Use:   "show <device>",
	Short: "Show device status",
	Long: `Display the current status of a device, decoding the composite state
where a layout is known for it.`,
	Example: `  cocoro show living
  cocoro show 123456 --format compact
  cocoro show living --format json
  cocoro show living --properties`,
	Args: cobra.ExactArgs(1),
	RunE: runShow,
}

func runShow(cmd *cobra.Command, args []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}

	ctx, cancel := withTimeout(cmd)
	defer cancel()

	d, err := s.findDevice(ctx, args[0])
	if err != nil {
		ui.NewPrinter(cmd.OutOrStdout()).PrintError("Device not found", err, hints(err)...)
		return err
	}

	out := cmd.OutOrStdout()
	switch outputFormat {
	case "json":
		return writeJSON(out, bridge.NewDeviceState(d, time.Now()))
	case "compact":
		fmt.Fprintln(out, d.FormatCompact())
	default:
		printer := ui.NewPrinter(out)
		printer.PrintPanel(s.label(d), d.FormatDetailed())
	}

	if showProperties {
		fmt.Fprintln(out)
		fmt.Fprintln(out, d.FormatProperties())
	}
	return nil
}

// nameCmd sets a nickname and optional family override for a device
var nameCmd = &cobra.Command{
	Use:   "name <device-id> <nickname>",
	Short: "Give a device a nickname",
	Long: `Store a nickname for a device in the config file so it can be addressed
by name. --family overrides the appliance family inferred from the cloud.`,
	Example: `  cocoro name 123456 living
  cocoro name 654321 bedroom --family purifier`,
	Args: cobra.ExactArgs(2),
	RunE: runName,
}

func runName(cmd *cobra.Command, args []string) error {
	reg, err := config.LoadRegistry()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	id, err := reg.ResolveDevice(args[0])
	if err != nil {
		return err
	}

	nickname := strings.TrimSpace(args[1])
	if other, err := reg.ResolveDevice(nickname); err == nil && other != id {
		return fmt.Errorf("nickname %q is already used by device %d", nickname, other)
	}

	reg.SetDeviceNickname(id, nickname)
	if nameFamily != "" {
		if _, ok := state.Builtin(nameFamily); !ok {
			return fmt.Errorf("unknown family %q (want %s or %s)", nameFamily, state.FamilyAircon, state.FamilyPurifier)
		}
		reg.SetDeviceFamily(id, nameFamily)
	}

	if err := reg.Save(); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	details := []ui.Param{{Key: "Device", Value: fmt.Sprint(id)}, {Key: "Nickname", Value: nickname}}
	if nameFamily != "" {
		details = append(details, ui.Param{Key: "Family", Value: nameFamily})
	}
	ui.NewPrinter(cmd.OutOrStdout()).PrintSuccess("Device named", details...)
	return nil
}

// bridgeCmd runs the MQTT bridge until interrupted
var bridgeCmd = &cobra.Command{
	Use:   "bridge",
	Short: "Mirror devices onto MQTT",
	Long: `Publish every device's status as retained JSON on <prefix>/<id>/state and
apply commands received on <prefix>/<id>/set/<attr>.

Attributes: power, mode, windspeed, temperature, humidify.
Broker settings come from the mqtt section of the config file.`,
	Example: `  cocoro bridge
  cocoro bridge --broker tcp://192.168.1.10:1883`,
	Args: cobra.NoArgs,
	RunE: runBridge,
}

func runBridge(cmd *cobra.Command, args []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}

	settings := s.registry.MQTTSettings()
	if brokerURL != "" {
		settings.Broker = brokerURL
	}

	mqttClient, err := bridge.Connect(settings)
	if err != nil {
		return err
	}
	defer func() {
		if err := mqttClient.Close(); err != nil {
			logging.Warn("MQTT close failed", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	b := bridge.New(s.client, mqttClient, bridge.Options{
		TopicPrefix:  settings.TopicPrefix,
		QoS:          settings.QoS,
		PollInterval: settings.PollInterval,
	})

	printer := ui.NewPrinter(cmd.OutOrStdout())
	printer.PrintHeader("MQTT bridge", "cocoro bridge",
		ui.Param{Key: "Broker", Value: settings.Broker},
		ui.Param{Key: "Topics", Value: b.Topics().AllSets()},
		ui.Param{Key: "Poll", Value: settings.PollInterval.String()},
	)

	if err := b.Run(ctx); err != nil {
		printer.PrintError("Bridge stopped", err, hints(err)...)
		return err
	}

	printer.Println("Bridge stopped")
	return nil
}

// configCmd groups config file helpers
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the config file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write an example config file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.GetConfigPath()
		if err != nil {
			return err
		}
		if _, err := os.Stat(path); err == nil && !forceInit {
			return fmt.Errorf("config file %s already exists (use --force to overwrite)", path)
		}

		if err := config.CreateDefaultConfig(); err != nil {
			return err
		}
		ui.NewPrinter(cmd.OutOrStdout()).PrintSuccess("Config written", ui.Param{Key: "Path", Value: path})
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file location",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.GetConfigPath()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}

func writeJSON(out io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	_, err = fmt.Fprintln(out, string(data))
	return err
}

// tuiCmd launches the interactive control panel
var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive control panel",
	Long: `Launch a full-screen control panel listing every device.

Select a device to see its status, queue commands with single keys and apply
them together.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession()
		if err != nil {
			return err
		}

		nicknames := make(map[int64]string)
		for id, d := range s.registry.Devices {
			if d != nil && d.Nickname != "" {
				nicknames[id] = d.Nickname
			}
		}
		return tui.Run(s.client, nicknames)
	},
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}
