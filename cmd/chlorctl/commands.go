package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/pbutterworth/gochlorinator/internal/config"
	"github.com/pbutterworth/gochlorinator/internal/emulator"
	"github.com/pbutterworth/gochlorinator/internal/logging"
	"github.com/pbutterworth/gochlorinator/internal/server"
	"github.com/pbutterworth/gochlorinator/internal/tui"
	"github.com/pbutterworth/gochlorinator/pkg/ble"
	"github.com/pbutterworth/gochlorinator/pkg/equilibrium"
	"github.com/pbutterworth/gochlorinator/pkg/halo"
	"github.com/pbutterworth/gochlorinator/pkg/snapshot"
)

// Command flags
var (
	deviceName   string
	accessCode   string
	variantFlag  string
	demoMode     bool
	logLevel     string
	outputFormat string
	interval     time.Duration
	serveAddr    string

	actionPeriod int
	actionGroup  string
	listActions  bool

	addNickname string
	addVariant  string
)

func init() {
	// Common flags for device commands (persistent on root)
	rootCmd.PersistentFlags().StringVar(&deviceName, "device", "", "Device address or nickname (defaults to the registry default)")
	rootCmd.PersistentFlags().StringVar(&accessCode, "access-code", "", "Pairing access code (prompted for if not stored)")
	rootCmd.PersistentFlags().StringVar(&variantFlag, "variant", "", "Protocol variant (equilibrium, halo)")
	rootCmd.PersistentFlags().BoolVar(&demoMode, "demo", false, "Run against the built-in device emulator")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log verbosity (debug, info, warn, error)")

	// Add subcommands directly to root
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(actionCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(devicesCmd)
}

// target is a resolved device: its transport plus the metadata needed to
// open a session against it.
type target struct {
	label      string
	variant    config.Variant
	accessCode string
	conn       ble.Conn
	notifier   ble.Notifier // nil when the variant has no notify channel
}

// newTransport opens a BLE connection to the addressed device. This build
// carries no platform GATT client; embedders linking a BLE stack through
// pkg/ble replace this hook.
var newTransport = func(address string) (ble.Conn, ble.Notifier, error) {
	return nil, nil, fmt.Errorf("no BLE transport built in for %s: link a GATT client against pkg/ble, or use --demo", address)
}

// resolveTarget turns the persistent flags and the device registry into a
// connectable target. In demo mode the built-in emulator stands in for the
// device; otherwise the registry supplies variant and access code.
func resolveTarget() (*target, error) {
	if demoMode {
		variant := config.VariantEquilibrium
		if variantFlag != "" {
			variant = config.Variant(variantFlag)
			if !variant.Valid() {
				return nil, fmt.Errorf("unknown variant %q (use equilibrium or halo)", variantFlag)
			}
		}
		code := accessCode
		if code == "" {
			code = "123456"
		}
		t := &target{label: "demo (" + string(variant) + ")", variant: variant, accessCode: code}
		switch variant {
		case config.VariantHalo:
			device := emulator.NewHalo(code)
			t.conn, t.notifier = device, device
		default:
			t.conn = emulator.NewEquilibrium(code)
		}
		return t, nil
	}

	registry, err := config.LoadRegistry()
	if err != nil {
		return nil, err
	}
	address, device, err := registry.ResolveDevice(deviceName)
	if err != nil {
		return nil, fmt.Errorf("%w (register one with 'chlorctl devices add', or use --demo)", err)
	}

	variant := device.Variant
	if variantFlag != "" {
		variant = config.Variant(variantFlag)
	}
	if !variant.Valid() {
		return nil, fmt.Errorf("device %s has no protocol variant recorded; pass --variant", address)
	}

	conn, notifier, err := newTransport(address)
	if err != nil {
		return nil, err
	}

	code := accessCode
	if code == "" {
		code = device.AccessCode
	}
	if code == "" {
		code, err = promptAccessCode(address)
		if err != nil {
			return nil, err
		}
	}

	label := address
	if device.Nickname != "" {
		label = device.Nickname
	}
	registry.UpdateDeviceLastSeen(address)
	if err := registry.Save(); err != nil {
		logging.Warn("saving device registry", zap.Error(err))
	}
	return &target{label: label, variant: variant, accessCode: code, conn: conn, notifier: notifier}, nil
}

// resolveVariant determines the protocol variant without opening a
// transport: the --variant flag wins, then the registry record, then
// equilibrium.
func resolveVariant() config.Variant {
	if v := config.Variant(variantFlag); v.Valid() {
		return v
	}
	if registry, err := config.LoadRegistry(); err == nil {
		if _, device, err := registry.ResolveDevice(deviceName); err == nil && device.Variant.Valid() {
			return device.Variant
		}
	}
	return config.VariantEquilibrium
}

// promptAccessCode reads the access code without echo.
func promptAccessCode(address string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", fmt.Errorf("no access code for %s: pass --access-code or store it with 'chlorctl devices add'", address)
	}
	fmt.Fprintf(os.Stderr, "Access code for %s: ", address)
	code, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("reading access code: %w", err)
	}
	return strings.TrimSpace(string(code)), nil
}

// newGather returns a gather function that opens a fresh authenticated
// session per cycle. Halo units drop the connection at the end of every
// data dump, so per-cycle sessions are the norm rather than a workaround.
func newGather(t *target) func(ctx context.Context) (*snapshot.Snapshot, error) {
	if t.variant == config.VariantHalo {
		return func(ctx context.Context) (*snapshot.Snapshot, error) {
			session := halo.NewSession(t.conn, t.notifier, t.accessCode)
			defer session.Close()
			if err := session.Authenticate(ctx); err != nil {
				return nil, err
			}
			return session.GatherData(ctx)
		}
	}
	return func(ctx context.Context) (*snapshot.Snapshot, error) {
		session := equilibrium.NewSession(t.conn, t.accessCode)
		defer session.Close()
		if err := session.Authenticate(ctx); err != nil {
			return nil, err
		}
		return session.GatherData(ctx)
	}
}

// statusCmd reads the device state once and prints it
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Read and display the current device state",
	Long: `Authenticate, gather every record the device exposes, and print the
merged snapshot: water chemistry, mode, pump, temperatures, accessory
subsystems and lifetime statistics.`,
	Example: `  # Status of the default device
  chlorctl status

  # Status of a named device, JSON output for scripting
  chlorctl status --device pool --format json

  # Status of the built-in Halo emulator
  chlorctl status --demo --variant halo`,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().StringVar(&outputFormat, "format", "detailed", "Output format (detailed, json)")
}

func runStatus(cmd *cobra.Command, args []string) error {
	t, err := resolveTarget()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 60*time.Second)
	defer cancel()

	snap, err := newGather(t)(ctx)
	if snap == nil {
		return err
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: gather incomplete: %v\n", err)
	}

	fields := snap.Fields()
	switch outputFormat {
	case "json":
		rendered := make(map[string]any, len(fields))
		for k, v := range fields {
			rendered[k] = renderFieldValue(v)
		}
		data, err := json.MarshalIndent(rendered, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		fmt.Println(string(data))
	default:
		names := make([]string, 0, len(fields))
		for k := range fields {
			names = append(names, k)
		}
		sort.Strings(names)
		fmt.Printf("%s (%d fields)\n\n", t.label, len(names))
		for _, name := range names {
			fmt.Printf("  %-28s %v\n", name, renderFieldValue(fields[name]))
		}
	}
	return nil
}

// renderFieldValue formats a snapshot value for display. Durations and
// enums render through their String methods; numbers pass through so JSON
// output keeps them numeric.
func renderFieldValue(v any) any {
	switch v := v.(type) {
	case time.Duration:
		return v.String()
	case fmt.Stringer:
		return v.String()
	default:
		return v
	}
}

// actionCmd sends an app action to the device
var actionCmd = &cobra.Command{
	Use:   "action <name>",
	Short: "Send an app action to the device",
	Long: `Encode and send an app action.

Action names match the protocol's action tags (case-insensitive), e.g.
Off, Auto, On, Low, Medium, High, Pool, Spa, TriggerCellReversal.

Halo units route actions to four subsystems; select one with --subsystem
(chlorinator, heater, solar, light). Period-based actions such as
DisableAcidDosingForPeriod take their duration from --period.`,
	Example: `  # Switch the default device to automatic operation
  chlorctl action auto

  # Suspend acid dosing for 90 minutes
  chlorctl action DisableAcidDosingForPeriod --period 90

  # Turn the heater on (Halo only)
  chlorctl action HeaterOn --subsystem heater

  # List the actions the selected device understands
  chlorctl action --list`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAction,
}

func init() {
	actionCmd.Flags().IntVar(&actionPeriod, "period", 0, "Period in minutes for period-based actions")
	actionCmd.Flags().StringVar(&actionGroup, "subsystem", "chlorinator", "Target subsystem (chlorinator, heater, solar, light)")
	actionCmd.Flags().BoolVar(&listActions, "list", false, "List available action names and exit")
}

func runAction(cmd *cobra.Command, args []string) error {
	if listActions {
		printActionNames(resolveVariant())
		return nil
	}

	t, err := resolveTarget()
	if err != nil {
		return err
	}
	if len(args) == 0 {
		return fmt.Errorf("action name required (try 'chlorctl action --list')")
	}
	name := args[0]

	ctx, cancel := context.WithTimeout(cmd.Context(), 60*time.Second)
	defer cancel()

	if t.variant == config.VariantHalo {
		return runHaloAction(ctx, t, name)
	}
	if actionGroup != "chlorinator" {
		return fmt.Errorf("subsystem %q requires a halo device", actionGroup)
	}

	action, ok := parseEquilibriumAction(name)
	if !ok {
		return fmt.Errorf("unknown action %q (try 'chlorctl action --list')", name)
	}
	session := equilibrium.NewSession(t.conn, t.accessCode)
	defer session.Close()
	if err := session.Authenticate(ctx); err != nil {
		return err
	}
	if err := session.WriteAction(ctx, equilibrium.Action{
		Action:        action,
		PeriodMinutes: int32(actionPeriod),
	}); err != nil {
		return err
	}
	fmt.Printf("✓ Sent %s to %s\n", action, t.label)
	return nil
}

func runHaloAction(ctx context.Context, t *target, name string) error {
	session := halo.NewSession(t.conn, t.notifier, t.accessCode)
	defer session.Close()
	if err := session.Authenticate(ctx); err != nil {
		return err
	}

	switch actionGroup {
	case "chlorinator":
		action, ok := parseHaloAction(name)
		if !ok {
			return fmt.Errorf("unknown chlorinator action %q (try 'chlorctl action --list')", name)
		}
		if err := session.WriteAction(ctx, halo.Action{
			Action:        action,
			PeriodMinutes: int32(actionPeriod),
		}); err != nil {
			return err
		}
		fmt.Printf("✓ Sent %s to %s\n", action, t.label)
	case "heater":
		action, ok := parseHeaterAction(name)
		if !ok {
			return fmt.Errorf("unknown heater action %q (try 'chlorctl action --list')", name)
		}
		if err := session.WriteHeaterAction(ctx, halo.HeaterAction{Action: action}); err != nil {
			return err
		}
		fmt.Printf("✓ Sent %s to %s heater\n", action, t.label)
	case "solar":
		action, ok := parseSolarAction(name)
		if !ok {
			return fmt.Errorf("unknown solar action %q (try 'chlorctl action --list')", name)
		}
		if err := session.WriteSolarAction(ctx, halo.SolarAction{Action: action}); err != nil {
			return err
		}
		fmt.Printf("✓ Sent %s to %s solar\n", action, t.label)
	case "light":
		action, ok := parseLightAction(name)
		if !ok {
			return fmt.Errorf("unknown light action %q (try 'chlorctl action --list')", name)
		}
		if err := session.WriteLightAction(ctx, halo.LightAction{Action: action}); err != nil {
			return err
		}
		fmt.Printf("✓ Sent %s to %s lighting\n", action, t.label)
	default:
		return fmt.Errorf("unknown subsystem %q (use chlorinator, heater, solar or light)", actionGroup)
	}
	return nil
}

func parseEquilibriumAction(name string) (equilibrium.Actions, bool) {
	for a := equilibrium.ActionNoAction; a <= equilibrium.ActionTriggerCellReversal; a++ {
		if strings.EqualFold(a.String(), name) {
			return a, true
		}
	}
	return 0, false
}

func parseHaloAction(name string) (halo.ChlorinatorActions, bool) {
	for a := halo.ActionNoAction; a <= halo.ActionOverrideHeaterCooldown; a++ {
		if strings.EqualFold(a.String(), name) {
			return a, true
		}
	}
	return 0, false
}

func parseHeaterAction(name string) (halo.HeaterAppActions, bool) {
	for a := halo.HeaterActionNoAction; a <= halo.HeaterActionModeCooling; a++ {
		if strings.EqualFold(a.String(), name) {
			return a, true
		}
	}
	return 0, false
}

func parseSolarAction(name string) (halo.SolarAppActions, bool) {
	for a := halo.SolarActionNoAction; a <= halo.SolarActionDecreaseSetPoint; a++ {
		if strings.EqualFold(a.String(), name) {
			return a, true
		}
	}
	return 0, false
}

func parseLightAction(name string) (halo.LightAppActions, bool) {
	for a := halo.LightActionNoAction; a <= halo.LightActionSynchroniseZoneColour; a++ {
		if strings.EqualFold(a.String(), name) {
			return a, true
		}
	}
	return 0, false
}

func printActionNames(variant config.Variant) {
	if variant == config.VariantHalo {
		fmt.Println("Chlorinator actions:")
		for a := halo.ActionOff; a <= halo.ActionOverrideHeaterCooldown; a++ {
			fmt.Printf("  %s\n", a)
		}
		fmt.Println("\nHeater actions (--subsystem heater):")
		for a := halo.HeaterActionPumpOff; a <= halo.HeaterActionModeCooling; a++ {
			fmt.Printf("  %s\n", a)
		}
		fmt.Println("\nSolar actions (--subsystem solar):")
		for a := halo.SolarActionOff; a <= halo.SolarActionDecreaseSetPoint; a++ {
			fmt.Printf("  %s\n", a)
		}
		fmt.Println("\nLight actions (--subsystem light):")
		for a := halo.LightActionSetZoneModeToManual; a <= halo.LightActionSynchroniseZoneColour; a++ {
			fmt.Printf("  %s\n", a)
		}
		return
	}
	fmt.Println("Actions:")
	for a := equilibrium.ActionOff; a <= equilibrium.ActionTriggerCellReversal; a++ {
		fmt.Printf("  %s\n", a)
	}
}

// watchCmd launches the live TUI dashboard
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Launch the live dashboard",
	Long: `Launch a terminal dashboard that polls the device and renders the
merged snapshot. The dashboard refreshes on a timer and on demand, and
keeps the last known values when a cycle returns a partial snapshot.`,
	Example: `  # Watch the default device
  chlorctl watch
  # Or simply (watch is default):
  chlorctl

  # Watch the built-in emulator, polling every 5 seconds
  chlorctl watch --demo --interval 5s`,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().DurationVar(&interval, "interval", 30*time.Second, "Polling interval")
}

func runWatch(cmd *cobra.Command, args []string) error {
	t, err := resolveTarget()
	if err != nil {
		return err
	}
	return tui.Run(t.label, newGather(t), interval)
}

// serveCmd runs the HTTP/WebSocket snapshot server
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve live snapshots over HTTP and WebSocket",
	Long: `Poll the device on an interval and publish the merged snapshot:

  GET /snapshot   latest snapshot as JSON
  GET /ws         WebSocket push of every update
  GET /healthz    liveness probe

Dashboards and home-automation bridges subscribe to /ws; each update
carries the gather time, the rendered fields, and any gather error.`,
	Example: `  # Serve the default device on the default address
  chlorctl serve

  # Serve the Halo emulator on port 9000, polling every 10 seconds
  chlorctl serve --demo --variant halo --addr :9000 --interval 10s`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8585", "Listen address")
	serveCmd.Flags().DurationVar(&interval, "interval", 30*time.Second, "Polling interval")
}

func runServe(cmd *cobra.Command, args []string) error {
	t, err := resolveTarget()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s := server.New(server.Config{Addr: serveAddr, Interval: interval}, newGather(t))
	fmt.Printf("Serving %s on %s (poll every %s)\n", t.label, serveAddr, interval)
	return s.Run(ctx)
}

// devicesCmd manages the device registry
var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "Manage the device registry",
	Long: `Manage the local device registry.

The registry stores each device's BLE address, nickname, protocol variant
and pairing access code, so other commands can address devices by nickname
and skip the access code prompt.`,
	RunE: runDevicesList,
}

func init() {
	devicesAddCmd.Flags().StringVar(&addNickname, "nickname", "", "Friendly name for the device")
	devicesAddCmd.Flags().StringVar(&addVariant, "variant", "", "Protocol variant (equilibrium, halo)")

	devicesCmd.AddCommand(devicesListCmd)
	devicesCmd.AddCommand(devicesAddCmd)
	devicesCmd.AddCommand(devicesRemoveCmd)
	devicesCmd.AddCommand(devicesDefaultCmd)
}

var devicesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered devices",
	RunE:  runDevicesList,
}

func runDevicesList(cmd *cobra.Command, args []string) error {
	registry, err := config.LoadRegistry()
	if err != nil {
		return err
	}

	if len(registry.Devices) == 0 {
		fmt.Println("No devices registered.")
		fmt.Println("\nUse 'chlorctl devices add <address> --variant <equilibrium|halo>' to register one.")
		return nil
	}

	addresses := make([]string, 0, len(registry.Devices))
	for address := range registry.Devices {
		addresses = append(addresses, address)
	}
	sort.Strings(addresses)

	for _, address := range addresses {
		device := registry.Devices[address]
		marker := " "
		if address == registry.Preferences.DefaultDevice {
			marker = "*"
		}
		name := device.Nickname
		if name == "" {
			name = "-"
		}
		lastSeen := "never"
		if !device.LastSeen.IsZero() {
			lastSeen = device.LastSeen.Format("2006-01-02 15:04")
		}
		fmt.Printf("%s %-18s %-14s %-12s last seen %s\n", marker, address, name, device.Variant, lastSeen)
	}
	if registry.Preferences.DefaultDevice != "" {
		fmt.Println("\n* default device")
	}
	return nil
}

var devicesAddCmd = &cobra.Command{
	Use:   "add <address>",
	Short: "Register a device or update its registration",
	Example: `  # Register a Halo with a nickname and stored access code
  chlorctl devices add AA:BB:CC:DD:EE:FF --variant halo --nickname pool --access-code 1234

  # Update just the nickname later
  chlorctl devices add AA:BB:CC:DD:EE:FF --nickname spa`,
	Args: cobra.ExactArgs(1),
	RunE: runDevicesAdd,
}

func runDevicesAdd(cmd *cobra.Command, args []string) error {
	address := args[0]

	registry, err := config.LoadRegistry()
	if err != nil {
		return err
	}

	device := registry.EnsureDevice(address)
	if addNickname != "" {
		device.Nickname = addNickname
	}
	if addVariant != "" {
		variant := config.Variant(addVariant)
		if !variant.Valid() {
			return fmt.Errorf("unknown variant %q (use equilibrium or halo)", addVariant)
		}
		device.Variant = variant
	}
	if accessCode != "" {
		device.AccessCode = accessCode
	}
	if device.Variant == "" {
		return fmt.Errorf("new devices need --variant (equilibrium or halo)")
	}

	if err := registry.Save(); err != nil {
		return err
	}
	fmt.Printf("✓ Registered %s", address)
	if device.Nickname != "" {
		fmt.Printf(" as %q", device.Nickname)
	}
	fmt.Println()
	return nil
}

var devicesRemoveCmd = &cobra.Command{
	Use:   "remove <address|nickname>",
	Short: "Remove a device from the registry",
	Args:  cobra.ExactArgs(1),
	RunE:  runDevicesRemove,
}

func runDevicesRemove(cmd *cobra.Command, args []string) error {
	registry, err := config.LoadRegistry()
	if err != nil {
		return err
	}

	address, _, err := registry.ResolveDevice(args[0])
	if err != nil {
		return err
	}
	registry.RemoveDevice(address)
	if err := registry.Save(); err != nil {
		return err
	}
	fmt.Printf("✓ Removed %s\n", address)
	return nil
}

var devicesDefaultCmd = &cobra.Command{
	Use:   "default <address|nickname>",
	Short: "Set the default device",
	Args:  cobra.ExactArgs(1),
	RunE:  runDevicesDefault,
}

func runDevicesDefault(cmd *cobra.Command, args []string) error {
	registry, err := config.LoadRegistry()
	if err != nil {
		return err
	}

	address, device, err := registry.ResolveDevice(args[0])
	if err != nil {
		return err
	}
	registry.Preferences.DefaultDevice = address
	if err := registry.Save(); err != nil {
		return err
	}
	name := device.Nickname
	if name == "" {
		name = address
	}
	fmt.Printf("✓ Default device is now %s\n", name)
	return nil
}
