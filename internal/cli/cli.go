// Package cli is the kong command tree for dctool.
package cli

import (
	"context"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/Qinmu-mu/libdc-for-dirk/dc"
	"github.com/Qinmu-mu/libdc-for-dirk/internal/config"
	"github.com/Qinmu-mu/libdc-for-dirk/internal/serialio"
	"github.com/Qinmu-mu/libdc-for-dirk/internal/store"
	"github.com/Qinmu-mu/libdc-for-dirk/internal/tui"
	"github.com/Qinmu-mu/libdc-for-dirk/internal/util"
	"github.com/Qinmu-mu/libdc-for-dirk/suunto"
)

// CLI is the root command structure for dctool.
type CLI struct {
	Verbose bool   `short:"v" help:"Enable verbose debug output"`
	Port    string `short:"p" default:"/dev/ttyUSB0" env:"DCTOOL_PORT" help:"Serial port of the dive computer"`

	Info     InfoCmd     `cmd:"" help:"Show device model, firmware and serial number"`
	Download DownloadCmd `cmd:"" help:"Download dives (new ones only, unless --all)"`
	Dump     DumpCmd     `cmd:"" help:"Dump the full device memory image to a file"`
	Ports    PortsCmd    `cmd:"" help:"List serial ports on this system"`
	Store    StoreCmd    `cmd:"" help:"Dive archive operations"`
	Debug    DebugCmd    `cmd:"" help:"Debug and development tools"`
}

func openDevice(globals *CLI, opts ...suunto.Option) (*suunto.Device, *serialio.Port, error) {
	config.Verbose = globals.Verbose
	port, err := serialio.Open(globals.Port)
	if err != nil {
		return nil, nil, err
	}
	return suunto.New(port, opts...), port, nil
}

func formatFirmware(fw uint32) string {
	return fmt.Sprintf("%d.%d.%d", fw>>16&0xFF, fw>>8&0xFF, fw&0xFF)
}

// --- Info ---

type InfoCmd struct{}

func (c *InfoCmd) Run(globals *CLI) error {
	device, port, err := openDevice(globals)
	if err != nil {
		return err
	}
	defer port.Close()

	version, err := device.Version()
	if err != nil {
		return err
	}
	serial, err := device.Serial()
	if err != nil {
		return err
	}

	fmt.Printf("Model:    0x%02X\n", version[0])
	fmt.Printf("Firmware: %s\n", formatFirmware(uint32(version[1])<<16|uint32(version[2])<<8|uint32(version[3])))
	fmt.Printf("Serial:   %08d\n", serial)
	return nil
}

// --- Download ---

type DownloadCmd struct {
	All   bool   `help:"Ignore the stored fingerprint and download every dive"`
	Count int    `help:"Stop after this many dives" default:"0"`
	Out   string `help:"Also write each dive as a .bin file into this directory"`
}

func (c *DownloadCmd) Run(globals *CLI) error {
	s, err := store.OpenDefault()
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}

	port, err := serialio.Open(globals.Port)
	if err != nil {
		return err
	}
	defer port.Close()
	config.Verbose = globals.Verbose

	var (
		dives  [][]byte
		info   dc.DeviceInfo
		serial uint32
	)

	err = tui.Run("Downloading dives", func(ctx context.Context, report dc.ProgressFunc) error {
		device := suunto.New(port,
			suunto.WithProgress(report),
			suunto.WithDeviceInfo(func(di dc.DeviceInfo) { info = di }),
		)

		serial, err = device.Serial()
		if err != nil {
			return err
		}
		if !c.All {
			fp, err := s.Fingerprint(serial)
			if err != nil {
				return err
			}
			if err := device.SetFingerprint(fp); err != nil {
				return err
			}
		}

		return device.ForeachDive(func(payload []byte) bool {
			if ctx.Err() != nil {
				return false
			}
			dive := make([]byte, len(payload))
			copy(dive, payload)
			dives = append(dives, dive)
			return c.Count == 0 || len(dives) < c.Count
		})
	})
	if err != nil {
		return err
	}

	fmt.Printf("Device %08d (model 0x%02X, firmware %s): %d dive(s) downloaded\n",
		serial, info.Model, formatFirmware(info.Firmware), len(dives))

	newest := true
	for _, dive := range dives {
		fp, err := suunto.Fingerprint(dive)
		if err != nil {
			return err
		}
		name, isNew, err := s.SaveDive(serial, fp, dive)
		if err != nil {
			return err
		}
		if isNew {
			fmt.Printf("  archived %s (%d bytes)\n", name, len(dive))
		}
		if c.Out != "" {
			out := filepath.Join(c.Out, fmt.Sprintf("dive-%s.bin", name))
			if err := os.WriteFile(out, dive, 0644); err != nil {
				return fmt.Errorf("failed to write %s: %w", out, err)
			}
		}
		// Dives arrive newest first; only the first one moves the
		// sync marker.
		if newest {
			if err := s.SetFingerprint(serial, fp); err != nil {
				return err
			}
			newest = false
		}
	}
	return nil
}

// --- Dump ---

type DumpCmd struct {
	Output string `arg:"" help:"Output file for the memory image"`
}

func (c *DumpCmd) Run(globals *CLI) error {
	port, err := serialio.Open(globals.Port)
	if err != nil {
		return err
	}
	defer port.Close()
	config.Verbose = globals.Verbose

	data := make([]byte, suunto.MemorySize)
	err = tui.Run("Dumping device memory", func(ctx context.Context, report dc.ProgressFunc) error {
		device := suunto.New(port, suunto.WithProgress(report))
		_, err := device.Dump(data)
		return err
	})
	if err != nil {
		return err
	}

	if err := os.WriteFile(c.Output, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", c.Output, err)
	}
	fmt.Printf("Wrote %d bytes to %s\n", len(data), c.Output)
	return nil
}

// --- Ports ---

type PortsCmd struct{}

func (c *PortsCmd) Run(globals *CLI) error {
	ports, err := serialio.List()
	if err != nil {
		return err
	}
	if len(ports) == 0 {
		fmt.Println("No serial ports found.")
		return nil
	}
	for _, p := range ports {
		fmt.Println(p)
	}
	return nil
}

// --- Store ---

type StoreCmd struct {
	List   StoreListCmd   `cmd:"" help:"List archived dives (or devices, with no serial)"`
	Show   StoreShowCmd   `cmd:"" help:"Hex dump an archived dive"`
	Export StoreExportCmd `cmd:"" help:"Export an archived dive to a file"`
}

type StoreListCmd struct {
	Serial uint32 `arg:"" optional:"" help:"Device serial number"`
}

func (c *StoreListCmd) Run(globals *CLI) error {
	s, err := store.OpenDefault()
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}

	if c.Serial == 0 {
		serials, err := s.Devices()
		if err != nil {
			return err
		}
		if len(serials) == 0 {
			fmt.Println("No devices in store.")
			return nil
		}
		for _, serial := range serials {
			entries, err := s.List(serial)
			if err != nil {
				return err
			}
			fmt.Printf("%08d  %d dive(s)\n", serial, len(entries))
		}
		return nil
	}

	entries, err := s.List(c.Serial)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("No dives archived for this device.")
		return nil
	}
	for _, e := range entries {
		fmt.Printf("  %s  %6d bytes  %s\n",
			e.Fingerprint, e.Size, e.DownloadedAt.Format("2006-01-02 15:04"))
	}
	return nil
}

type StoreShowCmd struct {
	Serial      uint32 `arg:"" help:"Device serial number"`
	Fingerprint string `arg:"" help:"Dive fingerprint (hex)"`
}

func (c *StoreShowCmd) Run(globals *CLI) error {
	s, err := store.OpenDefault()
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	data, err := s.Read(c.Serial, c.Fingerprint)
	if err != nil {
		return err
	}
	fmt.Print(util.HexDump(0, data))
	return nil
}

type StoreExportCmd struct {
	Serial      uint32 `arg:"" help:"Device serial number"`
	Fingerprint string `arg:"" help:"Dive fingerprint (hex)"`
	Output      string `arg:"" help:"Output file path"`
}

func (c *StoreExportCmd) Run(globals *CLI) error {
	s, err := store.OpenDefault()
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	if err := s.Export(c.Serial, c.Fingerprint, c.Output); err != nil {
		return err
	}
	fmt.Printf("Exported to: %s\n", c.Output)
	return nil
}

// --- Debug ---

type DebugCmd struct {
	Read          DebugReadCmd          `cmd:"" help:"Read raw device memory"`
	Write         DebugWriteCmd         `cmd:"" help:"Write a file into device memory"`
	ResetMaxdepth DebugResetMaxDepthCmd `cmd:"" name:"reset-maxdepth" help:"Clear the device's maximum-depth record"`
	Fingerprint   DebugFingerprintCmd   `cmd:"" help:"Set or clear the stored fingerprint for a device"`
}

func parseAddress(s string) (uint, error) {
	addr, err := strconv.ParseUint(s, 0, 16)
	if err != nil {
		return 0, fmt.Errorf("invalid address %q: %w", s, err)
	}
	return uint(addr), nil
}

type DebugReadCmd struct {
	Address string `arg:"" help:"Start address (hex with 0x prefix, or decimal)"`
	Length  int    `arg:"" help:"Number of bytes to read"`
}

func (c *DebugReadCmd) Run(globals *CLI) error {
	addr, err := parseAddress(c.Address)
	if err != nil {
		return err
	}
	device, port, err := openDevice(globals)
	if err != nil {
		return err
	}
	defer port.Close()

	data, err := device.ReadMemory(addr, c.Length)
	if err != nil {
		return err
	}
	fmt.Print(util.HexDump(addr, data))
	return nil
}

type DebugWriteCmd struct {
	Address string `arg:"" help:"Start address (hex with 0x prefix, or decimal)"`
	File    string `arg:"" help:"File with the bytes to write"`
}

func (c *DebugWriteCmd) Run(globals *CLI) error {
	addr, err := parseAddress(c.Address)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(c.File)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}
	device, port, err := openDevice(globals)
	if err != nil {
		return err
	}
	defer port.Close()

	if err := device.WriteMemory(addr, data); err != nil {
		return err
	}
	fmt.Printf("Wrote %d bytes at 0x%04X\n", len(data), addr)
	return nil
}

type DebugResetMaxDepthCmd struct{}

func (c *DebugResetMaxDepthCmd) Run(globals *CLI) error {
	device, port, err := openDevice(globals)
	if err != nil {
		return err
	}
	defer port.Close()
	return device.ResetMaxDepth()
}

type DebugFingerprintCmd struct {
	Serial      uint32 `arg:"" help:"Device serial number"`
	Fingerprint string `arg:"" optional:"" help:"Fingerprint (8 hex digits); omit to clear"`
}

func (c *DebugFingerprintCmd) Run(globals *CLI) error {
	s, err := store.OpenDefault()
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	fp, err := hex.DecodeString(c.Fingerprint)
	if err != nil {
		return fmt.Errorf("invalid fingerprint %q: %w", c.Fingerprint, err)
	}
	return s.SetFingerprint(c.Serial, fp)
}
