package main

import (
	"fmt"
	"hash/crc32"
	"image"
	"image/png"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/cbeck/dmge/internal/emu"
	"github.com/cbeck/dmge/internal/logger"
	"github.com/cbeck/dmge/internal/ppu"
	"github.com/cbeck/dmge/internal/ui"
)

func main() {
	var debug bool

	rootCmd := &cobra.Command{
		Use:   "dmge",
		Short: "dmge — a DMG emulator",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger.SetDebug(debug)
		},
	}
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	// run command: windowed emulation
	var scale int
	var title string
	runCmd := &cobra.Command{
		Use:   "run <rom.gb>",
		Short: "Run a ROM in a window",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := loadMachine(args[0])
			if err != nil {
				return err
			}
			m.SetLimitFPS(true)
			m.Start()
			app := ui.NewApp(ui.Config{Title: title, Scale: scale}, m)
			if err := app.Run(); err != nil {
				return err
			}
			return m.Err()
		},
	}
	runCmd.Flags().IntVar(&scale, "scale", 3, "window scale")
	runCmd.Flags().StringVar(&title, "title", "dmge", "window title")

	// headless command: run N frames without a window
	var frames int
	var outPNG string
	var expect string
	var serial bool
	headlessCmd := &cobra.Command{
		Use:   "headless <rom.gb>",
		Short: "Run a ROM without a window",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := loadMachine(args[0])
			if err != nil {
				return err
			}
			if serial {
				m.SetSerialSink(os.Stdout)
			}
			return runHeadless(m, frames, outPNG, expect)
		},
	}
	headlessCmd.Flags().IntVar(&frames, "frames", 300, "frames to run")
	headlessCmd.Flags().StringVar(&outPNG, "outpng", "", "write last framebuffer to PNG at path")
	headlessCmd.Flags().StringVar(&expect, "expect", "", "assert framebuffer CRC32 (hex)")
	headlessCmd.Flags().BoolVar(&serial, "serial", false, "stream serial output to stdout")

	// info command: print the cartridge header
	infoCmd := &cobra.Command{
		Use:   "info <rom.gb>",
		Short: "Print the cartridge header",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rom, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			m, err := emu.New(rom)
			if err != nil {
				return err
			}
			h := m.Header()
			fmt.Printf("Title:    %q\n", h.Title)
			fmt.Printf("Type:     %#02x (%s)\n", h.CartType, h.CartTypeStr)
			fmt.Printf("ROM:      %d bytes (%d banks)\n", h.ROMSizeBytes, h.ROMBanks)
			fmt.Printf("RAM:      %d bytes\n", h.RAMSizeBytes)
			fmt.Printf("Version:  %d\n", h.ROMVersion)
			return nil
		},
	}

	rootCmd.AddCommand(runCmd, headlessCmd, infoCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadMachine(path string) (*emu.Machine, error) {
	rom, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rom: %w", err)
	}
	m, err := emu.New(rom)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	h := m.Header()
	logger.Info("loaded ROM", "title", h.Title, "type", h.CartTypeStr,
		"banks", h.ROMBanks, "ram", h.RAMSizeBytes)
	return m, nil
}

func runHeadless(m *emu.Machine, frames int, pngPath, expectCRC string) error {
	if frames <= 0 {
		frames = 1
	}

	start := time.Now()
	if err := m.RunCycles(frames * ppu.FrameCycles); err != nil {
		return err
	}
	dur := time.Since(start)

	fb := make([]byte, ppu.ScreenWidth*ppu.ScreenHeight*4)
	m.Framebuffer().Drain(fb)
	crc := crc32.ChecksumIEEE(fb)
	fps := float64(frames) / dur.Seconds()

	logger.Info("headless done",
		"frames", frames,
		"elapsed", dur.Truncate(time.Millisecond).String(),
		"fps", fmt.Sprintf("%.2f", fps),
		"fb_crc32", fmt.Sprintf("%08x", crc))

	if pngPath != "" {
		if err := saveFramePNG(fb, ppu.ScreenWidth, ppu.ScreenHeight, pngPath); err != nil {
			return fmt.Errorf("write PNG: %w", err)
		}
		logger.Info("wrote frame", "path", pngPath)
	}

	if expectCRC != "" {
		want := strings.TrimPrefix(strings.ToLower(expectCRC), "0x")
		got := fmt.Sprintf("%08x", crc)
		if got != want {
			return fmt.Errorf("checksum mismatch: got %s, want %s", got, want)
		}
	}
	return nil
}

func saveFramePNG(pix []byte, w, h int, path string) error {
	img := &image.RGBA{
		Pix:    make([]byte, len(pix)),
		Stride: 4 * w,
		Rect:   image.Rect(0, 0, w, h),
	}
	copy(img.Pix, pix)
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}
