// Package emu assembles the machine: cartridge, bus, CPU, and the shared
// framebuffer, and runs the emulation core as a long-lived goroutine
// driven by batches of M-cycles with a control channel drained at batch
// boundaries.
package emu

import (
	"io"
	"time"

	"github.com/cbeck/dmge/internal/bus"
	"github.com/cbeck/dmge/internal/cart"
	"github.com/cbeck/dmge/internal/cpu"
	"github.com/cbeck/dmge/internal/logger"
	"github.com/cbeck/dmge/internal/ppu"
)

// frameDuration is the wall-clock length of one 17556-M-cycle frame at
// 1048576 M-cycles/second (~59.73 Hz).
const frameDuration = time.Second * ppu.FrameCycles / 1048576

// Machine owns the emulation core. The presenter talks to it only through
// the control channel and the shared framebuffer.
type Machine struct {
	rom    []byte
	header *cart.Header

	fb  *ppu.Framebuffer
	cpu *cpu.CPU

	ctrl chan ControlMsg
	done chan struct{}

	serialSink io.Writer
	limitFPS   bool
	err        error
}

// New parses the ROM and wires a machine around it. Unsupported cartridge
// types fail here, before the core starts.
func New(rom []byte) (*Machine, error) {
	h, err := cart.ParseHeader(rom)
	if err != nil {
		return nil, err
	}
	m := &Machine{
		rom:    rom,
		header: h,
		fb:     ppu.NewFramebuffer(),
		ctrl:   make(chan ControlMsg, 64),
		done:   make(chan struct{}),
	}
	if err := m.buildCore(); err != nil {
		return nil, err
	}
	return m, nil
}

// buildCore (re)creates the bus and CPU in post-boot state. Reset runs
// through here.
func (m *Machine) buildCore() error {
	mbc, err := cart.New(m.rom)
	if err != nil {
		return err
	}
	b := bus.New(mbc, m.fb)
	if m.serialSink != nil {
		b.SetSerialSink(m.serialSink)
	}
	m.cpu = cpu.New(b)
	return nil
}

// Header returns the parsed cartridge header.
func (m *Machine) Header() *cart.Header { return m.header }

// Framebuffer returns the shared frame handoff for the presenter.
func (m *Machine) Framebuffer() *ppu.Framebuffer { return m.fb }

// Err returns the fault that stopped the core, if any.
func (m *Machine) Err() error { return m.err }

// SetSerialSink streams serial output into w; set before the core starts.
func (m *Machine) SetSerialSink(w io.Writer) {
	m.serialSink = w
	m.cpu.Bus().SetSerialSink(w)
}

// SetLimitFPS enables wall-clock pacing to ~59.73 Hz.
func (m *Machine) SetLimitFPS(on bool) { m.limitFPS = on }

// Send queues a control message for the next batch boundary. A full
// queue drops the message: the next key event supersedes it.
func (m *Machine) Send(msg ControlMsg) {
	select {
	case m.ctrl <- msg:
	default:
		logger.Warn("control queue full, message dropped", "kind", msg.Kind)
	}
}

// Start launches the core goroutine.
func (m *Machine) Start() {
	go m.run()
}

// Wait blocks until the core goroutine has exited.
func (m *Machine) Wait() { <-m.done }

func (m *Machine) run() {
	defer close(m.done)
	logger.Info("core started", "title", m.header.Title, "cart", m.header.CartTypeStr)
	next := time.Now()
	for {
		if !m.drainControl() {
			logger.Info("core terminated")
			return
		}
		if err := m.RunCycles(ppu.FrameCycles); err != nil {
			m.err = err
			logger.Error("core stopped", "err", err)
			return
		}
		if m.limitFPS {
			next = next.Add(frameDuration)
			if d := time.Until(next); d > 0 {
				time.Sleep(d)
			} else {
				next = time.Now()
			}
		}
	}
}

// RunCycles advances the core by n M-cycles synchronously.
func (m *Machine) RunCycles(n int) error {
	for i := 0; i < n; i++ {
		if err := m.cpu.Step(); err != nil {
			return err
		}
	}
	return nil
}

// drainControl applies every queued message in arrival order. It never
// blocks; it reports false once a Terminate was seen.
func (m *Machine) drainControl() bool {
	for {
		select {
		case msg := <-m.ctrl:
			switch msg.Kind {
			case MsgTerminate:
				return false
			case MsgReset:
				if err := m.buildCore(); err != nil {
					// the ROM was accepted once; a rebuild cannot fail
					logger.Error("reset failed", "err", err)
					return false
				}
				logger.Info("core reset")
			case MsgDebug:
				logger.Info("debug", "cpu", m.cpu.DebugString(), "ppu", m.cpu.Bus().PPU().DebugString())
			case MsgShowVRAM:
				m.cpu.Bus().PPU().SetShowVRAM(msg.On)
			case MsgKeyDown:
				m.cpu.Bus().Joypad().KeyDown(msg.Button)
			case MsgKeyUp:
				m.cpu.Bus().Joypad().KeyUp(msg.Button)
			}
		default:
			return true
		}
	}
}
