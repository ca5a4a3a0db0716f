// Package ui is the host presenter: an ebiten window that shows the
// shared framebuffer and turns keyboard edges into control messages. It
// never touches core state directly.
package ui

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/cbeck/dmge/internal/emu"
	"github.com/cbeck/dmge/internal/joypad"
	"github.com/cbeck/dmge/internal/ppu"
)

// keymap binds host keys to joypad buttons.
var keymap = map[ebiten.Key]joypad.Button{
	ebiten.KeyArrowUp:    joypad.Up,
	ebiten.KeyArrowDown:  joypad.Down,
	ebiten.KeyArrowLeft:  joypad.Left,
	ebiten.KeyArrowRight: joypad.Right,
	ebiten.KeyX:          joypad.A,
	ebiten.KeyZ:          joypad.B,
	ebiten.KeyEnter:      joypad.Start,
	ebiten.KeyBackspace:  joypad.Select,
}

type App struct {
	cfg Config
	m   *emu.Machine

	tex   *ebiten.Image
	frame []byte

	showVRAM bool
}

func NewApp(cfg Config, m *emu.Machine) *App {
	cfg.Defaults()
	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowSize(ppu.ScreenWidth*cfg.Scale, ppu.ScreenHeight*cfg.Scale)
	return &App{
		cfg:   cfg,
		m:     m,
		tex:   ebiten.NewImage(ppu.ScreenWidth, ppu.ScreenHeight),
		frame: make([]byte, ppu.ScreenWidth*ppu.ScreenHeight*4),
	}
}

// Run blocks until the window closes, then terminates and joins the core.
func (a *App) Run() error {
	err := ebiten.RunGame(a)
	a.m.Send(emu.Terminate())
	a.m.Wait()
	return err
}

func (a *App) Update() error {
	for key, btn := range keymap {
		if inpututil.IsKeyJustPressed(key) {
			a.m.Send(emu.KeyDown(btn))
		}
		if inpututil.IsKeyJustReleased(key) {
			a.m.Send(emu.KeyUp(btn))
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyV) {
		a.showVRAM = !a.showVRAM
		a.m.Send(emu.ShowVRAM(a.showVRAM))
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyD) {
		a.m.Send(emu.Debug())
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		a.m.Send(emu.Reset())
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	// the core died (illegal opcode); close the window
	if a.m.Err() != nil {
		return ebiten.Termination
	}
	return nil
}

func (a *App) Draw(screen *ebiten.Image) {
	if a.m.Framebuffer().Drain(a.frame) {
		a.tex.WritePixels(a.frame)
	}
	op := &ebiten.DrawImageOptions{}
	sw, sh := screen.Bounds().Dx(), screen.Bounds().Dy()
	op.GeoM.Scale(float64(sw)/float64(ppu.ScreenWidth), float64(sh)/float64(ppu.ScreenHeight))
	screen.DrawImage(a.tex, op)
}

func (a *App) Layout(outsideWidth, outsideHeight int) (int, int) {
	return ppu.ScreenWidth * a.cfg.Scale, ppu.ScreenHeight * a.cfg.Scale
}
