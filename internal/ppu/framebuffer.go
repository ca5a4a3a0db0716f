package ppu

import "sync"

const (
	// ScreenWidth and ScreenHeight are the visible LCD dimensions.
	ScreenWidth  = 160
	ScreenHeight = 144
)

// Framebuffer is the cross-thread handoff between the PPU and the host
// presenter: the latest complete RGBA frame plus a dirty flag, behind one
// mutex. The PPU publishes on VBlank; the presenter drains on its own
// schedule, so late presenters drop frames instead of blocking the core.
type Framebuffer struct {
	mu    sync.Mutex
	pix   [ScreenWidth * ScreenHeight * 4]byte
	dirty bool
}

func NewFramebuffer() *Framebuffer { return &Framebuffer{} }

// publish replaces the frame contents and marks it dirty.
func (f *Framebuffer) publish(src *[ScreenWidth * ScreenHeight * 4]byte) {
	f.mu.Lock()
	f.pix = *src
	f.dirty = true
	f.mu.Unlock()
}

// Drain copies the frame into dst (len 160*144*4) and clears the dirty
// flag. It reports whether a new frame had been published since the last
// drain.
func (f *Framebuffer) Drain(dst []byte) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	wasDirty := f.dirty
	f.dirty = false
	copy(dst, f.pix[:])
	return wasDirty
}
