// Command gbcore runs a cartridge image in an SDL2 window, polling the
// keyboard for joypad input. Structured after vcs_main.go: a flag-driven
// config, an SDL window whose surface pixels are poked directly to avoid
// Surface.Set's per-pixel color.Color dispatch, and a pprof
// endpoint for profiling long play sessions.
package main

import (
	"flag"
	"fmt"
	"image"
	"image/color"
	"io/ioutil"
	"log"
	"net/http"
	_ "net/http/pprof"
	"sync"
	"time"

	"github.com/jmchacon/gbcore/cartridge"
	"github.com/jmchacon/gbcore/io"
	"github.com/jmchacon/gbcore/ppu"
	"github.com/jmchacon/gbcore/soc"
	"github.com/veandco/go-sdl2/sdl"
	"golang.org/x/image/draw"
)

var (
	cart     = flag.String("cart", "", "Path to cartridge image to load")
	bootPath = flag.String("boot_rom", "", "Optional path to a 256 byte boot ROM image")
	scale    = flag.Int("scale", 3, "Scale factor to render the 160x144 screen at")
	port     = flag.Int("port", 6060, "Port to run the HTTP server for pprof")
	debug    = flag.Bool("debug", false, "If true, log per-frame timing")
)

// keyboard implements io.KeySetter over a simple held-key set, updated from
// the SDL keyboard events drained once per frame; the joypad register only
// ever needs the current level.
type keyboard struct {
	mu      sync.Mutex
	pressed map[io.Key]bool
}

func newKeyboard() *keyboard {
	return &keyboard{pressed: make(map[io.Key]bool)}
}

func (k *keyboard) Set(key io.Key, v bool) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.pressed[key] = v
}

func (k *keyboard) Pressed(key io.Key) bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.pressed[key]
}

var keymap = map[sdl.Scancode]io.Key{
	sdl.SCANCODE_RIGHT:  io.KeyRight,
	sdl.SCANCODE_LEFT:   io.KeyLeft,
	sdl.SCANCODE_UP:     io.KeyUp,
	sdl.SCANCODE_DOWN:   io.KeyDown,
	sdl.SCANCODE_X:      io.KeyA,
	sdl.SCANCODE_Z:      io.KeyB,
	sdl.SCANCODE_RSHIFT: io.KeySelect,
	sdl.SCANCODE_RETURN: io.KeyStart,
}

func pollKeys(keys *keyboard) bool {
	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		switch e := event.(type) {
		case *sdl.QuitEvent:
			return false
		case *sdl.KeyboardEvent:
			if gbKey, ok := keymap[e.Keysym.Scancode]; ok {
				keys.Set(gbKey, e.State == sdl.PRESSED)
			}
		}
	}
	return true
}

// grayFrame adapts the PPU's raw shade buffer to image.Image so it can
// feed x/image/draw's scaler.
type grayFrame struct {
	fb *[ppu.ScreenWidth * ppu.ScreenHeight]uint8
}

func (g grayFrame) ColorModel() color.Model { return color.GrayModel }
func (g grayFrame) Bounds() image.Rectangle {
	return image.Rect(0, 0, ppu.ScreenWidth, ppu.ScreenHeight)
}
func (g grayFrame) At(x, y int) color.Color {
	return color.Gray{Y: g.fb[y*ppu.ScreenWidth+x]}
}

// blitFrame scales the 160x144 frame buffer up to the window's size with
// x/image/draw's nearest-neighbor scaler -- a crisp, blocky upscale that
// suits the DMG's blunt 4 shade palette far better than bilinear would --
// then copies the scaled RGBA image into the SDL surface's own pixel
// bytes directly, since Surface.Set goes through color.Color's interface
// dispatch per pixel and that shows up in profiles at 60 frames a second.
func blitFrame(fb *[ppu.ScreenWidth * ppu.ScreenHeight]uint8, scaled *image.RGBA, surface *sdl.Surface) {
	draw.NearestNeighbor.Scale(scaled, scaled.Bounds(), grayFrame{fb}, grayFrame{fb}.Bounds(), draw.Src, nil)

	pixels := surface.Pixels()
	bpp := int(surface.Format.BytesPerPixel)
	pitch := int(surface.Pitch)
	w := scaled.Bounds().Dx()
	h := scaled.Bounds().Dy()

	for y := 0; y < h; y++ {
		srcRow := scaled.Pix[y*scaled.Stride : y*scaled.Stride+w*4]
		dstRow := pixels[y*pitch:]
		for x := 0; x < w; x++ {
			si := x * 4
			di := x * bpp
			dstRow[di+0] = srcRow[si+0]
			dstRow[di+1] = srcRow[si+1]
			dstRow[di+2] = srcRow[si+2]
			if bpp == 4 {
				dstRow[di+3] = srcRow[si+3]
			}
		}
	}
}

func main() {
	flag.Parse()
	if *cart == "" {
		log.Fatal("-cart is required")
	}

	go func() {
		log.Println(http.ListenAndServe(fmt.Sprintf("localhost:%d", *port), nil))
	}()

	romImage, err := ioutil.ReadFile(*cart)
	if err != nil {
		log.Fatalf("can't load cart: %v", err)
	}
	c, err := cartridge.New(romImage)
	if err != nil {
		log.Fatalf("can't parse cartridge: %v", err)
	}

	var bootImage []byte
	if *bootPath != "" {
		bootImage, err = ioutil.ReadFile(*bootPath)
		if err != nil {
			log.Fatalf("can't load boot ROM: %v", err)
		}
	}

	keys := newKeyboard()
	s, err := soc.New(c, bootImage, keys)
	if err != nil {
		log.Fatalf("can't init SoC: %v", err)
	}

	if err := sdl.Init(sdl.INIT_EVERYTHING); err != nil {
		log.Fatalf("can't init SDL: %v", err)
	}
	defer sdl.Quit()

	window, err := sdl.CreateWindow("gbcore",
		sdl.WINDOWPOS_UNDEFINED, sdl.WINDOWPOS_UNDEFINED,
		int32(ppu.ScreenWidth**scale), int32(ppu.ScreenHeight**scale),
		sdl.WINDOW_SHOWN)
	if err != nil {
		log.Fatalf("can't create window: %v", err)
	}
	defer window.Destroy()

	surface, err := window.GetSurface()
	if err != nil {
		log.Fatalf("can't get window surface: %v", err)
	}

	scaled := image.NewRGBA(image.Rect(0, 0, ppu.ScreenWidth**scale, ppu.ScreenHeight**scale))

	// One frame is 70224 clocks of the 4194304 Hz CPU clock.
	const frameTime = time.Second * 70224 / 4194304

	now := time.Now()
	next := now.Add(frameTime)
	var tot, cnt time.Duration
	for pollKeys(keys) {
		if err := s.RunFrame(); err != nil {
			log.Fatalf("RunFrame: %v", err)
		}
		blitFrame(&s.Bus.PPU().FrameBuffer, scaled, surface)
		window.UpdateSurface()

		// Block until the wall clock catches up with the emulated frame.
		if d := time.Until(next); d > 0 {
			time.Sleep(d)
			next = next.Add(frameTime)
		} else {
			next = time.Now().Add(frameTime)
		}

		if *debug {
			df := time.Since(now)
			tot += df
			cnt++
			fmt.Printf("Frame took %s average %s\n", df, tot/cnt)
			now = time.Now()
		}
	}
}
