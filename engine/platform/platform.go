package platform

import (
	"errors"
	"image"
	"strings"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/spaghettifunk/anima-blend/engine/core"
)

var startTime = time.Now()

// AbsoluteTime returns the seconds elapsed since the process started.
func AbsoluteTime() float64 {
	return time.Since(startTime).Seconds()
}

// StepFunc advances the application by one tick.
type StepFunc func() error

// FrameFunc returns the frame to present, or nil to keep the last one.
type FrameFunc func() *image.NRGBA

// Window presents a software framebuffer in a desktop window and feeds
// keyboard and mouse state into the core input system.
type Window struct {
	title  string
	width  int
	height int
	tps    int

	step  StepFunc
	frame FrameFunc

	screen   *ebiten.Image
	closing  bool
	outsideW int
	outsideH int

	keys []ebiten.Key
}

func New(config *core.ApplicationConfig) *Window {
	tps := 60
	if config.FixedStep > 0 {
		tps = int(1.0/config.FixedStep + 0.5)
	}
	return &Window{
		title:  config.Name,
		width:  int(config.Width),
		height: int(config.Height),
		tps:    tps,
	}
}

/**
 * @brief Opens the window and blocks until it is closed or Close is called.
 * step runs once per tick after input was pumped; frame is polled on every draw.
 */
func (w *Window) Run(step StepFunc, frame FrameFunc) error {
	if step == nil || frame == nil {
		return core.ErrNilResource
	}
	w.step = step
	w.frame = frame

	ebiten.SetWindowTitle(w.title)
	ebiten.SetWindowSize(w.width, w.height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(w.tps)

	core.LogInfo("opening window '%s' at %dx%d", w.title, w.width, w.height)
	if err := ebiten.RunGame(w); err != nil && !errors.Is(err, ebiten.Termination) {
		return err
	}
	return nil
}

// Close ends Run at the next tick.
func (w *Window) Close() {
	w.closing = true
}

func (w *Window) Update() error {
	if w.closing {
		return ebiten.Termination
	}
	w.pumpMessages()
	if err := w.step(); err != nil {
		return err
	}
	if w.closing {
		return ebiten.Termination
	}
	return nil
}

func (w *Window) Draw(screen *ebiten.Image) {
	img := w.frame()
	if img == nil {
		return
	}
	b := img.Bounds()
	if w.screen == nil || w.screen.Bounds().Dx() != b.Dx() || w.screen.Bounds().Dy() != b.Dy() {
		if w.screen != nil {
			w.screen.Deallocate()
		}
		w.screen = ebiten.NewImage(b.Dx(), b.Dy())
	}
	// the framebuffer is cleared opaque, so straight and premultiplied alpha agree
	w.screen.WritePixels(img.Pix)
	screen.DrawImage(w.screen, nil)
}

// Layout keeps one framebuffer pixel per window pixel and reports size changes.
func (w *Window) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth != w.outsideW || outsideHeight != w.outsideH {
		w.outsideW, w.outsideH = outsideWidth, outsideHeight
		var ctx core.EventContext
		ctx.Data.U16[0] = uint16(outsideWidth)
		ctx.Data.U16[1] = uint16(outsideHeight)
		core.EventFire(core.EVENT_CODE_RESIZED, w, ctx)
	}
	if outsideWidth == 0 || outsideHeight == 0 {
		return w.width, w.height
	}
	w.width, w.height = outsideWidth, outsideHeight
	return outsideWidth, outsideHeight
}

func (w *Window) pumpMessages() {
	w.keys = inpututil.AppendJustPressedKeys(w.keys[:0])
	for _, k := range w.keys {
		if code, ok := keyCode(k); ok {
			core.InputProcessKey(code, true)
		}
	}
	w.keys = inpututil.AppendJustReleasedKeys(w.keys[:0])
	for _, k := range w.keys {
		if code, ok := keyCode(k); ok {
			core.InputProcessKey(code, false)
		}
	}

	for b, mb := range mouseButtons {
		core.InputProcessButton(core.Button(b), ebiten.IsMouseButtonPressed(mb))
	}

	x, y := ebiten.CursorPosition()
	// flip to the renderer's bottom-left origin
	core.InputProcessMouseMove(clampU16(x), clampU16(w.height-1-y))

	if _, dy := ebiten.Wheel(); dy != 0 {
		core.InputProcessMouseWheel(int32(dy * 120))
	}
}

var mouseButtons = [core.BUTTON_MAX_BUTTONS]ebiten.MouseButton{
	core.BUTTON_LEFT:   ebiten.MouseButtonLeft,
	core.BUTTON_RIGHT:  ebiten.MouseButtonRight,
	core.BUTTON_MIDDLE: ebiten.MouseButtonMiddle,
}

var namedKeys = map[ebiten.Key]core.KeyCode{
	ebiten.KeyBackspace:  core.KEY_BACKSPACE,
	ebiten.KeyTab:        core.KEY_TAB,
	ebiten.KeyEnter:      core.KEY_ENTER,
	ebiten.KeyShiftLeft:  core.KEY_SHIFT,
	ebiten.KeyShiftRight: core.KEY_SHIFT,
	ebiten.KeyPause:      core.KEY_PAUSE,
	ebiten.KeyEscape:     core.KEY_ESCAPE,
	ebiten.KeySpace:      core.KEY_SPACE,
	ebiten.KeyArrowLeft:  core.KEY_LEFT,
	ebiten.KeyArrowUp:    core.KEY_UP,
	ebiten.KeyArrowRight: core.KEY_RIGHT,
	ebiten.KeyArrowDown:  core.KEY_DOWN,
}

// keyCode maps an ebiten key to the engine's virtual-key code. Letters and
// digits share their ASCII values.
func keyCode(k ebiten.Key) (core.KeyCode, bool) {
	if code, ok := namedKeys[k]; ok {
		return code, true
	}
	name := k.String()
	if len(name) == 1 && name[0] >= 'A' && name[0] <= 'Z' {
		return core.KEY_A + core.KeyCode(name[0]-'A'), true
	}
	if digit, ok := strings.CutPrefix(name, "Digit"); ok && len(digit) == 1 && digit[0] >= '0' && digit[0] <= '9' {
		return core.KEY_0 + core.KeyCode(digit[0]-'0'), true
	}
	return 0, false
}

func clampU16(v int) uint16 {
	if v < 0 {
		return 0
	}
	if v > 0xFFFF {
		return 0xFFFF
	}
	return uint16(v)
}
