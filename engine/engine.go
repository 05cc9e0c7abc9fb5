package engine

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/spaghettifunk/anima-blend/engine/animation"
	"github.com/spaghettifunk/anima-blend/engine/core"
	"github.com/spaghettifunk/anima-blend/engine/math"
	"github.com/spaghettifunk/anima-blend/engine/platform"
	"github.com/spaghettifunk/anima-blend/engine/renderer"
	"github.com/spaghettifunk/anima-blend/engine/renderer/software"
	"github.com/spaghettifunk/anima-blend/engine/scene"
	"github.com/spaghettifunk/anima-blend/engine/systems"
)

type Engine struct {
	currentStage  Stage
	gameInstance  *Game
	config        *core.Config
	isRunning     atomic.Bool
	isSuspended   bool
	backend       *software.Backend
	renderer      *renderer.Renderer
	systemManager *systems.SystemManager
	scheduler     *animation.Scheduler
	root          *scene.Node
	window        *platform.Window
	width         uint32
	height        uint32
	clock         *core.Clock
	lastTime      float64
	frameCount    uint64
	// set once the system manager initialized; its shutdown blocks otherwise
	systemsUp bool
}

func New(g *Game, cfg *core.Config) (*Engine, error) {
	if g == nil {
		err := fmt.Errorf("engine: game %w", core.ErrNilResource)
		core.LogError(err.Error())
		return nil, err
	}
	if cfg == nil {
		cfg = core.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		core.LogError(err.Error())
		return nil, err
	}

	e := &Engine{
		currentStage: EngineStageBooting,
		gameInstance: g,
		config:       cfg,
		clock:        core.NewClock(),
		width:        cfg.Application.Width,
		height:       cfg.Application.Height,
	}

	e.backend = software.New()
	e.renderer = renderer.New(e.backend)

	sm, err := systems.NewSystemManager(cfg, e.renderer)
	if err != nil {
		core.LogError(err.Error())
		return nil, err
	}
	e.systemManager = sm

	scheduler, err := animation.NewScheduler(&cfg.Animation)
	if err != nil {
		return nil, err
	}
	e.scheduler = scheduler

	e.currentStage = EngineStageBootComplete
	return e, nil
}

func (e *Engine) Initialize() error {
	if e.currentStage != EngineStageBootComplete {
		return fmt.Errorf("engine cannot initialize from stage '%s'", e.currentStage)
	}
	e.currentStage = EngineStageInitializing

	core.SetLogLevel(core.ParseLogLevel(e.config.Log.Level))

	// initialize events
	if !core.EventInitialize() {
		return fmt.Errorf("failed to initialize the event system")
	}

	// register some events
	core.EventRegister(core.EVENT_CODE_APPLICATION_QUIT, e, e.onEvent)
	core.EventRegister(core.EVENT_CODE_KEY_PRESSED, e, e.onKey)
	core.EventRegister(core.EVENT_CODE_KEY_RELEASED, e, e.onKey)
	core.EventRegister(core.EVENT_CODE_RESIZED, e, e.onResized)

	// initialize input
	if err := core.InputInitialize(); err != nil {
		return err
	}
	if err := core.MetricsInitialize(); err != nil {
		return err
	}

	// initialize subsystems
	if err := e.renderer.Initialize(e.config.Application.Name, e.width, e.height); err != nil {
		return err
	}
	if err := e.systemManager.Initialize(); err != nil {
		return err
	}
	e.systemsUp = true

	e.root = scene.NewNode("root")

	g := e.gameInstance
	g.Config = e.config
	g.SystemManager = e.systemManager
	g.Renderer = e.renderer
	g.Scheduler = e.scheduler
	g.Root = e.root

	if g.FnInitialize != nil {
		if err := g.FnInitialize(); err != nil {
			return err
		}
	}
	if g.FnOnResize != nil {
		if err := g.FnOnResize(e.width, e.height); err != nil {
			return err
		}
	}

	e.currentStage = EngineStageInitialized
	core.LogInfo("engine initialized at %dx%d", e.width, e.height)
	return nil
}

/**
 * @brief Runs the main loop with a fixed update step until Stop is called,
 * the window closes, or the configured frame count is reached. The last
 * frame is captured if a capture path is configured.
 */
func (e *Engine) Run() error {
	if e.currentStage != EngineStageInitialized {
		return fmt.Errorf("engine cannot run from stage '%s'", e.currentStage)
	}
	e.currentStage = EngineStageRunning
	e.isRunning.Store(true)

	e.clock.Start()
	e.clock.Update()
	e.lastTime = e.clock.Elapsed()

	var err error
	if e.config.Application.Window {
		e.window = platform.New(&e.config.Application)
		err = e.window.Run(e.tick, e.backend.Framebuffer)
	} else {
		err = e.runHeadless()
	}
	e.isRunning.Store(false)
	e.clock.Stop()

	if err != nil {
		core.LogError("engine loop failed: %s", err)
		return err
	}

	if path := e.config.Application.CapturePath; path != "" {
		if err := e.backend.Capture(path); err != nil {
			core.LogError(err.Error())
			return err
		}
	}
	return nil
}

func (e *Engine) runHeadless() error {
	step := e.config.Application.FixedStep
	// a bounded run renders as fast as possible; an unbounded one keeps real time
	realtime := e.config.Application.Frames == 0

	for e.isRunning.Load() {
		frameStartTime := platform.AbsoluteTime()
		if err := e.Step(step); err != nil {
			return err
		}
		if !realtime {
			continue
		}
		remaining := step - (platform.AbsoluteTime() - frameStartTime)
		if remaining > 0 {
			time.Sleep(time.Duration(remaining * float64(time.Second)))
		}
	}
	return nil
}

func (e *Engine) tick() error {
	if err := e.Step(e.config.Application.FixedStep); err != nil {
		return err
	}
	if !e.isRunning.Load() {
		e.window.Close()
	}
	return nil
}

/**
 * @brief Advances one frame of dt seconds: job completions and asset changes,
 * scheduled actions, the game update, the scene visit, the render hook and
 * the renderer flush. Input state is rolled over last.
 */
func (e *Engine) Step(dt float64) error {
	if e.isSuspended {
		return nil
	}
	frameStartTime := platform.AbsoluteTime()

	e.clock.Update()
	currentTime := e.clock.Elapsed()

	e.systemManager.Update()
	e.scheduler.Update(float32(dt))

	g := e.gameInstance
	if g.FnUpdate != nil {
		if err := g.FnUpdate(dt); err != nil {
			core.LogError("Game update failed, shutting down.")
			e.Stop()
			return err
		}
	}

	e.root.Visit(e.renderer, math.NewMat4Identity(), false)

	// Call the game's render routine.
	if g.FnRender != nil {
		if err := g.FnRender(dt); err != nil {
			core.LogError("Game render failed, shutting down.")
			e.Stop()
			return err
		}
	}

	if err := e.renderer.Flush(dt); err != nil {
		e.Stop()
		return err
	}

	core.MetricsUpdate(platform.AbsoluteTime() - frameStartTime)

	// NOTE: Input update/state copying should always be handled
	// after any input should be recorded; I.E. before this line.
	// As a safety, input is the last thing to be updated before
	// this frame ends.
	_ = core.InputUpdate(dt)

	e.lastTime = currentTime
	e.frameCount++
	if limit := e.config.Application.Frames; limit > 0 && e.frameCount >= uint64(limit) {
		e.Stop()
	}
	return nil
}

// Stop ends Run after the current frame. Safe to call from any goroutine.
func (e *Engine) Stop() {
	e.isRunning.Store(false)
}

func (e *Engine) Shutdown() error {
	if e.currentStage == EngineStageShuttingDown || e.currentStage == EngineStageUninitialized {
		return nil
	}
	e.currentStage = EngineStageShuttingDown
	e.Stop()

	if fn := e.gameInstance.FnShutdown; fn != nil {
		if err := fn(); err != nil {
			core.LogError(err.Error())
		}
	}
	e.scheduler.StopAll()

	if e.systemsUp {
		if err := e.systemManager.Shutdown(); err != nil {
			return err
		}
		e.systemsUp = false
	} else if err := e.systemManager.JobSystem().Shutdown(); err != nil {
		return err
	}
	if err := e.renderer.Shutdown(); err != nil {
		return err
	}
	if err := core.InputShutdown(); err != nil {
		return err
	}
	if err := core.EventShutdown(); err != nil {
		return err
	}
	e.currentStage = EngineStageUninitialized
	core.LogInfo("engine shut down after %d frames", e.frameCount)
	return nil
}

func (e *Engine) Stage() Stage                          { return e.currentStage }
func (e *Engine) Config() *core.Config                  { return e.config }
func (e *Engine) Backend() *software.Backend            { return e.backend }
func (e *Engine) Renderer() *renderer.Renderer          { return e.renderer }
func (e *Engine) SystemManager() *systems.SystemManager { return e.systemManager }
func (e *Engine) Scheduler() *animation.Scheduler       { return e.scheduler }
func (e *Engine) Root() *scene.Node                     { return e.root }
func (e *Engine) FrameCount() uint64                    { return e.frameCount }
func (e *Engine) IsSuspended() bool                     { return e.isSuspended }

// GetFramebufferSize returns the width and height (in this order)
// of the application Framebuffer
func (e *Engine) GetFramebufferSize() (uint32, uint32) {
	return e.width, e.height
}

func (e *Engine) onEvent(code core.SystemEventCode, sender interface{}, listener interface{}, context core.EventContext) bool {
	switch code {
	case core.EVENT_CODE_APPLICATION_QUIT:
		core.LogInfo("EVENT_CODE_APPLICATION_QUIT received, shutting down.")
		e.Stop()
		return true
	}
	return false
}

func (e *Engine) onKey(code core.SystemEventCode, sender interface{}, listener interface{}, context core.EventContext) bool {
	keyCode := core.KeyCode(context.Data.U16[0])

	if code == core.EVENT_CODE_KEY_PRESSED {
		if keyCode == core.KEY_ESCAPE {
			// NOTE: Technically firing an event to itself, but there may be other listeners.
			core.EventFire(core.EVENT_CODE_APPLICATION_QUIT, e, core.EventContext{})
			// Block anything else from processing this.
			return true
		}
		core.LogDebug("key 0x%02x pressed", uint16(keyCode))
	} else {
		core.LogDebug("key 0x%02x released", uint16(keyCode))
	}
	return false
}

func (e *Engine) onResized(code core.SystemEventCode, sender interface{}, listener interface{}, context core.EventContext) bool {
	width := uint32(context.Data.U16[0])
	height := uint32(context.Data.U16[1])

	// Check if different. If so, trigger a resize event.
	if width == e.width && height == e.height {
		return false
	}

	// Handle minimization
	if width == 0 || height == 0 {
		core.LogInfo("Window minimized, suspending application.")
		e.isSuspended = true
		return true
	}
	if e.isSuspended {
		core.LogInfo("Window restored, resuming application.")
		e.isSuspended = false
	}

	e.width = width
	e.height = height
	core.LogDebug("Window resize: %d, %d", width, height)

	if err := e.renderer.OnResize(width, height); err != nil {
		core.LogError(err.Error())
	}
	if fn := e.gameInstance.FnOnResize; fn != nil {
		if err := fn(width, height); err != nil {
			core.LogError(err.Error())
		}
	}
	return false
}
