package engine

import (
	"github.com/spaghettifunk/anima-blend/engine/animation"
	"github.com/spaghettifunk/anima-blend/engine/core"
	"github.com/spaghettifunk/anima-blend/engine/renderer"
	"github.com/spaghettifunk/anima-blend/engine/scene"
	"github.com/spaghettifunk/anima-blend/engine/systems"
)

// Game is the set of hooks the engine drives. The engine fills in the
// subsystem fields before FnInitialize is called.
type Game struct {
	Config        *core.Config
	SystemManager *systems.SystemManager
	Renderer      *renderer.Renderer
	Scheduler     *animation.Scheduler
	Root          *scene.Node
	State         interface{}

	FnInitialize Initialize
	FnUpdate     Update
	FnRender     Render
	FnOnResize   OnResize
	FnShutdown   Shutdown
}

type Initialize func() error
type Update func(deltaTime float64) error

// Render runs after the scene was visited and before the frame is flushed.
type Render func(deltaTime float64) error
type OnResize func(width uint32, height uint32) error
type Shutdown func() error
