package testbed

import (
	"fmt"

	"github.com/spaghettifunk/anima-blend/engine"
	"github.com/spaghettifunk/anima-blend/engine/animation"
	"github.com/spaghettifunk/anima-blend/engine/core"
	"github.com/spaghettifunk/anima-blend/engine/draw"
	"github.com/spaghettifunk/anima-blend/engine/math"
	"github.com/spaghettifunk/anima-blend/engine/scene"
	"github.com/spaghettifunk/anima-blend/engine/sprite"
)

const (
	// seconds between automatic cross-fades
	switchEvery float32 = 3
	// seconds for one full sweep of the blur rate
	ratePeriod float32 = 4
	// rate change per second while an arrow key is held
	rateNudge float32 = 0.5
)

type DemoGame struct {
	*engine.Game
}

type gameState struct {
	width  uint32
	height uint32

	shapes  *draw.DrawNode
	spinner *draw.DrawNode
	capture *sprite.RenderTexture
	blur    *sprite.BlurSprite
	rate    *rateDriver

	hero       *scene.Sprite3D
	bones      *draw.DrawNode
	animations []*animation.Animation3D
	current    int
	sinceSwap  float32
	crossFades int
}

func NewDemoGame() *DemoGame {
	g := &DemoGame{
		Game: &engine.Game{
			State: &gameState{
				rate: newRateDriver(ratePeriod),
			},
		},
	}
	g.FnInitialize = g.Initialize
	g.FnUpdate = g.Update
	g.FnRender = g.Render
	g.FnOnResize = g.OnResize
	g.FnShutdown = g.Shutdown
	return g
}

func (g *DemoGame) state() *gameState {
	return g.State.(*gameState)
}

func (g *DemoGame) Initialize() error {
	core.LogDebug("DemoGame Initialize fn....")

	if g.SystemManager == nil || g.Renderer == nil || g.Root == nil {
		return fmt.Errorf("the engine is not yet initialized with all the system managers")
	}

	state := g.state()
	state.width = g.Config.Application.Width
	state.height = g.Config.Application.Height
	w, h := float32(state.width), float32(state.height)

	// the draw layer is rendered into a texture covering the top-left quarter
	capture, err := sprite.NewRenderTexture("capture", g.SystemManager.TextureSystem(), g.Renderer, state.width/2, state.height/2)
	if err != nil {
		return err
	}
	capture.SetClearColor(math.NewColor4F(0.1, 0.1, 0.15, 1))
	capture.SetPosition(math.NewVec2(w/4, h*3/4))
	g.Root.AddChild(capture.Node)
	state.capture = capture

	shapes, err := draw.NewDrawNode("shapes", &g.Config.Draw)
	if err != nil {
		return err
	}
	drawShapes(shapes, w/2, h/2)
	capture.Content().AddChild(shapes.Node)
	state.shapes = shapes

	spinner, err := draw.NewDrawNode("spinner", &g.Config.Draw)
	if err != nil {
		return err
	}
	// fan filling only suits convex outlines, so the star is stroked
	spinner.DrawPolygon(regular(6, 40), math.NewColor4F(1, 0.8, 0.1, 1), 2, math.NewColor4F(0.6, 0.3, 0, 1))
	spinner.DrawPoly(star(5, 60, 24), true, math.NewColor4F(1, 1, 1, 1))
	spinner.SetPosition(math.NewVec2(w/4, h/4))
	capture.Content().AddChild(spinner.Node)
	state.spinner = spinner

	spin, err := animation.NewRepeatForever(animation.NewRotateBy(4, 360))
	if err != nil {
		return err
	}
	if err := g.Scheduler.Run(spin, spinner.Node); err != nil {
		return err
	}

	// the same capture, blurred, in the top-right quarter
	blur := sprite.NewBlurSprite("blur", capture.Texture())
	blur.SetPosition(math.NewVec2(w*3/4, h*3/4))
	g.Root.AddChild(blur.Node)
	state.blur = blur

	sk, err := newHeroSkeleton()
	if err != nil {
		return err
	}
	hero := scene.NewSprite3D("hero", sk)
	hero.SetPosition(math.NewVec2(w/2, h/8))
	g.Root.AddChild(hero.Node)
	state.hero = hero

	bones, err := draw.NewDrawNode("bones", &g.Config.Draw)
	if err != nil {
		return err
	}
	bones.SetGlobalZOrder(1)
	g.Root.AddChild(bones.Node)
	state.bones = bones

	idle, err := newIdle()
	if err != nil {
		return err
	}
	wave, err := newWave()
	if err != nil {
		return err
	}
	state.animations = []*animation.Animation3D{idle, wave}
	return g.play(0)
}

// play cross-fades the hero into animation i, looping it until replaced.
func (g *DemoGame) play(i int) error {
	state := g.state()
	animate, err := animation.NewAnimate3D(state.animations[i])
	if err != nil {
		return err
	}
	loop, err := animation.NewRepeatForever(animate)
	if err != nil {
		return err
	}
	if err := g.Scheduler.Run(loop, state.hero.Node); err != nil {
		return err
	}
	core.LogDebug("hero plays '%s'", state.animations[i].Name())
	state.current = i
	state.sinceSwap = 0
	state.crossFades++
	return nil
}

func (g *DemoGame) Update(deltaTime float64) error {
	state := g.state()
	dt := float32(deltaTime)

	var nudge float32
	if core.InputIsKeyDown(core.KEY_RIGHT) || core.InputIsKeyDown(core.KEY_UP) {
		nudge += rateNudge
	}
	if core.InputIsKeyDown(core.KEY_LEFT) || core.InputIsKeyDown(core.KEY_DOWN) {
		nudge -= rateNudge
	}
	if core.InputKeyJustPressed(core.KEY_ENTER) {
		state.rate.Resume()
	}
	state.blur.SetRate(state.rate.Update(dt, nudge))

	state.sinceSwap += dt
	if state.sinceSwap >= switchEvery || core.InputKeyJustPressed(core.KEY_SPACE) {
		if err := g.play((state.current + 1) % len(state.animations)); err != nil {
			return err
		}
	}

	g.drawBones()
	return nil
}

// drawBones redraws the hero's rig as lines and joints.
func (g *DemoGame) drawBones() {
	state := g.state()
	sk := state.hero.Skeleton()
	sk.UpdateBoneTransforms()

	toWorld := state.hero.NodeToWorldTransform()
	joint := func(b *scene.Bone) math.Vec2 {
		p := b.WorldPosition()
		return math.NewVec2(p.X, p.Y).Transform(toWorld)
	}

	state.bones.Clear()
	for _, b := range sk.Bones() {
		at := joint(b)
		if parent := b.Parent(); parent != nil {
			state.bones.DrawLine(joint(parent), at, math.NewColor4F(0.9, 0.9, 0.9, 1))
		}
		state.bones.DrawDot(at, 6, math.NewColor4F(0.2, 0.7, 1, 1))
	}
}

func (g *DemoGame) Render(deltaTime float64) error {
	return nil
}

func (g *DemoGame) OnResize(width uint32, height uint32) error {
	state := g.state()
	state.width = width
	state.height = height
	return nil
}

func (g *DemoGame) Shutdown() error {
	core.LogDebug("DemoGame ran %d cross-fades", g.state().crossFades)
	return nil
}

// drawShapes fills dn with one of every primitive, laid out on a w by h canvas.
func drawShapes(dn *draw.DrawNode, w, h float32) {
	white := math.NewColor4F(1, 1, 1, 1)
	red := math.NewColor4F(1, 0.2, 0.2, 1)
	green := math.NewColor4F(0.2, 1, 0.3, 1)
	blue := math.NewColor4F(0.2, 0.4, 1, 1)
	translucent := math.NewColor4F(0.5, 0, 0.5, 0.5)

	dn.DrawSolidRect(math.NewVec2(w*0.05, h*0.55), math.NewVec2(w*0.3, h*0.9), blue)
	dn.DrawRect(math.NewVec2(w*0.04, h*0.54), math.NewVec2(w*0.31, h*0.91), white)

	dn.DrawSolidCircle(math.NewVec2(w*0.5, h*0.75), h*0.12, 0, 32, 1, 1, red)
	dn.DrawCircle(math.NewVec2(w*0.5, h*0.75), h*0.16, math.K_HALF_PI, 24, true, 1.3, 1, white)
	dn.DrawCircleUniform(math.NewVec2(w*0.85, h*0.75), h*0.1, 0, 6, false, green)

	dn.DrawTriangle(math.NewVec2(w*0.65, h*0.1), math.NewVec2(w*0.95, h*0.1), math.NewVec2(w*0.8, h*0.45), green)
	dn.DrawQuad(math.NewVec2(w*0.05, h*0.1), math.NewVec2(w*0.3, h*0.1), math.NewVec2(w*0.35, h*0.4), math.NewVec2(w*0.1, h*0.4), white)
	dn.DrawSolidPoly([]math.Vec2{
		math.NewVec2(w*0.1, h*0.15),
		math.NewVec2(w*0.25, h*0.15),
		math.NewVec2(w*0.28, h*0.35),
		math.NewVec2(w*0.12, h*0.35),
	}, translucent)

	dn.DrawPoly([]math.Vec2{
		math.NewVec2(w*0.4, h*0.05),
		math.NewVec2(w*0.45, h*0.2),
		math.NewVec2(w*0.55, h*0.05),
		math.NewVec2(w*0.6, h*0.2),
	}, false, red)
	dn.DrawLine(math.NewVec2(0, h*0.5), math.NewVec2(w, h*0.5), white)

	dn.DrawDot(math.NewVec2(w*0.95, h*0.95), 8, red)
	dn.DrawPoint(math.NewVec2(w*0.05, h*0.97), 6, green)
	dn.DrawPoints([]math.Vec2{
		math.NewVec2(w*0.4, h*0.97),
		math.NewVec2(w*0.45, h*0.97),
		math.NewVec2(w*0.5, h*0.97),
	}, 4, white)
}

// regular returns a convex polygon with n corners centred on the origin.
func regular(n int, radius float32) []math.Vec2 {
	verts := make([]math.Vec2, 0, n)
	step := math.K_PI_2 / float32(n)
	for i := 0; i < n; i++ {
		a := float32(i) * step
		verts = append(verts, math.NewVec2(radius*math.Cos(a), radius*math.Sin(a)))
	}
	return verts
}

// star returns the outline of a star with n points centred on the origin.
func star(n int, outer, inner float32) []math.Vec2 {
	verts := make([]math.Vec2, 0, 2*n)
	step := math.K_PI / float32(n)
	for i := 0; i < 2*n; i++ {
		r := outer
		if i%2 == 1 {
			r = inner
		}
		a := math.K_HALF_PI + float32(i)*step
		verts = append(verts, math.NewVec2(r*math.Cos(a), r*math.Sin(a)))
	}
	return verts
}
