package animation

import (
	"fmt"
	"sync"

	"github.com/spaghettifunk/anima-blend/engine/core"
	"github.com/spaghettifunk/anima-blend/engine/scene"
)

// Transitions shorter than this replace the running controller without a fade.
const minTransitionTime float32 = 0.001

type scheduledAction struct {
	action  Action
	removed bool
}

/**
 * @brief Steps actions every frame and owns the cross-fade registries.
 * Per target node, at most one controller is fading in or running and at
 * most one is fading out.
 */
type Scheduler struct {
	mu sync.Mutex

	transitionTime float32
	quality        Quality

	actions []*scheduledAction

	fadeIn  map[*scene.Node]*Animate3D
	fadeOut map[*scene.Node]*Animate3D
	running map[*scene.Node]*Animate3D
}

func NewScheduler(config *core.AnimationConfig) (*Scheduler, error) {
	if config == nil {
		config = &core.DefaultConfig().Animation
	}
	if config.TransitionTime < 0 {
		err := fmt.Errorf("scheduler transition time must be >= 0, got %f", config.TransitionTime)
		core.LogError(err.Error())
		return nil, err
	}
	quality, err := ParseQuality(config.Quality)
	if err != nil {
		core.LogError(err.Error())
		return nil, err
	}
	return &Scheduler{
		transitionTime: config.TransitionTime,
		quality:        quality,
		actions:        make([]*scheduledAction, 0),
		fadeIn:         make(map[*scene.Node]*Animate3D),
		fadeOut:        make(map[*scene.Node]*Animate3D),
		running:        make(map[*scene.Node]*Animate3D),
	}, nil
}

func (s *Scheduler) TransitionTime() float32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transitionTime
}

func (s *Scheduler) SetTransitionTime(t float32) error {
	if t < 0 {
		return fmt.Errorf("transition time must be >= 0, got %f", t)
	}
	s.mu.Lock()
	s.transitionTime = t
	s.mu.Unlock()
	return nil
}

// Run starts action on target and keeps stepping it until it is done or stopped.
// An action can be scheduled once at a time.
func (s *Scheduler) Run(action Action, target *scene.Node) error {
	if action == nil {
		return fmt.Errorf("scheduler run: %w", core.ErrNilResource)
	}
	if target == nil {
		return fmt.Errorf("scheduler run: %w", core.ErrNilTarget)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, sa := range s.actions {
		if sa.action == action && !sa.removed {
			return fmt.Errorf("scheduler run: %w", core.ErrAlreadyScheduled)
		}
	}
	if sa, ok := action.(schedulerAware); ok {
		sa.attach(s)
	}
	action.StartWithTarget(target)
	s.actions = append(s.actions, &scheduledAction{action: action})
	return nil
}

// Update steps every action by dt seconds and stops the finished ones.
func (s *Scheduler) Update(dt float32) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, sa := range s.actions {
		if sa.removed {
			continue
		}
		sa.action.Step(dt)
		if sa.action.IsDone() {
			sa.action.Stop()
			sa.removed = true
		}
	}

	kept := s.actions[:0]
	for _, sa := range s.actions {
		if !sa.removed {
			kept = append(kept, sa)
		}
	}
	for i := len(kept); i < len(s.actions); i++ {
		s.actions[i] = nil
	}
	s.actions = kept
}

// StopAction stops action and removes it from the schedule.
func (s *Scheduler) StopAction(action Action) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopMatching(func(a Action) bool { return a == action })
}

func (s *Scheduler) StopAllForTarget(target *scene.Node) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopMatching(func(a Action) bool { return a.Target() == target })
}

func (s *Scheduler) StopAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopMatching(func(Action) bool { return true })
}

func (s *Scheduler) stopMatching(match func(Action) bool) {
	kept := s.actions[:0]
	for _, sa := range s.actions {
		if !sa.removed && match(sa.action) {
			sa.action.Stop()
			sa.removed = true
		}
		if !sa.removed {
			kept = append(kept, sa)
		}
	}
	for i := len(kept); i < len(s.actions); i++ {
		s.actions[i] = nil
	}
	s.actions = kept
}

// ActionCount reports how many actions are scheduled.
func (s *Scheduler) ActionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.actions)
}

func (s *Scheduler) Running(target *scene.Node) *Animate3D {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running[target]
}

func (s *Scheduler) FadingIn(target *scene.Node) *Animate3D {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fadeIn[target]
}

func (s *Scheduler) FadingOut(target *scene.Node) *Animate3D {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fadeOut[target]
}

// unregister drops every registry entry of target that still points at a.
func (s *Scheduler) unregister(target *scene.Node, a *Animate3D) {
	if s.fadeIn[target] == a {
		delete(s.fadeIn, target)
	}
	if s.fadeOut[target] == a {
		delete(s.fadeOut, target)
	}
	if s.running[target] == a {
		delete(s.running, target)
	}
}
