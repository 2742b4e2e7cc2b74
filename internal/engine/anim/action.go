// Package anim drives skeletal animation playback: per-clip actions, a
// mixer that composites their weighted poses, and the state controller
// that cross-fades between them.
package anim

import (
	gomath "math"

	"github.com/kelthar/rigview/internal/engine/model"
)

// LoopMode selects how an action behaves at the end of its clip.
type LoopMode int

const (
	// LoopRepeat wraps the clip time back to zero.
	LoopRepeat LoopMode = iota
	// LoopOnce plays through once and finishes.
	LoopOnce
)

// Action is the playback state of one clip on the mixer: its own clock,
// time scale, blend weight and fade schedule. Obtain actions through
// Mixer.ClipAction; they are not safe for concurrent use.
type Action struct {
	clip  *model.AnimationClip
	mixer *Mixer

	loop              LoopMode
	clampWhenFinished bool

	time      float32
	timeScale float32
	weight    float32

	running  bool
	finished bool

	// Linear weight ramp; dir 0 means no fade in flight.
	fadeDir      int
	fadeDuration float32
	fadeElapsed  float32
}

// Clip returns the clip this action plays.
func (a *Action) Clip() *model.AnimationClip { return a.clip }

// SetLoop sets the loop mode.
func (a *Action) SetLoop(mode LoopMode) *Action {
	a.loop = mode
	return a
}

// SetClampWhenFinished makes a LoopOnce action hold its final frame
// instead of deactivating when it finishes.
func (a *Action) SetClampWhenFinished(clamp bool) *Action {
	a.clampWhenFinished = clamp
	return a
}

// Reset rewinds the action clock to zero, clears the finished flag and
// cancels any fade in flight.
func (a *Action) Reset() *Action {
	a.time = 0
	a.finished = false
	a.fadeDir = 0
	return a
}

// Play activates the action so the mixer advances and blends it.
func (a *Action) Play() *Action {
	a.running = true
	return a
}

// Stop deactivates the action, cancelling any fade in flight. Its time
// and weight are left as they are.
func (a *Action) Stop() *Action {
	a.running = false
	a.fadeDir = 0
	return a
}

// IsRunning reports whether the mixer is advancing this action.
func (a *Action) IsRunning() bool { return a.running }

// Time returns the action's clip-local clock.
func (a *Action) Time() float32 { return a.time }

// SetEffectiveWeight sets the blend weight directly, cancelling any fade.
func (a *Action) SetEffectiveWeight(w float32) *Action {
	a.weight = w
	a.fadeDir = 0
	return a
}

// EffectiveWeight returns the current blend weight.
func (a *Action) EffectiveWeight() float32 { return a.weight }

// SetEffectiveTimeScale sets the playback rate multiplier.
func (a *Action) SetEffectiveTimeScale(s float32) *Action {
	a.timeScale = s
	return a
}

// EffectiveTimeScale returns the playback rate multiplier.
func (a *Action) EffectiveTimeScale() float32 { return a.timeScale }

// FadeIn ramps the weight from 0 to 1 over duration seconds. A zero
// duration snaps to full weight.
func (a *Action) FadeIn(duration float32) *Action {
	if duration <= 0 {
		a.weight = 1
		a.fadeDir = 0
		return a
	}
	a.weight = 0
	a.fadeDir = 1
	a.fadeDuration = duration
	a.fadeElapsed = 0
	return a
}

// FadeOut ramps the weight from 1 to 0 over duration seconds and stops
// the action once fully faded. A zero duration stops it immediately.
func (a *Action) FadeOut(duration float32) *Action {
	if duration <= 0 {
		a.weight = 0
		a.fadeDir = 0
		a.running = false
		return a
	}
	a.weight = 1
	a.fadeDir = -1
	a.fadeDuration = duration
	a.fadeElapsed = 0
	return a
}

// update advances the fade and the clip clock by dt seconds. It reports
// whether a LoopOnce action finished on this step.
func (a *Action) update(dt float32) bool {
	if a.fadeDir != 0 {
		a.fadeElapsed += dt
		t := float32(1)
		if a.fadeDuration > 0 && a.fadeElapsed < a.fadeDuration {
			t = a.fadeElapsed / a.fadeDuration
		}
		if a.fadeDir > 0 {
			a.weight = t
		} else {
			a.weight = 1 - t
		}
		if t >= 1 {
			a.fadeDir = 0
			if a.weight <= 0 {
				a.running = false
			}
		}
	}

	if !a.running {
		return false
	}

	a.time += dt * a.timeScale
	duration := a.clip.Duration

	switch a.loop {
	case LoopRepeat:
		if duration > 0 && a.time >= duration {
			a.time = float32(gomath.Mod(float64(a.time), float64(duration)))
		}
	case LoopOnce:
		if a.time >= duration {
			a.time = duration
			if !a.finished {
				a.finished = true
				if !a.clampWhenFinished {
					a.running = false
				}
				return true
			}
		}
	}
	return false
}
