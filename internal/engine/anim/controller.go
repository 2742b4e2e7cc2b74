package anim

import (
	"github.com/kelthar/rigview/internal/engine/model"
	"github.com/kelthar/rigview/internal/logger"
)

// States are the selectable animation states, in menu order. States from
// Death onward are one-shots that clamp at their final frame.
var States = []string{"Idle", "Walking", "Running", "Dance", "Death", "Sitting", "Standing"}

// Emotes are the one-shot gesture clips. An emote interrupts the current
// state and hands back to it when the clip finishes.
var Emotes = []string{"Jump", "Yes", "No", "Wave", "Punch", "ThumbsUp"}

// oneShotStateIndex is the first States entry that plays once instead of
// looping.
const oneShotStateIndex = 4

// EmoteFade is the cross-fade used entering and leaving an emote.
const EmoteFade = 0.2

// oneShot reports whether a clip of this name plays once and clamps.
func oneShot(name string) bool {
	for _, e := range Emotes {
		if e == name {
			return true
		}
	}
	for i, s := range States {
		if s == name {
			return i >= oneShotStateIndex
		}
	}
	return false
}

// Controller owns the per-clip action registry and the current animation
// state, and cross-fades between actions on Transition.
type Controller struct {
	mixer   *Mixer
	actions map[string]*Action
	state   string

	// state to return to once the active emote finishes; empty when no
	// emote is in flight
	returnTo string
}

// NewController builds one action per clip on the mixer, classifies
// one-shots, and starts playback in the initial state. Names from States
// or Emotes with no matching clip are logged, not failed; transitioning
// to them later is not defended against.
func NewController(mixer *Mixer, clips []*model.AnimationClip, initial string) *Controller {
	c := &Controller{
		mixer:   mixer,
		actions: make(map[string]*Action, len(clips)),
		state:   initial,
	}

	for _, clip := range clips {
		action := mixer.ClipAction(clip)
		if oneShot(clip.Name) {
			action.SetLoop(LoopOnce).SetClampWhenFinished(true)
		}
		c.actions[clip.Name] = action
	}

	for _, name := range States {
		if _, ok := c.actions[name]; !ok {
			logger.Sugar.Warnf("no animation clip for state %q", name)
		}
	}
	for _, name := range Emotes {
		if _, ok := c.actions[name]; !ok {
			logger.Sugar.Warnf("no animation clip for emote %q", name)
		}
	}

	mixer.OnFinished(c.handleFinished)

	if action, ok := c.actions[initial]; ok {
		action.Reset().SetEffectiveWeight(1).Play()
	} else {
		logger.Sugar.Warnf("initial state %q has no clip", initial)
	}
	return c
}

// State returns the current animation state name.
func (c *Controller) State() string { return c.state }

// Action returns the action registered under name, nil if absent.
func (c *Controller) Action(name string) *Action { return c.actions[name] }

// Transition cross-fades from the current state's action to the named
// one over fade seconds. The state name updates immediately; both fades
// run over the same window and the mixer composites the weighted poses.
// A zero fade is an instant cut.
func (c *Controller) Transition(name string, fade float32) {
	previous := c.actions[c.state]
	target := c.actions[name]
	c.state = name

	if previous != target {
		previous.FadeOut(fade)
	}
	target.Reset().
		SetEffectiveTimeScale(1).
		SetEffectiveWeight(1).
		FadeIn(fade).
		Play()
}

// PlayEmote cross-fades into the named emote and arranges for the
// current state to resume when the emote's clip finishes.
func (c *Controller) PlayEmote(name string) {
	c.returnTo = c.state
	c.Transition(name, EmoteFade)
}

// handleFinished restores the pre-emote state when the active emote's
// one-shot action completes.
func (c *Controller) handleFinished(a *Action) {
	if c.returnTo == "" || c.actions[c.state] != a {
		return
	}
	state := c.returnTo
	c.returnTo = ""
	c.Transition(state, EmoteFade)
}
