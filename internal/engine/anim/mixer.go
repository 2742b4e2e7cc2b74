package anim

import (
	"github.com/kelthar/rigview/internal/engine/model"
	"github.com/kelthar/rigview/pkg/math"
)

// Mixer advances a set of actions and composites their sampled poses into
// one blended skeleton pose per update. Weighted blending is progressive:
// each contributing action is folded into the accumulated pose with its
// share of the total weight so far, which normalizes the result without a
// second pass.
type Mixer struct {
	// TimeScale multiplies every update delta; Paused suspends time
	// without losing fade or clock state.
	TimeScale float32
	Paused    bool

	skeleton *model.Skeleton
	actions  []*Action
	byClip   map[*model.AnimationClip]*Action

	rest     model.Pose
	pose     model.Pose
	scratch  model.Pose
	skinning []math.Mat4

	finished []func(*Action)
}

// NewMixer creates a mixer for the skeleton. A nil skeleton is allowed
// for models without a skin; the mixer then produces empty poses.
func NewMixer(skeleton *model.Skeleton) *Mixer {
	m := &Mixer{
		TimeScale: 1,
		skeleton:  skeleton,
		byClip:    make(map[*model.AnimationClip]*Action),
	}
	if skeleton != nil {
		m.rest = skeleton.RestPose()
		m.pose = skeleton.RestPose()
		m.scratch = make(model.Pose, len(skeleton.Bones))
		m.skinning = make([]math.Mat4, len(skeleton.Bones))
	}
	return m
}

// ClipAction returns the action bound to the clip, creating it on first
// use. Repeated calls with the same clip return the same action.
func (m *Mixer) ClipAction(clip *model.AnimationClip) *Action {
	if a, ok := m.byClip[clip]; ok {
		return a
	}
	a := &Action{
		clip:      clip,
		mixer:     m,
		timeScale: 1,
		weight:    1,
	}
	m.byClip[clip] = a
	m.actions = append(m.actions, a)
	return a
}

// OnFinished registers a callback fired whenever a LoopOnce action
// reaches the end of its clip. Callbacks run during Update, on the
// calling goroutine.
func (m *Mixer) OnFinished(fn func(*Action)) {
	m.finished = append(m.finished, fn)
}

// Update advances all actions by dt seconds and recomputes the blended
// pose. Finished callbacks fire after the pose is updated.
func (m *Mixer) Update(dt float32) {
	if m.Paused {
		dt = 0
	}
	dt *= m.TimeScale

	var justFinished []*Action
	for _, a := range m.actions {
		if a.update(dt) {
			justFinished = append(justFinished, a)
		}
	}

	m.blend()

	for _, a := range justFinished {
		for _, fn := range m.finished {
			fn(a)
		}
	}
}

// blend folds every active action's sampled pose into m.pose.
func (m *Mixer) blend() {
	if m.skeleton == nil {
		return
	}
	m.rest.CopyInto(m.pose)

	var accumulated float32
	for _, a := range m.actions {
		if !a.running || a.weight <= 0 {
			continue
		}
		m.rest.CopyInto(m.scratch)
		a.clip.SampleInto(a.time, m.scratch)

		accumulated += a.weight
		blendPoses(m.pose, m.scratch, a.weight/accumulated)
	}
}

// blendPoses lerps src into dst with factor t.
func blendPoses(dst, src model.Pose, t float32) {
	for i := range dst {
		dst[i].Translation = dst[i].Translation.Lerp(src[i].Translation, t)
		dst[i].Rotation = dst[i].Rotation.Slerp(src[i].Rotation, t)
		dst[i].Scale = dst[i].Scale.Lerp(src[i].Scale, t)
	}
}

// Pose returns the blended pose from the last Update. The slice is reused
// across updates; callers must not retain it past the frame.
func (m *Mixer) Pose() model.Pose { return m.pose }

// SkinningMatrices computes the skinning matrix array for the blended
// pose. The returned slice is reused across calls.
func (m *Mixer) SkinningMatrices() []math.Mat4 {
	if m.skeleton == nil {
		return nil
	}
	m.skeleton.SkinningMatrices(m.pose, m.skinning)
	return m.skinning
}
