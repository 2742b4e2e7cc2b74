package model

import (
	"github.com/kelthar/rigview/pkg/math"
)

// interpolateVectorKeys evaluates a vector track at the given time.
// Keys are sorted by time; times outside the track clamp to its ends.
func interpolateVectorKeys(keys []VectorKey, t float32) math.Vec3 {
	if len(keys) == 1 {
		return keys[0].Value
	}
	if t <= keys[0].Time {
		return keys[0].Value
	}
	last := len(keys) - 1
	if t >= keys[last].Time {
		return keys[last].Value
	}

	next := 1
	for next < last && keys[next].Time <= t {
		next++
	}
	prev := next - 1

	k0, k1 := keys[prev], keys[next]
	span := k1.Time - k0.Time
	if span <= 0 {
		return k0.Value
	}
	return k0.Value.Lerp(k1.Value, (t-k0.Time)/span)
}

// interpolateQuatKeys evaluates a rotation track at the given time using
// shortest-arc slerp between the surrounding keys.
func interpolateQuatKeys(keys []QuatKey, t float32) math.Quat {
	if len(keys) == 1 {
		return keys[0].Value
	}
	if t <= keys[0].Time {
		return keys[0].Value
	}
	last := len(keys) - 1
	if t >= keys[last].Time {
		return keys[last].Value
	}

	next := 1
	for next < last && keys[next].Time <= t {
		next++
	}
	prev := next - 1

	k0, k1 := keys[prev], keys[next]
	span := k1.Time - k0.Time
	if span <= 0 {
		return k0.Value
	}
	return k0.Value.Slerp(k1.Value, (t-k0.Time)/span)
}

// SampleInto evaluates the clip at time t and writes the animated bone
// transforms into pose. Bones the clip has no channel for keep whatever
// pose already holds, so callers seed it with the rest pose.
func (c *AnimationClip) SampleInto(t float32, pose Pose) {
	for i := range c.Channels {
		ch := &c.Channels[i]
		if int(ch.Bone) >= len(pose) {
			continue
		}
		bp := &pose[ch.Bone]
		if len(ch.PositionKeys) > 0 {
			bp.Translation = interpolateVectorKeys(ch.PositionKeys, t)
		}
		if len(ch.RotationKeys) > 0 {
			bp.Rotation = interpolateQuatKeys(ch.RotationKeys, t)
		}
		if len(ch.ScaleKeys) > 0 {
			bp.Scale = interpolateVectorKeys(ch.ScaleKeys, t)
		}
	}
}
