// SPDX-License-Identifier: GPL-2.0-or-later

package sound

import (
	"soundscene/math/vec"
)

// Positionable is anything with a pose in the world.
type Positionable interface {
	Transform() vec.Transform
	SetTransform(t vec.Transform)
	Position() vec.Vec3
	SetPosition(p vec.Vec3)
}

// Cullable is anything the scene culls against its drop-off sphere.
type Cullable interface {
	DropOffRadius() float32
	SetDropOffRadius(r float32)
	IsCulled() bool
}

// SceneMember is anything that can be registered with the scene. The flags
// only matter for audible sounds.
type SceneMember interface {
	AddToScene(startPlaying bool)
	RemoveFromScene(stopPlaying bool)
	InScene() bool
}

var (
	_ Positionable = (*AudibleSound)(nil)
	_ Positionable = (*LogicalSound)(nil)
	_ Positionable = (*LogicalListener)(nil)
	_ Positionable = (*Listener)(nil)
	_ Cullable     = (*AudibleSound)(nil)
	_ Cullable     = (*LogicalSound)(nil)
	_ SceneMember  = (*AudibleSound)(nil)
	_ SceneMember  = (*LogicalSound)(nil)
)
