// SPDX-License-Identifier: GPL-2.0-or-later

package sound

import (
	"soundscene/math/vec"
	"soundscene/render"
)

// Listener is an ear of the player. Its velocity is never derived from
// movement, only set explicitly.
type Listener struct {
	transform vec.Transform
	velocity  vec.Vec3
	attach    render.Handle
	bone      string
}

func NewListener() *Listener {
	return &Listener{transform: vec.Identity()}
}

func (l *Listener) Transform() vec.Transform {
	return l.transform
}

func (l *Listener) SetTransform(t vec.Transform) {
	l.transform = t
}

func (l *Listener) Position() vec.Vec3 {
	return l.transform.Origin
}

func (l *Listener) SetPosition(p vec.Vec3) {
	l.transform.Origin = p
}

func (l *Listener) Velocity() vec.Vec3 {
	return l.velocity
}

func (l *Listener) SetVelocity(v vec.Vec3) {
	l.velocity = v
}

// AttachToObject makes the listener follow a render object, or one of its
// bones.
func (l *Listener) AttachToObject(h render.Handle, bone string) {
	l.attach = h
	l.bone = bone
}

func (l *Listener) Detach() {
	l.attach = render.Handle{}
	l.bone = ""
}

// update pulls the pose of the attached object. A vanished object detaches
// the listener.
func (l *Listener) update(objects *render.Table) {
	if l.attach.IsZero() {
		return
	}
	t, ok := objects.Transform(l.attach, l.bone)
	if !ok {
		l.Detach()
		return
	}
	l.transform = t
}
