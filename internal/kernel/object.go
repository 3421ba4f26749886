package kernel

import "sync/atomic"

var nextObjectID atomic.Uint32

// Object is the common identity embedded in every kernel-side resource.
// IDs are process-unique and monotonically assigned; they double as the
// opaque handle values carried in wire replies.
type Object struct {
	id   uint32
	name string
}

func newObject(name string) Object {
	return Object{id: nextObjectID.Add(1), name: name}
}

// ObjectID returns the process-unique identifier of this object.
func (o Object) ObjectID() uint32 { return o.id }

// Name returns the debug name the object was created with.
func (o Object) Name() string { return o.name }
