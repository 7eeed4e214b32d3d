package zobject

import "github.com/aldermoor/zif/memory"

// Detach removes obj from its parent's child/sibling chain. It is a
// no-op if obj has no parent. Used by `remove_obj` and as the first step
// of `insert_obj`'s re-parenting.
func Detach(buf *memory.Buffer, obj *Object, objectTableBase uint16, get func(uint16) *Object) {
	if obj.Parent == 0 {
		return
	}
	parent := get(obj.Parent)

	if parent.Child == obj.ID {
		parent.SetChild(obj.Sibling, buf)
	} else {
		sib := get(parent.Child)
		for sib.Sibling != obj.ID {
			sib = get(sib.Sibling)
		}
		sib.SetSibling(obj.Sibling, buf)
	}

	obj.SetParent(0, buf)
	obj.SetSibling(0, buf)
}

// Insert detaches obj (if parented) and makes it the first child of
// dest, per `insert_obj`'s semantics.
func Insert(buf *memory.Buffer, obj *Object, dest *Object, get func(uint16) *Object) {
	Detach(buf, obj, 0, get)

	obj.SetSibling(dest.Child, buf)
	obj.SetParent(dest.ID, buf)
	dest.SetChild(obj.ID, buf)
}
