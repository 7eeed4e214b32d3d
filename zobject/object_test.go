package zobject_test

import (
	"testing"

	"github.com/aldermoor/zif/memory"
	"github.com/aldermoor/zif/zobject"
	"github.com/aldermoor/zif/zstring"
)

// buildV3Story lays out a minimal v3 object table at 0x40: 31 default
// property words, then object 1 and object 2 records, followed by a tiny
// property table for object 1 with a single 2-byte property (id 5).
func buildV3Story(t *testing.T) (*memory.Buffer, uint16) {
	t.Helper()
	const objectTableBase = 0x40
	size := 0x200
	img := make([]uint8, size)
	img[0x00] = 3
	img[0x0e] = uint8(size >> 8)
	img[0x0f] = uint8(size)

	buf, err := memory.New(img)
	if err != nil {
		t.Fatalf("memory.New: %v", err)
	}

	obj1Base := uint32(objectTableBase) + 31*2
	obj2Base := obj1Base + 9

	propTableAddr := uint32(0x100)
	// property table: name length 0 (no short name), then property 5
	// (length 2, value 0x1234), then terminator.
	buf.WriteByte(propTableAddr, 0)
	sizeByte := uint8((2-1)<<5) | 5
	buf.WriteByte(propTableAddr+1, sizeByte)
	buf.WriteWord(propTableAddr+2, 0x1234)
	buf.WriteByte(propTableAddr+4, 0)

	buf.WriteWord(obj1Base+7, uint16(propTableAddr))
	buf.WriteByte(obj1Base+4, 0) // parent
	buf.WriteByte(obj1Base+5, 2) // sibling = object 2
	buf.WriteByte(obj1Base+6, 0) // child

	obj2PropTable := uint32(0x120)
	buf.WriteByte(obj2PropTable, 0)
	buf.WriteWord(obj2Base+7, uint16(obj2PropTable))

	return buf, objectTableBase
}

func TestGetObjectV3DecodesLinksAndProperties(t *testing.T) {
	buf, objectTableBase := buildV3Story(t)
	alphabets := zstring.DefaultAlphabets()

	obj1 := zobject.Get(buf, 1, objectTableBase, alphabets)
	if obj1.Sibling != 2 {
		t.Fatalf("Sibling = %d, want 2", obj1.Sibling)
	}

	prop := obj1.GetProperty(buf, 5, objectTableBase)
	if prop.Length != 2 {
		t.Fatalf("property length = %d, want 2", prop.Length)
	}
	if prop.Data[0] != 0x12 || prop.Data[1] != 0x34 {
		t.Fatalf("property data = %x, want 1234", prop.Data)
	}
}

func TestGetPropertyFallsBackToDefault(t *testing.T) {
	buf, objectTableBase := buildV3Story(t)
	buf.WriteWord(uint32(objectTableBase)+2*(9-1), 0xCAFE) // default for property 9

	obj1 := zobject.Get(buf, 1, objectTableBase, zstring.DefaultAlphabets())
	prop := obj1.GetProperty(buf, 9, objectTableBase)
	if prop.DataAddress != 0 {
		t.Fatalf("expected a fallback property with DataAddress 0")
	}
	if prop.Data[0] != 0xCA || prop.Data[1] != 0xFE {
		t.Fatalf("default property data = %x, want cafe", prop.Data)
	}
}

func TestPropertyLengthOfAbsentAddrIsZero(t *testing.T) {
	buf, _ := buildV3Story(t)
	if got := zobject.PropertyLength(buf, 0); got != 0 {
		t.Fatalf("PropertyLength(0) = %d, want 0", got)
	}
}

func TestAttributeSetTestClear(t *testing.T) {
	buf, objectTableBase := buildV3Story(t)
	obj := zobject.Get(buf, 1, objectTableBase, zstring.DefaultAlphabets())

	if obj.TestAttribute(10) {
		t.Fatalf("attribute 10 should start clear")
	}
	obj.SetAttribute(10, buf)
	if !obj.TestAttribute(10) {
		t.Fatalf("SetAttribute(10) did not take effect")
	}

	reread := zobject.Get(buf, 1, objectTableBase, zstring.DefaultAlphabets())
	if !reread.TestAttribute(10) {
		t.Fatalf("attribute write did not persist to memory")
	}

	obj.ClearAttribute(10, buf)
	if obj.TestAttribute(10) {
		t.Fatalf("ClearAttribute(10) did not take effect")
	}
}

func TestInsertAndDetach(t *testing.T) {
	buf, objectTableBase := buildV3Story(t)
	get := func(id uint16) *zobject.Object {
		return zobject.Get(buf, id, objectTableBase, zstring.DefaultAlphabets())
	}

	obj1 := get(1)
	obj2 := get(2)

	zobject.Insert(buf, obj1, obj2, get)
	if obj1.Parent != 2 {
		t.Fatalf("Parent = %d, want 2", obj1.Parent)
	}
	if get(2).Child != 1 {
		t.Fatalf("dest.Child = %d, want 1", get(2).Child)
	}

	zobject.Detach(buf, obj1, objectTableBase, get)
	if obj1.Parent != 0 || obj1.Sibling != 0 {
		t.Fatalf("Detach should zero parent/sibling, got parent=%d sibling=%d", obj1.Parent, obj1.Sibling)
	}
	if get(2).Child != 0 {
		t.Fatalf("dest.Child should be cleared after detach, got %d", get(2).Child)
	}
}
