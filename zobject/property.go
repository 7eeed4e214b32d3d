package zobject

import "github.com/aldermoor/zif/memory"

// Property is a decoded property-list entry.
type Property struct {
	ID          uint8
	Length      uint8
	Data        []uint8
	HeaderLen   uint8
	Address     uint32
	DataAddress uint32
}

// PropertyLength returns the data length of the property whose data
// begins at addr, by reading back the size byte(s) immediately before it
// (the contract `get_prop_len` exposes to games: callers pass the address
// `get_prop_addr` returned). addr of 0 is a documented special case
// meaning "no such property", and returns 0.
func PropertyLength(buf *memory.Buffer, addr uint32) uint16 {
	if addr == 0 {
		return 0
	}
	sizeByte := buf.ReadByte(addr - 1)
	if buf.Header.Version <= 3 {
		return uint16(sizeByte>>5) + 1
	}
	if sizeByte&0x80 != 0 {
		length := sizeByte & 0b0011_1111
		if length == 0 {
			return 64
		}
		return uint16(length)
	}
	return uint16((sizeByte>>6)&1) + 1
}

func propertyAt(buf *memory.Buffer, addr uint32) Property {
	sizeByte := buf.ReadByte(addr)
	var length, id, headerLen uint8

	if buf.Header.Version <= 3 {
		length = (sizeByte >> 5) + 1
		id = sizeByte & 0b0001_1111
		headerLen = 1
	} else if sizeByte&0x80 != 0 {
		length = buf.ReadByte(addr+1) & 0b0011_1111
		if length == 0 {
			length = 64
		}
		id = sizeByte & 0b0011_1111
		headerLen = 2
	} else {
		length = ((sizeByte >> 6) & 1) + 1
		id = sizeByte & 0b0011_1111
		headerLen = 1
	}

	dataAddr := addr + uint32(headerLen)
	return Property{
		ID:          id,
		Length:      length,
		Data:        buf.Slice(dataAddr, dataAddr+uint32(length)),
		HeaderLen:   headerLen,
		Address:     addr,
		DataAddress: dataAddr,
	}
}

func (o *Object) propertyListStart(buf *memory.Buffer) uint32 {
	nameLength := buf.ReadByte(uint32(o.PropertyPointer))
	return uint32(o.PropertyPointer) + 1 + uint32(nameLength)*2
}

// GetProperty finds propertyID on this object, falling back to the
// table-wide default value when the object doesn't carry it. The
// returned Property's DataAddress is 0 in the fallback case, marking the
// value as not present on the object itself.
func (o *Object) GetProperty(buf *memory.Buffer, propertyID uint8, objectTableBase uint16) Property {
	ptr := o.propertyListStart(buf)
	for buf.ReadByte(ptr) != 0 {
		prop := propertyAt(buf, ptr)
		if prop.ID == propertyID {
			return prop
		}
		ptr = prop.DataAddress + uint32(prop.Length)
	}

	defaultAddr := uint32(objectTableBase) + 2*uint32(propertyID-1)
	return Property{ID: propertyID, Data: buf.Slice(defaultAddr, defaultAddr+2)}
}

// SetProperty overwrites an existing 1- or 2-byte property's value. It is
// a no-op (per the standard, undefined behaviour the standard says
// "should not happen" and games never rely on) if the property is
// missing or longer than 2 bytes; callers that need to detect this
// should check GetProperty first.
func (o *Object) SetProperty(buf *memory.Buffer, propertyID uint8, value uint16) bool {
	ptr := o.propertyListStart(buf)
	for buf.ReadByte(ptr) != 0 {
		prop := propertyAt(buf, ptr)
		if prop.ID == propertyID {
			switch prop.Length {
			case 1:
				buf.WriteByte(prop.DataAddress, uint8(value))
			case 2:
				buf.WriteWord(prop.DataAddress, value)
			default:
				return false
			}
			return true
		}
		ptr = prop.DataAddress + uint32(prop.Length)
	}
	return false
}

// GetPropertyAddr returns the data address of propertyID on this object,
// or 0 if it is not present (the `get_prop_addr` opcode's contract).
func (o *Object) GetPropertyAddr(buf *memory.Buffer, propertyID uint8) uint32 {
	ptr := o.propertyListStart(buf)
	for buf.ReadByte(ptr) != 0 {
		prop := propertyAt(buf, ptr)
		if prop.ID == propertyID {
			return prop.DataAddress
		}
		ptr = prop.DataAddress + uint32(prop.Length)
	}
	return 0
}

// NextProperty implements `get_next_prop`: propertyID 0 asks for the
// first property on the object (0 if it has none); otherwise it returns
// the ID immediately following propertyID in the (descending-ID-ordered)
// list.
func (o *Object) NextProperty(buf *memory.Buffer, propertyID uint8) uint8 {
	ptr := o.propertyListStart(buf)
	if propertyID == 0 {
		if buf.ReadByte(ptr) == 0 {
			return 0
		}
		return propertyAt(buf, ptr).ID
	}

	for buf.ReadByte(ptr) != 0 {
		prop := propertyAt(buf, ptr)
		next := prop.DataAddress + uint32(prop.Length)
		if prop.ID == propertyID {
			if buf.ReadByte(next) == 0 {
				return 0
			}
			return propertyAt(buf, next).ID
		}
		ptr = next
	}
	return 0
}
