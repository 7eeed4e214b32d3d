package zmachine

import "github.com/aldermoor/zif/zstring"

// decodeZString decodes a Z-string at addr using this machine's current
// alphabet table and abbreviation base, guarding against a pathological
// abbreviation cycle the same way the rest of the package guards against
// malformed story data: surface it as a warning, not a panic.
func decodeZString(z *ZMachine, addr uint32) (string, uint32, error) {
	text, next, err := zstring.Decode(z.Memory, addr, z.Alphabets, z.Memory.Header.AbbreviationTableBase, nil)
	if err != nil {
		z.warnOnce("zstring_decode_"+err.Error(), "warning: %s at %#x", err, addr)
		return text, next, nil
	}
	return text, next, nil
}
