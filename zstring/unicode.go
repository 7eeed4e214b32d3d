package zstring

import "github.com/aldermoor/zif/memory"

// DefaultUnicodeTable is the Z-machine standard's default ZSCII (155-223)
// to Unicode mapping, used when a story carries no custom Unicode
// translation table extension.
var DefaultUnicodeTable = map[uint8]rune{
	155: 'ä', 156: 'ö', 157: 'ü', 158: 'Ä', 159: 'Ö', 160: 'Ü', 161: 'ß',
	162: '»', 163: '«', 164: 'ë', 165: 'ï', 166: 'ÿ', 167: 'Ë', 168: 'Ï',
	169: 'á', 170: 'é', 171: 'í', 172: 'ó', 173: 'ú', 174: 'ý', 175: 'Á',
	176: 'É', 177: 'Í', 178: 'Ó', 179: 'Ú', 180: 'Ý', 181: 'à', 182: 'è',
	183: 'ì', 184: 'ò', 185: 'ù', 186: 'À', 187: 'È', 188: 'Ì', 189: 'Ò',
	190: 'Ù', 191: 'â', 192: 'ê', 193: 'î', 194: 'ô', 195: 'û', 196: 'Â',
	197: 'Ê', 198: 'Î', 199: 'Ô', 200: 'Û', 201: 'å', 202: 'Å', 203: 'ø',
	204: 'Ø', 205: 'ã', 206: 'ñ', 207: 'õ', 208: 'Ã', 209: 'Ñ', 210: 'Õ',
	211: 'æ', 212: 'Æ', 213: 'ç', 214: 'Ç', 215: 'þ', 216: 'ð', 217: 'Þ',
	218: 'Ð', 219: '£', 220: 'œ', 221: 'Œ', 222: '¡', 223: '¿',
}

// UnicodeTable returns the ZSCII->Unicode mapping in effect: the default
// table, or a custom one parsed from the header's extension table.
func UnicodeTable(buf *memory.Buffer) map[uint8]rune {
	if buf.Header.UnicodeExtensionTableBase == 0 {
		return DefaultUnicodeTable
	}
	return parseUnicodeTable(buf)
}

func parseUnicodeTable(buf *memory.Buffer) map[uint8]rune {
	base := uint32(buf.Header.UnicodeExtensionTableBase)
	count := buf.ReadByte(base)
	table := make(map[uint8]rune, count)
	for i := uint8(0); i < count; i++ {
		table[155+i] = rune(buf.ReadWord(base + 1 + uint32(i)*2))
	}
	return table
}

// ZsciiToUnicode converts a ZSCII code above the ASCII range to its
// Unicode rune, consulting the custom table first and falling back to the
// standard default, per the standard's note that interpreters should
// still honour the default codes even when the game supplies a partial
// custom table.
func ZsciiToUnicode(zscii uint8, table map[uint8]rune) (rune, bool) {
	if r, ok := table[zscii]; ok {
		return r, true
	}
	if r, ok := DefaultUnicodeTable[zscii]; ok {
		return r, true
	}
	return 0, false
}

// UnicodeToZscii is the inverse mapping, used to encode player-typed
// Unicode characters (e.g. from a terminal) back to ZSCII for the
// tokeniser and `read` opcode.
func UnicodeToZscii(r rune, table map[uint8]rune) (uint8, bool) {
	for zscii, candidate := range table {
		if candidate == r {
			return zscii, true
		}
	}
	for zscii, candidate := range DefaultUnicodeTable {
		if candidate == r {
			return zscii, true
		}
	}
	return 0, false
}
