package zmachine

import "github.com/aldermoor/zif/zstring"

// zsciiRune converts a ZSCII code to the rune a host terminal should
// display: 13 is newline, 32-126 are plain ASCII, 155-223 consult the
// default Unicode translation table, and anything else reports ok=false
// (printChar then prints the code unchanged as a rune).
func zsciiRune(code uint8) (rune, bool) {
	switch {
	case code == 13:
		return '\n', true
	case code >= 32 && code <= 126:
		return rune(code), true
	case code >= 155 && code <= 223:
		if r, ok := zstring.ZsciiToUnicode(code, zstring.DefaultUnicodeTable); ok {
			return r, true
		}
	}
	return 0, false
}
