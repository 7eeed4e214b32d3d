package zmachine

import (
	"strings"

	"github.com/aldermoor/zif/dictionary"
	"github.com/aldermoor/zif/zstring"
)

// pendingRead holds the state `sread`/`aread` needs to finish once the
// host supplies a line of text via ResumeReadLine.
type pendingRead struct {
	textAddr    uint32
	parseAddr   uint32
	maxLen      int
	dict        *dictionary.Dictionary
	storeTarget uint8
	hasStore    bool
}

type pendingReadChar struct {
	storeTarget uint8
	hasStore    bool
}

// beginReadLine implements `sread`/`aread`'s synchronous half: it resolves
// the buffers and dictionary, then yields a ReadLine event for the host.
// v5+'s optional time/routine operands (timed input) are accepted but
// never fire, since this runtime has no host-driven timer.
func (z *ZMachine) beginReadLine(ops []uint16, ins instruction) StepEvent {
	textAddr := uint32(ops[0])
	var parseAddr uint32
	if len(ops) > 1 {
		parseAddr = uint32(ops[1])
	}

	maxLen := int(z.Memory.ReadByte(textAddr))
	preloaded := ""
	if z.Version() >= 5 {
		existing := int(z.Memory.ReadByte(textAddr + 1))
		if existing > 0 {
			b := make([]byte, existing)
			for i := 0; i < existing; i++ {
				b[i] = z.Memory.ReadByte(textAddr + 2 + uint32(i))
			}
			preloaded = string(b)
		}
	} else if maxLen > 0 {
		maxLen-- // v1-4 reserve the buffer's last byte for the 0 terminator
	}

	dict := z.Dictionary

	z.pendingRead = &pendingRead{
		textAddr:    textAddr,
		parseAddr:   parseAddr,
		maxLen:      maxLen,
		dict:        dict,
		storeTarget: ins.storeTarget,
		hasStore:    ins.hasStore,
	}

	return ReadLine{MaxLength: maxLen, Preloaded: preloaded}
}

// ResumeReadLine supplies the line of text the host collected in response
// to a ReadLine event, writes it into the text buffer, tokenises it into
// the parse buffer (if one was given), and lets Step() continue.
func (z *ZMachine) ResumeReadLine(text string) {
	pr := z.pendingRead
	if pr == nil {
		return
	}
	z.pendingRead = nil

	text = strings.ToLower(text)
	if len(text) > pr.maxLen {
		text = text[:pr.maxLen]
	}

	if z.Version() >= 5 {
		z.Memory.WriteByte(pr.textAddr+1, uint8(len(text)))
		for i := 0; i < len(text); i++ {
			z.Memory.WriteByte(pr.textAddr+2+uint32(i), text[i])
		}
	} else {
		for i := 0; i < len(text); i++ {
			z.Memory.WriteByte(pr.textAddr+1+uint32(i), text[i])
		}
		z.Memory.WriteByte(pr.textAddr+1+uint32(len(text)), 0)
	}

	if pr.parseAddr != 0 {
		z.tokeniseInto(text, pr.parseAddr, pr.dict, true)
	}

	z.store(pr.storeTarget, pr.hasStore, 13)
}

func (z *ZMachine) beginReadChar(ins instruction) StepEvent {
	z.pendingReadChar = &pendingReadChar{storeTarget: ins.storeTarget, hasStore: ins.hasStore}
	return ReadChar{}
}

// ResumeReadChar supplies the keystroke the host collected for
// `read_char`, encoded as its ZSCII code (13 for Enter).
func (z *ZMachine) ResumeReadChar(zscii uint16) {
	pr := z.pendingReadChar
	if pr == nil {
		return
	}
	z.pendingReadChar = nil
	z.store(pr.storeTarget, pr.hasStore, zscii)
}

// doTokenise implements the `tokenise` opcode: ops[0] text buffer,
// ops[1] parse buffer, optional ops[2] alternate dictionary, optional
// ops[3] non-zero to suppress overwriting slots for unrecognised words.
func (z *ZMachine) doTokenise(ops []uint16) {
	textAddr := uint32(ops[0])
	parseAddr := uint32(ops[1])

	dict := z.Dictionary
	if len(ops) > 2 && ops[2] != 0 {
		dict = dictionary.Parse(z.Memory, uint32(ops[2]), z.Alphabets)
	}
	skipUnrecognised := len(ops) > 3 && ops[3] != 0

	maxLen := int(z.Memory.ReadByte(textAddr))
	start := uint32(1)
	if z.Version() >= 5 {
		maxLen = int(z.Memory.ReadByte(textAddr + 1))
		start = 2
	}
	b := make([]byte, maxLen)
	for i := 0; i < maxLen; i++ {
		c := z.Memory.ReadByte(textAddr + start + uint32(i))
		if c == 0 {
			b = b[:i]
			break
		}
		b[i] = c
	}

	z.tokeniseInto(string(b), parseAddr, dict, !skipUnrecognised)
}

// tokeniseInto splits text on whitespace and dictionary separators,
// looks each token up, and fills the parse buffer per the standard's
// layout: a token count byte followed by 4-byte records (dictionary
// address word, length byte, text-buffer position byte).
func (z *ZMachine) tokeniseInto(text string, parseAddr uint32, dict *dictionary.Dictionary, overwriteUnrecognised bool) {
	type token struct {
		word  string
		start int
	}
	var tokens []token

	cur := strings.Builder{}
	curStart := -1
	flush := func(end int) {
		if cur.Len() > 0 {
			tokens = append(tokens, token{word: cur.String(), start: curStart})
			cur.Reset()
		}
	}

	for i := 0; i < len(text); i++ {
		c := text[i]
		if c == ' ' {
			flush(i)
			curStart = -1
			continue
		}
		if dict != nil && dict.IsSeparator(c) {
			flush(i)
			tokens = append(tokens, token{word: string(c), start: i})
			curStart = -1
			continue
		}
		if curStart == -1 {
			curStart = i
		}
		cur.WriteByte(c)
	}
	flush(len(text))

	maxTokens := int(z.Memory.ReadByte(parseAddr))
	if len(tokens) > maxTokens {
		tokens = tokens[:maxTokens]
	}
	z.Memory.WriteByte(parseAddr+1, uint8(len(tokens)))

	posBase := 1 // v1-4 text starts after the max-length byte
	if z.Version() >= 5 {
		posBase = 2 // v5+ text also follows a length byte
	}
	entry := parseAddr + 2
	for _, t := range tokens {
		var dictAddr uint16
		if dict != nil {
			encoded := zstring.EncodeForDictionary(t.word, z.Version(), z.Alphabets)
			dictAddr = dict.Find(encoded)
		}
		if dictAddr != 0 || overwriteUnrecognised {
			z.Memory.WriteWord(entry, dictAddr)
			z.Memory.WriteByte(entry+2, uint8(len(t.word)))
			z.Memory.WriteByte(entry+3, uint8(t.start+posBase))
		}
		entry += 4
	}
}

// doEncodeText implements `encode_text`: encode a substring of a text
// buffer into the packed Z-string form used as a dictionary key, writing
// the result to a destination buffer. Used by games that build their own
// parse tables rather than relying on `tokenise`.
func (z *ZMachine) doEncodeText(ops []uint16) {
	textAddr := uint32(ops[0])
	length := int(ops[1])
	from := uint32(ops[2])
	dest := uint32(ops[3])

	b := make([]byte, length)
	for i := 0; i < length; i++ {
		b[i] = z.Memory.ReadByte(textAddr + from + uint32(i))
	}

	encoded := zstring.EncodeForDictionary(string(b), z.Version(), z.Alphabets)
	for i, v := range encoded {
		z.Memory.WriteByte(dest+uint32(i), v)
	}
}
