package zmachine

// opcodeMeta describes the parts of an opcode's encoding that can't be
// derived from its form alone: whether it stores a result, branches, or
// carries an inline Z-string operand. Grounded on the Z-machine
// standard's per-opcode tables (§14/§15), the direct source for which
// opcodes in each operand-count family store/branch.
type opcodeMeta struct {
	name       string
	hasStore   bool
	hasBranch  bool
	hasText    bool
}

func opcodeInfo(count operandCount, n uint8) opcodeMeta {
	switch count {
	case countOP0:
		return op0Table[n]
	case countOP1:
		return op1Table[n]
	case countOP2:
		return op2Table[n]
	default:
		return varTable[n]
	}
}

func opcodeName(count operandCount, n uint8) string       { return opcodeInfo(count, n).name }
func opcodeHasBranch(name string) bool                     { return branchOpcodes[name] }
func opcodeHasText(name string) bool                       { return textOpcodes[name] }

// opcodeHasStore additionally needs the version, since `not` (1OP:143 in
// pre-v5, VAR:248 in v5+) and `call_1n`/`call_2n` family fold the
// store/no-store split along a version boundary the table alone can't
// express without being keyed on it directly.
func opcodeHasStore(count operandCount, n uint8, version uint8) bool {
	meta := opcodeInfo(count, n)
	if meta.name == "sread" {
		return version >= 5
	}
	return meta.hasStore
}

var branchOpcodes = map[string]bool{
	"je": true, "jl": true, "jg": true, "dec_chk": true, "inc_chk": true,
	"jin": true, "test": true, "test_attr": true, "jz": true,
	"verify": true, "piracy": true, "check_arg_count": true, "save": true, "restore": true,
	"scan_table": true,
}

var textOpcodes = map[string]bool{
	"print": true, "print_ret": true,
}

// op0 - 0OP opcodes (no operands)
var op0Table = map[uint8]opcodeMeta{
	0:  {name: "rtrue"},
	1:  {name: "rfalse"},
	2:  {name: "print", hasText: true},
	3:  {name: "print_ret", hasText: true},
	4:  {name: "nop"},
	5:  {name: "save", hasBranch: true}, // v1-3 branch form; v4 stores instead, handled in decodeInstruction
	6:  {name: "restore", hasBranch: true},
	7:  {name: "restart"},
	8:  {name: "ret_popped"},
	9:  {name: "catch", hasStore: true},
	10: {name: "quit"},
	11: {name: "new_line"},
	12: {name: "show_status"},
	13: {name: "verify", hasBranch: true},
	15: {name: "piracy", hasBranch: true},
}

// op1 - 1OP opcodes (one operand)
var op1Table = map[uint8]opcodeMeta{
	0:  {name: "jz", hasBranch: true},
	1:  {name: "get_sibling", hasStore: true, hasBranch: true},
	2:  {name: "get_child", hasStore: true, hasBranch: true},
	3:  {name: "get_parent", hasStore: true},
	4:  {name: "get_prop_len", hasStore: true},
	5:  {name: "inc"},
	6:  {name: "dec"},
	7:  {name: "print_addr"},
	8:  {name: "call_1s", hasStore: true},
	9:  {name: "remove_obj"},
	10: {name: "print_obj"},
	11: {name: "ret"},
	12: {name: "jump"},
	13: {name: "print_paddr"},
	14: {name: "load", hasStore: true},
	15: {name: "not", hasStore: true}, // v1-4; VAR:248 in v5+
}

// op2 - 2OP opcodes (two operands)
var op2Table = map[uint8]opcodeMeta{
	1:  {name: "je", hasBranch: true},
	2:  {name: "jl", hasBranch: true},
	3:  {name: "jg", hasBranch: true},
	4:  {name: "dec_chk", hasBranch: true},
	5:  {name: "inc_chk", hasBranch: true},
	6:  {name: "jin", hasBranch: true},
	7:  {name: "test", hasBranch: true},
	8:  {name: "or", hasStore: true},
	9:  {name: "and", hasStore: true},
	10: {name: "test_attr", hasBranch: true},
	11: {name: "set_attr"},
	12: {name: "clear_attr"},
	13: {name: "store"},
	14: {name: "insert_obj"},
	15: {name: "loadw", hasStore: true},
	16: {name: "loadb", hasStore: true},
	17: {name: "get_prop", hasStore: true},
	18: {name: "get_prop_addr", hasStore: true},
	19: {name: "get_next_prop", hasStore: true},
	20: {name: "add", hasStore: true},
	21: {name: "sub", hasStore: true},
	22: {name: "mul", hasStore: true},
	23: {name: "div", hasStore: true},
	24: {name: "mod", hasStore: true},
	25: {name: "call_2s", hasStore: true},
	26: {name: "call_2n"},
	27: {name: "set_colour"},
	28: {name: "throw"},
}

// VAR opcodes. Extended opcodes (the 0xbe escape) are keyed by their EXT
// number in extTable below.
var varTable = map[uint8]opcodeMeta{
	0:  {name: "call", hasStore: true},
	1:  {name: "storew"},
	2:  {name: "storeb"},
	3:  {name: "put_prop"},
	4:  {name: "sread"},
	5:  {name: "print_char"},
	6:  {name: "print_num"},
	7:  {name: "random", hasStore: true},
	8:  {name: "push"},
	9:  {name: "pull"}, // v6 has a store form; not supported (v6 out of scope)
	10: {name: "split_window"},
	11: {name: "set_window"},
	12: {name: "call_vs2", hasStore: true},
	13: {name: "erase_window"},
	14: {name: "erase_line"},
	15: {name: "set_cursor"},
	16: {name: "get_cursor"},
	17: {name: "set_text_style"},
	18: {name: "buffer_mode"},
	19: {name: "output_stream"},
	20: {name: "input_stream"},
	21: {name: "sound_effect"},
	22: {name: "read_char", hasStore: true},
	23: {name: "scan_table", hasStore: true, hasBranch: true},
	24: {name: "not", hasStore: true},
	25: {name: "call_vn"},
	26: {name: "call_vn2"},
	27: {name: "tokenise"},
	28: {name: "encode_text"},
	29: {name: "copy_table"},
	30: {name: "print_table"},
	31: {name: "check_arg_count", hasBranch: true},
}

var extTable = map[uint8]opcodeMeta{
	0:  {name: "save", hasStore: true},
	1:  {name: "restore", hasStore: true},
	2:  {name: "log_shift", hasStore: true},
	3:  {name: "art_shift", hasStore: true},
	4:  {name: "set_font", hasStore: true},
	9:  {name: "save_undo", hasStore: true},
	10: {name: "restore_undo", hasStore: true},
	11: {name: "print_unicode"},
	12: {name: "check_unicode", hasStore: true},
	13: {name: "set_true_colour"},
}
