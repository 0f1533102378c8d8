package terminal

import (
	"strings"
	"unicode/utf8"
)

const (
	bel = 0x07
	esc = 0x1b
	can = 0x18
	sub = 0x1a
	del = 0x7f

	// 8-bit C1 introducers
	c1DCS = 0x90
	c1SOS = 0x98
	c1CSI = 0x9b
	c1ST  = 0x9c
	c1OSC = 0x9d
	c1PM  = 0x9e
	c1APC = 0x9f
)

type stripState int

const (
	stateGround stripState = iota
	stateEscape
	stateEscapeIntermediate
	stateCSI
	stateString    // DCS, SOS, PM, APC: ends with ST
	stateOSC       // ends with BEL or ST
	stateStringEsc // saw ESC inside a string, expecting '\'
)

// StripControls removes terminal escape sequences and control characters
// from s. Tab, line feed and carriage return pass through unchanged.
// Malformed or unterminated sequences are dropped. The result contains no
// C0 or C1 control other than those three, so StripControls is idempotent.
func StripControls(s string) string {
	if !needsStrip(s) {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))

	state := stateGround

	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])

		switch state {
		case stateGround:
			switch {
			case r == '\t' || r == '\n' || r == '\r':
				b.WriteRune(r)
			case r == esc:
				state = stateEscape
			case r == c1CSI:
				state = stateCSI
			case r == c1OSC:
				state = stateOSC
			case r == c1DCS || r == c1SOS || r == c1PM || r == c1APC:
				state = stateString
			case isControl(r):
				// dropped
			default:
				b.WriteRune(r)
			}

		case stateEscape:
			switch {
			case r == '[':
				state = stateCSI
			case r == ']':
				state = stateOSC
			case r == 'P' || r == 'X' || r == '^' || r == '_':
				state = stateString
			case r == esc:
				// restart
			case r >= 0x20 && r <= 0x2f:
				state = stateEscapeIntermediate
			case r >= 0x30 && r <= 0x7e:
				state = stateGround
			default:
				// not an escape sequence: drop ESC, reprocess r
				state = stateGround
				continue
			}

		case stateEscapeIntermediate:
			switch {
			case r >= 0x20 && r <= 0x2f:
			case r >= 0x30 && r <= 0x7e:
				state = stateGround
			default:
				state = stateGround
				continue
			}

		case stateCSI:
			switch {
			case r >= 0x20 && r <= 0x3f:
				// parameters and intermediates
			case r >= 0x40 && r <= 0x7e:
				state = stateGround
			default:
				state = stateGround
				continue
			}

		case stateString, stateOSC:
			switch {
			case r == bel && state == stateOSC:
				state = stateGround
			case r == c1ST:
				state = stateGround
			case r == esc:
				state = stateStringEsc
			case r == can || r == sub:
				state = stateGround
			case r < 0x20:
				// line structure outlives an unterminated string
				state = stateGround
				continue
			}

		case stateStringEsc:
			if r == '\\' {
				state = stateGround
			} else {
				// a new sequence started before the string was terminated
				state = stateEscape
				continue
			}
		}

		i += size
	}

	return b.String()
}

// isControl reports C0, DEL and C1 code points.
func isControl(r rune) bool {
	return r < 0x20 || r == del || (r >= 0x80 && r <= 0x9f)
}

// needsStrip reports whether s holds anything StripControls would remove.
func needsStrip(s string) bool {
	for _, r := range s {
		if isControl(r) && r != '\t' && r != '\n' && r != '\r' {
			return true
		}
	}
	return false
}
