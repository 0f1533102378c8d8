package terminal

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// minConfidence is the chardet score (0-100) below which the profile's
// encoding hint is tried before the detected charset.
const minConfidence = 30

const replacement = "\uFFFD"

var (
	bomUTF8    = []byte{0xef, 0xbb, 0xbf}
	bomUTF16LE = []byte{0xff, 0xfe}
	bomUTF16BE = []byte{0xfe, 0xff}
)

// chardet names spelled differently by the WHATWG and IANA tables; empty
// means no decoder exists
var charsetAliases = map[string]string{
	"gb-18030":   "gb18030",
	"ibm424_rtl": "",
	"ibm424_ltr": "",
	"ibm420_rtl": "",
	"ibm420_ltr": "",
}

// Normalize turns raw process output into plain text: it decodes the bytes
// and strips terminal control sequences.
func Normalize(raw []byte, hint string) string {
	return StripControls(Decode(raw, hint))
}

// Decode converts process output of unknown encoding to UTF-8 text.
// hint names the charset to assume when detection is inconclusive.
// Decode never fails; undecodable runs become U+FFFD.
func Decode(data []byte, hint string) string {
	text, _ := decode(data, hint)
	return text
}

// Detect reports the charset Decode would use for data.
func Detect(data []byte, hint string) string {
	_, name := decode(data, hint)
	return name
}

func decode(data []byte, hint string) (string, string) {
	if len(data) == 0 {
		return "", "utf-8"
	}

	switch {
	case bytes.HasPrefix(data, bomUTF8):
		return strings.ToValidUTF8(string(data[len(bomUTF8):]), replacement), "utf-8"
	case bytes.HasPrefix(data, bomUTF16LE):
		if text, ok := decodeWith(unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM), data); ok {
			return text, "utf-16le"
		}
	case bytes.HasPrefix(data, bomUTF16BE):
		if text, ok := decodeWith(unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM), data); ok {
			return text, "utf-16be"
		}
	}

	if utf8.Valid(data) {
		return string(data), "utf-8"
	}

	for _, label := range candidates(data, hint) {
		if text, ok := decodeAs(data, label); ok {
			return text, label
		}
	}

	return strings.ToValidUTF8(string(data), replacement), "utf-8"
}

// candidates orders the charsets worth trying for data that is not UTF-8.
func candidates(data []byte, hint string) []string {
	var detected string
	var confident bool

	result, err := chardet.NewTextDetector().DetectBest(data)
	if err == nil && result != nil {
		detected = strings.ToLower(result.Charset)
		confident = result.Confidence >= minConfidence
	}
	hint = strings.ToLower(strings.TrimSpace(hint))

	out := make([]string, 0, 2)
	add := func(label string) {
		if label == "" || label == "utf-8" {
			return
		}
		for _, l := range out {
			if l == label {
				return
			}
		}
		out = append(out, label)
	}

	if confident {
		add(detected)
		add(hint)
	} else {
		add(hint)
		add(detected)
	}
	return out
}

// decodeAs decodes data with the charset named label.
func decodeAs(data []byte, label string) (string, bool) {
	enc := lookupEncoding(label)
	if enc == nil {
		return "", false
	}
	return decodeWith(enc, data)
}

func decodeWith(enc encoding.Encoding, data []byte) (string, bool) {
	out, _, err := transform.Bytes(enc.NewDecoder(), data)
	if err != nil {
		return "", false
	}
	text := strings.TrimPrefix(string(out), "\uFEFF")
	return strings.ToValidUTF8(text, replacement), true
}

// lookupEncoding resolves a charset label through the WHATWG table first,
// then IANA names.
func lookupEncoding(label string) encoding.Encoding {
	if alias, ok := charsetAliases[label]; ok {
		if alias == "" {
			return nil
		}
		label = alias
	}

	if enc, _ := charset.Lookup(label); enc != nil {
		return enc
	}
	enc, err := ianaindex.IANA.Encoding(label)
	if err != nil {
		return nil
	}
	return enc
}
