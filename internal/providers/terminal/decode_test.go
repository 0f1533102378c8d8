package terminal

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/simplifiedchinese"
)

const chineseParagraph = "这是一个用于测试字符集检测的中文段落。我们希望检测器能够识别出简体中文编码，" +
	"并且在没有任何提示的情况下正确地把字节转换成统一码文本。命令提示符在中文系统上默认使用这种编码输出结果，" +
	"所以服务器必须能够处理它。"

func gbk(t *testing.T, s string) []byte {
	t.Helper()
	out, err := simplifiedchinese.GBK.NewEncoder().Bytes([]byte(s))
	require.NoError(t, err)
	return out
}

func TestDecodeEmpty(t *testing.T) {
	assert.Equal(t, "", Decode(nil, "gbk"))
	assert.Equal(t, "", Decode([]byte{}, ""))
}

func TestDecodeUTF8(t *testing.T) {
	in := "hello 世界 ✓\n"
	assert.Equal(t, in, Decode([]byte(in), "gbk"), "valid UTF-8 wins over the hint")
	assert.Equal(t, "utf-8", Detect([]byte(in), "gbk"))
}

func TestDecodeBOM(t *testing.T) {
	tests := []struct {
		name    string
		input   []byte
		want    string
		charset string
	}{
		{"utf-8", []byte("\xef\xbb\xbfhello"), "hello", "utf-8"},
		{"utf-16le", []byte("\xff\xfeh\x00i\x00"), "hi", "utf-16le"},
		{"utf-16be", []byte("\xfe\xff\x00h\x00i"), "hi", "utf-16be"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Decode(tt.input, ""))
			assert.Equal(t, tt.charset, Detect(tt.input, ""))
		})
	}
}

func TestDecodeAsHint(t *testing.T) {
	text, ok := decodeAs(gbk(t, "你好，世界"), "gbk")
	require.True(t, ok)
	assert.Equal(t, "你好，世界", text)

	latin, err := charmap.ISO8859_1.NewEncoder().Bytes([]byte("café"))
	require.NoError(t, err)
	text, ok = decodeAs(latin, "iso-8859-1")
	require.True(t, ok)
	assert.Equal(t, "café", text)

	_, ok = decodeAs([]byte("x"), "no-such-charset")
	assert.False(t, ok)
}

func TestDecodeDetectsGBK(t *testing.T) {
	raw := gbk(t, strings.Repeat(chineseParagraph, 4))
	require.False(t, utf8.Valid(raw))

	got := Decode(raw, "")
	assert.Contains(t, got, "命令提示符")
	assert.True(t, utf8.ValidString(got))
}

func TestDecodeInvalidBytesAlwaysValid(t *testing.T) {
	inputs := [][]byte{
		{'a', 0xff, 'b'},
		{0xc3},
		{0x80, 0x81, 0x82},
		{0xe4, 0xbd},
		[]byte("ok \xed\xa0\x80 surrogate"),
	}

	for _, in := range inputs {
		for _, hint := range []string{"", "gbk", "utf-8", "bogus"} {
			got := Decode(in, hint)
			assert.True(t, utf8.ValidString(got), "Decode(%q, %q) = %q", in, hint, got)
			assert.NotEmpty(t, got)
		}
	}
}

func TestCandidatesSkipUTF8AndDuplicates(t *testing.T) {
	got := candidates([]byte{'a', 0xff, 'b'}, " UTF-8 ")
	assert.NotContains(t, got, "utf-8")

	got = candidates(gbk(t, strings.Repeat(chineseParagraph, 4)), "GBK")
	assert.Contains(t, got, "gbk")
	seen := make(map[string]bool)
	for _, label := range got {
		assert.False(t, seen[label], "duplicate candidate %q", label)
		seen[label] = true
	}
}

func TestLookupEncoding(t *testing.T) {
	for _, label := range []string{"gbk", "gb-18030", "gb18030", "shift_jis", "euc-kr", "windows-1252", "iso-8859-1", "big5"} {
		assert.NotNil(t, lookupEncoding(label), label)
	}
	for _, label := range []string{"ibm424_rtl", "ibm420_ltr", "nonsense"} {
		assert.Nil(t, lookupEncoding(label), label)
	}
}

func TestNormalize(t *testing.T) {
	raw := append([]byte("\x1b[32m"), gbk(t, strings.Repeat(chineseParagraph, 4))...)
	raw = append(raw, []byte("\x1b[0m\r\n")...)

	got := Normalize(raw, "gbk")

	assert.True(t, utf8.ValidString(got))
	assert.NotContains(t, got, "\x1b")
	assert.True(t, strings.HasPrefix(got, "这是一个"))
	assert.True(t, strings.HasSuffix(got, "\r\n"))
}
