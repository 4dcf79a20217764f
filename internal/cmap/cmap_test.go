package cmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseByteMappingTwoByteIdentity(t *testing.T) {
	content := []byte(`
1 begincodespacerange
<0000> <FFFF>
endcodespacerange
1 begincidrange
<0000> <FFFF> 0
endcidrange
`)
	m := ParseByteMapping(content)
	code, n, ok := m.NextCode([]byte{0x00, 0x41})
	assert.True(t, ok)
	assert.Equal(t, 2, n)
	assert.Equal(t, uint32(0x0041), code)
}

func TestParseByteMappingMixedWidthCodespace(t *testing.T) {
	content := []byte(`
2 begincodespacerange
<00> <80>
<8100> <FEFF>
endcodespacerange
1 begincidrange
<00> <80> 0
endcidrange
1 begincidchar
<8100> 200
endcidchar
`)
	m := ParseByteMapping(content)

	code, n, ok := m.NextCode([]byte{0x41})
	assert.True(t, ok)
	assert.Equal(t, 1, n)
	assert.Equal(t, uint32(0x41), code)

	code, n, ok = m.NextCode([]byte{0x81, 0x00})
	assert.True(t, ok)
	assert.Equal(t, 2, n)
	assert.Equal(t, uint32(200), code)
}

func TestByteMappingNextCodeNoMatchConsumesOneByte(t *testing.T) {
	m := ByteMapping{Codespace: []CodeRange{{NumBytes: 2, Low: 0, High: 0xffff}}}
	code, n, ok := m.NextCode([]byte{0xff})
	assert.False(t, ok)
	assert.Equal(t, 1, n)
	assert.Equal(t, uint32(0), code)
}

func TestIdentityByteMapping(t *testing.T) {
	m := IdentityByteMapping()
	code, n, ok := m.NextCode([]byte{0x12, 0x34})
	assert.True(t, ok)
	assert.Equal(t, 2, n)
	assert.Equal(t, uint32(0x1234), code)
}

func TestParseToUnicodeBfchar(t *testing.T) {
	content := []byte(`
1 beginbfchar
<0041> <0042>
endbfchar
`)
	m := ParseToUnicode(content)
	assert.Equal(t, "B", m[0x0041])
}

func TestParseToUnicodeBfrangeArrayForm(t *testing.T) {
	content := []byte(`
1 beginbfrange
<0001> <0003> [<0041> <0042> <0043>]
endbfrange
`)
	m := ParseToUnicode(content)
	assert.Equal(t, "A", m[1])
	assert.Equal(t, "B", m[2])
	assert.Equal(t, "C", m[3])
}

func TestParseToUnicodeBfrangeIncrementForm(t *testing.T) {
	content := []byte(`
1 beginbfrange
<0020> <0023> <0041>
endbfrange
`)
	m := ParseToUnicode(content)
	assert.Equal(t, "A", m[0x20])
	assert.Equal(t, "B", m[0x21])
	assert.Equal(t, "C", m[0x22])
	assert.Equal(t, "D", m[0x23])
}

func TestParseToUnicodeSurrogatePair(t *testing.T) {
	content := []byte(`
1 beginbfchar
<0001> <D83DDE00>
endbfchar
`)
	m := ParseToUnicode(content)
	assert.Equal(t, "😀", m[1])
}

func TestParseToUnicodeLoneSurrogateDropped(t *testing.T) {
	content := []byte(`
1 beginbfchar
<0001> <D800>
endbfchar
`)
	m := ParseToUnicode(content)
	assert.Equal(t, "", m[1])
}
