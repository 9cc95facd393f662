// FILE: lixenwraith/logtree/sanitizer/sanitizer_test.go
package sanitizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizerPolicies(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		policy   PolicyPreset
		expected string
	}{
		{
			name:     "raw passes through",
			input:    "hello\x00world\n",
			policy:   PolicyRaw,
			expected: "hello\x00world\n",
		},
		{
			name:     "txt hex encodes null byte",
			input:    "test\x00data",
			policy:   PolicyTxt,
			expected: "test<00>data",
		},
		{
			name:     "txt keeps line breaks and tabs",
			input:    "line1\nline2\tcol",
			policy:   PolicyTxt,
			expected: "line1\nline2\tcol",
		},
		{
			name:     "txt preserves UTF-8",
			input:    "Hello 世界 ✓",
			policy:   PolicyTxt,
			expected: "Hello 世界 ✓",
		},
		{
			name:     "txt encodes escape sequences",
			input:    "red\x1b[31m",
			policy:   PolicyTxt,
			expected: "red<1b>[31m",
		},
		{
			name:     "line encodes line breaks",
			input:    "a\nb",
			policy:   PolicyLine,
			expected: "a<0a>b",
		},
		{
			name:     "json escapes controls",
			input:    "a\nb\tc",
			policy:   PolicyJSON,
			expected: `a\nb\tc`,
		},
		{
			name:     "shell strips metacharacters",
			input:    "rm -rf $(pwd); echo",
			policy:   PolicyShell,
			expected: "rm-rfpwdecho",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s := New().Policy(tc.policy)
			assert.Equal(t, tc.expected, s.Sanitize(tc.input))
		})
	}
}

func TestSanitizerRuleOrder(t *testing.T) {
	s := New().
		Rule(FilterWhitespace, TransformStrip).
		Rule(FilterNonPrintable, TransformHexEncode)

	// '\n' is whitespace, so the first rule strips it before hex encoding applies
	assert.Equal(t, "ab<00>", s.Sanitize("a\nb\x00"))
	assert.True(t, IsPolicy("txt"))
	assert.False(t, IsPolicy("nope"))
}

func TestSerializer(t *testing.T) {
	t.Run("txt writes strings unquoted", func(t *testing.T) {
		var buf []byte
		NewSerializer("txt", New().Policy(PolicyTxt)).WriteString(&buf, "Hello world!")
		assert.Equal(t, "Hello world!", string(buf))
	})

	t.Run("json quotes and escapes", func(t *testing.T) {
		var buf []byte
		NewSerializer("json", nil).WriteString(&buf, "say \"hi\"\n")
		assert.Equal(t, `"say \"hi\"\n"`, string(buf))
	})

	t.Run("nil rendering", func(t *testing.T) {
		var txt, js []byte
		NewSerializer("txt", nil).WriteNil(&txt)
		NewSerializer("json", nil).WriteNil(&js)
		assert.Equal(t, "<nil>", string(txt))
		assert.Equal(t, "null", string(js))
	})

	t.Run("complex values", func(t *testing.T) {
		value := map[string]int{"b": 2, "a": 1}

		var txt []byte
		NewSerializer("txt", nil).WriteComplex(&txt, value)
		assert.Equal(t, "map[a:1 b:2]", string(txt))

		var js []byte
		NewSerializer("json", nil).WriteComplex(&js, value)
		assert.Equal(t, `{"a":1,"b":2}`, string(js))
	})
}
