package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripCommentPrefix(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"triple slash", "\n/// first\n/// second", "\n first\n second"},
		{"asterisk", "\n  *  first\n  * second", "\n  first\n second"},
		{"bang", "\n  //!  first\n  //!  second", "\n  first\n  second"},
		{"only detected prefix removed", "/// first\n/// second\n * third\n/// forth", " first\n second\n * third\n forth"},
		{"no prefix on first line", " .. admonition:: title\n * item", " .. admonition:: title\n * item"},
		{"blank", "\n  \n", "\n  \n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := stripCommentPrefix(tt.in)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseBlockContent(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"marker", "{rst}\nFIRST_LINE\nSECOND_LINE", "FIRST_LINE\nSECOND_LINE"},
		{"marker after blank line", " \n {rst}\nFIRST_LINE\nSECOND_LINE", "FIRST_LINE\nSECOND_LINE"},
		{"indented marker", "   {rst}\n   FIRST_LINE\n   SECOND_LINE", "FIRST_LINE\nSECOND_LINE"},
		{"embed marker", "embed:rst\n  FIRST_LINE\n  SECOND_LINE\n", "FIRST_LINE\nSECOND_LINE"},
		{"directive", ".. directive:: title\nFIRST_LINE\nSECOND_LINE", ".. directive:: title\nFIRST_LINE\nSECOND_LINE"},
		{"indented directive", "   .. directive:: title\n      FIRST_LINE\n      SECOND_LINE", ".. directive:: title\n   FIRST_LINE\n   SECOND_LINE"},
		{"directive behind asterisks", "*  .. directive::\n*  FIRST_LINE\n*  SECOND_LINE", ".. directive::\nFIRST_LINE\nSECOND_LINE"},
		{"surrounding blank lines", "\n\n{rst}\n\n.. note:: x\n\n\n", ".. note:: x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseBlockContent(tt.in)
			assert.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseBlockContentRejects(t *testing.T) {
	for _, in := range []string{
		"{rst} content in same line\nSECOND_LINE",
		"rst\nFIRST_LINE\nSECOND_LINE",
		"FIRST_LINE\nSECOND_LINE",
		"..directive::no\nFIRST_LINE",
		"",
		"   \n\t\n",
		"{markdown}\n\njust a test",
		"embed:rst:inline\n.. need:: test",
	} {
		_, ok := ParseBlockContent(in)
		assert.False(t, ok, "%q", in)
	}
}

const needBlock = ".. need:: test\n   :status: open\n\n   This is the description"

func TestParseBlockContentCommentStyles(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"marker with asterisks", " * {rst}\n * .. need:: test\n *    :status: open\n *\n *    This is the description\n"},
		{"autodetected directive", "\n.. need:: test\n   :status: open\n\n   This is the description\n"},
		{"strange comments", "//! {rst}\n//! .. need:: test\n//!    :status: open\n//!\n//!    This is the description"},
		{"embed", "embed:rst\n.. need:: test\n   :status: open\n\n   This is the description"},
		{"leading asterisk", "embed:rst:leading-asterisk\n*.. need:: test\n*   :status: open\n*\n*   This is the description"},
		{"leading slashes", "embed:rst:leading-slashes\n///.. need:: test\n///   :status: open\n///\n///   This is the description"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseBlockContent(tt.in)
			assert.True(t, ok)
			assert.Equal(t, needBlock, got)
		})
	}
}

func TestParseBlockContentStripsOneLayer(t *testing.T) {
	got, ok := ParseBlockContent("/// {rst}\n/// * item one\n/// * item two")
	assert.True(t, ok)
	assert.Equal(t, "* item one\n* item two", got)
}
