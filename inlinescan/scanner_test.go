package inlinescan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScanPlainText(t *testing.T) {
	nodes := New([]byte("hello world")).Scan()
	require.Len(t, nodes, 3)
	assert.Equal(t, NodeText, nodes[0].Kind)
	assert.Equal(t, "hello", nodes[0].Text)
	assert.Equal(t, NodeSpace, nodes[1].Kind)
	assert.Equal(t, NodeText, nodes[2].Kind)
	assert.Equal(t, "world", nodes[2].Text)
}

func TestScanEmphasis(t *testing.T) {
	nodes := New([]byte("a *b* c")).Scan()
	require.Len(t, nodes, 5)
	assert.Equal(t, NodeEmph, nodes[2].Kind)
	require.Len(t, nodes[2].Children, 1)
	assert.Equal(t, "b", nodes[2].Children[0].Text)
}

func TestScanStrong(t *testing.T) {
	nodes := New([]byte("**bold**")).Scan()
	require.Len(t, nodes, 1)
	assert.Equal(t, NodeStrong, nodes[0].Kind)
}

func TestScanUnmatchedDelimiterRunIsLiteralText(t *testing.T) {
	nodes := New([]byte("a * b")).Scan()
	var text string
	for _, n := range nodes {
		text += n.Text
		if n.Kind == NodeSpace {
			text += " "
		}
	}
	assert.Equal(t, "a * b", text)
}

func TestScanCodeSpan(t *testing.T) {
	nodes := New([]byte("`code here`")).Scan()
	require.Len(t, nodes, 1)
	assert.Equal(t, NodeCode, nodes[0].Kind)
	assert.Equal(t, "code here", nodes[0].Text)
}

func TestScanCodeSpanTrimsSingleSurroundingSpace(t *testing.T) {
	nodes := New([]byte("`` `code` ``")).Scan()
	require.Len(t, nodes, 1)
	assert.Equal(t, NodeCode, nodes[0].Kind)
	assert.Equal(t, "`code`", nodes[0].Text)
}

func TestScanInlineMath(t *testing.T) {
	nodes := New([]byte("$x^2$")).Scan()
	require.Len(t, nodes, 1)
	assert.Equal(t, NodeMath, nodes[0].Kind)
	assert.False(t, nodes[0].MathDisplay)
	assert.Equal(t, "x^2", nodes[0].Text)
}

func TestScanLink(t *testing.T) {
	nodes := New([]byte(`[text](http://example.com "title")`)).Scan()
	require.Len(t, nodes, 1)
	assert.Equal(t, NodeLink, nodes[0].Kind)
	assert.Equal(t, "http://example.com", nodes[0].URL)
	assert.Equal(t, "title", nodes[0].Title)
}

func TestScanImage(t *testing.T) {
	nodes := New([]byte(`![alt](img.png)`)).Scan()
	require.Len(t, nodes, 1)
	assert.Equal(t, NodeImage, nodes[0].Kind)
	assert.Equal(t, "img.png", nodes[0].URL)
}

func TestScanFootnoteReference(t *testing.T) {
	nodes := New([]byte("text[^1]")).Scan()
	require.Len(t, nodes, 2)
	assert.Equal(t, NodeFootnoteRef, nodes[1].Kind)
	assert.Equal(t, "1", nodes[1].ID)
}

func TestScanCitation(t *testing.T) {
	nodes := New([]byte("[@smith2020; @jones2021]")).Scan()
	require.Len(t, nodes, 1)
	require.Equal(t, NodeCitation, nodes[0].Kind)
	require.Len(t, nodes[0].Citations, 2)
	assert.Equal(t, "smith2020", nodes[0].Citations[0].Key)
	assert.Equal(t, "jones2021", nodes[0].Citations[1].Key)
}

func TestScanAutolink(t *testing.T) {
	nodes := New([]byte("<http://example.com>")).Scan()
	require.Len(t, nodes, 1)
	assert.Equal(t, NodeAutolink, nodes[0].Kind)
	assert.Equal(t, "http://example.com", nodes[0].URL)
}

func TestScanHTMLComment(t *testing.T) {
	nodes := New([]byte("a <!-- hidden --> b")).Scan()
	var sawComment bool
	for _, n := range nodes {
		if n.Kind == NodeHTMLComment {
			sawComment = true
		}
	}
	assert.True(t, sawComment)
}

func TestScanShortcode(t *testing.T) {
	nodes := New([]byte(`{{< video https://example.com/v.mp4 >}}`)).Scan()
	require.Len(t, nodes, 1)
	assert.Equal(t, NodeShortcode, nodes[0].Kind)
	assert.Equal(t, "video", nodes[0].ShortcodeName)
	require.Len(t, nodes[0].ShortcodeArgs, 1)
	assert.Equal(t, "https://example.com/v.mp4", nodes[0].ShortcodeArgs[0].Value)
}

func TestScanAttributedSpan(t *testing.T) {
	nodes := New([]byte("[special]{.callout-note #warn}")).Scan()
	require.Len(t, nodes, 1)
	assert.Equal(t, NodeSpan, nodes[0].Kind)
	assert.Equal(t, ".callout-note #warn", nodes[0].Attr.Raw)
}
