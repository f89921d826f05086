package astbuild

import (
	"fmt"
	"strconv"

	goyamlast "github.com/goccy/go-yaml/ast"
	"github.com/goccy/go-yaml/parser"

	"github.com/quarto-dev/q2-sub015/ast"
	"github.com/quarto-dev/q2-sub015/blockscan"
	"github.com/quarto-dev/q2-sub015/diag"
	"github.com/quarto-dev/q2-sub015/sourcemap"
)

// buildFrontMatter lifts a document's YAML front matter to ast.Metadata.
// goccy/go-yaml is used rather than a position-blind YAML library because
// its ast package attaches a token (and therefore a byte offset) to every
// node it parses, which is exactly what spec.md §3.1 requires for
// per-mapping-key SourceInfo -- grounded on how
// _examples/MacroPower-x/magicschema walks that same ast package
// (generator.go's walkNode, infer.go's unwrapNode) to build a JSON Schema
// from Helm values.yaml files node-by-node.
func (b *Builder) buildFrontMatter(n *blockscan.Node) ast.Metadata {
	if len(n.InlineSegments) == 0 {
		return ast.Metadata{}
	}
	rawStart := n.InlineSegments[0].Start

	file, err := parser.ParseBytes([]byte(n.RawText), parser.ParseComments)
	if err != nil {
		b.diags.Add(diag.Diagnostic{
			Kind:     diag.YAMLErrorKind,
			Severity: diag.Error,
			Title:    "invalid YAML front matter",
			Problem:  err.Error(),
			Source:   b.rangeSrc(rawStart, rawStart+len(n.RawText)),
		})
		return ast.Metadata{}
	}
	if len(file.Docs) == 0 || file.Docs[0].Body == nil {
		return ast.Metadata{}
	}
	return ast.Metadata{Root: b.convertYAMLNode(file.Docs[0].Body, rawStart)}
}

// convertYAMLNode recursively lowers a goccy/go-yaml ast.Node into this
// module's own ast.ConfigValue, unwrapping `!tag` and anchor wrappers the
// way infer.go's unwrapNode does, but keeping the tag name in
// ConfigValue.Tag (custom tags are carried, not resolved, spec.md §4.5).
func (b *Builder) convertYAMLNode(n goyamlast.Node, rawStart int) *ast.ConfigValue {
	tag := ""
	for {
		switch t := n.(type) {
		case *goyamlast.TagNode:
			if tok := t.GetToken(); tok != nil {
				tag = tok.Value
			}
			n = t.Value
			continue
		case *goyamlast.AnchorNode:
			n = t.Value
			continue
		}
		break
	}

	src := b.yamlNodeSrc(n, rawStart)

	switch t := n.(type) {
	case *goyamlast.NullNode:
		return &ast.ConfigValue{SrcInfo: src, Kind: ast.ConfigScalar, ScalarKind: ast.ScalarNull, Tag: tag}
	case *goyamlast.BoolNode:
		return &ast.ConfigValue{SrcInfo: src, Kind: ast.ConfigScalar, ScalarKind: ast.ScalarBool, Bool: t.Value, Tag: tag}
	case *goyamlast.IntegerNode:
		num, _ := strconv.ParseFloat(fmt.Sprint(t.Value), 64)
		return &ast.ConfigValue{SrcInfo: src, Kind: ast.ConfigScalar, ScalarKind: ast.ScalarNumber, Num: num, Tag: tag}
	case *goyamlast.FloatNode:
		return &ast.ConfigValue{SrcInfo: src, Kind: ast.ConfigScalar, ScalarKind: ast.ScalarNumber, Num: t.Value, Tag: tag}
	case *goyamlast.InfinityNode:
		return &ast.ConfigValue{SrcInfo: src, Kind: ast.ConfigScalar, ScalarKind: ast.ScalarNumber, Num: t.Value, Tag: tag}
	case *goyamlast.StringNode:
		return &ast.ConfigValue{SrcInfo: src, Kind: ast.ConfigScalar, ScalarKind: ast.ScalarString, Str: t.Value, Tag: tag}
	case *goyamlast.LiteralNode:
		val := ""
		if t.Value != nil {
			val = t.Value.Value
		}
		return &ast.ConfigValue{SrcInfo: src, Kind: ast.ConfigScalar, ScalarKind: ast.ScalarString, Str: val, Tag: tag}
	case *goyamlast.SequenceNode:
		seq := make([]*ast.ConfigValue, 0, len(t.Values))
		for _, item := range t.Values {
			seq = append(seq, b.convertYAMLNode(item, rawStart))
		}
		return &ast.ConfigValue{SrcInfo: src, Kind: ast.ConfigSequence, Sequence: seq, Tag: tag}
	case *goyamlast.MappingNode:
		entries := make([]ast.MapEntry, 0, len(t.Values))
		for _, mv := range t.Values {
			entries = append(entries, b.convertMapEntry(mv, rawStart))
		}
		return &ast.ConfigValue{SrcInfo: src, Kind: ast.ConfigMapping, Mapping: entries, Tag: tag}
	case *goyamlast.MappingValueNode:
		return &ast.ConfigValue{SrcInfo: src, Kind: ast.ConfigMapping, Mapping: []ast.MapEntry{b.convertMapEntry(t, rawStart)}, Tag: tag}
	default:
		return &ast.ConfigValue{SrcInfo: src, Kind: ast.ConfigScalar, ScalarKind: ast.ScalarNull, Tag: tag}
	}
}

func (b *Builder) convertMapEntry(mv *goyamlast.MappingValueNode, rawStart int) ast.MapEntry {
	keySrc := b.yamlNodeSrc(mv.Key, rawStart)
	key := mv.Key.String()
	return ast.MapEntry{
		KeySrc: keySrc,
		Key:    key,
		Value:  b.convertYAMLNode(mv.Value, rawStart),
	}
}

// yamlNodeSrc derives a node's SourceInfo from its own token position,
// offset by rawStart -- the absolute byte offset of the front matter's YAML
// body within the document -- since goccy's own positions are relative to
// the bytes handed to parser.ParseBytes, not the whole file.
func (b *Builder) yamlNodeSrc(n goyamlast.Node, rawStart int) *sourcemap.SourceInfo {
	tok := n.GetToken()
	if tok == nil || tok.Position == nil {
		return b.rangeSrc(rawStart, rawStart)
	}
	start := rawStart + tok.Position.Offset
	length := len(tok.Value)
	if length == 0 {
		length = len(n.String())
	}
	return b.rangeSrc(start, start+length)
}
