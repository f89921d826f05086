package astbuild

import (
	"strings"

	"github.com/quarto-dev/q2-sub015/ast"
	"github.com/quarto-dev/q2-sub015/diag"
)

// parseAttr implements the attribute grammar referenced throughout spec.md
// §4.4 (CodeBlock info lines, FencedDiv/Div braces, inline Span/Code
// attributes): a space-separated sequence of `#id`, `.class`, or
// `key=value`/`key="quoted value"` tokens, optionally wrapped in `{ }`.
// Malformed input (unbalanced quotes, a duplicate key) is reported to diags
// as an AttributeSyntax diagnostic and the well-formed tokens parsed so far
// are still returned, per spec.md §7's "diagnostics, not fatal errors" rule
// for recoverable syntax.
func parseAttr(raw string, diags *diag.Bag) ast.Attr {
	body := strings.TrimSpace(raw)
	body = strings.TrimPrefix(body, "{")
	body = strings.TrimSuffix(body, "}")
	body = strings.TrimSpace(body)

	var attr ast.Attr
	seenKeys := map[string]bool{}

	for _, tok := range splitAttrTokens(body) {
		switch {
		case tok == "":
			continue
		case strings.HasPrefix(tok, "#"):
			if attr.ID != "" && diags != nil {
				diags.Add(diag.Diagnostic{
					Kind:     diag.AttributeSyntax,
					Severity: diag.Warning,
					Title:    "duplicate id attribute",
					Problem:  "attribute body \"" + raw + "\" sets #id more than once",
				})
			}
			attr.ID = tok[1:]
		case strings.HasPrefix(tok, "."):
			attr.Classes = append(attr.Classes, tok[1:])
		case strings.HasPrefix(tok, "^"):
			// Fenced-div footnote-definition marker (blockscan's
			// extractCaretID already pulled it into NoteID); not part of
			// the (id, classes, kvs) triple this grammar returns.
			continue
		default:
			eq := strings.IndexByte(tok, '=')
			if eq < 0 {
				if diags != nil {
					diags.Add(diag.Diagnostic{
						Kind:     diag.AttributeSyntax,
						Severity: diag.Warning,
						Title:    "malformed attribute token",
						Problem:  "token \"" + tok + "\" in \"" + raw + "\" is neither #id, .class, nor key=value",
					})
				}
				continue
			}
			key := tok[:eq]
			val := strings.Trim(tok[eq+1:], `"'`)
			if rv := tok[eq+1:]; diags != nil && rv != "" && (rv[0] == '"' || rv[0] == '\'') && (len(rv) < 2 || rv[len(rv)-1] != rv[0]) {
				diags.Add(diag.Diagnostic{
					Kind:     diag.AttributeSyntax,
					Severity: diag.Warning,
					Title:    "unbalanced quote in attribute value",
					Problem:  "value of key \"" + key + "\" in \"" + raw + "\" opens a quote that is never closed",
				})
			}
			if seenKeys[key] && diags != nil {
				diags.Add(diag.Diagnostic{
					Kind:     diag.AttributeSyntax,
					Severity: diag.Warning,
					Title:    "duplicate attribute key",
					Problem:  "key \"" + key + "\" repeated in \"" + raw + "\"",
				})
				continue
			}
			seenKeys[key] = true
			attr.KVs = append(attr.KVs, ast.KV{Key: key, Value: val})
		}
	}
	return attr
}

// splitAttrTokens splits on whitespace outside of a quoted key=value,
// so `key="a b"` survives as one token.
func splitAttrTokens(body string) []string {
	var toks []string
	var cur strings.Builder
	inQuote := byte(0)
	for i := 0; i < len(body); i++ {
		c := body[i]
		switch {
		case inQuote != 0:
			cur.WriteByte(c)
			if c == inQuote {
				inQuote = 0
			}
		case c == '"' || c == '\'':
			inQuote = c
			cur.WriteByte(c)
		case c == ' ' || c == '\t':
			if cur.Len() > 0 {
				toks = append(toks, cur.String())
				cur.Reset()
			}
		default:
			cur.WriteByte(c)
		}
	}
	if cur.Len() > 0 {
		toks = append(toks, cur.String())
	}
	return toks
}

// codeInfoAttr turns a fenced code block's info string into Attr: Pandoc
// allows either a bare language word ("python") treated as the first class,
// or a full `{.python #id key=val}` attribute body.
func codeInfoAttr(info string, diags *diag.Bag) ast.Attr {
	info = strings.TrimSpace(info)
	if info == "" {
		return ast.Attr{}
	}
	if strings.HasPrefix(info, "{") {
		return parseAttr(info, diags)
	}
	lang := info
	if sp := strings.IndexAny(info, " \t"); sp >= 0 {
		lang = info[:sp]
	}
	return ast.Attr{Classes: []string{lang}}
}
