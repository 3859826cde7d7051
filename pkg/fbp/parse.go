package fbp

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// Parse reads a graph written in the FBP language.
//
// Supported statements, separated by newlines or commas:
//
//	A(Component) OUT -> IN B(Component) OUT -> IN C   connection chain
//	'literal' -> IN A                                  initializer
//	A OUT[1] -> IN[0] B                                addressable slots
//	A(Component:label=Reader,routes=a|b)               declaration with metadata
//	INPORT=A.IN:PUBLIC                                 exported inport
//	OUTPORT=C.OUT:PUBLIC                               exported outport
//
// Everything after '#' on a line is a comment.
func Parse(src string) (*Graph, error) {
	toks, err := lex(src)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks, g: New("")}
	if err := p.parse(); err != nil {
		return nil, err
	}
	return p.g, p.g.Validate()
}

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokSep
	tokIdent
	tokData
	tokArrow
	tokMeta
	tokIndex
	tokEquals
	tokColon
)

func (k tokenKind) String() string {
	switch k {
	case tokEOF:
		return "end of input"
	case tokSep:
		return "separator"
	case tokIdent:
		return "identifier"
	case tokData:
		return "literal"
	case tokArrow:
		return "'->'"
	case tokMeta:
		return "component"
	case tokIndex:
		return "index"
	case tokEquals:
		return "'='"
	case tokColon:
		return "':'"
	}
	return "token"
}

type token struct {
	kind tokenKind
	text string
	line int
}

func isIdentRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || strings.ContainsRune("_-/.", r)
}

func lex(src string) ([]token, error) {
	var (
		toks []token
		rs   = []rune(src)
		line = 1
	)
	for i := 0; i < len(rs); {
		r := rs[i]
		switch {
		case r == '\n':
			toks = append(toks, token{kind: tokSep, line: line})
			line++
			i++
		case r == ',':
			toks = append(toks, token{kind: tokSep, line: line})
			i++
		case r == ' ' || r == '\t' || r == '\r':
			i++
		case r == '#':
			for i < len(rs) && rs[i] != '\n' {
				i++
			}
		case r == '-' && i+1 < len(rs) && rs[i+1] == '>':
			toks = append(toks, token{kind: tokArrow, line: line})
			i += 2
		case r == '=':
			toks = append(toks, token{kind: tokEquals, line: line})
			i++
		case r == ':':
			toks = append(toks, token{kind: tokColon, line: line})
			i++
		case r == '\'':
			start := line
			var b strings.Builder
			i++
			for ; i < len(rs) && rs[i] != '\''; i++ {
				if rs[i] == '\\' && i+1 < len(rs) && rs[i+1] == '\'' {
					i++
				}
				if rs[i] == '\n' {
					line++
				}
				b.WriteRune(rs[i])
			}
			if i >= len(rs) {
				return nil, fmt.Errorf("line %d: unterminated literal", start)
			}
			i++
			toks = append(toks, token{kind: tokData, text: b.String(), line: start})
		case r == '(':
			j := i + 1
			for j < len(rs) && rs[j] != ')' {
				j++
			}
			if j >= len(rs) {
				return nil, fmt.Errorf("line %d: unterminated component declaration", line)
			}
			body := string(rs[i+1 : j])
			toks = append(toks, token{kind: tokMeta, text: body, line: line})
			line += strings.Count(body, "\n")
			i = j + 1
		case r == '[':
			j := i + 1
			for j < len(rs) && unicode.IsDigit(rs[j]) {
				j++
			}
			if j == i+1 || j >= len(rs) || rs[j] != ']' {
				return nil, fmt.Errorf("line %d: malformed port index", line)
			}
			toks = append(toks, token{kind: tokIndex, text: string(rs[i+1 : j]), line: line})
			i = j + 1
		case isIdentRune(r):
			j := i
			for j < len(rs) && isIdentRune(rs[j]) && !(rs[j] == '-' && j+1 < len(rs) && rs[j+1] == '>') {
				j++
			}
			toks = append(toks, token{kind: tokIdent, text: string(rs[i:j]), line: line})
			i = j
		default:
			return nil, fmt.Errorf("line %d: unexpected character %q", line, r)
		}
	}
	return append(toks, token{kind: tokEOF, line: line}), nil
}

type parser struct {
	toks []token
	pos  int
	g    *Graph
}

func (p *parser) peek() token { return p.toks[p.pos] }

func (p *parser) peekAt(n int) token {
	if p.pos+n < len(p.toks) {
		return p.toks[p.pos+n]
	}
	return p.toks[len(p.toks)-1]
}

func (p *parser) next() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) expect(kind tokenKind) (token, error) {
	t := p.next()
	if t.kind != kind {
		return t, fmt.Errorf("line %d: expected %s, got %s", t.line, kind, t.kind)
	}
	return t, nil
}

func (p *parser) atEnd() bool {
	k := p.peek().kind
	return k == tokSep || k == tokEOF
}

func (p *parser) parse() error {
	for {
		switch p.peek().kind {
		case tokEOF:
			return nil
		case tokSep:
			p.next()
			continue
		}
		if err := p.statement(); err != nil {
			return err
		}
		if !p.atEnd() {
			t := p.peek()
			return fmt.Errorf("line %d: unexpected %s", t.line, t.kind)
		}
	}
}

func (p *parser) statement() error {
	t := p.peek()
	if t.kind == tokIdent && (t.text == "INPORT" || t.text == "OUTPORT") && p.peekAt(1).kind == tokEquals {
		return p.export()
	}

	var (
		data    any
		hasData bool
		from    Endpoint
	)
	if t.kind == tokData {
		p.next()
		data, hasData = t.text, true
	} else {
		id, err := p.node()
		if err != nil {
			return err
		}
		if p.atEnd() {
			return nil
		}
		port, idx, err := p.port()
		if err != nil {
			return err
		}
		from = Endpoint{Node: id, Port: port, Index: idx}
	}

	for {
		if _, err := p.expect(tokArrow); err != nil {
			return err
		}
		port, idx, err := p.port()
		if err != nil {
			return err
		}
		id, err := p.node()
		if err != nil {
			return err
		}
		to := Endpoint{Node: id, Port: port, Index: idx}
		if hasData {
			p.g.AddInitializer(data, to)
			hasData = false
		} else {
			p.g.AddEdge(from, to)
		}

		if p.atEnd() {
			return nil
		}
		out, outIdx, err := p.port()
		if err != nil {
			return err
		}
		from = Endpoint{Node: id, Port: out, Index: outIdx}
	}
}

// node parses `Name` or `Name(Component:meta)` and registers the process.
func (p *parser) node() (string, error) {
	t, err := p.expect(tokIdent)
	if err != nil {
		return "", err
	}
	n := Node{ID: t.text}
	if p.peek().kind == tokMeta {
		if err := parseMeta(p.next().text, &n); err != nil {
			return "", fmt.Errorf("line %d: %w", t.line, err)
		}
	}
	p.g.AddNode(n)
	return n.ID, nil
}

func (p *parser) port() (string, *int, error) {
	t, err := p.expect(tokIdent)
	if err != nil {
		return "", nil, err
	}
	name := strings.ToLower(t.text)
	if p.peek().kind != tokIndex {
		return name, nil, nil
	}
	n, err := strconv.Atoi(p.next().text)
	if err != nil {
		return "", nil, fmt.Errorf("line %d: %w", t.line, err)
	}
	return name, &n, nil
}

func (p *parser) export() error {
	kind := p.next().text
	p.next()
	t, err := p.expect(tokIdent)
	if err != nil {
		return err
	}
	dot := strings.LastIndexByte(t.text, '.')
	if dot <= 0 || dot == len(t.text)-1 {
		return fmt.Errorf("line %d: %s expects Process.PORT, got %q", t.line, kind, t.text)
	}
	process, port := t.text[:dot], strings.ToLower(t.text[dot+1:])
	if p.peek().kind == tokIndex {
		p.next()
	}
	if _, err := p.expect(tokColon); err != nil {
		return err
	}
	pub, err := p.expect(tokIdent)
	if err != nil {
		return err
	}
	public := strings.ToLower(pub.text)
	if kind == "INPORT" {
		p.g.AddInport(public, process, port)
	} else {
		p.g.AddOutport(public, process, port)
	}
	return nil
}

// parseMeta fills component and metadata from "Component:key=val,key=val".
// Routes are separated by '|'.
func parseMeta(body string, n *Node) error {
	component, meta, _ := strings.Cut(body, ":")
	n.Component = strings.TrimSpace(component)
	if meta == "" {
		return nil
	}
	for _, pair := range strings.Split(meta, ",") {
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			return fmt.Errorf("malformed metadata %q", pair)
		}
		value = strings.TrimSpace(value)
		switch strings.TrimSpace(key) {
		case "label":
			n.Metadata.Label = value
		case "routes":
			for _, r := range strings.Split(value, "|") {
				if r = strings.TrimSpace(r); r != "" {
					n.Metadata.Routes = append(n.Metadata.Routes, r)
				}
			}
		}
	}
	return nil
}
