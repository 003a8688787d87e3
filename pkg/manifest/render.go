package manifest

import (
	"bytes"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	crlf       = "\r\n"
	indentStep = 2
)

var (
	plainKey = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9 ._/()+-]*$`)

	// 这些 key 如果不加引号会被解析成 bool / null
	reservedKeys = map[string]struct{}{
		"true": {}, "false": {}, "yes": {}, "no": {}, "on": {}, "off": {},
		"y": {}, "n": {}, "null": {}, "~": {},
	}
)

// Generate 先 Prettify 再 Render
func Generate(title string, doc *yaml.Node) []byte {
	return Render(title, Prettify(doc))
}

// Render 输出:
//
//	# Metadata for {title}
//	---
//	Key: 'value'
//	List:
//	  - 'item'
//	  -
//	    Nested: 'value'
//
// mapping 的 key 按字典序输出，字符串一律单引号，换行为 CRLF。
func Render(title string, doc *yaml.Node) []byte {
	e := &emitter{}
	e.buf.WriteString("# Metadata for ")
	e.buf.WriteString(singleLine(title))
	e.buf.WriteString(crlf)

	doc = unwrap(doc)
	if doc == nil {
		doc = &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	}

	if isBlock(doc) {
		e.buf.WriteString("---" + crlf)
		e.block(doc, 0)
	} else {
		e.buf.WriteString("--- ")
		e.inline(doc, 0)
		e.buf.WriteString(crlf)
	}
	return e.buf.Bytes()
}

type emitter struct {
	buf bytes.Buffer
}

func (e *emitter) block(n *yaml.Node, indent int) {
	switch n.Kind {
	case yaml.MappingNode:
		e.mapping(n, indent)
	case yaml.SequenceNode:
		e.sequence(n, indent)
	}
}

func (e *emitter) mapping(n *yaml.Node, indent int) {
	for _, p := range sortedPairs(n) {
		e.pad(indent)
		e.key(p.key)
		e.buf.WriteByte(':')
		if isBlock(p.value) {
			e.buf.WriteString(crlf)
			e.block(p.value, indent+indentStep)
			continue
		}
		e.buf.WriteByte(' ')
		e.inline(p.value, indent+indentStep)
		e.buf.WriteString(crlf)
	}
}

// 序列缩进一级；元素为集合时 "-" 独占一行
func (e *emitter) sequence(n *yaml.Node, indent int) {
	for _, item := range n.Content {
		item = unwrap(item)
		e.pad(indent)
		e.buf.WriteByte('-')
		if isBlock(item) {
			e.buf.WriteString(crlf)
			e.block(item, indent+indentStep)
			continue
		}
		e.buf.WriteByte(' ')
		e.inline(item, indent+indentStep)
		e.buf.WriteString(crlf)
	}
}

func (e *emitter) inline(n *yaml.Node, indent int) {
	switch n.Kind {
	case yaml.MappingNode:
		e.buf.WriteString("{}")
	case yaml.SequenceNode:
		e.buf.WriteString("[]")
	default:
		switch n.ShortTag() {
		case "!!str", "!!binary", "!!timestamp":
			e.scalar(n.Value, indent)
		case "!!null":
			e.buf.WriteString("null")
		default:
			e.buf.WriteString(n.Value)
		}
	}
}

func (e *emitter) key(k string) {
	if plainKey.MatchString(k) && !strings.HasSuffix(k, " ") {
		if _, reserved := reservedKeys[strings.ToLower(k)]; !reserved {
			e.buf.WriteString(k)
			return
		}
	}
	e.quoted(k, 0)
}

// scalar 字符串值默认单引号；折行会丢掉行首/行尾空白的多行文本改用字面块
func (e *emitter) scalar(s string, indent int) {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	if needsLiteral(s) {
		e.literal(s, max(indent, indentStep))
		return
	}
	e.quoted(s, indent)
}

// quoted 单引号标量；k 个连续换行写成 k 个空行 (单引号标量的折行规则)，续行缩进到 indent
func (e *emitter) quoted(s string, indent int) {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "'", "''")
	e.buf.WriteByte('\'')
	breaks := 0
	for i, line := range strings.Split(s, "\n") {
		if i > 0 {
			breaks++
		}
		if line == "" && i > 0 {
			continue
		}
		if breaks > 0 {
			e.buf.WriteString(strings.Repeat(crlf, breaks+1))
			e.pad(indent)
			breaks = 0
		}
		e.buf.WriteString(line)
	}
	if breaks > 0 {
		e.buf.WriteString(strings.Repeat(crlf, breaks+1))
		e.pad(indent)
	}
	e.buf.WriteByte('\'')
}

// literal 字面块 "|-"，以换行结尾时用 "|+" 保留末尾换行
func (e *emitter) literal(s string, indent int) {
	body := strings.TrimRight(s, "\n")
	trailing := len(s) - len(body)
	if trailing == 0 {
		e.buf.WriteString("|-")
	} else {
		e.buf.WriteString("|+")
	}
	for _, line := range strings.Split(body, "\n") {
		e.buf.WriteString(crlf)
		if line != "" {
			e.pad(indent)
			e.buf.WriteString(line)
		}
	}
	// 最后一个换行由调用方写出
	for i := 1; i < trailing; i++ {
		e.buf.WriteString(crlf)
	}
}

// needsLiteral 单引号标量折行时会吃掉续行的行首空白和换行前的行尾空白。
// 首个非空行以空白开头时字面块无法推断缩进，仍用单引号。
func needsLiteral(s string) bool {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	if len(lines) < 2 {
		return false
	}
	first := true
	lossy := false
	for i, line := range lines {
		if line == "" {
			continue
		}
		if first {
			if isBlank(line[0]) {
				return false
			}
			first = false
		} else if isBlank(line[0]) {
			lossy = true
		}
		if i < len(lines)-1 && isBlank(line[len(line)-1]) {
			lossy = true
		}
	}
	return lossy
}

func isBlank(c byte) bool {
	return c == ' ' || c == '\t'
}

func (e *emitter) pad(n int) {
	for i := 0; i < n; i++ {
		e.buf.WriteByte(' ')
	}
}

type pair struct {
	key   string
	value *yaml.Node
}

func sortedPairs(n *yaml.Node) []pair {
	pairs := make([]pair, 0, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		pairs = append(pairs, pair{key: unwrap(n.Content[i]).Value, value: unwrap(n.Content[i+1])})
	}
	sort.SliceStable(pairs, func(i, j int) bool { return pairs[i].key < pairs[j].key })
	return pairs
}

func isBlock(n *yaml.Node) bool {
	return (n.Kind == yaml.MappingNode || n.Kind == yaml.SequenceNode) && len(n.Content) > 0
}

func singleLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
