// Package manifest renders dataset metadata into the text manifest embedded in every zip.
//
// The metadata is held as a yaml.v3 document tree so that key order and scalar
// tags survive decoding. Prettify normalises keys and string leaves; Render walks
// the tree and writes the block layout directly.
//
// Prettify is one-way: "last_modified" becomes "Last Modified" and the original
// key spelling cannot be recovered. Applying it a second time changes nothing.
package manifest

import (
	"bytes"
	"fmt"
	"strings"
	"unicode"

	"gopkg.in/yaml.v3"
)

const trimSet = " \t\n\r"

// Decode 解析 JSON 或 YAML 文本，返回根节点 (已去掉 DocumentNode 外壳)
func Decode(data []byte) (*yaml.Node, error) {
	var doc yaml.Node
	dec := yaml.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode metadata: %w", err)
	}
	return unwrap(&doc), nil
}

// FromValue 将任意 Go 值编码为文档树 (map 的 key 会按字典序排列)
func FromValue(v any) (*yaml.Node, error) {
	var n yaml.Node
	if err := n.Encode(v); err != nil {
		return nil, fmt.Errorf("encode metadata: %w", err)
	}
	return unwrap(&n), nil
}

func unwrap(n *yaml.Node) *yaml.Node {
	for n != nil && n.Kind == yaml.DocumentNode {
		if len(n.Content) == 0 {
			return &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		}
		n = n.Content[0]
	}
	for n != nil && n.Kind == yaml.AliasNode {
		n = n.Alias
	}
	return n
}

// Prettify 返回一棵新树:
//   - mapping 的 key: 下划线换成空格后 title-case
//   - 字符串叶子: 去掉首尾空白 (空格、制表符、换行)
//
// 同名 key (如 "a_b" 与 "A B") 合并时后出现的覆盖先出现的。
func Prettify(n *yaml.Node) *yaml.Node {
	n = unwrap(n)
	if n == nil {
		return nil
	}

	switch n.Kind {
	case yaml.MappingNode:
		out := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		index := make(map[string]int)
		for i := 0; i+1 < len(n.Content); i += 2 {
			key := PrettyKey(unwrap(n.Content[i]).Value)
			val := Prettify(n.Content[i+1])
			if pos, ok := index[key]; ok {
				out.Content[pos+1] = val
				continue
			}
			index[key] = len(out.Content)
			out.Content = append(out.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key},
				val,
			)
		}
		return out

	case yaml.SequenceNode:
		out := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, item := range n.Content {
			out.Content = append(out.Content, Prettify(item))
		}
		return out

	default:
		out := &yaml.Node{Kind: yaml.ScalarNode, Tag: n.ShortTag(), Value: n.Value}
		if out.Tag == "!!str" {
			out.Value = strings.Trim(out.Value, trimSet)
		}
		return out
	}
}

// PrettyKey "last_modified" -> "Last Modified"
func PrettyKey(key string) string {
	return TitleCase(strings.ReplaceAll(key, "_", " "))
}

// TitleCase 每段连续字母的首字母大写，其余小写；非字母字符 (含数字) 之后重新开始计数
func TitleCase(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prevLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			if prevLetter {
				r = unicode.ToLower(r)
			} else {
				r = unicode.ToTitle(r)
			}
			prevLetter = true
		} else {
			prevLetter = false
		}
		b.WriteRune(r)
	}
	return b.String()
}
