// Package reader 提供图表旁边的静态章节面板。
package reader

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

var ErrInvalidChapters = errors.New("reader: invalid chapters")

//go:embed chapters.yaml
var defaultChaptersYAML []byte

//go:embed chapters.schema.json
var chaptersSchema string

// Localized 为每种语言保存一份文本。
type Localized struct {
	ZH string `yaml:"zh" json:"zh"`
	EN string `yaml:"en" json:"en"`
}

func (l Localized) In(locale string) string {
	if locale == LocaleEN {
		return l.EN
	}
	return l.ZH
}

type rawBlock struct {
	Kind  string      `yaml:"kind"`
	Text  Localized   `yaml:"text"`
	Items []Localized `yaml:"items"`
}

type rawChapter struct {
	ID     string     `yaml:"id"`
	Title  Localized  `yaml:"title"`
	Blocks []rawBlock `yaml:"blocks"`
}

type chapterFile struct {
	Chapters []rawChapter `yaml:"chapters"`
}

// Block 为章节中的标题、段落或列表。
type Block struct {
	Kind  string   `json:"kind"`
	Text  string   `json:"text,omitempty"`
	Items []string `json:"items,omitempty"`
}

// Chapter 为某种语言下的章节，Number 从 1 开始用于展示。
type Chapter struct {
	Index  int     `json:"index"`
	Number int     `json:"number"`
	ID     string  `json:"id"`
	Title  string  `json:"title"`
	Blocks []Block `json:"blocks"`
}

// Reader 持有章节列表与面板高度规则。
type Reader struct {
	chapters []rawChapter
	locale   string
	bounds   HeightBounds
}

// New 从 path 加载章节，path 为空时使用内置章节。
func New(path, locale string, bounds HeightBounds) (*Reader, error) {
	raw := defaultChaptersYAML
	if strings.TrimSpace(path) != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read chapters %s: %w", path, err)
		}
		raw = b
	}
	chapters, err := parseChapters(raw)
	if err != nil {
		return nil, err
	}
	return &Reader{chapters: chapters, locale: NormalizeLocale(locale), bounds: bounds.normalized()}, nil
}

// Default 返回使用内置章节与默认高度范围的 Reader。
func Default(locale string) *Reader {
	r, err := New("", locale, DefaultBounds())
	if err != nil {
		panic(fmt.Sprintf("bundled chapters are invalid: %v", err))
	}
	return r
}

// Len 返回章节数。
func (r *Reader) Len() int { return len(r.chapters) }

func (r *Reader) Locale() string { return r.locale }

// Advance 返回 i 的下一个索引，末尾回到开头。
func (r *Reader) Advance(i int) int {
	return r.normalize(i + 1)
}

// Content 返回第 i mod Len 章的内容。
func (r *Reader) Content(i int) Chapter {
	i = r.normalize(i)
	c := r.chapters[i]
	out := Chapter{
		Index:  i,
		Number: i + 1,
		ID:     c.ID,
		Title:  c.Title.In(r.locale),
		Blocks: make([]Block, 0, len(c.Blocks)),
	}
	for _, b := range c.Blocks {
		blk := Block{Kind: b.Kind}
		if b.Kind == "list" {
			for _, it := range b.Items {
				blk.Items = append(blk.Items, it.In(r.locale))
			}
		} else {
			blk.Text = b.Text.In(r.locale)
		}
		out.Blocks = append(out.Blocks, blk)
	}
	return out
}

func (r *Reader) normalize(i int) int {
	n := len(r.chapters)
	i %= n
	if i < 0 {
		i += n
	}
	return i
}

func parseChapters(raw []byte) ([]rawChapter, error) {
	var doc any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidChapters, err)
	}
	schema, err := compileSchema()
	if err != nil {
		return nil, err
	}
	normalized, err := toJSONValue(doc)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidChapters, err)
	}
	if err := schema.Validate(normalized); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidChapters, err)
	}

	var file chapterFile
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidChapters, err)
	}
	return file.Chapters, nil
}

func compileSchema() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("chapters.schema.json", strings.NewReader(chaptersSchema)); err != nil {
		return nil, err
	}
	return compiler.Compile("chapters.schema.json")
}

// toJSONValue 将 YAML 树转换为 encoding/json 的类型，供 schema 校验。
func toJSONValue(v any) (any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}
