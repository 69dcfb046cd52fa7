package company

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed seed.yaml
var defaultSeedYAML []byte

type seedFile struct {
	Companies []Record `yaml:"companies"`
}

// DefaultSeed 返回内置的 16 家公司，每次调用都是新的副本。
func DefaultSeed() []Record {
	recs, err := ParseSeed(defaultSeedYAML)
	if err != nil {
		panic(fmt.Sprintf("bundled seed is invalid: %v", err))
	}
	return recs
}

// LoadSeed 从 path 读取初始列表，path 为空时使用内置列表。
func LoadSeed(path string) ([]Record, error) {
	if path == "" {
		return DefaultSeed(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file %s: %w", path, err)
	}
	recs, err := ParseSeed(raw)
	if err != nil {
		return nil, fmt.Errorf("seed file %s: %w", path, err)
	}
	return recs, nil
}

// ParseSeed 解析 YAML 初始数据：拒绝未知字段，且至少包含一条有效记录。
func ParseSeed(raw []byte) ([]Record, error) {
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	var doc seedFile
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("seed is empty")
		}
		return nil, fmt.Errorf("decode seed: %w", err)
	}
	if len(doc.Companies) == 0 {
		return nil, errors.New("seed has no companies")
	}
	for i, rec := range doc.Companies {
		if err := rec.Validate(); err != nil {
			return nil, fmt.Errorf("companies[%d]: %w", i, err)
		}
	}
	return doc.Companies, nil
}
