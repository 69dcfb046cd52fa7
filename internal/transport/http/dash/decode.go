package dashhttp

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/tidwall/gjson"

	"ruleforty/internal/company"
	"ruleforty/internal/session"
)

var (
	errBadJSON      = errors.New("request body is not valid JSON")
	errSchemaFailed = errors.New("request body does not match schema")
)

const submitSchemaJSON = `{
  "type": "object",
  "additionalProperties": false,
  "properties": {
    "label":      {"type": ["string", "null"]},
    "margin":     {"type": ["number", "null"]},
    "growth":     {"type": ["number", "null"]},
    "market_cap": {"type": ["number", "null"]},
    "n_clicks":   {"type": ["integer", "null"], "minimum": 0}
  }
}`

const clickSchemaJSON = `{
  "type": "object",
  "additionalProperties": false,
  "properties": {
    "n_clicks": {"type": ["integer", "null"], "minimum": 0}
  }
}`

const heightSchemaJSON = `{
  "type": "object",
  "additionalProperties": false,
  "required": ["height"],
  "properties": {
    "height": {"type": "number"}
  }
}`

var (
	submitSchema = mustCompile("submit.json", submitSchemaJSON)
	clickSchema  = mustCompile("click.json", clickSchemaJSON)
	heightSchema = mustCompile("height.json", heightSchemaJSON)
)

func mustCompile(name, src string) *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, strings.NewReader(src)); err != nil {
		panic(fmt.Sprintf("schema %s: %v", name, err))
	}
	return compiler.MustCompile(name)
}

// validateBody 按 schema 校验 body，空 body 视为 {}。
func validateBody(schema *jsonschema.Schema, body []byte) ([]byte, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		body = []byte("{}")
	}
	if !gjson.ValidBytes(body) {
		return nil, errBadJSON
	}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, errBadJSON
	}
	if err := schema.Validate(doc); err != nil {
		return body, fmt.Errorf("%w: %v", errSchemaFailed, err)
	}
	return body, nil
}

// optionalFloat 区分缺失或 null（返回 nil）与 0。
func optionalFloat(body []byte, path string) *float64 {
	r := gjson.GetBytes(body, path)
	if !r.Exists() || r.Type != gjson.Number {
		return nil
	}
	v := r.Float()
	return &v
}

// clicks 读取 n_clicks，缺失或 null 视为点击一次。
func clicks(body []byte) int {
	r := gjson.GetBytes(body, "n_clicks")
	if !r.Exists() || r.Type == gjson.Null {
		return 1
	}
	return int(r.Int())
}

func decodeSubmit(body []byte) (session.SubmitEvent, error) {
	body, err := validateBody(submitSchema, body)
	if err != nil {
		return session.SubmitEvent{}, err
	}
	return session.SubmitEvent{
		Draft: company.Draft{
			Label:     gjson.GetBytes(body, "label").String(),
			Margin:    optionalFloat(body, "margin"),
			Growth:    optionalFloat(body, "growth"),
			MarketCap: optionalFloat(body, "market_cap"),
		},
		Clicks: clicks(body),
	}, nil
}

func decodeClicks(body []byte) (int, error) {
	body, err := validateBody(clickSchema, body)
	if err != nil {
		return 0, err
	}
	return clicks(body), nil
}

func decodeHeight(body []byte) (int, error) {
	body, err := validateBody(heightSchema, body)
	if err != nil {
		return 0, err
	}
	return int(gjson.GetBytes(body, "height").Int()), nil
}
