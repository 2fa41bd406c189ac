// Package tags enforces an allow/block list on card tags and adds tags
// from pattern rules.
package tags

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// RuleSpec is an auto-tag rule as written in the schema file.
type RuleSpec struct {
	Name       string   `yaml:"name" json:"name"`
	Pattern    string   `yaml:"pattern" json:"pattern"`
	Tags       []string `yaml:"tags" json:"tags"`
	MatchField string   `yaml:"match_field" json:"match_field"` // front (default) or back
}

// SchemaFile is the on-disk layout of a tag schema (YAML or JSON).
type SchemaFile struct {
	AllowedTags   []string   `yaml:"allowed_tags" json:"allowed_tags"`
	BlockedTags   []string   `yaml:"blocked_tags" json:"blocked_tags"`
	CaseSensitive bool       `yaml:"case_sensitive" json:"case_sensitive"`
	NormalizeTags *bool      `yaml:"normalize_tags" json:"normalize_tags"`
	AutoTagRules  []RuleSpec `yaml:"auto_tag_rules" json:"auto_tag_rules"`
}

// rule is a compiled auto-tag rule.
type rule struct {
	name  string
	re    *regexp.Regexp
	tags  []string
	field string
}

// Schema is a compiled tag schema.
type Schema struct {
	allowed       map[string]struct{}
	blocked       map[string]struct{}
	caseSensitive bool
	trim          bool
	rules         []rule
}

// LoadSchema reads and compiles a schema file.
func LoadSchema(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read tag schema %s: %w", path, err)
	}
	var f SchemaFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse tag schema %s: %w", path, err)
	}
	s, err := Compile(f)
	if err != nil {
		return nil, fmt.Errorf("tag schema %s: %w", path, err)
	}
	return s, nil
}

// Compile builds a Schema from its file form. Rule patterns must compile
// and match_field must be front or back.
func Compile(f SchemaFile) (*Schema, error) {
	s := &Schema{
		allowed:       make(map[string]struct{}, len(f.AllowedTags)),
		blocked:       make(map[string]struct{}, len(f.BlockedTags)),
		caseSensitive: f.CaseSensitive,
		trim:          f.NormalizeTags == nil || *f.NormalizeTags,
	}
	for _, t := range f.AllowedTags {
		s.allowed[s.norm(t)] = struct{}{}
	}
	for _, t := range f.BlockedTags {
		s.blocked[s.norm(t)] = struct{}{}
	}

	for _, spec := range f.AutoTagRules {
		re, err := regexp.Compile(spec.Pattern)
		if err != nil {
			return nil, fmt.Errorf("rule %q: %w", spec.Name, err)
		}
		field := spec.MatchField
		switch field {
		case "":
			field = "front"
		case "front", "back":
		default:
			return nil, fmt.Errorf("rule %q: unknown match_field %q", spec.Name, spec.MatchField)
		}
		s.rules = append(s.rules, rule{name: spec.Name, re: re, tags: spec.Tags, field: field})
	}
	return s, nil
}

// norm prepares a tag for comparison.
func (s *Schema) norm(tag string) string {
	if s.trim {
		tag = strings.TrimSpace(tag)
	}
	if !s.caseSensitive {
		tag = strings.ToLower(tag)
	}
	return tag
}

// Allowed reports whether tag is on the allow list.
func (s *Schema) Allowed(tag string) bool {
	_, ok := s.allowed[s.norm(tag)]
	return ok
}

// Blocked reports whether tag is on the block list.
func (s *Schema) Blocked(tag string) bool {
	_, ok := s.blocked[s.norm(tag)]
	return ok
}

// Rules returns the rule names in schema order.
func (s *Schema) Rules() []string {
	out := make([]string, len(s.rules))
	for i, r := range s.rules {
		out[i] = r.name
	}
	return out
}
