package tags

import (
	"fmt"
	"os"
	"regexp"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// CompoundSpec rewrites every tag matching Pattern to Tags. The item "$1"
// stands for the first capture group, looked up in the simple and
// morphology maps; a capture with no mapping is dropped.
type CompoundSpec struct {
	Pattern string   `yaml:"pattern" json:"pattern"`
	Tags    []string `yaml:"tags" json:"tags"`
}

// ChapterSpec describes organizational tags. A tag matching one of
// Patterns or a section marker is moved out of the tag list.
type ChapterSpec struct {
	Patterns        []string `yaml:"patterns" json:"patterns"`
	Sources         []string `yaml:"sources" json:"sources"`
	DefaultSource   string   `yaml:"default_source" json:"default_source"`
	SectionTags     []string `yaml:"section_tags" json:"section_tags"`
	SectionPatterns []string `yaml:"section_patterns" json:"section_patterns"`
}

// ConverterFile is the on-disk layout of a tag conversion map.
type ConverterFile struct {
	Simple     map[string][]string `yaml:"simple" json:"simple"`
	Morphology map[string][]string `yaml:"morphology" json:"morphology"`
	Compound   []CompoundSpec      `yaml:"compound" json:"compound"`
	Chapters   ChapterSpec         `yaml:"chapters" json:"chapters"`
}

// Conversion is the outcome of converting one card's tags.
type Conversion struct {
	Tags    []string `json:"tags"`
	Chapter string   `json:"chapter,omitempty"`
	Source  string   `json:"source,omitempty"`
	Section string   `json:"section,omitempty"`
}

type compound struct {
	re   *regexp.Regexp
	tags []string
}

// Converter maps import tags (morphology abbreviations, compound tags) to
// schema tags and extracts chapter, source and section.
type Converter struct {
	simple        map[string][]string
	morphology    map[string][]string
	compounds     []compound
	chapters      []*regexp.Regexp
	sources       []string
	defaultSource string
	sectionTags   map[string]struct{}
	sections      []*regexp.Regexp
}

// LoadConverter reads and compiles a conversion map.
func LoadConverter(path string) (*Converter, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read tag map %s: %w", path, err)
	}
	var f ConverterFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse tag map %s: %w", path, err)
	}
	c, err := CompileConverter(f)
	if err != nil {
		return nil, fmt.Errorf("tag map %s: %w", path, err)
	}
	return c, nil
}

// CompileConverter builds a Converter. Keys are lowercased; section
// markers default to reading, passage and wb<N><letter>.
func CompileConverter(f ConverterFile) (*Converter, error) {
	c := &Converter{
		simple:        lowerKeys(f.Simple),
		morphology:    lowerKeys(f.Morphology),
		defaultSource: f.Chapters.DefaultSource,
		sectionTags:   make(map[string]struct{}),
	}
	for _, cs := range f.Compound {
		re, err := regexp.Compile(cs.Pattern)
		if err != nil {
			return nil, fmt.Errorf("compound pattern %q: %w", cs.Pattern, err)
		}
		c.compounds = append(c.compounds, compound{re: re, tags: cs.Tags})
	}
	for _, p := range f.Chapters.Patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("chapter pattern %q: %w", p, err)
		}
		c.chapters = append(c.chapters, re)
	}
	for _, s := range f.Chapters.Sources {
		c.sources = append(c.sources, strings.ToLower(s))
	}

	sectionTags, sectionPatterns := f.Chapters.SectionTags, f.Chapters.SectionPatterns
	if sectionTags == nil {
		sectionTags = []string{"reading", "passage"}
	}
	if sectionPatterns == nil {
		sectionPatterns = []string{`^wb\d+[a-z]$`}
	}
	for _, t := range sectionTags {
		c.sectionTags[strings.ToLower(t)] = struct{}{}
	}
	for _, p := range sectionPatterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("section pattern %q: %w", p, err)
		}
		c.sections = append(c.sections, re)
	}
	return c, nil
}

func lowerKeys(m map[string][]string) map[string][]string {
	out := make(map[string][]string, len(m))
	for k, v := range m {
		out[strings.ToLower(k)] = v
	}
	return out
}

// ConvertTag maps one tag. Lookup order is simple map, morphology map,
// then compound patterns in file order. An unmapped tag is returned as is.
func (c *Converter) ConvertTag(tag string) []string {
	t := strings.ToLower(tag)
	if v, ok := c.simple[t]; ok {
		return v
	}
	if v, ok := c.morphology[t]; ok {
		return v
	}
	for _, cp := range c.compounds {
		m := cp.re.FindStringSubmatch(t)
		if m == nil {
			continue
		}
		var out []string
		for _, item := range cp.tags {
			if item != "$1" {
				out = append(out, item)
				continue
			}
			if len(m) < 2 {
				continue
			}
			if v, ok := c.simple[m[1]]; ok {
				out = append(out, v...)
			} else if v, ok := c.morphology[m[1]]; ok {
				out = append(out, v...)
			}
		}
		return out
	}
	return []string{tag}
}

// Convert maps a card's tags and pulls out organizational metadata. The
// returned tags are deduplicated and sorted; chapter and section tags are
// removed. When several tags carry a chapter, the last one wins.
func (c *Converter) Convert(raw []string) Conversion {
	conv := Conversion{Source: c.defaultSource}
	seen := make(map[string]struct{})
	for _, tag := range raw {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		t := strings.ToLower(tag)
		if c.chapter(t, &conv) || c.section(t, &conv) {
			continue
		}
		for _, out := range c.ConvertTag(tag) {
			if out == "" {
				continue
			}
			if _, dup := seen[out]; dup {
				continue
			}
			seen[out] = struct{}{}
			conv.Tags = append(conv.Tags, out)
		}
	}
	slices.Sort(conv.Tags)
	return conv
}

func (c *Converter) chapter(t string, conv *Conversion) bool {
	for _, re := range c.chapters {
		m := re.FindStringSubmatch(t)
		if m == nil {
			continue
		}
		if len(m) > 1 && m[1] != "" {
			conv.Chapter = m[1]
		}
		for _, s := range c.sources {
			if strings.Contains(t, s) {
				conv.Source = s
				break
			}
		}
		return true
	}
	return false
}

func (c *Converter) section(t string, conv *Conversion) bool {
	if _, ok := c.sectionTags[t]; ok {
		conv.Section = t
		return true
	}
	for _, re := range c.sections {
		if re.MatchString(t) {
			conv.Section = t
			return true
		}
	}
	return false
}
