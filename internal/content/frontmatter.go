package content

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const frontmatterDelimiter = "---"

// ErrNoFrontmatter indicates the file does not start with a frontmatter block.
var ErrNoFrontmatter = errors.New("missing frontmatter block")

// frontmatter mirrors the metadata header of a content file. Tags is decoded
// as a raw node because historical files carry several malformed shapes
// (nested arrays, comma-joined scalars) that need explicit normalization.
type frontmatter struct {
	Title    string    `yaml:"title"`
	Category string    `yaml:"category"`
	Tags     yaml.Node `yaml:"tags"`
	Source   string    `yaml:"source"`
	Date     string    `yaml:"date"`
}

// Parse turns raw file bytes into a Record. The path is recorded verbatim.
func Parse(path string, data []byte) (*Record, error) {
	header, body, err := splitFrontmatter(string(data))
	if err != nil {
		return nil, err
	}

	var fm frontmatter
	if err := yaml.Unmarshal([]byte(header), &fm); err != nil {
		return nil, fmt.Errorf("decode frontmatter: %w", err)
	}

	title := strings.TrimSpace(fm.Title)
	if title == "" {
		return nil, errors.New("frontmatter missing title")
	}

	record := &Record{
		Path:     path,
		Title:    title,
		Category: strings.TrimSpace(fm.Category),
		Tags:     flattenTags(&fm.Tags),
		Source:   strings.TrimSpace(fm.Source),
		Body:     body,
	}

	if raw := strings.TrimSpace(fm.Date); raw != "" {
		date, err := parseDate(raw)
		if err != nil {
			return nil, err
		}
		record.Date = date
	}

	return record, nil
}

func splitFrontmatter(text string) (header, body string, err error) {
	normalized := strings.ReplaceAll(text, "\r\n", "\n")
	if !strings.HasPrefix(normalized, frontmatterDelimiter+"\n") {
		return "", "", ErrNoFrontmatter
	}
	rest := normalized[len(frontmatterDelimiter)+1:]
	end := strings.Index(rest, "\n"+frontmatterDelimiter)
	if end < 0 {
		return "", "", errors.New("unterminated frontmatter block")
	}
	header = rest[:end]
	body = rest[end+1+len(frontmatterDelimiter):]
	if idx := strings.IndexByte(body, '\n'); idx >= 0 {
		body = body[idx+1:]
	} else {
		body = ""
	}
	return header, body, nil
}

// flattenTags normalizes every historical tag shape to a flat set:
//
//	tags: [a, b]       -> {a, b}
//	tags: [[a, b, c]]  -> {a, b, c}   (array-of-array defect)
//	tags: "a, b"       -> {a, b}      (comma-joined scalar)
//	tags: a            -> {a}
//
// Values are trimmed, empties dropped, duplicates removed preserving first
// occurrence order.
func flattenTags(node *yaml.Node) []string {
	var raw []string
	collectTags(node, &raw)

	seen := make(map[string]struct{}, len(raw))
	tags := make([]string, 0, len(raw))
	for _, tag := range raw {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		tags = append(tags, tag)
	}
	return tags
}

func collectTags(node *yaml.Node, out *[]string) {
	if node == nil {
		return
	}
	switch node.Kind {
	case yaml.ScalarNode:
		for _, part := range strings.Split(node.Value, ",") {
			*out = append(*out, part)
		}
	case yaml.SequenceNode:
		for _, child := range node.Content {
			collectTags(child, out)
		}
	case yaml.AliasNode:
		collectTags(node.Alias, out)
	}
}

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006/01/02",
	"2006-01-02 15:04:05",
}

func parseDate(raw string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable date %q", raw)
}
