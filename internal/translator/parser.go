package translator

import (
	"regexp"
	"strings"

	"go.uber.org/zap"
)

// Known preamble phrases a model may prepend to its response. Only one
// is stripped, and only as a prefix.
var responsePrefixes = []string{
	"Translation:",
	"Here is the translation:",
	"The translation is:",
	"Translated text:",
	"Result:",
	"Output:",
	"Answer:",
	"Response:",
}

// Line markers that identify agent/tooling metadata leaked into the
// response text.
var metadataMarkers = []string{
	"used_tools=",
	"tools_errors=",
	"delegations=",
	"i18n=",
}

var itemMarkerPattern = regexp.MustCompile(`^\d+\.`)
var itemMarkerStrip = regexp.MustCompile(`^\d+\.\s*`)

// AlignmentParser turns a free-form numbered-list response from the
// backend into per-unit translations aligned against the original
// batch. Output always has the same length and order as the input
// batch no matter how malformed the response is; positions that cannot
// be matched degrade to their original text.
type AlignmentParser struct {
	logger *zap.Logger
}

// NewAlignmentParser creates a new alignment parser
func NewAlignmentParser(logger *zap.Logger) *AlignmentParser {
	return &AlignmentParser{logger: logger}
}

// Parse extracts numbered items from raw and aligns them with the
// original batch texts.
func (p *AlignmentParser) Parse(raw string, originals []string) []string {
	items := p.splitItems(p.clean(raw))

	if len(items) == 0 && strings.TrimSpace(raw) != "" {
		p.logger.Warn("no numbered items found in response, keeping original texts")
	}

	return p.align(items, originals)
}

// clean strips a known preamble prefix and drops metadata-noise lines,
// comments and blanks.
func (p *AlignmentParser) clean(raw string) string {
	text := strings.TrimSpace(raw)

	for _, prefix := range responsePrefixes {
		if len(text) >= len(prefix) && strings.EqualFold(text[:len(prefix)], prefix) {
			text = strings.TrimSpace(text[len(prefix):])
			break
		}
	}

	var cleaned []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "[Translation of item") {
			continue
		}
		if containsMetadataMarker(line) {
			continue
		}

		cleaned = append(cleaned, line)
	}

	return strings.Join(cleaned, "\n")
}

// splitItems re-splits the cleaned text into logical items. A line
// starting with "N." opens a new item; following lines are joined onto
// it with spaces. Items are ordered by occurrence, not by the numeric
// label, so a model that misnumbers still yields items in textual
// order.
func (p *AlignmentParser) splitItems(cleaned string) []string {
	var items []string
	var current string
	inItem := false

	for _, line := range strings.Split(cleaned, "\n") {
		line = strings.TrimSpace(line)

		if itemMarkerPattern.MatchString(line) {
			if inItem && strings.TrimSpace(current) != "" {
				items = append(items, strings.TrimSpace(current))
			}
			current = itemMarkerStrip.ReplaceAllString(line, "")
			inItem = true
			continue
		}

		if inItem && line != "" {
			current += " " + line
		}
	}

	if inItem && strings.TrimSpace(current) != "" {
		items = append(items, strings.TrimSpace(current))
	}

	return items
}

// align walks the original batch in order. Non-empty originals consume
// the next parsed item, falling back to the original when the items run
// out; empty originals are echoed back without consuming. Surplus items
// are discarded.
func (p *AlignmentParser) align(items []string, originals []string) []string {
	result := make([]string, 0, len(originals))
	next := 0

	for _, original := range originals {
		if strings.TrimSpace(original) == "" {
			result = append(result, original)
			continue
		}

		if next < len(items) {
			result = append(result, items[next])
			next++
		} else {
			result = append(result, original)
		}
	}

	if next < len(items) {
		p.logger.Debug("discarding surplus translated items",
			zap.Int("surplus", len(items)-next))
	}

	return result
}

// containsMetadataMarker reports whether the line looks like leaked
// tooling metadata.
func containsMetadataMarker(line string) bool {
	lower := strings.ToLower(line)
	for _, marker := range metadataMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
