package provider

import (
	"regexp"
	"strings"
	"unicode"
)

// compoundSep separates family and variant in fully qualified model
// identifiers; names that carry it are already resolved.
const compoundSep = ":"

// Resolve maps a short model alias to the full identifier of a cached
// model. Matching order: exact case-insensitive alias, then identifier
// prefix, then the name unchanged. Exact-before-prefix matters: an alias
// must never be captured by a longer alias it happens to prefix.
func Resolve(name string, cached []CachedModel) string {
	if name == "" || strings.Contains(name, compoundSep) {
		return name
	}
	for _, m := range cached {
		if strings.EqualFold(m.Alias, name) {
			return m.ModelID
		}
	}
	lower := strings.ToLower(name)
	for _, m := range cached {
		if strings.HasPrefix(strings.ToLower(m.ModelID), lower) {
			return m.ModelID
		}
	}
	return name
}

var columnSplit = regexp.MustCompile(`\s{2,}`)

// deviceTokens identify the Device column so rows whose alias cell is blank
// (the listing prints a shared alias once per group) can be told apart from
// full rows.
var deviceTokens = map[string]bool{"GPU": true, "CPU": true, "NPU": true}

// parseCacheTable turns the cache listing table into CachedModel records.
// Rows look like
//
//	💾 phi-4-mini   GPU   chat-completion   3.72 GB   MIT   Phi-4-mini-instruct-generic-gpu
//
// with columns separated by runs of spaces. The leading marker glyph and the
// License column are discarded; a blank alias cell inherits the alias of the
// previous row.
func parseCacheTable(out string) []CachedModel {
	var (
		models    []CachedModel
		lastAlias string
	)
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimRightFunc(line, unicode.IsSpace)
		trimmed := strings.TrimLeftFunc(line, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		if trimmed == "" {
			continue
		}
		if strings.Contains(trimmed, "Alias") && strings.Contains(trimmed, "Model ID") {
			continue
		}
		fields := columnSplit.Split(trimmed, -1)
		if deviceTokens[fields[0]] {
			// blank alias cell: the glyph trim ate the leading spaces, so
			// the first field is already the device
			fields = append([]string{lastAlias}, fields...)
		}
		if len(fields) < 5 || fields[0] == "" {
			continue
		}
		models = append(models, CachedModel{
			Alias:    fields[0],
			Device:   fields[1],
			Task:     fields[2],
			FileSize: fields[3],
			ModelID:  fields[len(fields)-1],
		})
		lastAlias = fields[0]
	}
	return models
}
