package trip

import (
	"errors"
	"log/slog"
	"regexp"
	"strings"

	"github.com/FACorreiaa/go-trip-planner/internal/types"
)

// ErrNoTips is returned when both parser passes produce zero accepted
// entries. An itinerary with zero tips is not a usable result.
var ErrNoTips = errors.New("could not produce tips")

const (
	maxTips           = 12
	minPlaceIDLen     = 6
	minDescriptionLen = 21
)

// entryStartRe matches the beginning of one itinerary entry: an optional
// "Tip" keyword, a number and a ":" or "." separator, anchored at line start.
// The anchor keeps digits inside descriptions ("open 9:00") from splitting
// an entry; a match additionally only counts as an entry start when its line
// carries a pipe, so a wrapped line opening with a time ("9:30 am") does not.
var entryStartRe = regexp.MustCompile(`(?m)^[ \t]*(?:Tip\s*)?\d+\s*[.:]\s*`)

// tipPrefixRe strips a leading "Tip N:" token from a single field.
var tipPrefixRe = regexp.MustCompile(`^\s*(?:Tip\s*)?\d+\s*[.:]\s*`)

// nonLetterRe is used to normalize category tokens before vocabulary lookup.
var nonLetterRe = regexp.MustCompile(`[^a-z]`)

// ParseTips runs the strict grammar pass and falls back to the loose
// line-splitting pass when the first yields nothing. Zero entries from both
// passes is fatal for the pipeline.
func ParseTips(raw string) ([]types.Tip, error) {
	tips := ParseStrict(raw)
	if len(tips) == 0 {
		tips = ParseLoose(raw)
	}
	if len(tips) == 0 {
		return nil, ErrNoTips
	}
	return tips, nil
}

// ParseStrict scans for repeated "Tip <n>: <placeId> | <field> | ..."
// entries. An entry runs until the next pipe-bearing numbered line or end of
// text; each field is cut at its first line break, so closing remarks after
// the last entry never leak into its duration or price.
func ParseStrict(raw string) []types.Tip {
	var starts [][]int
	for _, loc := range entryStartRe.FindAllStringIndex(raw, -1) {
		head := raw[loc[1]:]
		if idx := strings.IndexByte(head, '\n'); idx >= 0 {
			head = head[:idx]
		}
		if strings.Contains(head, "|") {
			starts = append(starts, loc)
		}
	}
	tips := make([]types.Tip, 0, len(starts))

	for i, loc := range starts {
		if len(tips) >= maxTips {
			break
		}
		end := len(raw)
		if i+1 < len(starts) {
			end = starts[i+1][0]
		}
		segment := raw[loc[1]:end]

		tip, ok := parseFields(strings.Split(segment, "|"))
		if !ok {
			slog.Debug("Skipping malformed tip entry", slog.String("segment", truncateForLog(segment)))
			continue
		}
		tips = append(tips, tip)
	}
	return tips
}

// ParseLoose is the permissive fallback: any pipe-bearing line longer than
// ten characters is treated as a candidate entry, with an optional "Tip N:"
// prefix stripped from its first field.
func ParseLoose(raw string) []types.Tip {
	var tips []types.Tip
	lines := strings.Split(raw, "\n")

	for _, line := range lines {
		if len(tips) >= maxTips {
			break
		}
		line = strings.TrimSpace(line)
		if len(line) <= 10 || !strings.Contains(line, "|") {
			continue
		}

		fields := strings.Split(line, "|")
		fields[0] = tipPrefixRe.ReplaceAllString(fields[0], "")

		tip, ok := parseFields(fields)
		if !ok {
			slog.Debug("Skipping malformed tip line", slog.String("line", truncateForLog(line)))
			continue
		}
		tips = append(tips, tip)
	}
	return tips
}

// parseFields maps pipe-split fields positionally onto a Tip and applies the
// acceptance invariants: placeId longer than 5 characters, description longer
// than 20. Entries failing them are dropped, not defaulted.
func parseFields(fields []string) (types.Tip, bool) {
	if len(fields) < 3 {
		return types.Tip{}, false
	}
	for i := range fields {
		if idx := strings.IndexByte(fields[i], '\n'); idx >= 0 {
			fields[i] = fields[i][:idx]
		}
		fields[i] = strings.TrimSpace(fields[i])
	}

	placeID := fields[0]
	description := fields[2]
	if len(placeID) < minPlaceIDLen || len(description) < minDescriptionLen {
		return types.Tip{}, false
	}

	tip := types.Tip{
		PlaceID:     placeID,
		Category:    normalizeCategory(fields[1]),
		Description: description,
	}
	if len(fields) > 3 {
		tip.Duration = fields[3]
	}
	if len(fields) > 4 {
		tip.Price = fields[4]
	}
	return tip, true
}

// normalizeCategory lower-cases the token, strips non-letter characters and
// checks it against the fixed vocabulary. Unrecognized categories become
// attraction: category only drives display grouping, resolution depends on
// the place ID.
func normalizeCategory(token string) types.TipCategory {
	cleaned := nonLetterRe.ReplaceAllString(strings.ToLower(token), "")
	category := types.TipCategory(cleaned)
	if types.KnownCategories[category] {
		return category
	}
	return types.CategoryAttraction
}

func truncateForLog(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > 80 {
		return s[:80] + "..."
	}
	return s
}
