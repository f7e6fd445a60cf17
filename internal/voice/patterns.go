package voice

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/warungops/warungops/internal/models"
)

var (
	punctuation = regexp.MustCompile(`[^\p{L}\p{N} ]+`)
	whitespace  = regexp.MustCompile(`\s+`)

	// note regex families: negation, additive, subtractive, spice level
	noteExprs = []*regexp.Regexp{
		regexp.MustCompile(`tidak \p{L}+`),
		regexp.MustCompile(`(?:extra|tambah) \p{L}+`),
		regexp.MustCompile(`(?:tanpa|kurang) \p{L}+`),
		regexp.MustCompile(`pedas(?: sekali)?|level \p{N}+`),
	}
)

// PatternStrategy is the deterministic fallback parser: containment and
// token-set similarity against the menu, regex quantity and note
// extraction. Thresholds and the quantity-word table come from config so
// menus and locales extend without code changes.
type PatternStrategy struct {
	jaccardThreshold float64
	quantityWords    map[string]int
	quantityDigit    *regexp.Regexp
	quantityWord     *regexp.Regexp
}

func NewPatternStrategy(cfg models.VoiceConfig) *PatternStrategy {
	words := make([]string, 0, len(cfg.QuantityWords))
	for word := range cfg.QuantityWords {
		words = append(words, regexp.QuoteMeta(word))
	}
	sort.Strings(words)

	wordAlt := strings.Join(words, "|")
	if wordAlt == "" {
		wordAlt = "satu|dua|tiga|empat|lima"
	}
	return &PatternStrategy{
		jaccardThreshold: cfg.JaccardThreshold,
		quantityWords:    cfg.QuantityWords,
		quantityDigit:    regexp.MustCompile(`(\p{N}+)\s*(?:porsi|buah|x)?\s*`),
		quantityWord:     regexp.MustCompile(`(` + wordAlt + `)\s+`),
	}
}

// Parse never fails: the worst outcome is an empty item list with the whole
// transcript recorded as unrecognized.
func (s *PatternStrategy) Parse(transcript string, menu []*models.MenuItem) *models.VoiceParseResult {
	normalized := Normalize(transcript)
	notes := s.extractNotes(normalized)

	result := &models.VoiceParseResult{Path: models.ParsePathPattern}
	var confidenceSum float64
	for _, item := range menu {
		name := Normalize(item.Name)
		if name == "" {
			continue
		}

		var confidence float64
		switch {
		case strings.Contains(normalized, name):
			confidence = 1.0
		default:
			if similarity := jaccard(tokens(normalized), tokens(name)); similarity >= s.jaccardThreshold {
				confidence = similarity
			}
		}
		if confidence == 0 {
			continue
		}

		quantity := s.extractQuantity(normalized, name)
		parsed := models.ParsedOrderItem{
			ItemID:           item.ID,
			Name:             item.Name,
			Quantity:         quantity,
			UnitPrice:        item.Price,
			Subtotal:         int64(quantity) * item.Price,
			Confidence:       confidence,
			OriginalTextSpan: name,
			Notes:            notes,
		}
		result.Items = append(result.Items, parsed)
		result.Total += parsed.Subtotal
		confidenceSum += confidence
	}

	if len(result.Items) == 0 {
		result.Unrecognized = []string{transcript}
		return result
	}
	result.OverallConfidence = confidenceSum / float64(len(result.Items))
	return result
}

// extractQuantity tries pattern families in order: an explicit digit (with
// an optional unit word) before the item name, then a number word. No match
// means one.
func (s *PatternStrategy) extractQuantity(normalized, name string) int {
	quoted := regexp.QuoteMeta(name)

	digit := regexp.MustCompile(s.quantityDigit.String() + quoted)
	if match := digit.FindStringSubmatch(normalized); match != nil {
		if qty, err := strconv.Atoi(match[1]); err == nil && qty >= 1 {
			return qty
		}
	}

	word := regexp.MustCompile(s.quantityWord.String() + quoted)
	if match := word.FindStringSubmatch(normalized); match != nil {
		if qty, ok := s.quantityWords[match[1]]; ok && qty >= 1 {
			return qty
		}
	}
	return 1
}

func (s *PatternStrategy) extractNotes(normalized string) string {
	var notes []string
	working := normalized
	for _, expr := range noteExprs {
		notes = append(notes, expr.FindAllString(working, -1)...)
		// consume matched spans so "tidak pedas" is not re-captured by the
		// bare spice-level family
		working = expr.ReplaceAllString(working, " ")
	}
	return strings.Join(notes, ", ")
}

// Normalize lowercases, strips punctuation and collapses whitespace.
func Normalize(text string) string {
	text = strings.ToLower(text)
	text = punctuation.ReplaceAllString(text, " ")
	text = whitespace.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

func tokens(text string) map[string]bool {
	set := make(map[string]bool)
	for _, token := range strings.Fields(text) {
		set[token] = true
	}
	return set
}

// jaccard is the token-set similarity: |intersection| / |union|.
func jaccard(a, b map[string]bool) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	intersection := 0
	for token := range a {
		if b[token] {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	return float64(intersection) / float64(union)
}
