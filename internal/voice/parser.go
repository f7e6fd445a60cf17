package voice

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/lucsky/cuid"
	"github.com/rs/zerolog/log"
	"github.com/warungops/warungops/internal/models"
	"github.com/warungops/warungops/internal/repositories"
)

var (
	// ErrEmptyTranscript: an empty or whitespace transcript is a hard
	// failure, never an empty success.
	ErrEmptyTranscript = errors.New("transcript is empty")
	ErrEmptyMenu       = errors.New("outlet has no menu items to match against")

	errAIDisabled = errors.New("ai order parsing disabled")
)

// AIParser is the primary path; PatternStrategy is the fallback when it is
// disabled or fails.
type AIParser interface {
	Parse(ctx context.Context, transcript string, menu []*models.MenuItem) (*models.AIParsedOrder, error)
}

type NullAIParser struct{}

func (NullAIParser) Parse(context.Context, string, []*models.MenuItem) (*models.AIParsedOrder, error) {
	return nil, errAIDisabled
}

// Publisher ships parse events to an external stream for quality analysis.
type Publisher interface {
	PublishParseEvent(entry *models.VoiceParseLog) error
}

type Parser struct {
	menu      repositories.MenuItemRepository
	parseLog  repositories.ParseLogRepository
	ai        AIParser
	strategy  *PatternStrategy
	publisher Publisher // optional
	now       func() time.Time
}

func NewParser(cfg models.VoiceConfig, menu repositories.MenuItemRepository, parseLog repositories.ParseLogRepository, ai AIParser, publisher Publisher) *Parser {
	if ai == nil {
		ai = NullAIParser{}
	}
	return &Parser{
		menu:      menu,
		parseLog:  parseLog,
		ai:        ai,
		strategy:  NewPatternStrategy(cfg),
		publisher: publisher,
		now:       time.Now,
	}
}

// Parse converts a free-text transcript into structured order lines. The AI
// path is tried first when wired; any AI failure falls through to the
// deterministic pattern pipeline. Every attempt lands in the append-only
// parse log.
func (p *Parser) Parse(ctx context.Context, storeID string, outletID *string, transcript string) (*models.VoiceParseResult, error) {
	if strings.TrimSpace(transcript) == "" {
		p.appendLog(ctx, storeID, outletID, transcript, nil, models.ParsePathPattern, false)
		return nil, ErrEmptyTranscript
	}

	menu, err := p.menu.GetByStore(ctx, storeID, outletID)
	if err != nil {
		return nil, err
	}
	if len(menu) == 0 {
		return nil, ErrEmptyMenu
	}

	var result *models.VoiceParseResult
	if aiParsed, aiErr := p.ai.Parse(ctx, transcript, menu); aiErr == nil {
		result = p.fromAI(aiParsed, menu)
	} else if !errors.Is(aiErr, errAIDisabled) {
		log.Debug().Err(aiErr).Msg("ai order parse failed, using pattern fallback")
	}
	if result == nil {
		result = p.strategy.Parse(transcript, menu)
	}

	p.appendLog(ctx, storeID, outletID, transcript, result, result.Path, len(result.Items) > 0)
	return result, nil
}

// fromAI converts the model's output into a parse result. Prices are always
// re-derived from the authoritative menu record; a price the model invented
// never survives. Items with an unknown id are demoted to unrecognized.
func (p *Parser) fromAI(parsed *models.AIParsedOrder, menu []*models.MenuItem) *models.VoiceParseResult {
	menuByID := make(map[string]*models.MenuItem, len(menu))
	for _, item := range menu {
		menuByID[item.ID] = item
	}

	result := &models.VoiceParseResult{
		Path:         models.ParsePathAI,
		Unrecognized: parsed.Unrecognized,
		Suggestions:  parsed.Suggestions,
	}
	var confidenceSum float64
	for _, aiItem := range parsed.Items {
		menuItem, known := menuByID[aiItem.ItemID]
		if !known {
			if aiItem.TextSpan != "" {
				result.Unrecognized = append(result.Unrecognized, aiItem.TextSpan)
			}
			continue
		}
		quantity := aiItem.Quantity
		if quantity < 1 {
			quantity = 1
		}
		confidence := clamp01(aiItem.Confidence)

		item := models.ParsedOrderItem{
			ItemID:           menuItem.ID,
			Name:             menuItem.Name,
			Quantity:         quantity,
			UnitPrice:        menuItem.Price,
			Subtotal:         int64(quantity) * menuItem.Price,
			Confidence:       confidence,
			OriginalTextSpan: aiItem.TextSpan,
			Variants:         aiItem.Variants,
			Notes:            aiItem.Notes,
		}
		result.Items = append(result.Items, item)
		result.Total += item.Subtotal
		confidenceSum += confidence
	}
	if len(result.Items) > 0 {
		result.OverallConfidence = confidenceSum / float64(len(result.Items))
	}
	return result
}

func (p *Parser) appendLog(ctx context.Context, storeID string, outletID *string, transcript string, result *models.VoiceParseResult, path string, succeeded bool) {
	entry := &models.VoiceParseLog{
		ID:         cuid.New(),
		StoreID:    storeID,
		OutletID:   outletID,
		Transcript: transcript,
		Result:     result,
		Path:       path,
		Succeeded:  succeeded,
		CreatedAt:  p.now(),
	}
	if result != nil {
		entry.Confidence = result.OverallConfidence
	}

	// the log is advisory; a failed append must not fail the parse
	if err := p.parseLog.Append(ctx, entry); err != nil {
		log.Warn().Err(err).Msg("voice parse log append failed")
	}
	if p.publisher != nil {
		if err := p.publisher.PublishParseEvent(entry); err != nil {
			log.Warn().Err(err).Msg("voice parse event publish failed")
		}
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
