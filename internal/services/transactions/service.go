package transactions

import (
	"context"
	"errors"

	"prospect-lookup/internal/common/logger"
	"prospect-lookup/internal/models"
	"prospect-lookup/internal/services/knowledgecore"
)

var ErrConstituentRequired = errors.New("CONSTITUENT_ID_REQUIRED")

// Source supplies raw giving rows for a constituent.
type Source interface {
	Transactions(ctx context.Context, constituentID string) ([]models.Transaction, error)
}

// GivingHistory pairs the formatted transaction rows with their summary
// metrics for the Profile tab.
type GivingHistory struct {
	ConstituentID string               `json:"constituent_id"`
	Transactions  []models.Transaction `json:"transactions"`
	Metrics       *models.GiftMetrics  `json:"gift_metrics,omitempty"`
}

// Service resolves a constituent's giving history from the internal database
// and formats amounts for display.
type Service struct {
	source Source
	logger logger.Logger
}

func NewService(source Source, log logger.Logger) *Service {
	return &Service{
		source: source,
		logger: log.WithFields(map[string]interface{}{"component": "transactions"}),
	}
}

// GivingHistory returns the constituent's transactions, newest first, with
// dollar amounts normalized to "$1,234.56" form.
func (s *Service) GivingHistory(ctx context.Context, constituentID string) (*GivingHistory, error) {
	if constituentID == "" {
		return nil, ErrConstituentRequired
	}

	rows, err := s.source.Transactions(ctx, constituentID)
	if err != nil {
		return nil, err
	}

	formatted := make([]models.Transaction, 0, len(rows))
	for _, t := range rows {
		t.GiftAmount = knowledgecore.FormatCurrency(t.GiftAmount)
		formatted = append(formatted, t)
	}

	return &GivingHistory{
		ConstituentID: constituentID,
		Transactions:  formatted,
		Metrics:       knowledgecore.ComputeGiftMetrics(rows),
	}, nil
}
