package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"balance-ledger/internal/domain"
	"balance-ledger/internal/util"
)

// UpdateStock applies percentage in direction dir to currentPrice and stores
// the resulting quote for company.
func (s *ledgerService) UpdateStock(ctx context.Context, company string, currentPrice, percentage decimal.Decimal, dir domain.Direction) (quote *domain.StockQuote, err error) {
	defer s.observe("update_stock", time.Now(), &err)

	company = strings.TrimSpace(company)
	if company == "" {
		return nil, util.InvalidInput("company is required")
	}
	if err := requirePositive("current price", currentPrice); err != nil {
		return nil, err
	}
	if err := requireNonNegative("percentage", percentage); err != nil {
		return nil, err
	}
	if !domain.ValidDirection(dir, false) {
		return nil, util.InvalidInput("direction must be up or down, got %q", dir)
	}
	if dir == domain.DirectionDown && percentage.GreaterThan(domain.MaxDownPercentage) {
		return nil, util.InvalidInput("a downward move cannot exceed %s%%", domain.MaxDownPercentage.String())
	}

	quote = domain.NewStockQuote(company, currentPrice, percentage, dir)
	if err := s.stockRepo.UpsertStock(ctx, s.backend, quote); err != nil {
		return nil, util.StoreFailure("update_stock", err)
	}

	s.logger.Info().Str("op", "update_stock").Str("company", company).
		Str("price", quote.CurrentPrice.String()).Msg("Stock quote updated")
	return quote, nil
}

// ListStocks returns every quote ordered by company.
func (s *ledgerService) ListStocks(ctx context.Context) (quotes []domain.StockQuote, err error) {
	defer s.observe("list_stocks", time.Now(), &err)

	quotes, err = s.stockRepo.ListStocks(ctx, s.backend)
	return quotes, util.StoreFailure("list_stocks", err)
}

// UpdatePercentage stores the setting of uid, or the global setting when uid
// is empty.
func (s *ledgerService) UpdatePercentage(ctx context.Context, uid string, value decimal.Decimal, dir domain.Direction) (setting *domain.PercentageSetting, err error) {
	defer s.observe("update_percentage", time.Now(), &err)

	if err := requireNonNegative("value", value); err != nil {
		return nil, err
	}
	if !domain.ValidDirection(dir, true) {
		return nil, util.InvalidInput("direction must be up, down or neutral, got %q", dir)
	}
	uid = strings.TrimSpace(uid)
	if uid != "" {
		if _, err := s.requireUser(ctx, s.backend, uid); err != nil {
			return nil, util.StoreFailure("update_percentage", err)
		}
	}

	setting = domain.NewPercentageSetting(uid, value, dir)
	if err := s.percentageRepo.UpsertPercentage(ctx, s.backend, setting); err != nil {
		return nil, util.StoreFailure("update_percentage", err)
	}

	s.logger.Info().Str("op", "update_percentage").Str("key", setting.UID).
		Str("value", value.String()).Str("direction", string(dir)).Msg("Percentage updated")
	return setting, nil
}

// ResolvePercentage returns the setting of uid, falling back to the global
// setting and then to zero/neutral.
func (s *ledgerService) ResolvePercentage(ctx context.Context, uid string) (setting *domain.PercentageSetting, err error) {
	defer s.observe("resolve_percentage", time.Now(), &err)

	keys := []string{domain.GlobalPercentageKey}
	if uid = strings.TrimSpace(uid); uid != "" && uid != domain.GlobalPercentageKey {
		keys = append([]string{uid}, keys...)
	}
	for _, key := range keys {
		setting, err = s.percentageRepo.GetPercentage(ctx, s.backend, key)
		if err == nil {
			return setting, nil
		}
		if !errors.Is(err, util.ErrNotFound) {
			return nil, util.StoreFailure("resolve_percentage", err)
		}
	}
	return domain.DefaultPercentage(), nil
}
