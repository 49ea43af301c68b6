package service

import (
	"context"
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/questline/pricing-planner/internal/domain/model"
	"github.com/questline/pricing-planner/internal/domain/pricing"
	"github.com/questline/pricing-planner/internal/domain/types"
	"github.com/questline/pricing-planner/pkg/logger"
	"github.com/questline/pricing-planner/pkg/metrics"
)

// Request is a regional price calculation.
type Request = types.QuoteRequest

// Calculate resolves countries and FX rates and runs the pricing pipeline.
// It only fails on a cancelled context; missing upstream data yields rows
// without prices.
func (s *Service) Calculate(ctx context.Context, req Request) (types.Quote, error) {
	if err := ctx.Err(); err != nil {
		return types.Quote{}, fmt.Errorf("%w: %w", ErrCanceled, err)
	}
	start := s.now()

	discount := pricing.ClampDiscount(req.DiscountPercent / 100)
	list, source := s.resolveCountries(ctx, req.AllCountries)
	rates, info := s.obtainRates(ctx, req.ReuseRates)

	q := pricing.ComputeQuote(pricing.Input{
		GenreID:          req.Genre,
		Hours:            req.Hours,
		ManualUSD:        req.ManualUSD,
		DiscountFraction: discount,
		Countries:        list,
		FxRates:          rates,
	})

	rows := lo.Map(q.Rows, func(r pricing.RegionalPriceRow, _ int) types.PriceRow {
		return toPriceRow(r)
	})
	unavailable := lo.CountBy(q.Rows, func(r pricing.RegionalPriceRow) bool { return !r.Priced() })

	s.calculations.Add(1)
	elapsed := s.now().Sub(start)
	metrics.RecordCalculation(string(q.Base.Reason), len(rows), unavailable, float64(elapsed.Milliseconds()))

	quote := types.Quote{
		ID:              uuid.NewString(),
		Base:            toBasePrice(q.Base),
		DiscountPercent: math.Round(discount*10000) / 100,
		AllCountries:    req.AllCountries,
		CountrySource:   source,
		Rows:            rows,
		Fx:              info,
		ComputedAt:      s.now().UTC(),
	}

	s.logger.Debug(ctx, "quote computed",
		logger.String("id", quote.ID),
		logger.String("base_usd", quote.Base.USD),
		logger.Int("rows", len(rows)),
		logger.Int("unavailable", unavailable),
		logger.String("fx_status", info.Status),
		logger.Duration("elapsed", elapsed),
	)
	return quote, nil
}

// obtainRates returns the rates a calculation should use. A fresh fetch is
// only committed to the shared snapshot when no newer fetch was issued
// meanwhile; the calling request still prices with what it fetched.
func (s *Service) obtainRates(ctx context.Context, reuse bool) (model.FxRateTable, types.FxInfo) {
	if reuse {
		snap := s.snapshots.Current(ctx)
		if snap.Status != model.FxStatusNone {
			info := snapshotInfo(snap)
			info.Reused = true
			return snap.Rates, info
		}
	}

	seq := s.snapshots.Begin(ctx)
	start := s.now()
	rates, err := s.fx.Latest(ctx)
	latency := float64(s.now().Sub(start).Milliseconds())

	if err != nil {
		committed := s.snapshots.Fail(ctx, seq, err)
		metrics.RecordFxFetch(fetchOutcome(metrics.OutcomeUnavailable, committed), latency)
		s.logger.Warn(ctx, "fx rates unavailable",
			logger.Uint64("sequence", seq),
			logger.Bool("committed", committed),
			logger.Error(err),
		)
		return nil, types.FxInfo{
			Status:     string(model.FxStatusUnavailable),
			Sequence:   seq,
			Superseded: !committed,
			Error:      err.Error(),
		}
	}

	committed := s.snapshots.Commit(ctx, seq, rates)
	metrics.RecordFxFetch(fetchOutcome(metrics.OutcomeOK, committed), latency)
	fetchedAt := s.now().UTC()
	if committed {
		metrics.UpdateFxSnapshot(fetchedAt, len(rates))
	} else {
		s.logger.Debug(ctx, "fx result superseded by a newer fetch", logger.Uint64("sequence", seq))
	}
	return rates, types.FxInfo{
		Status:     string(model.FxStatusOK),
		Sequence:   seq,
		FetchedAt:  &fetchedAt,
		Rates:      len(rates),
		Superseded: !committed,
	}
}

// RefreshRates forces a fetch and returns the resulting status.
func (s *Service) RefreshRates(ctx context.Context) types.FxInfo {
	_, info := s.obtainRates(ctx, false)
	return info
}

// FxStatus returns the current snapshot without fetching.
func (s *Service) FxStatus(ctx context.Context) types.FxInfo {
	return snapshotInfo(s.snapshots.Current(ctx))
}

// BasePrice runs base price inference only.
func (s *Service) BasePrice(_ context.Context, genre string, hours float64, manualUSD *float64) types.BasePrice {
	return toBasePrice(pricing.InferBaseUSD(genre, hours, manualUSD))
}

// Genres returns the genre table.
func (s *Service) Genres() []types.Genre {
	return lo.Map(pricing.Genres(), func(g pricing.GenreProfile, _ int) types.Genre {
		return types.Genre{ID: string(g.ID), Label: g.Label, BaseUSD: g.BaseUSD.StringFixed(2)}
	})
}

// Tiers returns the PPP tiers.
func (s *Service) Tiers() []types.Tier {
	return lo.Map(pricing.PppTiers(), func(t pricing.PppTier, _ int) types.Tier {
		return types.Tier{ID: string(t.ID), Label: t.Label, Factor: t.Factor.StringFixed(2)}
	})
}

func fetchOutcome(outcome string, committed bool) string {
	if !committed {
		return metrics.OutcomeStale
	}
	return outcome
}

func snapshotInfo(snap model.FxSnapshot) types.FxInfo {
	info := types.FxInfo{
		Status:   string(snap.Status),
		Sequence: snap.Sequence,
		Rates:    len(snap.Rates),
		Error:    snap.Err,
	}
	if !snap.FetchedAt.IsZero() {
		at := snap.FetchedAt.UTC()
		info.FetchedAt = &at
	}
	return info
}

func toBasePrice(b pricing.BasePrice) types.BasePrice {
	return types.BasePrice{
		USD:    b.USD.StringFixed(2),
		Reason: string(b.Reason),
		Genre:  string(b.Genre),
		Hours:  b.Hours,
	}
}

func toPriceRow(r pricing.RegionalPriceRow) types.PriceRow {
	return types.PriceRow{
		Country:      r.Country,
		CountryCode:  r.CountryCode,
		Currency:     string(r.Currency),
		PPPTier:      string(r.Tier),
		SuggestedUSD: r.SuggestedUSD.Round(4).String(),
		ListPrice:    r.ListPrice,
		SalePrice:    r.SalePrice,
	}
}
