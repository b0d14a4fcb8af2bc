package dashboard

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/de-tools/pos-atlas/pkg/models/domain"
	"github.com/de-tools/pos-atlas/pkg/services/analytics"
	"github.com/de-tools/pos-atlas/pkg/services/derive"
	"github.com/de-tools/pos-atlas/pkg/services/loader"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const DefaultPreviewRows = 100

// CategoryCaveat accompanies the per-group category rankings.
const CategoryCaveat = "a category missing from a group's top list still has sales there; it only did not rank"

var ErrItemRequired = errors.New("co-occurrence view requires an item")

type Options struct {
	Labels          domain.LabelSet
	Comma           rune
	PreviewRows     int
	TopProducts     int
	TopCategories   int
	TopCooccurrence int
}

func DefaultOptions() Options {
	return Options{
		Labels:          domain.EnglishLabels,
		Comma:           ',',
		PreviewRows:     DefaultPreviewRows,
		TopProducts:     analytics.DefaultTopProducts,
		TopCategories:   analytics.DefaultTopCategories,
		TopCooccurrence: analytics.DefaultTopCooccurrence,
	}
}

type Service struct {
	engine analytics.Engine
	opts   Options
	now    func() time.Time
}

func NewService(engine analytics.Engine, opts Options) *Service {
	return &Service{
		engine: engine,
		opts:   opts,
		now:    time.Now,
	}
}

func (s *Service) Engine() analytics.Engine {
	return s.engine
}

// Load turns an uploaded export into a dataset attached to the engine. On any
// failure nothing is attached and the error is returned as produced by the
// loader or deriver.
func (s *Service) Load(ctx context.Context, r io.Reader, source string) (*domain.Dataset, error) {
	logger := zerolog.Ctx(ctx)

	table, err := loader.Load(r, loader.Options{Source: source, Comma: s.opts.Comma})
	if err != nil {
		logger.Warn().Err(err).Str("source", source).Msg("failed to load dataset")
		return nil, err
	}

	items, err := derive.Derive(table, s.opts.Labels)
	if err != nil {
		logger.Warn().Err(err).Str("source", source).Msg("failed to derive dataset")
		return nil, err
	}

	ds := domain.NewDataset(uuid.NewString(), source, s.opts.Labels, items, s.now().UTC())
	if err := s.engine.Attach(ctx, ds); err != nil {
		return nil, fmt.Errorf("attach dataset: %w", err)
	}

	logger.Info().
		Str("dataset", ds.ID()).
		Str("source", source).
		Int("rows", ds.Len()).
		Int("receipts", ds.ReceiptCount()).
		Int("items", ds.ItemCount()).
		Msg("dataset loaded")
	return ds, nil
}

// Discard detaches a dataset that never made it into a session.
func (s *Service) Discard(ctx context.Context, ds *domain.Dataset) {
	if err := s.engine.Detach(ctx, ds.ID()); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("dataset", ds.ID()).Msg("failed to discard dataset")
	}
}

// Render computes the tables of a single view. The dataset stays pinned in the
// engine for the whole render, so a concurrent replace waits for it.
func (s *Service) Render(ctx context.Context, ds *domain.Dataset, req domain.ViewRequest) (domain.ViewResult, error) {
	result := domain.ViewResult{View: req.View}

	release, err := s.engine.Acquire(ctx, ds.ID())
	if err != nil {
		return result, fmt.Errorf("render %s: %w", req.View, err)
	}
	defer release()

	switch req.View {
	case domain.ViewOverview:
		overview, err := s.engine.Overview(ctx, ds)
		if err != nil {
			return result, fmt.Errorf("overview: %w", err)
		}
		result.Overview = &overview
		result.Preview = ds.Head(s.opts.PreviewRows)

	case domain.ViewHourly:
		hourly, err := s.engine.Hourly(ctx, ds)
		if err != nil {
			return result, fmt.Errorf("hourly: %w", err)
		}
		result.Hourly = hourly

	case domain.ViewProductRanking:
		return s.renderProducts(ctx, ds, result)

	case domain.ViewDemographics:
		return s.renderDemographics(ctx, ds, result)

	case domain.ViewCooccurrence:
		if req.Item == "" {
			return result, ErrItemRequired
		}
		co, err := s.engine.Cooccurrence(ctx, ds, req.Item, s.opts.TopCooccurrence)
		if err != nil {
			return result, fmt.Errorf("co-occurrence: %w", err)
		}
		result.Cooccurrence = &co

	default:
		return result, fmt.Errorf("%w: %q", domain.ErrUnknownView, req.View)
	}

	return result, nil
}

func (s *Service) renderProducts(ctx context.Context, ds *domain.Dataset, result domain.ViewResult) (domain.ViewResult, error) {
	var err error
	if result.TopBySales, err = s.engine.TopProducts(ctx, ds, domain.RankBySales, s.opts.TopProducts); err != nil {
		return result, fmt.Errorf("top products by sales: %w", err)
	}
	if result.TopByQuantity, err = s.engine.TopProducts(ctx, ds, domain.RankByQuantity, s.opts.TopProducts); err != nil {
		return result, fmt.Errorf("top products by quantity: %w", err)
	}
	if result.Categories, err = s.engine.CategoryShares(ctx, ds); err != nil {
		return result, fmt.Errorf("category shares: %w", err)
	}
	return result, nil
}

func (s *Service) renderDemographics(ctx context.Context, ds *domain.Dataset, result domain.ViewResult) (domain.ViewResult, error) {
	var err error
	if result.Gender, err = s.engine.Demographics(ctx, ds, domain.DimensionGender); err != nil {
		return result, fmt.Errorf("gender breakdown: %w", err)
	}
	if result.Age, err = s.engine.Demographics(ctx, ds, domain.DimensionAge); err != nil {
		return result, fmt.Errorf("age breakdown: %w", err)
	}
	if result.GenderTopCategories, err = s.engine.TopCategories(ctx, ds, domain.DimensionGender, s.opts.TopCategories); err != nil {
		return result, fmt.Errorf("top categories by gender: %w", err)
	}
	if result.AgeTopCategories, err = s.engine.TopCategories(ctx, ds, domain.DimensionAge, s.opts.TopCategories); err != nil {
		return result, fmt.Errorf("top categories by age: %w", err)
	}
	result.Notes = append(result.Notes, CategoryCaveat)
	return result, nil
}
