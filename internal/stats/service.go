package stats

import (
	"context"

	"golang.org/x/sync/errgroup"
)

const recentLimit = 10

// Service coordinates dashboard rollups with the cache layer.
type Service struct {
	repo              Repository
	cache             *Cache
	lowStockThreshold int64
}

// NewService wires a Repository with a Cache helper. cache may be nil,
// in which case every call hits the store.
func NewService(repo Repository, cache *Cache, lowStockThreshold int64) *Service {
	if lowStockThreshold <= 0 {
		lowStockThreshold = 10
	}
	return &Service{repo: repo, cache: cache, lowStockThreshold: lowStockThreshold}
}

// Overview returns the dashboard rollup, cached until the next posting
// bumps the cache version.
func (s *Service) Overview(ctx context.Context) (Overview, error) {
	key, err := s.cache.BuildKey(ctx, "stats", "overview")
	if err != nil {
		return Overview{}, err
	}
	var overview Overview
	err = s.cache.FetchJSON(ctx, key, &overview, func(ctx context.Context) (interface{}, error) {
		return s.load(ctx)
	})
	return overview, err
}

func (s *Service) load(ctx context.Context) (Overview, error) {
	var overview Overview

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		count, err := s.repo.CountProducts(ctx)
		overview.TotalProducts = count
		return err
	})
	g.Go(func() error {
		count, err := s.repo.CountSales(ctx)
		overview.TotalSales = count
		return err
	})
	g.Go(func() error {
		revenue, profit, err := s.repo.SalesTotals(ctx)
		overview.TotalRevenue = revenue
		overview.TotalProfit = profit
		return err
	})
	g.Go(func() error {
		cost, err := s.repo.PurchaseCost(ctx)
		overview.TotalCost = cost
		return err
	})
	g.Go(func() error {
		low, err := s.repo.LowStock(ctx, s.lowStockThreshold)
		overview.LowStockProducts = low
		return err
	})
	g.Go(func() error {
		recent, err := s.repo.RecentSales(ctx, recentLimit)
		overview.RecentSales = recent
		return err
	})
	g.Go(func() error {
		recent, err := s.repo.RecentPurchases(ctx, recentLimit)
		overview.RecentPurchases = recent
		return err
	})
	g.Go(func() error {
		byCategory, err := s.repo.SalesByCategory(ctx)
		overview.SalesByCategory = byCategory
		return err
	})
	if err := g.Wait(); err != nil {
		return Overview{}, err
	}
	return overview, nil
}

// LowStock exposes the low-stock scan for background jobs. A threshold of
// zero or less falls back to the configured default.
func (s *Service) LowStock(ctx context.Context, threshold int64) ([]LowStockAlert, error) {
	if threshold <= 0 {
		threshold = s.lowStockThreshold
	}
	low, err := s.repo.LowStock(ctx, threshold)
	if err != nil {
		return nil, err
	}
	alerts := make([]LowStockAlert, 0, len(low))
	for _, p := range low {
		alerts = append(alerts, LowStockAlert{
			ProductID:    p.ID,
			Name:         p.Name,
			Stock:        p.Stock,
			SellingPrice: p.SellingPrice,
		})
	}
	return alerts, nil
}

// LowStockAlert is the job-facing projection of a product running low.
type LowStockAlert struct {
	ProductID    int64
	Name         string
	Stock        int64
	SellingPrice float64
}
