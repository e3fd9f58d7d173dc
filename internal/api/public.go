// internal/api/public.go
package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/goldenbao/jinvault/internal/domain"
	"github.com/goldenbao/jinvault/internal/storage"
)

type statsResponse struct {
	TotalDistributions        int             `json:"totalDistributions"`
	SuccessfulDistributions   int             `json:"successfulDistributions"`
	TotalFeesClaimed          decimal.Decimal `json:"totalFeesClaimed"`
	TotalGoldDistributed      decimal.Decimal `json:"totalGoldDistributed"`
	TotalTokenBuyback         decimal.Decimal `json:"totalTokenBuyback"`
	LastDistribution          *time.Time      `json:"lastDistribution"`
	GoldMint                  string          `json:"goldMint"`
	TokenMint                 string          `json:"tokenMint"`
	MajorHoldersPercentage    float64         `json:"majorHoldersPercentage"`
	MediumHoldersPercentage   float64         `json:"mediumHoldersPercentage"`
	BuybackPercentage         float64         `json:"buybackPercentage"`
	MinimumHolderPercentage   float64         `json:"minimumHolderPercentage"`
	MediumHolderMinPercentage float64         `json:"mediumHolderMinPercentage"`
}

// handlePublicStats всегда отвечает 200: при ошибке хранилища отдаются нули
// и конфигурация по умолчанию.
func (s *Server) handlePublicStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.store.Stats(r.Context())
	if err != nil {
		s.logger.Warn("Stats unavailable, using defaults", zap.Error(err))
		stats = &domain.Stats{
			TotalFeesClaimed:   decimal.Zero,
			TotalGoldPurchased: decimal.Zero,
			TotalTokenBuyback:  decimal.Zero,
		}
	}
	cfg, err := s.store.GetProtocolConfig(r.Context())
	if err != nil {
		s.logger.Warn("Protocol config unavailable, using defaults", zap.Error(err))
		cfg = domain.DefaultProtocolConfig()
	}

	writeJSON(w, http.StatusOK, statsResponse{
		TotalDistributions:        stats.TotalDistributions,
		SuccessfulDistributions:   stats.SuccessfulRuns,
		TotalFeesClaimed:          stats.TotalFeesClaimed,
		TotalGoldDistributed:      stats.TotalGoldPurchased,
		TotalTokenBuyback:         stats.TotalTokenBuyback,
		LastDistribution:          stats.LastDistribution,
		GoldMint:                  s.goldMint,
		TokenMint:                 s.tokenMint,
		MajorHoldersPercentage:    cfg.MajorHoldersPercentage,
		MediumHoldersPercentage:   cfg.MediumHoldersPercentage,
		BuybackPercentage:         cfg.BuybackPercentage,
		MinimumHolderPercentage:   cfg.MajorMinPercentage,
		MediumHolderMinPercentage: cfg.MediumMinPercentage,
	})
}

func (s *Server) handleListDistributions(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = n
	}

	records, err := s.store.ListDistributions(r.Context(), limit)
	if err != nil {
		s.logger.Error("Failed to list distributions", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to list distributions")
		return
	}
	if records == nil {
		records = []*domain.DistributionRecord{}
	}
	writeJSON(w, http.StatusOK, records)
}

type distributionResponse struct {
	*domain.DistributionRecord
	Holders []domain.HolderSnapshot `json:"holders"`
}

func (s *Server) handleGetDistribution(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	rec, err := s.store.GetDistribution(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Distribution not found")
		return
	}
	if err != nil {
		s.logger.Error("Failed to load distribution", zap.String("id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to load distribution")
		return
	}

	holders, err := s.store.GetHolderSnapshots(r.Context(), id)
	if err != nil {
		s.logger.Warn("Failed to load holder snapshots", zap.String("id", id), zap.Error(err))
	}
	if holders == nil {
		holders = []domain.HolderSnapshot{}
	}
	writeJSON(w, http.StatusOK, distributionResponse{DistributionRecord: rec, Holders: holders})
}
