// internal/api/admin.go
package api

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/goldenbao/jinvault/internal/distribution"
	"github.com/goldenbao/jinvault/internal/domain"
	"github.com/goldenbao/jinvault/internal/events"
	"github.com/goldenbao/jinvault/internal/service"
	applog "github.com/goldenbao/jinvault/internal/utils/logger"
)

const enableNote = "To enable: Add CREATOR_WALLET_PRIVATE_KEY and TOKEN_CONTRACT_ADDRESS secrets."

type loginRequest struct {
	Password string `json:"password"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if s.adminPassword == "" {
		writeError(w, http.StatusInternalServerError, "Admin password not configured")
		return
	}

	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if subtle.ConstantTimeCompare([]byte(req.Password), []byte(s.adminPassword)) != 1 {
		s.logger.Warn("Admin login rejected", zap.String("remote", r.RemoteAddr))
		writeError(w, http.StatusUnauthorized, "Invalid password")
		return
	}

	token, err := s.sessions.Create()
	if err != nil {
		s.logger.Error("Failed to create session", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to create session")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "token": token})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Revoke(bearerToken(r)); err != nil {
		s.logger.Warn("Failed to revoke session", zap.Error(err))
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

type statusResponse struct {
	WalletConfigured bool            `json:"walletConfigured"`
	TokenConfigured  bool            `json:"tokenConfigured"`
	SystemReady      bool            `json:"systemReady"`
	BlockchainOn     bool            `json:"blockchainEnabled"`
	WalletAddress    *string         `json:"walletAddress"`
	SOLBalance       decimal.Decimal `json:"solBalance"`
	Running          bool            `json:"distributionRunning"`
	Error            string          `json:"error,omitempty"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	st := s.chain.Status(r.Context())
	resp := statusResponse{
		WalletConfigured: st.WalletConfigured,
		TokenConfigured:  st.TokenConfigured,
		SystemReady:      st.Ready,
		BlockchainOn:     st.Enabled,
		SOLBalance:       st.SOLBalance,
		Running:          s.chain.DistributionRunning(),
		Error:            st.Error,
	}
	if st.WalletAddress != "" {
		resp.WalletAddress = &st.WalletAddress
	}
	writeJSON(w, http.StatusOK, resp)
}

type configResponse struct {
	domain.ProtocolConfig
	GoldMint  string `json:"goldMint"`
	TokenMint string `json:"tokenMint"`
}

func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.store.GetProtocolConfig(r.Context())
	if err != nil {
		s.logger.Error("Failed to load protocol config", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to load config")
		return
	}
	writeJSON(w, http.StatusOK, configResponse{ProtocolConfig: cfg, GoldMint: s.goldMint, TokenMint: s.tokenMint})
}

// configPatch - частичное обновление; отсутствующие поля не меняются.
type configPatch struct {
	MajorHoldersPercentage  *float64 `json:"majorHoldersPercentage"`
	MediumHoldersPercentage *float64 `json:"mediumHoldersPercentage"`
	BuybackPercentage       *float64 `json:"buybackPercentage"`
	MajorMinPercentage      *float64 `json:"minimumHolderPercentage"`
	MediumMinPercentage     *float64 `json:"mediumHolderMinPercentage"`
}

func (p configPatch) apply(cfg domain.ProtocolConfig) domain.ProtocolConfig {
	set := func(dst *float64, v *float64) {
		if v != nil {
			*dst = *v
		}
	}
	set(&cfg.MajorHoldersPercentage, p.MajorHoldersPercentage)
	set(&cfg.MediumHoldersPercentage, p.MediumHoldersPercentage)
	set(&cfg.BuybackPercentage, p.BuybackPercentage)
	set(&cfg.MajorMinPercentage, p.MajorMinPercentage)
	set(&cfg.MediumMinPercentage, p.MediumMinPercentage)
	return cfg
}

func (s *Server) handlePatchConfig(w http.ResponseWriter, r *http.Request) {
	var patch configPatch
	if err := decodeJSON(r, &patch); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	current, err := s.store.GetProtocolConfig(r.Context())
	if err != nil {
		s.logger.Error("Failed to load protocol config", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to load config")
		return
	}

	updated := patch.apply(current)
	if err := distribution.ValidateConfig(updated); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.store.UpdateProtocolConfig(r.Context(), updated); err != nil {
		s.logger.Error("Failed to save protocol config", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to save config")
		return
	}

	s.publish(events.NewConfigUpdated(updated))
	s.logger.Info("Protocol config updated",
		zap.Float64("major_pct", updated.MajorHoldersPercentage),
		zap.Float64("medium_pct", updated.MediumHoldersPercentage),
		zap.Float64("buyback_pct", updated.BuybackPercentage))
	writeJSON(w, http.StatusOK, configResponse{ProtocolConfig: updated, GoldMint: s.goldMint, TokenMint: s.tokenMint})
}

func (s *Server) handleClaimFees(w http.ResponseWriter, r *http.Request) {
	if init := s.chain.Initialize(r.Context()); !init.Ready {
		writeJSON(w, http.StatusOK, map[string]any{"success": false, "message": init.Error, "note": enableNote})
		return
	}

	log := applog.WithOperation(s.logger, "claim_fees")
	res, err := s.chain.ClaimFees(context.WithoutCancel(r.Context()))
	if err != nil {
		log.Warn("Manual fee claim failed", zap.Error(err))
		writeJSON(w, http.StatusOK, map[string]any{"success": false, "amount": decimal.Zero, "message": err.Error()})
		return
	}

	msg := "Fees claimed successfully"
	if !res.Claimed() {
		msg = res.Message
	} else {
		log.Info("Fees claimed",
			zap.String("source", string(res.Source)),
			zap.String("amount", res.Amount.String()),
			zap.String("signature", res.Signature.String()))
		s.publish(events.NewFeesClaimed(string(res.Source), res.Amount.String(), res.Signature.String()))
	}
	resp := map[string]any{"success": true, "amount": res.Amount, "message": msg}
	if res.Claimed() {
		resp["txSignature"] = res.Signature.String()
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleExecute(w http.ResponseWriter, r *http.Request) {
	// Цикл не прерывается, если клиент отключился
	rec, err := s.runner.Run(context.WithoutCancel(r.Context()), service.TriggerManual)
	switch {
	case errors.Is(err, distribution.ErrCycleInProgress):
		writeError(w, http.StatusConflict, "Distribution already in progress")
	case errors.Is(err, service.ErrNotReady), errors.Is(err, service.ErrDisabled):
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{"success": false, "error": err.Error(), "note": enableNote})
	case err != nil:
		s.logger.Error("Distribution failed to start", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to execute distribution")
	default:
		writeJSON(w, http.StatusOK, rec)
	}
}

type holdersResponse struct {
	MajorHolders  []domain.HolderInfo `json:"majorHolders"`
	MediumHolders []domain.HolderInfo `json:"mediumHolders"`
	Error         string              `json:"error,omitempty"`
}

func (s *Server) handleTestHolders(w http.ResponseWriter, r *http.Request) {
	resp := holdersResponse{MajorHolders: []domain.HolderInfo{}, MediumHolders: []domain.HolderInfo{}}

	cfg, err := s.store.GetProtocolConfig(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load config")
		return
	}
	tiers, err := s.chain.HoldersByTier(r.Context(), cfg)
	if err != nil {
		resp.Error = err.Error()
		writeJSON(w, http.StatusOK, resp)
		return
	}
	if tiers.Major != nil {
		resp.MajorHolders = tiers.Major
	}
	if tiers.Medium != nil {
		resp.MediumHolders = tiers.Medium
	}
	writeJSON(w, http.StatusOK, resp)
}

type amountRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

// readAmount разбирает {amount} и пишет 400, если сумма не положительна.
func readAmount(w http.ResponseWriter, r *http.Request, unit string) (decimal.Decimal, bool) {
	var req amountRequest
	if err := decodeJSON(r, &req); err != nil || !req.Amount.IsPositive() {
		writeError(w, http.StatusBadRequest, "Invalid amount. Provide a positive "+unit+" amount.")
		return decimal.Zero, false
	}
	return req.Amount, true
}

func (s *Server) handleTestBuyback(w http.ResponseWriter, r *http.Request) {
	amount, ok := readAmount(w, r, "SOL")
	if !ok {
		return
	}
	log := applog.WithOperation(s.logger, "test_buyback")
	log.Info("Test buyback requested", zap.String("sol", amount.String()))

	res, err := s.chain.TestBuyback(context.WithoutCancel(r.Context()), amount)
	resp := map[string]any{"success": err == nil, "solSpent": amount, "tokensReceived": decimal.Zero}
	if err != nil {
		log.Warn("Swap failed", zap.Error(err))
		resp["error"] = err.Error()
	} else {
		resp["tokensReceived"] = res.AmountOutUI
		resp["txSignature"] = res.Signature.String()
		resp["route"] = res.Route
		s.publish(events.NewSwapExecuted("buyback", string(res.Route), res.AmountOutUI.String(), res.Signature.String()))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleTestSell(w http.ResponseWriter, r *http.Request) {
	amount, ok := readAmount(w, r, "token")
	if !ok {
		return
	}
	log := applog.WithOperation(s.logger, "test_sell")
	log.Info("Test sell requested", zap.String("tokens", amount.String()))

	res, err := s.chain.SellToken(context.WithoutCancel(r.Context()), amount)
	resp := map[string]any{"success": err == nil, "tokensSold": amount, "solReceived": decimal.Zero}
	if err != nil {
		log.Warn("Swap failed", zap.Error(err))
		resp["error"] = err.Error()
	} else {
		resp["solReceived"] = res.AmountOutUI
		resp["txSignature"] = res.Signature.String()
		resp["route"] = res.Route
		s.publish(events.NewSwapExecuted("sell", string(res.Route), res.AmountOutUI.String(), res.Signature.String()))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleTestBuyGold(w http.ResponseWriter, r *http.Request) {
	amount, ok := readAmount(w, r, "SOL")
	if !ok {
		return
	}
	log := applog.WithOperation(s.logger, "test_buy_gold")
	log.Info("Test GOLD purchase requested", zap.String("sol", amount.String()))

	res, err := s.chain.SwapSOLForGold(context.WithoutCancel(r.Context()), amount)
	resp := map[string]any{"success": err == nil, "solSpent": amount, "goldReceived": decimal.Zero}
	if err != nil {
		log.Warn("Swap failed", zap.Error(err))
		resp["error"] = err.Error()
	} else {
		resp["goldReceived"] = res.AmountOutUI
		resp["txSignature"] = res.Signature.String()
		s.publish(events.NewSwapExecuted("buy-gold", string(res.Route), res.AmountOutUI.String(), res.Signature.String()))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleTokenBalance(w http.ResponseWriter, r *http.Request) {
	if init := s.chain.Initialize(r.Context()); !init.Ready {
		writeJSON(w, http.StatusOK, map[string]any{"balance": decimal.Zero, "error": init.Error})
		return
	}
	balance, err := s.chain.TokenBalance(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"balance": balance})
}

// publish отправляет событие на шину, не блокируясь.
func (s *Server) publish(e events.Event) {
	if s.bus == nil {
		return
	}
	if err := s.bus.Publish(e); err != nil {
		s.logger.Warn("Event not published", zap.String("event_type", string(e.Type())), zap.Error(err))
	}
}
