package console

import (
	"github.com/goldenbao/jinvault/internal/domain"
	"github.com/goldenbao/jinvault/internal/fees"
	"github.com/goldenbao/jinvault/internal/service"
)

// statusMsg - результат обновления состояния кошелька и тиров.
type statusMsg struct {
	Status  service.Status
	Major   int
	Medium  int
	TierErr error
}

// claimMsg - результат ручного сбора комиссий.
type claimMsg struct {
	Result *fees.ClaimResult
	Err    error
}

// distributionMsg - результат цикла распределения.
type distributionMsg struct {
	Record *domain.DistributionRecord
	Err    error
}
