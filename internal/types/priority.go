package types

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	computebudget "github.com/gagliardetto/solana-go/programs/compute-budget"
	"go.uber.org/zap"
)

// PriorityProfile - набор compute-budget параметров для конкретной операции.
type PriorityProfile string

const (
	ProfileCurveBuy   PriorityProfile = "curve_buy"
	ProfileCurveSell  PriorityProfile = "curve_sell"
	ProfileCurveClaim PriorityProfile = "curve_claim"
	ProfileAMMClaim   PriorityProfile = "amm_claim"
	ProfileTransfer   PriorityProfile = "transfer"
	ProfileATACreate  PriorityProfile = "ata_create"
)

type PriorityConfig struct {
	ComputeUnits uint32 // Number of compute units
	PriorityFee  uint64 // Priority fee in micro-lamports
}

type PriorityManager struct {
	profiles map[PriorityProfile]*PriorityConfig
	logger   *zap.Logger
}

func NewPriorityManager(logger *zap.Logger) *PriorityManager {
	return &PriorityManager{
		profiles: map[PriorityProfile]*PriorityConfig{
			ProfileCurveBuy:   {ComputeUnits: 400_000, PriorityFee: 100_000},
			ProfileCurveSell:  {ComputeUnits: 200_000, PriorityFee: 50_000},
			ProfileCurveClaim: {ComputeUnits: 100_000, PriorityFee: 100_000},
			ProfileAMMClaim:   {ComputeUnits: 150_000, PriorityFee: 50_000},
			ProfileTransfer:   {ComputeUnits: 100_000, PriorityFee: 25_000},
			ProfileATACreate:  {ComputeUnits: 50_000, PriorityFee: 25_000},
		},
		logger: logger,
	}
}

// Instructions возвращает пару compute-budget инструкций для профиля.
func (pm *PriorityManager) Instructions(profile PriorityProfile) ([]solana.Instruction, error) {
	config, ok := pm.profiles[profile]
	if !ok {
		return nil, fmt.Errorf("unknown priority profile: %s", profile)
	}
	return pm.createInstructions(config), nil
}

func (pm *PriorityManager) createInstructions(config *PriorityConfig) []solana.Instruction {
	var instructions []solana.Instruction

	if config.ComputeUnits > 0 {
		instructions = append(instructions,
			computebudget.NewSetComputeUnitLimitInstruction(config.ComputeUnits).Build())
	}
	if config.PriorityFee > 0 {
		instructions = append(instructions,
			computebudget.NewSetComputeUnitPriceInstruction(config.PriorityFee).Build())
	}

	return instructions
}
