package types

import (
	"math"
	"testing"

	computebudget "github.com/gagliardetto/solana-go/programs/compute-budget"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestPriorityManager_Instructions(t *testing.T) {
	pm := NewPriorityManager(zaptest.NewLogger(t))

	ixs, err := pm.Instructions(ProfileCurveBuy)
	require.NoError(t, err)
	require.Len(t, ixs, 2)

	for _, ix := range ixs {
		assert.Equal(t, computebudget.ProgramID, ix.ProgramID())
	}

	_, err = pm.Instructions("unknown")
	assert.Error(t, err)
}

func TestSlippage(t *testing.T) {
	// 10% в базисных пунктах
	assert.Equal(t, uint64(900), MinOutWithSlippage(1000, 1000))
	assert.Equal(t, uint64(1100), MaxInWithSlippage(1000, 1000))
	assert.Equal(t, uint64(0), MinOutWithSlippage(1000, BasisPoints))

	// Большие значения не переполняются
	big := uint64(math.MaxUint64 / 2)
	assert.Less(t, MinOutWithSlippage(big, 100), big)
	assert.Greater(t, MaxInWithSlippage(big, 100), big)
}
