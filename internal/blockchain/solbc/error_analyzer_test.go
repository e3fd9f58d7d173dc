package solbc

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/gagliardetto/solana-go/rpc/jsonrpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestErrorAnalyzer_ClassifySimulationFailure(t *testing.T) {
	ea := NewErrorAnalyzer(zaptest.NewLogger(t))

	rpcErr := &jsonrpc.RPCError{
		Code:    -32002,
		Message: "Transaction simulation failed: Error processing Instruction 2: custom program error: 0x1772",
		Data: map[string]interface{}{
			"logs": []interface{}{
				"Program 6EF8rrecthR5Dkzon8Nwu78hRvfCKubJ14M5uBEwF6P invoke [1]",
				"Program log: AnchorError occurred. Error Code: TooMuchSolRequired. Error Number: 6002. Error Message: slippage: Too much SOL required to buy the given amount of tokens..",
			},
		},
	}

	err := ea.Classify(fmt.Errorf("wrapped: %w", rpcErr))

	var pe *ProgramError
	require.True(t, errors.As(err, &pe))
	require.NotNil(t, pe.Anchor)
	assert.Equal(t, 6002, pe.Anchor.Code)
	assert.Equal(t, "TooMuchSolRequired", pe.Anchor.Name)
	assert.Contains(t, pe.Anchor.Msg, "Too much SOL required")
	assert.Len(t, pe.Logs, 2)
	assert.False(t, IsTransient(err))
}

func TestErrorAnalyzer_ClassifyBlockhash(t *testing.T) {
	ea := NewErrorAnalyzer(zaptest.NewLogger(t))

	err := ea.Classify(&jsonrpc.RPCError{Code: -32002, Message: "Transaction simulation failed: Blockhash not found"})
	assert.ErrorIs(t, err, ErrBlockhashNotFound)
	assert.True(t, IsTransient(err))
}

func TestErrorAnalyzer_ClassifyNetwork(t *testing.T) {
	ea := NewErrorAnalyzer(zaptest.NewLogger(t))

	err := ea.Classify(errors.New("dial tcp: i/o timeout"))
	assert.False(t, IsProgramError(err))
	assert.True(t, IsTransient(err))
	assert.Nil(t, ea.Classify(nil))
}

func TestIsTransient(t *testing.T) {
	assert.False(t, IsTransient(nil))
	assert.False(t, IsTransient(context.Canceled))
	assert.True(t, IsTransient(fmt.Errorf("%w: sig", ErrConfirmationTimeout)))
	assert.False(t, IsTransient(&ProgramError{Message: "custom program error"}))
}

func TestIsAccountNotFoundError(t *testing.T) {
	assert.True(t, IsAccountNotFoundError(errors.New("could not find account")))
	assert.False(t, IsAccountNotFoundError(errors.New("rate limited")))
	assert.False(t, IsAccountNotFoundError(nil))
}
