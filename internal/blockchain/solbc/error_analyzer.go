package solbc

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gagliardetto/solana-go/rpc/jsonrpc"
	"go.uber.org/zap"
)

var (
	ErrConfirmationTimeout = errors.New("confirmation timeout")
	ErrBlockhashNotFound   = errors.New("blockhash not found")
)

// AnchorError represents an error from Anchor framework
type AnchorError struct {
	Code int    `json:"code"`
	Name string `json:"name"`
	Msg  string `json:"msg"`
}

// ProgramError - отказ программы on-chain (симуляция или исполнение).
// Такие ошибки терминальные: повтор с теми же данными даст тот же результат.
type ProgramError struct {
	Message string
	Logs    []string
	Anchor  *AnchorError
	Err     error
}

func (e *ProgramError) Error() string {
	if e.Anchor != nil {
		return fmt.Sprintf("program error: %s (%s, code %d)", e.Message, e.Anchor.Name, e.Anchor.Code)
	}
	return "program error: " + e.Message
}

func (e *ProgramError) Unwrap() error { return e.Err }

// IsProgramError сообщает, что ошибка пришла от программы, а не от сети.
func IsProgramError(err error) bool {
	var pe *ProgramError
	return errors.As(err, &pe)
}

// IsTransient определяет ошибки, которые имеет смысл повторить:
// сетевые сбои, истёкший blockhash, таймаут подтверждения.
func IsTransient(err error) bool {
	if err == nil || IsProgramError(err) {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	return true
}

// ErrorAnalyzer provides methods to analyze Solana transaction errors
type ErrorAnalyzer struct {
	logger *zap.Logger
}

// NewErrorAnalyzer creates a new ErrorAnalyzer instance
func NewErrorAnalyzer(logger *zap.Logger) *ErrorAnalyzer {
	return &ErrorAnalyzer{
		logger: logger.Named("error-analyzer"),
	}
}

// Classify превращает ошибку отправки в ProgramError, если RPC вернул
// провал симуляции с логами; остальные ошибки возвращаются обёрнутыми как есть.
func (ea *ErrorAnalyzer) Classify(err error) error {
	if err == nil {
		return nil
	}

	var rpcErr *jsonrpc.RPCError
	if !errors.As(err, &rpcErr) {
		return fmt.Errorf("send transaction: %w", err)
	}

	if strings.Contains(rpcErr.Message, "Blockhash not found") {
		return fmt.Errorf("%w: %s", ErrBlockhashNotFound, rpcErr.Message)
	}

	if !strings.Contains(rpcErr.Message, "Transaction simulation failed") {
		return fmt.Errorf("send transaction: %w", err)
	}

	pe := &ProgramError{Message: rpcErr.Message, Err: err}

	// Extract simulation details from data
	if dataMap, ok := rpcErr.Data.(map[string]interface{}); ok {
		if logs, ok := dataMap["logs"].([]interface{}); ok {
			for _, entry := range logs {
				logStr, ok := entry.(string)
				if !ok {
					continue
				}
				pe.Logs = append(pe.Logs, logStr)
				if strings.Contains(logStr, "AnchorError occurred") {
					anchorErr := ea.parseAnchorErrorLog(logStr)
					pe.Anchor = &anchorErr
				}
			}
		}
	}

	if pe.Anchor != nil {
		ea.logger.Warn("Anchor error detected",
			zap.Int("code", pe.Anchor.Code),
			zap.String("name", pe.Anchor.Name),
			zap.String("message", pe.Anchor.Msg))
	}

	return pe
}

// parseAnchorErrorLog parses an Anchor error log string
// Example: "Program log: AnchorError occurred. Error Code: TooMuchSolRequired. Error Number: 6002. Error Message: slippage: Too much SOL required to buy the given amount of tokens.."
func (ea *ErrorAnalyzer) parseAnchorErrorLog(logStr string) AnchorError {
	result := AnchorError{}

	if _, after, ok := strings.Cut(logStr, "Error Number:"); ok {
		numPart, _, _ := strings.Cut(after, ".")
		fmt.Sscanf(strings.TrimSpace(numPart), "%d", &result.Code)
	}

	if _, after, ok := strings.Cut(logStr, "Error Code:"); ok {
		namePart, _, _ := strings.Cut(after, ".")
		result.Name = strings.TrimSpace(namePart)
	}

	if _, after, ok := strings.Cut(logStr, "Error Message:"); ok {
		result.Msg = strings.TrimSpace(strings.TrimRight(strings.TrimSpace(after), "."))
	}

	return result
}
