// ==============================================
// File: internal/dex/pumpfun/instructions.go
// ==============================================
package pumpfun

import (
	"encoding/binary"

	"github.com/gagliardetto/solana-go"
)

// Anchor-дискриминаторы инструкций Pump.fun
var (
	BuyDiscriminator               = []byte{102, 6, 61, 18, 1, 218, 235, 234}
	SellDiscriminator              = []byte{51, 230, 133, 164, 1, 127, 131, 173}
	CollectCreatorFeeDiscriminator = []byte{20, 22, 86, 123, 198, 28, 219, 132}
)

// BuildBuyInstruction builds a buy instruction for Pump.fun protocol.
// Data: discriminator + u64 amount + u64 max_sol_cost + u8 track_volume (None) = 25 байт.
func BuildBuyInstruction(accounts *TradeAccounts, amount, maxSolCost uint64) solana.Instruction {
	data := make([]byte, 0, 25)
	data = append(data, BuyDiscriminator...)
	data = binary.LittleEndian.AppendUint64(data, amount)
	data = binary.LittleEndian.AppendUint64(data, maxSolCost)
	data = append(data, 0)

	// Account list must be in the exact order expected by the program
	insAccounts := []*solana.AccountMeta{
		{PublicKey: accounts.Global, IsSigner: false, IsWritable: false},
		{PublicKey: accounts.FeeRecipient, IsSigner: false, IsWritable: true},
		{PublicKey: accounts.Mint, IsSigner: false, IsWritable: false},
		{PublicKey: accounts.BondingCurve, IsSigner: false, IsWritable: true},
		{PublicKey: accounts.AssociatedBondingCurve, IsSigner: false, IsWritable: true},
		{PublicKey: accounts.AssociatedUser, IsSigner: false, IsWritable: true},
		{PublicKey: accounts.User, IsSigner: true, IsWritable: true},
		{PublicKey: solana.SystemProgramID, IsSigner: false, IsWritable: false},
		{PublicKey: accounts.TokenProgram, IsSigner: false, IsWritable: false},
		{PublicKey: accounts.CreatorVault, IsSigner: false, IsWritable: true},
		{PublicKey: accounts.EventAuthority, IsSigner: false, IsWritable: false},
		{PublicKey: accounts.Program, IsSigner: false, IsWritable: false},
		{PublicKey: accounts.GlobalVolumeAccumulator, IsSigner: false, IsWritable: false},
		{PublicKey: accounts.UserVolumeAccumulator, IsSigner: false, IsWritable: true},
		{PublicKey: accounts.FeeConfig, IsSigner: false, IsWritable: false},
		{PublicKey: accounts.FeeProgram, IsSigner: false, IsWritable: false},
	}

	return solana.NewInstruction(accounts.Program, insAccounts, data)
}

// BuildSellInstruction builds a sell instruction for Pump.fun protocol.
// Data: discriminator + u64 amount + u64 min_sol_output = 24 байта.
func BuildSellInstruction(accounts *TradeAccounts, amount, minSolOutput uint64) solana.Instruction {
	data := make([]byte, 0, 24)
	data = append(data, SellDiscriminator...)
	data = binary.LittleEndian.AppendUint64(data, amount)
	data = binary.LittleEndian.AppendUint64(data, minSolOutput)

	insAccounts := []*solana.AccountMeta{
		{PublicKey: accounts.Global, IsSigner: false, IsWritable: false},
		{PublicKey: accounts.FeeRecipient, IsSigner: false, IsWritable: true},
		{PublicKey: accounts.Mint, IsSigner: false, IsWritable: false},
		{PublicKey: accounts.BondingCurve, IsSigner: false, IsWritable: true},
		{PublicKey: accounts.AssociatedBondingCurve, IsSigner: false, IsWritable: true},
		{PublicKey: accounts.AssociatedUser, IsSigner: false, IsWritable: true},
		{PublicKey: accounts.User, IsSigner: true, IsWritable: true},
		{PublicKey: solana.SystemProgramID, IsSigner: false, IsWritable: false},
		{PublicKey: accounts.TokenProgram, IsSigner: false, IsWritable: false},
		{PublicKey: accounts.EventAuthority, IsSigner: false, IsWritable: false},
		{PublicKey: accounts.Program, IsSigner: false, IsWritable: false},
	}

	return solana.NewInstruction(accounts.Program, insAccounts, data)
}

// BuildCollectCreatorFeeInstruction переводит накопленные комиссии из
// creator vault на кошелёк создателя.
func BuildCollectCreatorFeeInstruction(creator, creatorVault, eventAuthority, programID solana.PublicKey) solana.Instruction {
	data := make([]byte, len(CollectCreatorFeeDiscriminator))
	copy(data, CollectCreatorFeeDiscriminator)

	insAccounts := []*solana.AccountMeta{
		{PublicKey: creator, IsSigner: true, IsWritable: true},
		{PublicKey: creatorVault, IsSigner: false, IsWritable: true},
		{PublicKey: solana.SystemProgramID, IsSigner: false, IsWritable: false},
		{PublicKey: eventAuthority, IsSigner: false, IsWritable: false},
		{PublicKey: programID, IsSigner: false, IsWritable: false},
	}

	return solana.NewInstruction(programID, insAccounts, data)
}
