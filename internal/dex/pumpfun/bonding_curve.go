// ==============================================
// File: internal/dex/pumpfun/bonding_curve.go
// ==============================================
package pumpfun

import (
	"bytes"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

// BondingCurveDiscriminator - первые 8 байт аккаунта BondingCurve (Anchor).
var BondingCurveDiscriminator = []byte{0x17, 0xb7, 0xf8, 0x37, 0x60, 0xd8, 0xac, 0x60}

const (
	// discriminator + 5*u64 + bool
	bondingCurveMinSize = 49
	// + creator pubkey
	bondingCurveWithCreatorSize = 81
)

// DecodeBondingCurve разбирает сырые байты аккаунта bonding curve.
// Для пустых, коротких данных или чужого дискриминатора возвращает nil:
// отсутствие кривой - нормальная ситуация, а не ошибка.
// Если в данных нет поля creator, используется defaultCreator.
func DecodeBondingCurve(data []byte, defaultCreator solana.PublicKey) *BondingCurveState {
	if len(data) < bondingCurveMinSize {
		return nil
	}
	if !bytes.Equal(data[:8], BondingCurveDiscriminator) {
		return nil
	}

	dec := bin.NewBinDecoder(data[8:])
	state := &BondingCurveState{Creator: defaultCreator}

	fields := []*uint64{
		&state.VirtualTokenReserves,
		&state.VirtualSolReserves,
		&state.RealTokenReserves,
		&state.RealSolReserves,
		&state.TokenTotalSupply,
	}
	for _, field := range fields {
		v, err := dec.ReadUint64(bin.LE)
		if err != nil {
			return nil
		}
		*field = v
	}

	complete, err := dec.ReadByte()
	if err != nil {
		return nil
	}
	state.Complete = complete == 1

	if len(data) >= bondingCurveWithCreatorSize {
		raw, err := dec.ReadNBytes(solana.PublicKeyLength)
		if err != nil {
			return nil
		}
		state.Creator = solana.PublicKeyFromBytes(raw)
	}

	return state
}
