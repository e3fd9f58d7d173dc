package pumpfun

import (
	"bytes"

	bin "github.com/gagliardetto/binary"
)

// encodeBondingCurve сериализует состояние в формат аккаунта, включая creator.
func encodeBondingCurve(state *BondingCurveState) ([]byte, error) {
	buf := new(bytes.Buffer)
	enc := bin.NewBinEncoder(buf)

	if err := enc.WriteBytes(BondingCurveDiscriminator, false); err != nil {
		return nil, err
	}
	for _, v := range []uint64{
		state.VirtualTokenReserves,
		state.VirtualSolReserves,
		state.RealTokenReserves,
		state.RealSolReserves,
		state.TokenTotalSupply,
	} {
		if err := enc.WriteUint64(v, bin.LE); err != nil {
			return nil, err
		}
	}
	if err := enc.WriteBool(state.Complete); err != nil {
		return nil, err
	}
	if err := enc.WriteBytes(state.Creator.Bytes(), false); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
