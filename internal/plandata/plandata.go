// Package plandata decodes the packed 32-byte plan record emitted by the
// subscription plans contract.
package plandata

import (
	"encoding/binary"
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"

	"github.com/cask-indexer/internal/units"
)

// Length is the fixed size of a packed plan record.
const Length = 32

const (
	optionCanPause    = 0x01
	optionCanTransfer = 0x02
)

// PlanInfo is the decoded plan record.
type PlanInfo struct {
	Price       decimal.Decimal
	PlanID      uint32
	Period      uint32
	FreeTrial   uint32
	MaxActive   uint32
	MinPeriods  uint16
	GracePeriod uint8
	CanPause    bool
	CanTransfer bool
}

// Parse decodes a packed plan record. Field layout, in byte offsets:
//
//	[0:12)  price (raw base-asset units, scaled by the vault's 6 decimals)
//	[12:16) planId
//	[16:20) period
//	[20:24) freeTrial
//	[24:28) maxActive
//	[28:30) minPeriods
//	[30:31) gracePeriod
//	[31:32) option flags (bit 0 canPause, bit 1 canTransfer)
//
// The record is packed big-endian by the contracts, so every multi-byte
// field is decoded big-endian individually; decoding the blob as one
// little-endian word would scramble the fields.
//
// Plan data always originates from validated on-chain state, so a record of
// the wrong length is a programming error, not input to recover from: Parse
// panics rather than silently truncating the price and period fields.
func Parse(data []byte) PlanInfo {
	if len(data) != Length {
		panic(fmt.Sprintf("plandata: packed plan record must be %d bytes, got %d", Length, len(data)))
	}

	rawPrice := new(big.Int).SetBytes(data[0:12])
	options := data[31]

	return PlanInfo{
		Price:       units.ScaleDown(rawPrice, units.VaultDecimals),
		PlanID:      binary.BigEndian.Uint32(data[12:16]),
		Period:      binary.BigEndian.Uint32(data[16:20]),
		FreeTrial:   binary.BigEndian.Uint32(data[20:24]),
		MaxActive:   binary.BigEndian.Uint32(data[24:28]),
		MinPeriods:  binary.BigEndian.Uint16(data[28:30]),
		GracePeriod: data[30],
		CanPause:    options&optionCanPause == optionCanPause,
		CanTransfer: options&optionCanTransfer == optionCanTransfer,
	}
}
