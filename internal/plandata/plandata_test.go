package plandata

import (
	"encoding/binary"
	"math/big"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/shopspring/decimal"
)

// packPlan builds a 32-byte record the way the contracts do (big-endian).
func packPlan(price *big.Int, planID, period, freeTrial, maxActive uint32, minPeriods uint16, gracePeriod, options uint8) []byte {
	data := make([]byte, Length)
	price.FillBytes(data[0:12])
	binary.BigEndian.PutUint32(data[12:16], planID)
	binary.BigEndian.PutUint32(data[16:20], period)
	binary.BigEndian.PutUint32(data[20:24], freeTrial)
	binary.BigEndian.PutUint32(data[24:28], maxActive)
	binary.BigEndian.PutUint16(data[28:30], minPeriods)
	data[30] = gracePeriod
	data[31] = options
	return data
}

func TestParse(t *testing.T) {
	data := packPlan(big.NewInt(1000000), 100, 2592000, 604800, 500, 3, 7, 0x03)

	info := Parse(data)

	if !info.Price.Equal(decimal.NewFromInt(1)) {
		t.Errorf("Price = %s, want 1", info.Price)
	}
	if info.PlanID != 100 {
		t.Errorf("PlanID = %d, want 100", info.PlanID)
	}
	if info.Period != 2592000 {
		t.Errorf("Period = %d, want 2592000", info.Period)
	}
	if info.FreeTrial != 604800 {
		t.Errorf("FreeTrial = %d, want 604800", info.FreeTrial)
	}
	if info.MaxActive != 500 {
		t.Errorf("MaxActive = %d, want 500", info.MaxActive)
	}
	if info.MinPeriods != 3 {
		t.Errorf("MinPeriods = %d, want 3", info.MinPeriods)
	}
	if info.GracePeriod != 7 {
		t.Errorf("GracePeriod = %d, want 7", info.GracePeriod)
	}
	if !info.CanPause || !info.CanTransfer {
		t.Errorf("options = (%v, %v), want both true", info.CanPause, info.CanTransfer)
	}
}

func TestParseOptionBits(t *testing.T) {
	tests := []struct {
		name        string
		options     uint8
		canPause    bool
		canTransfer bool
	}{
		{name: "none", options: 0x00},
		{name: "pause only", options: 0x01, canPause: true},
		{name: "transfer only", options: 0x02, canTransfer: true},
		{name: "both", options: 0x03, canPause: true, canTransfer: true},
		{name: "unknown high bits ignored", options: 0xfc},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := Parse(packPlan(big.NewInt(0), 0, 0, 0, 0, 0, 0, tt.options))
			if info.CanPause != tt.canPause {
				t.Errorf("CanPause = %v, want %v", info.CanPause, tt.canPause)
			}
			if info.CanTransfer != tt.canTransfer {
				t.Errorf("CanTransfer = %v, want %v", info.CanTransfer, tt.canTransfer)
			}
		})
	}
}

func TestParseFractionalPrice(t *testing.T) {
	info := Parse(packPlan(big.NewInt(1), 1, 1, 0, 0, 0, 0, 0))
	want, _ := decimal.NewFromString("0.000001")
	if !info.Price.Equal(want) {
		t.Errorf("Price = %s, want %s", info.Price, want)
	}
}

func TestParsePanicsOnShortInput(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on short input")
		}
	}()
	Parse(make([]byte, 31))
}

func TestParsePanicsOnLongInput(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on long input")
		}
	}()
	Parse(make([]byte, 33))
}

// Property: packing then parsing recovers every field for arbitrary values.
func TestParseRoundTrip(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("pack/parse round trip", prop.ForAll(
		func(price int64, planID, period, freeTrial, maxActive uint32, minPeriods uint16, gracePeriod, options uint8) bool {
			info := Parse(packPlan(big.NewInt(price), planID, period, freeTrial, maxActive, minPeriods, gracePeriod, options))
			return info.Price.Equal(decimal.NewFromBigInt(big.NewInt(price), -6)) &&
				info.PlanID == planID &&
				info.Period == period &&
				info.FreeTrial == freeTrial &&
				info.MaxActive == maxActive &&
				info.MinPeriods == minPeriods &&
				info.GracePeriod == gracePeriod &&
				info.CanPause == (options&0x01 == 0x01) &&
				info.CanTransfer == (options&0x02 == 0x02)
		},
		gen.Int64Range(0, 1<<62),
		gen.UInt32(),
		gen.UInt32(),
		gen.UInt32(),
		gen.UInt32(),
		gen.UInt16(),
		gen.UInt8(),
		gen.UInt8(),
	))

	properties.TestingRun(t)
}
