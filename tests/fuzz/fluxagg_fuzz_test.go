package fuzz

import (
	"encoding/binary"
	"encoding/json"
	"sort"
	"testing"

	"cosmossdk.io/math"
	"github.com/stretchr/testify/require"

	"github.com/paw-chain/fluxagg/x/fluxagg"
	"github.com/paw-chain/fluxagg/x/fluxagg/keeper"
	"github.com/paw-chain/fluxagg/x/fluxagg/types"
)

// decodeValues reads little endian int64 submissions from data.
func decodeValues(data []byte) []math.Int {
	values := make([]math.Int, 0, len(data)/8)
	for len(data) >= 8 && len(values) < types.MaxOracleCount {
		values = append(values, math.NewInt(int64(binary.LittleEndian.Uint64(data[:8]))))
		data = data[8:]
	}
	return values
}

func encodeValues(values ...int64) []byte {
	bz := make([]byte, 0, 8*len(values))
	for _, v := range values {
		bz = binary.LittleEndian.AppendUint64(bz, uint64(v))
	}
	return bz
}

// FuzzMedian compares the selection based median against a sort.
func FuzzMedian(f *testing.F) {
	f.Add(encodeValues(1))
	f.Add(encodeValues(1, 2))
	f.Add(encodeValues(5, 5, 5, 5))
	f.Add(encodeValues(-3, -4))
	f.Add(encodeValues(9223372036854775807, 9223372036854775806))
	f.Add(encodeValues(-9223372036854775808, -9223372036854775807, 0))

	f.Fuzz(func(t *testing.T, data []byte) {
		values := decodeValues(data)
		if len(values) == 0 {
			return
		}
		input := append([]math.Int(nil), values...)

		got, err := keeper.Median(values)
		require.NoError(t, err)
		require.Equal(t, input, values, "median must not reorder its input")

		sorted := append([]math.Int(nil), values...)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i].LT(sorted[j]) })

		n := len(sorted)
		want := sorted[n/2]
		if n%2 == 0 {
			want = sorted[n/2-1].Add(sorted[n/2]).QuoRaw(2)
		}
		require.True(t, got.Equal(want), "median %s, want %s", got, want)
		require.True(t, got.GTE(sorted[0]) && got.LTE(sorted[n-1]))
	})
}

// FuzzGenesisValidate feeds arbitrary documents through genesis decoding and
// validation. Neither may panic.
func FuzzGenesisValidate(f *testing.F) {
	def, err := json.Marshal(types.DefaultGenesis())
	require.NoError(f, err)
	f.Add(def)
	f.Add([]byte(`{}`))
	f.Add([]byte(`{"params":{"min_submission_value":"10","max_submission_value":"1"}}`))
	f.Add([]byte(`{"oracles":[{"address":"x"}]}`))

	f.Fuzz(func(t *testing.T, data []byte) {
		genesis, err := fluxagg.UnmarshalGenesis(data)
		if err != nil {
			return
		}
		_ = genesis.Validate()
	})
}
