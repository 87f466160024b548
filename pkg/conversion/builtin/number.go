package builtin

import (
	"math"

	"github.com/matzehuels/convgraph/pkg/conversion"
)

func numbers() []conversion.Converter {
	return []conversion.Converter{
		signed[int](),
		signed[int8](),
		signed[int16](),
		signed[int32](),
		unsigned[uint](),
		unsigned[uint8](),
		unsigned[uint16](),
		unsigned[uint32](),
		unsigned[uintptr](),

		conversion.TypedDuplex(
			func(v int64) (float64, bool) { return float64(v), true },
			floatToInt64,
			conversion.WithName("IntFloat"),
		),
		conversion.TypedDuplex(
			func(v uint64) (int64, bool) { return int64(v), v <= math.MaxInt64 },
			func(v int64) (uint64, bool) { return uint64(v), v >= 0 },
			conversion.WithName("UintInt"),
		),
		conversion.TypedDuplex(
			func(v float32) (float64, bool) { return float64(v), true },
			func(v float64) (float32, bool) {
				f := float32(v)
				return f, !math.IsInf(float64(f), 0) || math.IsInf(v, 0)
			},
			conversion.WithName("Widen"),
		),
	}
}

// signed widens T to int64 and narrows int64 back when the value fits.
func signed[T int | int8 | int16 | int32]() conversion.Duplex {
	return conversion.TypedDuplex(
		func(v T) (int64, bool) { return int64(v), true },
		func(v int64) (T, bool) {
			t := T(v)
			return t, int64(t) == v
		},
		conversion.WithName("Widen"),
	)
}

// unsigned widens T to uint64 and narrows uint64 back when the value fits.
func unsigned[T uint | uint8 | uint16 | uint32 | uintptr]() conversion.Duplex {
	return conversion.TypedDuplex(
		func(v T) (uint64, bool) { return uint64(v), true },
		func(v uint64) (T, bool) {
			t := T(v)
			return t, uint64(t) == v
		},
		conversion.WithName("Widen"),
	)
}

// floatToInt64 truncates v towards zero. NaN and values outside the int64
// range do not convert.
func floatToInt64(v float64) (int64, bool) {
	if math.IsNaN(v) || v < math.MinInt64 || v >= math.MaxInt64 {
		return 0, false
	}
	return int64(v), true
}
