package builtin

import (
	"strings"
	"time"

	"github.com/matzehuels/convgraph/pkg/conversion"
)

func timeConverters() []conversion.Converter {
	return []conversion.Converter{
		conversion.TypedDuplex(
			func(d time.Duration) (string, bool) { return d.String(), true },
			func(s string) (time.Duration, bool) {
				d, err := time.ParseDuration(strings.TrimSpace(s))
				return d, err == nil
			},
			conversion.WithName("DurationText"),
		),
		conversion.TypedDuplex(
			func(d time.Duration) (int64, bool) { return int64(d), true },
			func(n int64) (time.Duration, bool) { return time.Duration(n), true },
			conversion.WithName("DurationNanos"),
		),
		conversion.TypedDuplex(
			func(t time.Time) (string, bool) { return t.Format(time.RFC3339Nano), true },
			func(s string) (time.Time, bool) {
				t, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(s))
				return t, err == nil
			},
			conversion.WithName("TimeText"),
		),
	}
}
