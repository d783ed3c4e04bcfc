// Package duration parses durations with day/week/month suffixes on top of
// the stdlib syntax, for config values like upload retention windows.
package duration

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
)

var suffixes = []struct {
	suffix     string
	multiplier time.Duration
}{
	{"d", 24 * time.Hour},
	{"w", 7 * 24 * time.Hour},
	{"M", 30 * 24 * time.Hour},
}

// ParseDuration accepts stdlib durations ("90m", "1h30m") plus day, week and
// month suffixes ("7d", "2w", "1M").
func ParseDuration(s string) (time.Duration, error) {
	if d, err := time.ParseDuration(s); err == nil {
		return d, nil
	}
	for _, sfx := range suffixes {
		if !strings.HasSuffix(s, sfx.suffix) {
			continue
		}
		n, err := strconv.ParseFloat(strings.TrimSuffix(s, sfx.suffix), 64)
		if err != nil {
			return 0, fmt.Errorf("invalid duration %q: %w", s, err)
		}
		return time.Duration(n * float64(sfx.multiplier)), nil
	}
	return 0, fmt.Errorf("invalid duration %q", s)
}

// Duration is a pflag.Value wrapper so suffixed durations work as flags.
type Duration time.Duration

func (d *Duration) String() string {
	for i := len(suffixes) - 1; i >= 0; i-- {
		sfx := suffixes[i]
		if time.Duration(*d) >= sfx.multiplier && time.Duration(*d)%sfx.multiplier == 0 {
			return strconv.FormatInt(int64(time.Duration(*d)/sfx.multiplier), 10) + sfx.suffix
		}
	}
	return time.Duration(*d).String()
}

func (d *Duration) Set(s string) error {
	v, err := ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

func (d *Duration) Type() string {
	return "duration"
}

func (d *Duration) UnmarshalText(text []byte) error {
	return d.Set(string(text))
}

// DurationVar registers a suffix-aware duration flag backed by p.
func DurationVar(f *pflag.FlagSet, p *time.Duration, name string, value time.Duration, usage string) {
	*p = value
	f.VarP((*Duration)(p), name, "", usage)
}
