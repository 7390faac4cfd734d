package config

import (
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"

	"github.com/rileyhilliard/b2gmon/internal/errors"
)

// ParseDuration accepts Go duration strings ("500ms", "2s") and bare
// numbers, which are milliseconds. Empty means zero.
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	if ms, err := strconv.ParseFloat(s, 64); err == nil {
		return millis(ms, s)
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, errors.WrapWithCode(err, errors.ErrConfig,
			"Invalid duration: "+s,
			"Use a number of milliseconds (500) or a unit suffix (500ms, 2s, 1m).")
	}
	return d, nil
}

// maxMillis is the largest millisecond count a time.Duration holds.
const maxMillis = float64(math.MaxInt64 / int64(time.Millisecond))

// millis converts a millisecond count. raw is the input as written, for
// the error message.
func millis(ms float64, raw string) (time.Duration, error) {
	if math.IsNaN(ms) || math.IsInf(ms, 0) || math.Abs(ms) > maxMillis {
		return 0, errors.New(errors.ErrConfig,
			"Invalid duration: "+raw,
			"Milliseconds must be a finite number no larger than "+strconv.FormatFloat(maxMillis, 'f', 0, 64)+".")
	}
	return time.Duration(ms * float64(time.Millisecond)), nil
}

// FormatDuration renders d the way ParseDuration reads it back.
func FormatDuration(d time.Duration) string {
	if d == 0 {
		return "0s"
	}
	return d.String()
}

// millisecondsHook decodes numbers and strings into time.Duration with
// ParseDuration's rules.
func millisecondsHook() mapstructure.DecodeHookFuncType {
	durationType := reflect.TypeOf(time.Duration(0))
	return func(from, to reflect.Type, data interface{}) (interface{}, error) {
		if to != durationType {
			return data, nil
		}
		switch v := data.(type) {
		case string:
			return ParseDuration(v)
		case int:
			return millis(float64(v), strconv.Itoa(v))
		case int64:
			return millis(float64(v), strconv.FormatInt(v, 10))
		case uint64:
			return millis(float64(v), strconv.FormatUint(v, 10))
		case float64:
			return millis(v, strconv.FormatFloat(v, 'g', -1, 64))
		}
		return data, nil
	}
}

// decodeHook is used for every Unmarshal.
func decodeHook() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		millisecondsHook(),
		mapstructure.StringToSliceHookFunc(","),
	)
}
