package registry

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/spf13/cast"
)

// Char is a parameter type receiving a single character argument.
type Char rune

type coercer struct {
	logger *slog.Logger
	method string
}

// coerce never fails: unparsable input is logged and yields the zero value.
func coerce[T any](c *coercer, position int, raw string) T {
	v, err := Convert[T](raw)
	if err != nil {
		var zero T
		c.logger.Warn("argument coercion failed, using default",
			"method", c.method,
			"arg", position,
			"value", raw,
			"type", fmt.Sprintf("%T", zero),
			"err", err,
		)
		return zero
	}
	return v
}

// Convert parses raw into T. Supported targets are string, bool, Char, the
// sized and unsized integer and float types, time.Time, time.Duration and uuid.UUID.
func Convert[T any](raw string) (T, error) {
	var zero T
	v, err := convert(zero, raw)
	if err != nil {
		return zero, err
	}
	typed, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("cannot convert %q to %T", raw, zero)
	}
	return typed, nil
}

func convert(target any, raw string) (any, error) {
	switch target.(type) {
	case string:
		return raw, nil
	case bool:
		return cast.ToBoolE(raw)
	case Char:
		r, size := utf8.DecodeRuneInString(raw)
		if r == utf8.RuneError || size != len(raw) {
			return nil, fmt.Errorf("%q is not a single character", raw)
		}
		return Char(r), nil
	case int:
		n, err := parseInt(raw, strconv.IntSize)
		return int(n), err
	case int8:
		n, err := parseInt(raw, 8)
		return int8(n), err
	case int16:
		n, err := parseInt(raw, 16)
		return int16(n), err
	case int32:
		n, err := parseInt(raw, 32)
		return int32(n), err
	case int64:
		return parseInt(raw, 64)
	case uint:
		n, err := parseUint(raw, strconv.IntSize)
		return uint(n), err
	case uint8:
		n, err := parseUint(raw, 8)
		return uint8(n), err
	case uint16:
		n, err := parseUint(raw, 16)
		return uint16(n), err
	case uint32:
		n, err := parseUint(raw, 32)
		return uint32(n), err
	case uint64:
		return parseUint(raw, 64)
	case float32:
		return cast.ToFloat32E(raw)
	case float64:
		return cast.ToFloat64E(raw)
	case time.Duration:
		return cast.ToDurationE(raw)
	case time.Time:
		return cast.ToTimeE(raw)
	case uuid.UUID:
		return uuid.Parse(raw)
	default:
		return nil, fmt.Errorf("unsupported parameter type %T", target)
	}
}

// Integers are decimal only and must fit the target width.
func parseInt(raw string, bits int) (int64, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, bits)
	if err != nil {
		return 0, fmt.Errorf("parse %q as %d-bit integer: %w", raw, bits, err)
	}
	return n, nil
}

func parseUint(raw string, bits int) (uint64, error) {
	n, err := strconv.ParseUint(strings.TrimSpace(raw), 10, bits)
	if err != nil {
		return 0, fmt.Errorf("parse %q as %d-bit unsigned integer: %w", raw, bits, err)
	}
	return n, nil
}
