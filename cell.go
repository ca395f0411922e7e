package sheetview

import (
	"fmt"
	"strconv"
	"unicode/utf8"
)

// CellString converts a Go value to the string stored in a cell.
//
//   - nil becomes ""
//   - integers are formatted in decimal
//   - floats use 20-digit scientific notation so no precision is lost
//   - byte slices must be ASCII, otherwise ErrEncoding is returned
//   - anything else uses its default string form
func CellString(v any) (string, error) {
	switch val := v.(type) {
	case nil:
		return "", nil
	case string:
		return val, nil
	case int:
		return strconv.FormatInt(int64(val), 10), nil
	case int8:
		return strconv.FormatInt(int64(val), 10), nil
	case int16:
		return strconv.FormatInt(int64(val), 10), nil
	case int32:
		return strconv.FormatInt(int64(val), 10), nil
	case int64:
		return strconv.FormatInt(val, 10), nil
	case uint:
		return strconv.FormatUint(uint64(val), 10), nil
	case uint8:
		return strconv.FormatUint(uint64(val), 10), nil
	case uint16:
		return strconv.FormatUint(uint64(val), 10), nil
	case uint32:
		return strconv.FormatUint(uint64(val), 10), nil
	case uint64:
		return strconv.FormatUint(val, 10), nil
	case float32:
		return strconv.FormatFloat(float64(val), 'e', 20, 64), nil
	case float64:
		return strconv.FormatFloat(val, 'e', 20, 64), nil
	case []byte:
		for i, b := range val {
			if b >= utf8.RuneSelf {
				return "", fmt.Errorf("%w: byte 0x%02x at offset %d", ErrEncoding, b, i)
			}
		}
		return string(val), nil
	case fmt.Stringer:
		return val.String(), nil
	default:
		return fmt.Sprintf("%v", val), nil
	}
}
