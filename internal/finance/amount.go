package finance

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/samber/mo"
	"github.com/tidwall/gjson"
)

// MaxAmount bounds every accepted amount in both directions. With at most MaxExpenseRows
// expense rows no derived sum can leave the int64 range.
const MaxAmount int64 = 1_000_000_000_000_000

// groupingSeparators are removed from string amounts before conversion ("1,234,567").
var groupingSeparators = strings.NewReplacer(",", "", "，", "", "_", "")

// ParseAmount converts a loosely typed form value into a whole currency amount.
//
// nil, "" and strings that do not describe a finite number yield None. Finite values are
// truncated toward zero, so 10.9 becomes 10 and -10.9 becomes -10. Values beyond ±MaxAmount
// yield None. ParseAmount never fails: malformed input looks exactly like missing input.
func ParseAmount(raw any) mo.Option[int64] {
	return parse(raw).Map(func(v int64) (int64, bool) {
		return v, v >= -MaxAmount && v <= MaxAmount
	})
}

func parse(raw any) mo.Option[int64] {
	switch v := raw.(type) {
	case nil:
		return mo.None[int64]()
	case int:
		return mo.Some(int64(v))
	case int32:
		return mo.Some(int64(v))
	case int64:
		return mo.Some(v)
	case uint:
		return fromFloat(float64(v))
	case uint32:
		return mo.Some(int64(v))
	case uint64:
		return fromFloat(float64(v))
	case float32:
		return fromFloat(float64(v))
	case float64:
		return fromFloat(v)
	case json.Number:
		return parseString(string(v))
	case string:
		return parseString(v)
	case *string:
		if v == nil {
			return mo.None[int64]()
		}
		return parseString(*v)
	case gjson.Result:
		return fromJSON(v)
	default:
		return mo.None[int64]()
	}
}

func fromJSON(res gjson.Result) mo.Option[int64] {
	switch res.Type {
	case gjson.Number:
		// Raw keeps integer precision beyond 2^53.
		return parseString(res.Raw)
	case gjson.String:
		return parseString(res.Str)
	default:
		return mo.None[int64]()
	}
}

func parseString(s string) mo.Option[int64] {
	s = strings.TrimSpace(groupingSeparators.Replace(s))
	if s == "" {
		return mo.None[int64]()
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return mo.Some(n)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return mo.None[int64]()
	}
	return fromFloat(f)
}

func fromFloat(f float64) mo.Option[int64] {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return mo.None[int64]()
	}
	t := math.Trunc(f)
	// float64(math.MaxInt64) rounds up to 2^63, which is already out of range.
	if t >= math.MaxInt64 || t < math.MinInt64 {
		return mo.None[int64]()
	}
	return mo.Some(int64(t))
}
