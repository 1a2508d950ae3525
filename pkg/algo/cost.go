package algo

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Cost is a distance that survives a JSON round trip even when infinite.
// The backend writes non-finite doubles as the strings "Infinity",
// "-Infinity" and "NaN"; null decodes as +Inf.
type Cost float64

func (c Cost) Float() float64 { return float64(c) }

func (c Cost) MarshalJSON() ([]byte, error) {
	f := float64(c)
	switch {
	case math.IsInf(f, 1):
		return []byte(`"Infinity"`), nil
	case math.IsInf(f, -1):
		return []byte(`"-Infinity"`), nil
	case math.IsNaN(f):
		return []byte(`"NaN"`), nil
	}
	return strconv.AppendFloat(nil, f, 'g', -1, 64), nil
}

func (c *Cost) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*c = Cost(math.Inf(1))
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		switch s {
		case "Infinity", "+Infinity", "inf", "+inf":
			*c = Cost(math.Inf(1))
		case "-Infinity", "-inf":
			*c = Cost(math.Inf(-1))
		case "NaN":
			*c = Cost(math.NaN())
		default:
			f, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return fmt.Errorf("algo: invalid cost %q", s)
			}
			*c = Cost(f)
		}
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("algo: invalid cost %s: %w", data, err)
	}
	*c = Cost(f)
	return nil
}
