package provider

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrIncomplete marks a payload that parsed but is structurally unusable
// (missing fields, empty rows). The failover fetcher advances to the next
// provider on it, same as for transport errors, but logs it separately.
var ErrIncomplete = errors.New("incomplete provider payload")

func incompletef(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrIncomplete)...)
}

// Flexible decodes a JSON number that some upstreams quote as a string
// (Blocknative, Etherscan, Binance all do this for at least one field).
type Flexible float64

func (f *Flexible) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" || s == `""` {
		*f = 0
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		var unquoted string
		if err := json.Unmarshal(data, &unquoted); err != nil {
			return err
		}
		s = strings.TrimSpace(unquoted)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("parse flexible number %q: %w", s, err)
	}
	*f = Flexible(v)
	return nil
}

func (f Flexible) Float() float64 { return float64(f) }
