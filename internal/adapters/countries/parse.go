package countries

import (
	"fmt"
	"strings"

	jsoniter "github.com/json-iterator/go"

	"github.com/questline/pricing-planner/internal/domain/model"
)

// Parse decodes the world-countries dataset. Only cca2, name.common and the
// keys of currencies are read; currency keys keep their document order, which
// a map based decode would lose. Entries without a code or name are dropped.
func Parse(body []byte) ([]model.CountryProfile, error) {
	it := jsoniter.ParseBytes(json, body)
	if it.WhatIsNext() != jsoniter.ArrayValue {
		return nil, fmt.Errorf("%w: top level value is not an array", ErrDecode)
	}

	var out []model.CountryProfile
	it.ReadArrayCB(func(it *jsoniter.Iterator) bool {
		if it.WhatIsNext() != jsoniter.ObjectValue {
			it.Skip()
			return true
		}
		c := readCountry(it)
		if c.Valid() {
			out = append(out, c)
		}
		return true
	})
	if it.Error != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, it.Error)
	}
	if len(out) == 0 {
		return nil, ErrEmpty
	}
	return out, nil
}

func readCountry(it *jsoniter.Iterator) model.CountryProfile {
	var c model.CountryProfile
	it.ReadObjectCB(func(it *jsoniter.Iterator, field string) bool {
		switch field {
		case "cca2":
			c.Code = strings.ToUpper(strings.TrimSpace(readString(it)))
		case "name":
			c.Name = readCommonName(it)
		case "currencies":
			c.NativeCurrencyCodes = readKeys(it)
		default:
			it.Skip()
		}
		return true
	})
	return c
}

func readString(it *jsoniter.Iterator) string {
	if it.WhatIsNext() != jsoniter.StringValue {
		it.Skip()
		return ""
	}
	return it.ReadString()
}

func readCommonName(it *jsoniter.Iterator) string {
	if it.WhatIsNext() != jsoniter.ObjectValue {
		it.Skip()
		return ""
	}
	var name string
	it.ReadObjectCB(func(it *jsoniter.Iterator, field string) bool {
		if field == "common" {
			name = strings.TrimSpace(readString(it))
		} else {
			it.Skip()
		}
		return true
	})
	return name
}

// readKeys returns object keys in order. Some entries carry an empty array
// instead of an object; those yield nil.
func readKeys(it *jsoniter.Iterator) []string {
	if it.WhatIsNext() != jsoniter.ObjectValue {
		it.Skip()
		return nil
	}
	var keys []string
	it.ReadObjectCB(func(it *jsoniter.Iterator, key string) bool {
		keys = append(keys, strings.ToUpper(key))
		it.Skip()
		return true
	})
	return keys
}
