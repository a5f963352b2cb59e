// Copyright (C) 2022-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package genesis

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/BurntSushi/toml"
)

// SpecToTOML converts a JSON genesis spec into the TOML the generator reads.
// JSON null becomes an empty string; integral numbers stay integers.
func SpecToTOML(spec []byte) ([]byte, error) {
	dec := json.NewDecoder(bytes.NewReader(spec))
	dec.UseNumber()
	var doc map[string]interface{}
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed decoding genesis spec: %w", err)
	}
	converted, err := tomlValue(doc)
	if err != nil {
		return nil, err
	}

	buf := new(bytes.Buffer)
	if err := toml.NewEncoder(buf).Encode(converted); err != nil {
		return nil, fmt.Errorf("failed encoding genesis toml: %w", err)
	}
	return buf.Bytes(), nil
}

func tomlValue(v interface{}) (interface{}, error) {
	switch val := v.(type) {
	case nil:
		return "", nil
	case json.Number:
		if i, err := val.Int64(); err == nil {
			return i, nil
		}
		f, err := val.Float64()
		if err != nil {
			return nil, fmt.Errorf("unsupported number %s: %w", val, err)
		}
		return f, nil
	case []interface{}:
		out := make([]interface{}, 0, len(val))
		for _, item := range val {
			converted, err := tomlValue(item)
			if err != nil {
				return nil, err
			}
			out = append(out, converted)
		}
		return out, nil
	case map[string]interface{}:
		out := make(map[string]interface{}, len(val))
		for k, item := range val {
			converted, err := tomlValue(item)
			if err != nil {
				return nil, err
			}
			out[k] = converted
		}
		return out, nil
	default:
		return val, nil
	}
}
