// internal/config/jsonutil.go
package config

import "encoding/json"

// toJSONRawMap re-encodes a generic map into the map[string]json.RawMessage
// shape ApplyParams expects, so the YAML-sourced defaults file and the
// JSON-sourced `configure` command share exactly one application path.
func toJSONRawMap(m map[string]interface{}) (map[string]json.RawMessage, error) {
	out := make(map[string]json.RawMessage, len(m))
	for k, v := range m {
		b, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		out[k] = b
	}
	return out, nil
}
