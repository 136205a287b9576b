package ai

import (
	"encoding/json"
	"strconv"
	"strings"
)

// GenConfig is a client-supplied generation config after sanitization: the
// fields the server interprets, plus Options.Extra for everything else.
type GenConfig struct {
	Model string
	Options
}

// ParseGenConfig sanitizes a raw config map. The temperature key is coerced
// to a float; values that do not parse are dropped rather than rejected.
// Unknown keys pass through uninterpreted.
func ParseGenConfig(raw map[string]any) GenConfig {
	var cfg GenConfig
	for k, v := range raw {
		switch k {
		case "model":
			if s, ok := v.(string); ok {
				cfg.Model = strings.TrimSpace(s)
			}
		case "temperature":
			if f, ok := coerceFloat(v); ok {
				cfg.Temperature = &f
			}
		default:
			if cfg.Extra == nil {
				cfg.Extra = make(map[string]any)
			}
			cfg.Extra[k] = v
		}
	}
	return cfg
}

func coerceFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f, err == nil
	}
	return 0, false
}
