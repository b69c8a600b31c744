package logger

import (
	"encoding/json"

	"go.uber.org/zap"

	"github.com/smallbiznis/hydrolink/internal/config"
)

// DumpConfig logs the effective configuration once at startup, with
// credentials masked.
func DumpConfig(log *zap.Logger, cfg config.Config) {
	raw, err := json.Marshal(cfg)
	if err != nil {
		return
	}
	var asMap map[string]any
	if err := json.Unmarshal(raw, &asMap); err != nil {
		return
	}
	log.Info("effective configuration", zap.Any("config", MaskJSON(asMap)))
}
