package watermark

import (
	"fmt"

	"postrelay/internal/config"
	"postrelay/internal/redisclient"
)

// Open builds the configured backend. The returned close func releases any
// underlying connection and is always non-nil.
func Open(cfg config.WatermarkConfig, rcfg config.RedisConfig, account string) (Store, func() error, error) {
	noop := func() error { return nil }
	switch cfg.Backend {
	case "redis":
		rdb := redisclient.New(rcfg)
		return NewRedisStore(rdb, account), rdb.Close, nil
	case "sqlite":
		s, err := OpenSQLite(cfg.Path, account)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	case "file":
		return NewFileStore(cfg.Path, account), noop, nil
	case "memory":
		return NewMemoryStore(), noop, nil
	default:
		return nil, nil, fmt.Errorf("watermark: unknown backend %q", cfg.Backend)
	}
}
