package health

import (
	"context"
	"database/sql"
	"time"

	"checkcontrat-backend/internal/shared/storage/db"
)

const defaultPingTimeout = 2 * time.Second

// Pinger is any backend that can report liveness.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Status is the health payload. Each backend is "up", "down" or "disabled".
type Status struct {
	OK    bool   `json:"ok"`
	DB    string `json:"db"`
	Redis string `json:"redis"`
}

// Service encapsulates health-related checks.
type Service struct {
	DB          *sql.DB
	Redis       Pinger
	PingTimeout time.Duration
}

// NewService constructs a new health service. Either backend may be nil.
func NewService(sqlDB *sql.DB, redis Pinger) *Service {
	return &Service{DB: sqlDB, Redis: redis, PingTimeout: defaultPingTimeout}
}

// Status pings the configured backends. Only a database failure clears OK;
// Redis is optional.
func (s *Service) Status(ctx context.Context) Status {
	st := Status{OK: true, DB: "disabled", Redis: "disabled"}
	timeout := s.PingTimeout
	if timeout <= 0 {
		timeout = defaultPingTimeout
	}

	if s.DB != nil {
		if err := db.Ping(ctx, s.DB, timeout); err != nil {
			st.OK = false
			st.DB = "down"
		} else {
			st.DB = "up"
		}
	}
	if s.Redis != nil {
		pingCtx, cancel := context.WithTimeout(ctx, timeout)
		err := s.Redis.Ping(pingCtx)
		cancel()
		if err != nil {
			st.Redis = "down"
		} else {
			st.Redis = "up"
		}
	}
	return st
}
