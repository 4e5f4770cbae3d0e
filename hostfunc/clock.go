package hostfunc

import (
	"context"
	"time"
)

// TimeNow returns the current Unix time in seconds.
func TimeNow(context.Context, map[string]any) (any, error) {
	return float64(time.Now().UnixNano()) / 1e9, nil
}

// RegisterClock adds time_now to r.
func RegisterClock(r *Registry) {
	r.Register("time_now", TimeNow)
}
