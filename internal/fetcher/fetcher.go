// Package fetcher implements sequential provider failover: try each source
// in priority order, return the first structurally valid result.
package fetcher

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"gaspulse/internal/provider"
)

// DefaultTimeout bounds a single provider attempt so one slow upstream
// cannot eat the whole response budget.
const DefaultTimeout = 8 * time.Second

// Source is one ranked upstream for a data kind.
type Source[T any] struct {
	Name  string
	Fetch func(ctx context.Context) (*T, error)
}

// ErrExhausted is returned when every source failed. Callers on read paths
// are expected to substitute a fallback value rather than propagate it.
var ErrExhausted = errors.New("all providers exhausted")

// First tries sources in order and returns the first non-nil result along
// with the winning source name. Transport errors and incomplete payloads
// both advance to the next source; they are logged distinctly. There is no
// quality comparison across providers: first success wins.
func First[T any](ctx context.Context, kind string, timeout time.Duration, sources []Source[T]) (*T, string, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	for _, src := range sources {
		attemptCtx, cancel := context.WithTimeout(ctx, timeout)
		result, err := src.Fetch(attemptCtx)
		cancel()

		if err != nil {
			if errors.Is(err, provider.ErrIncomplete) {
				log.Printf("fetch %s: %s returned incomplete payload: %v", kind, src.Name, err)
			} else {
				log.Printf("fetch %s: %s transport error: %v", kind, src.Name, err)
			}
			continue
		}
		if result == nil {
			log.Printf("fetch %s: %s returned no data", kind, src.Name)
			continue
		}
		return result, src.Name, nil
	}

	return nil, "", fmt.Errorf("fetch %s: %w", kind, ErrExhausted)
}
