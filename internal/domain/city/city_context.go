package city

import (
	"context"
	"net/http"

	"github.com/FACorreiaa/worldwise-api/internal/types"
)

type containerKey struct{}

// WithContainer returns a context in which FromContext resolves to c.
func WithContainer(ctx context.Context, c *Container) context.Context {
	return context.WithValue(ctx, containerKey{}, c)
}

// FromContext returns the container provided to ctx, or ErrContainerNotInitialized when
// the caller is outside the scope established by WithContainer.
func FromContext(ctx context.Context) (*Container, error) {
	c, ok := ctx.Value(containerKey{}).(*Container)
	if !ok || c == nil {
		return nil, types.ErrContainerNotInitialized
	}
	return c, nil
}

// Provide makes c available to every request handled by next.
func Provide(c *Container) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(WithContainer(r.Context(), c)))
		})
	}
}
