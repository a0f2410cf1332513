// Package ratelimit provides a token-bucket unary gRPC interceptor guarding
// the broker's BatchSend RPC, grounded on the pack's
// DanDo385-go-edu/minis/50-mini-service-all-features use of
// golang.org/x/time/rate for the same purpose.
package ratelimit

import (
	"context"

	"golang.org/x/time/rate"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Limiter wraps a token bucket for a single RPC method.
type Limiter struct {
	limiter *rate.Limiter
	onLimit func()
}

// New builds a Limiter allowing requestsPerSecond sustained with a burst of
// burst. onLimit, if non-nil, is invoked whenever a request is rejected
// (for metrics).
func New(requestsPerSecond float64, burst int, onLimit func()) *Limiter {
	return &Limiter{
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), burst),
		onLimit: onLimit,
	}
}

// UnaryServerInterceptor rejects requests over the configured rate with
// codes.ResourceExhausted once the method name matches fullMethod.
func (l *Limiter) UnaryServerInterceptor(fullMethod string) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		if info.FullMethod != fullMethod {
			return handler(ctx, req)
		}
		if !l.limiter.Allow() {
			if l.onLimit != nil {
				l.onLimit()
			}
			return nil, status.Error(codes.ResourceExhausted, "ratelimit: too many requests")
		}
		return handler(ctx, req)
	}
}
