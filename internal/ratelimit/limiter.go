// Package ratelimit throttles MCP tool calls with per-key token buckets.
package ratelimit

import (
	"fmt"
	"sync"
	"time"
)

// Tool names served by the MCP server.
const (
	ToolCount     = "wordcount_count"
	ToolCountFile = "wordcount_count_file"
	ToolCompare   = "wordcount_compare"
	ToolHistory   = "wordcount_history"
)

// Limiter is a token bucket per key. Buckets start full.
// It is safe for concurrent use.
type Limiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	rate    float64 // tokens per second
	burst   int
	nowFunc func() time.Time
}

type bucket struct {
	tokens    float64
	lastCheck time.Time
}

// NewLimiter creates a limiter refilling rate tokens per second up to burst.
func NewLimiter(rate float64, burst int) *Limiter {
	return &Limiter{
		buckets: make(map[string]*bucket),
		rate:    rate,
		burst:   burst,
		nowFunc: time.Now,
	}
}

// Allow takes one token from key's bucket and reports whether one was available.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.nowFunc()

	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{tokens: float64(l.burst), lastCheck: now}
		l.buckets[key] = b
	}

	if elapsed := now.Sub(b.lastCheck).Seconds(); elapsed > 0 {
		b.tokens = min(b.tokens+l.rate*elapsed, float64(l.burst))
		b.lastCheck = now
	}

	if b.tokens < 1.0 {
		return false
	}
	b.tokens--
	return true
}

// ToolLimiters maps tool names to their limiters.
type ToolLimiters map[string]*Limiter

// NewToolLimiters returns the default limits for every wordcount tool.
// Text counting is cheap; file reads and history queries touch disk.
func NewToolLimiters() ToolLimiters {
	return ToolLimiters{
		ToolCount:     NewLimiter(2.0, 20),      // 120/minute, burst 20
		ToolCompare:   NewLimiter(1.0, 10),      // 60/minute, burst 10
		ToolCountFile: NewLimiter(30.0/60.0, 5), // 30/minute, burst 5
		ToolHistory:   NewLimiter(30.0/60.0, 5), // 30/minute, burst 5
	}
}

// CheckLimit returns an error when toolName is over its limit.
// Tools without a limiter are never limited.
func CheckLimit(limiters ToolLimiters, toolName string) error {
	limiter, ok := limiters[toolName]
	if !ok {
		return nil
	}
	if !limiter.Allow(toolName) {
		return fmt.Errorf("rate limit exceeded for %s, please try again shortly", toolName)
	}
	return nil
}
