package llm

import (
	"sync"
	"time"
)

// Pricing per 1M tokens. Unknown models (DeepSeek and other compatible
// endpoints) are tracked with zero cost.
var modelPricing = map[string]struct {
	InputPer1M  float64
	OutputPer1M float64
}{
	"gpt-4o-mini":   {InputPer1M: 0.15, OutputPer1M: 0.60},
	"gpt-4o":        {InputPer1M: 2.50, OutputPer1M: 10.00},
	"gpt-3.5-turbo": {InputPer1M: 0.50, OutputPer1M: 1.50},
}

// CalculateCost calculates estimated cost for token usage
func CalculateCost(model string, promptTokens, completionTokens int) float64 {
	pricing, ok := modelPricing[model]
	if !ok {
		return 0
	}
	inputCost := float64(promptTokens) / 1_000_000 * pricing.InputPer1M
	outputCost := float64(completionTokens) / 1_000_000 * pricing.OutputPer1M
	return inputCost + outputCost
}

// UsageTracker accumulates token usage across completions.
type UsageTracker struct {
	mu           sync.RWMutex
	totalCost    float64
	totalTokens  int64
	requestCount int64
	failures     int64
	dailyCost    map[string]float64
	modelUsage   map[string]int64
}

func NewUsageTracker() *UsageTracker {
	return &UsageTracker{
		dailyCost:  make(map[string]float64),
		modelUsage: make(map[string]int64),
	}
}

// Track records one successful completion and returns its estimated cost.
func (t *UsageTracker) Track(model string, promptTokens, completionTokens int) float64 {
	cost := CalculateCost(model, promptTokens, completionTokens)

	t.mu.Lock()
	t.totalCost += cost
	t.totalTokens += int64(promptTokens + completionTokens)
	t.requestCount++
	t.dailyCost[time.Now().UTC().Format("2006-01-02")] += cost
	t.modelUsage[model] += int64(promptTokens + completionTokens)
	t.mu.Unlock()

	return cost
}

func (t *UsageTracker) TrackFailure() {
	t.mu.Lock()
	t.failures++
	t.mu.Unlock()
}

type UsageStats struct {
	TotalCost         float64          `json:"total_cost_usd"`
	TotalTokens       int64            `json:"total_tokens"`
	RequestCount      int64            `json:"request_count"`
	Failures          int64            `json:"failures"`
	AvgCostPerRequest float64          `json:"avg_cost_per_request"`
	TodayCost         float64          `json:"today_cost_usd"`
	ModelTokens       map[string]int64 `json:"model_tokens"`
}

func (t *UsageTracker) Stats() UsageStats {
	t.mu.RLock()
	defer t.mu.RUnlock()

	models := make(map[string]int64, len(t.modelUsage))
	for k, v := range t.modelUsage {
		models[k] = v
	}
	stats := UsageStats{
		TotalCost:    t.totalCost,
		TotalTokens:  t.totalTokens,
		RequestCount: t.requestCount,
		Failures:     t.failures,
		TodayCost:    t.dailyCost[time.Now().UTC().Format("2006-01-02")],
		ModelTokens:  models,
	}
	if t.requestCount > 0 {
		stats.AvgCostPerRequest = t.totalCost / float64(t.requestCount)
	}
	return stats
}
