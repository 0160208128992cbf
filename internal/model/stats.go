package model

import (
	"context"
	"time"
)

// DarwinexStats holds metrics scraped from a Darwinex invest page. Pointer
// fields are nil when the page did not expose the value.
type DarwinexStats struct {
	ReturnSinceInception *float64  `json:"returnSinceInception"`
	AnnualizedReturn     *float64  `json:"annualizedReturn"`
	TrackRecordYears     *float64  `json:"trackRecordYears"`
	MaximumDrawdown      *float64  `json:"maximumDrawdown"`
	BestMonth            *float64  `json:"bestMonth"`
	WorstMonth           *float64  `json:"worstMonth"`
	NumberOfTrades       *float64  `json:"numberOfTrades"`
	AverageTradeDuration *string   `json:"averageTradeDuration"`
	WinningTradesRatio   *float64  `json:"winningTradesRatio"`
	CurrentInvestors     *float64  `json:"currentInvestors"`
	AUM                  *float64  `json:"aum"`
	LastUpdated          time.Time `json:"lastUpdated"`
}

// StatsCache caches scraped stats per DARWIN code for a short period.
type StatsCache interface {
	Get(ctx context.Context, code string) (DarwinexStats, bool, error)
	Set(ctx context.Context, code string, stats DarwinexStats) error
}
