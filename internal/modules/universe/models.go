// Package universe loads the investable universe: securities, their
// financial statements and their price history, and exposes them to
// the simulator through the domain.DataProvider interface.
package universe

import "time"

// Security is one row of the securities table.
type Security struct {
	Code      string  `json:"code"`
	Name      string  `json:"name"`
	Market    string  `json:"market"`
	Sector    string  `json:"sector"`
	MarketCap float64 `json:"market_cap"`
	Status    string  `json:"status"`
}

// Financials is one fiscal year of fundamentals for a security. All
// factor fields are nullable since coverage varies by security and
// source.
type Financials struct {
	Code string `json:"code"`
	Year int    `json:"year"`

	PER             *float64 `json:"per"`
	PBR             *float64 `json:"pbr"`
	PSR             *float64 `json:"psr"`
	PCR             *float64 `json:"pcr"`
	EPS             *float64 `json:"eps"`
	ROE             *float64 `json:"roe"`
	GPA             *float64 `json:"gpa"`
	CFORatio        *float64 `json:"cfo_ratio"`
	EBIT            *float64 `json:"ebit"`
	InvestedCapital *float64 `json:"invested_capital"`
	NetDebt         *float64 `json:"net_debt"`
}

// DailyPrice is one row of the prices table.
type DailyPrice struct {
	Code   string    `json:"code"`
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
}
