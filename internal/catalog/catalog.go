// Package catalog holds the static registry of tracked economic series.
// It maps a stable series code to display metadata, a weekday grouping used
// by the daily briefing, and a refresh cadence. The acquisition pipeline
// consumes this registry but never mutates it.
package catalog

import (
	"sort"
	"time"
)

// RefreshFrequency is how often upstream publishes new observations.
type RefreshFrequency string

const (
	RefreshDaily     RefreshFrequency = "daily"
	RefreshWeekly    RefreshFrequency = "weekly"
	RefreshMonthly   RefreshFrequency = "monthly"
	RefreshQuarterly RefreshFrequency = "quarterly"
)

// SeriesConfig describes one tracked series.
type SeriesConfig struct {
	Code         string           `json:"code"`
	DisplayName  string           `json:"display_name"`
	Description  string           `json:"description"`
	Source       string           `json:"source"`
	Unit         string           `json:"unit"`
	Weekday      time.Weekday     `json:"weekday"`
	DisplayOrder int              `json:"display_order"`
	Refresh      RefreshFrequency `json:"refresh_frequency"`
}

// WeekdayThemes names the briefing theme for each weekday.
var WeekdayThemes = map[time.Weekday]string{
	time.Monday:    "Fed & Interest Rates",
	time.Tuesday:   "Real Estate & Housing",
	time.Wednesday: "Economic Health",
	time.Thursday:  "Regional & Energy",
	time.Friday:    "Markets & Week Summary",
	time.Saturday:  "Weekly Reflection",
	time.Sunday:    "Weekly Reflection",
}

var registry = map[string]SeriesConfig{
	// Monday: Fed & Interest Rates
	"FEDFUNDS": {
		Code: "FEDFUNDS", DisplayName: "Federal Funds Rate",
		Description: "Interest rate banks charge each other for overnight loans",
		Source:      "FRED", Unit: "%", Weekday: time.Monday, DisplayOrder: 1, Refresh: RefreshDaily,
	},
	"DFF": {
		Code: "DFF", DisplayName: "Federal Funds Effective Rate",
		Description: "Daily effective federal funds rate",
		Source:      "FRED", Unit: "%", Weekday: time.Monday, DisplayOrder: 2, Refresh: RefreshDaily,
	},
	"DFEDTARU": {
		Code: "DFEDTARU", DisplayName: "Fed Funds Target Range Upper Limit",
		Description: "Upper limit of the Federal Reserve's target range for the federal funds rate",
		Source:      "FRED", Unit: "%", Weekday: time.Monday, DisplayOrder: 3, Refresh: RefreshDaily,
	},
	"DGS10": {
		Code: "DGS10", DisplayName: "10-Year Treasury Rate",
		Description: "Market yield on U.S. Treasury securities at 10-year constant maturity",
		Source:      "FRED", Unit: "%", Weekday: time.Monday, DisplayOrder: 4, Refresh: RefreshDaily,
	},
	"DGS2": {
		Code: "DGS2", DisplayName: "2-Year Treasury Rate",
		Description: "Market yield on U.S. Treasury securities at 2-year constant maturity",
		Source:      "FRED", Unit: "%", Weekday: time.Monday, DisplayOrder: 5, Refresh: RefreshDaily,
	},
	"T10Y2Y": {
		Code: "T10Y2Y", DisplayName: "10-Year Minus 2-Year Treasury Spread",
		Description: "Yield curve spread, a recession indicator",
		Source:      "FRED", Unit: "%", Weekday: time.Monday, DisplayOrder: 6, Refresh: RefreshDaily,
	},
	"SOFR": {
		Code: "SOFR", DisplayName: "Secured Overnight Financing Rate",
		Description: "Cost of overnight borrowing collateralized by Treasury securities",
		Source:      "FRED", Unit: "%", Weekday: time.Monday, DisplayOrder: 7, Refresh: RefreshDaily,
	},

	// Tuesday: Real Estate & Housing
	"MORTGAGE30US": {
		Code: "MORTGAGE30US", DisplayName: "30-Year Fixed Mortgage Rate",
		Description: "Average U.S. 30-year fixed mortgage rate",
		Source:      "FRED", Unit: "%", Weekday: time.Tuesday, DisplayOrder: 1, Refresh: RefreshWeekly,
	},
	"MORTGAGE15US": {
		Code: "MORTGAGE15US", DisplayName: "15-Year Fixed Mortgage Rate",
		Description: "Average U.S. 15-year fixed mortgage rate",
		Source:      "FRED", Unit: "%", Weekday: time.Tuesday, DisplayOrder: 2, Refresh: RefreshWeekly,
	},
	"HOUST": {
		Code: "HOUST", DisplayName: "Housing Starts",
		Description: "New privately-owned housing units started",
		Source:      "FRED", Unit: "Thousands of Units", Weekday: time.Tuesday, DisplayOrder: 3, Refresh: RefreshMonthly,
	},
	"PERMIT": {
		Code: "PERMIT", DisplayName: "Building Permits",
		Description: "New privately-owned housing units authorized by building permits",
		Source:      "FRED", Unit: "Thousands of Units", Weekday: time.Tuesday, DisplayOrder: 4, Refresh: RefreshMonthly,
	},
	"UMCSENT": {
		Code: "UMCSENT", DisplayName: "Consumer Sentiment Index",
		Description: "University of Michigan consumer sentiment index",
		Source:      "FRED", Unit: "Index", Weekday: time.Tuesday, DisplayOrder: 5, Refresh: RefreshMonthly,
	},
	"CSUSHPINSA": {
		Code: "CSUSHPINSA", DisplayName: "Case-Shiller Home Price Index",
		Description: "S&P/Case-Shiller national home price index",
		Source:      "FRED", Unit: "Index", Weekday: time.Tuesday, DisplayOrder: 6, Refresh: RefreshMonthly,
	},
	"MSPUS": {
		Code: "MSPUS", DisplayName: "Median Home Sales Price",
		Description: "Median sales price of houses sold in the United States",
		Source:      "FRED", Unit: "Dollars", Weekday: time.Tuesday, DisplayOrder: 7, Refresh: RefreshQuarterly,
	},
	"RRVRUSQ156N": {
		Code: "RRVRUSQ156N", DisplayName: "Rental Vacancy Rate",
		Description: "Rental vacancy rate in the United States",
		Source:      "FRED", Unit: "%", Weekday: time.Tuesday, DisplayOrder: 8, Refresh: RefreshQuarterly,
	},

	// Wednesday: Economic Health
	"GDP": {
		Code: "GDP", DisplayName: "Gross Domestic Product",
		Description: "Real GDP in billions of chained 2017 dollars",
		Source:      "FRED", Unit: "Billions of Dollars", Weekday: time.Wednesday, DisplayOrder: 1, Refresh: RefreshQuarterly,
	},
	"UNRATE": {
		Code: "UNRATE", DisplayName: "Unemployment Rate",
		Description: "Share of the labor force that is jobless and seeking work",
		Source:      "FRED", Unit: "%", Weekday: time.Wednesday, DisplayOrder: 2, Refresh: RefreshMonthly,
	},
	"PAYEMS": {
		Code: "PAYEMS", DisplayName: "Nonfarm Payrolls",
		Description: "All employees on total nonfarm payrolls",
		Source:      "FRED", Unit: "Thousands", Weekday: time.Wednesday, DisplayOrder: 3, Refresh: RefreshMonthly,
	},
	"JTSJOL": {
		Code: "JTSJOL", DisplayName: "Job Openings",
		Description: "Total nonfarm job openings from the JOLTS survey",
		Source:      "FRED", Unit: "Thousands", Weekday: time.Wednesday, DisplayOrder: 4, Refresh: RefreshMonthly,
	},
	"CPIAUCSL": {
		Code: "CPIAUCSL", DisplayName: "Consumer Price Index",
		Description: "CPI for all urban consumers, all items",
		Source:      "FRED", Unit: "Index 1982-1984=100", Weekday: time.Wednesday, DisplayOrder: 5, Refresh: RefreshMonthly,
	},
	"PCEPI": {
		Code: "PCEPI", DisplayName: "PCE Price Index",
		Description: "Personal consumption expenditures price index",
		Source:      "FRED", Unit: "Index", Weekday: time.Wednesday, DisplayOrder: 6, Refresh: RefreshMonthly,
	},
	"PCEPILFE": {
		Code: "PCEPILFE", DisplayName: "Core PCE Price Index",
		Description: "Personal consumption expenditures excluding food and energy",
		Source:      "FRED", Unit: "Index", Weekday: time.Wednesday, DisplayOrder: 7, Refresh: RefreshMonthly,
	},
	"RSXFS": {
		Code: "RSXFS", DisplayName: "Retail Sales",
		Description: "Advance retail sales, retail and food services total",
		Source:      "FRED", Unit: "Millions of Dollars", Weekday: time.Wednesday, DisplayOrder: 8, Refresh: RefreshMonthly,
	},
	"INDPRO": {
		Code: "INDPRO", DisplayName: "Industrial Production Index",
		Description: "Industrial production total index",
		Source:      "FRED", Unit: "Index", Weekday: time.Wednesday, DisplayOrder: 9, Refresh: RefreshMonthly,
	},
	"TCU": {
		Code: "TCU", DisplayName: "Capacity Utilization",
		Description: "Capacity utilization across total industry",
		Source:      "FRED", Unit: "%", Weekday: time.Wednesday, DisplayOrder: 10, Refresh: RefreshMonthly,
	},

	// Thursday: Regional & Energy
	"DCOILWTICO": {
		Code: "DCOILWTICO", DisplayName: "WTI Crude Oil Price",
		Description: "West Texas Intermediate spot price",
		Source:      "FRED", Unit: "Dollars per Barrel", Weekday: time.Thursday, DisplayOrder: 1, Refresh: RefreshDaily,
	},
	"DCOILBRENTEU": {
		Code: "DCOILBRENTEU", DisplayName: "Brent Crude Oil Price",
		Description: "Brent Europe spot price",
		Source:      "FRED", Unit: "Dollars per Barrel", Weekday: time.Thursday, DisplayOrder: 2, Refresh: RefreshDaily,
	},
	"GASREGW": {
		Code: "GASREGW", DisplayName: "Regular Gasoline Price",
		Description: "U.S. regular all formulations retail gasoline price",
		Source:      "FRED", Unit: "Dollars per Gallon", Weekday: time.Thursday, DisplayOrder: 3, Refresh: RefreshWeekly,
	},
	"DHHNGSP": {
		Code: "DHHNGSP", DisplayName: "Natural Gas Price",
		Description: "Henry Hub natural gas spot price",
		Source:      "FRED", Unit: "Dollars per Million BTU", Weekday: time.Thursday, DisplayOrder: 4, Refresh: RefreshDaily,
	},
	"CAUR": {
		Code: "CAUR", DisplayName: "California Unemployment Rate",
		Description: "Unemployment rate in California",
		Source:      "FRED", Unit: "%", Weekday: time.Thursday, DisplayOrder: 5, Refresh: RefreshMonthly,
	},
	"TXUR": {
		Code: "TXUR", DisplayName: "Texas Unemployment Rate",
		Description: "Unemployment rate in Texas",
		Source:      "FRED", Unit: "%", Weekday: time.Thursday, DisplayOrder: 6, Refresh: RefreshMonthly,
	},
	"NYUR": {
		Code: "NYUR", DisplayName: "New York Unemployment Rate",
		Description: "Unemployment rate in New York",
		Source:      "FRED", Unit: "%", Weekday: time.Thursday, DisplayOrder: 7, Refresh: RefreshMonthly,
	},

	// Friday: Markets & Week Summary
	"SP500": {
		Code: "SP500", DisplayName: "S&P 500",
		Description: "S&P 500 stock market index",
		Source:      "FRED", Unit: "Index", Weekday: time.Friday, DisplayOrder: 1, Refresh: RefreshDaily,
	},
	"DEXUSEU": {
		Code: "DEXUSEU", DisplayName: "Dollar-Euro Exchange Rate",
		Description: "U.S. dollars to one euro",
		Source:      "FRED", Unit: "USD/EUR", Weekday: time.Friday, DisplayOrder: 2, Refresh: RefreshDaily,
	},
	"DEXCHUS": {
		Code: "DEXCHUS", DisplayName: "Yuan-Dollar Exchange Rate",
		Description: "Chinese yuan to one U.S. dollar",
		Source:      "FRED", Unit: "CNY/USD", Weekday: time.Friday, DisplayOrder: 3, Refresh: RefreshDaily,
	},
	"DTWEXBGS": {
		Code: "DTWEXBGS", DisplayName: "Trade Weighted Dollar Index",
		Description: "Trade weighted U.S. dollar index, broad goods and services",
		Source:      "FRED", Unit: "Index", Weekday: time.Friday, DisplayOrder: 4, Refresh: RefreshDaily,
	},
	"VIXCLS": {
		Code: "VIXCLS", DisplayName: "VIX Volatility Index",
		Description: "CBOE volatility index, expected 30-day S&P 500 volatility",
		Source:      "FRED", Unit: "Index", Weekday: time.Friday, DisplayOrder: 5, Refresh: RefreshDaily,
	},
	"BAMLH0A0HYM2": {
		Code: "BAMLH0A0HYM2", DisplayName: "High Yield Bond Spread",
		Description: "ICE BofA US high yield index option-adjusted spread",
		Source:      "FRED", Unit: "%", Weekday: time.Friday, DisplayOrder: 6, Refresh: RefreshDaily,
	},
	"T10YIE": {
		Code: "T10YIE", DisplayName: "10-Year Breakeven Inflation Rate",
		Description: "Market-implied inflation expectation over ten years",
		Source:      "FRED", Unit: "%", Weekday: time.Friday, DisplayOrder: 7, Refresh: RefreshDaily,
	},
}

// Get returns the configuration for a series code.
func Get(code string) (SeriesConfig, bool) {
	cfg, ok := registry[code]
	return cfg, ok
}

// All returns every configured series, ordered by weekday then display order.
func All() []SeriesConfig {
	configs := make([]SeriesConfig, 0, len(registry))
	for _, cfg := range registry {
		configs = append(configs, cfg)
	}
	sort.Slice(configs, func(i, j int) bool {
		if configs[i].Weekday != configs[j].Weekday {
			return configs[i].Weekday < configs[j].Weekday
		}
		return configs[i].DisplayOrder < configs[j].DisplayOrder
	})
	return configs
}

// Codes returns every configured series code, sorted.
func Codes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// ByWeekday returns the series grouped under a weekday theme, in display
// order.
func ByWeekday(day time.Weekday) []SeriesConfig {
	var configs []SeriesConfig
	for _, cfg := range registry {
		if cfg.Weekday == day {
			configs = append(configs, cfg)
		}
	}
	sort.Slice(configs, func(i, j int) bool {
		return configs[i].DisplayOrder < configs[j].DisplayOrder
	})
	return configs
}
