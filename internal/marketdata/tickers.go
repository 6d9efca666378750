package marketdata

import "strings"

// companyTickers maps canonical company names to their primary ticker
// symbols. Resolution is case-insensitive on the full name.
var companyTickers = map[string]string{
	"apple":              "AAPL",
	"microsoft":          "MSFT",
	"alphabet":           "GOOGL",
	"amazon":             "AMZN",
	"tesla":              "TSLA",
	"nvidia":             "NVDA",
	"meta":               "META",
	"netflix":            "NFLX",
	"jpmorgan":           "JPM",
	"berkshire hathaway": "BRK.B",
	"exxon mobil":        "XOM",
	"walmart":            "WMT",
	"coca-cola":          "KO",
	"mcdonald's":         "MCD",
	"intel":              "INTC",
	"ibm":                "IBM",
	"disney":             "DIS",
}

// TickerForCompany resolves a company name to its ticker symbol. Inputs
// that already look like tickers (short, all-caps) pass through.
func TickerForCompany(name string) (string, bool) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", false
	}
	if ticker, ok := companyTickers[strings.ToLower(trimmed)]; ok {
		return ticker, true
	}
	if len(trimmed) <= 5 && trimmed == strings.ToUpper(trimmed) {
		return trimmed, true
	}
	return "", false
}

// DefaultTickers are the symbols the price refresher keeps warm.
func DefaultTickers() []string {
	seen := make(map[string]bool, len(companyTickers))
	tickers := make([]string, 0, len(companyTickers))
	for _, ticker := range companyTickers {
		if !seen[ticker] {
			seen[ticker] = true
			tickers = append(tickers, ticker)
		}
	}
	return tickers
}
