// Package universe provides the fixed candidate list of tradable NSE symbols
// considered for screening.
package universe

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// nseUniverse is the default screening universe: NIFTY 50, NIFTY Next 50 and
// a hand-picked set of liquid mid caps and sector leaders.
var nseUniverse = []string{
	// NIFTY 50
	"RELIANCE", "TCS", "HDFCBANK", "ICICIBANK", "HINDUNILVR",
	"INFY", "SBIN", "BHARTIARTL", "ITC", "KOTAKBANK",
	"LT", "ASIANPAINT", "MARUTI", "BAJFINANCE", "HCLTECH",
	"AXISBANK", "WIPRO", "ULTRACEMCO", "NESTLEIND", "TITAN",
	"SUNPHARMA", "POWERGRID", "NTPC", "TECHM", "ONGC",
	"TATAMOTORS", "JSWSTEEL", "HINDALCO", "INDUSINDBK", "COALINDIA",
	"BAJAJFINSV", "HDFCLIFE", "BRITANNIA", "DIVISLAB", "DRREDDY",
	"EICHERMOT", "GRASIM", "HEROMOTOCO", "CIPLA", "APOLLOHOSP",
	"BAJAJ-AUTO", "BPCL", "SHREECEM", "TATASTEEL", "TATACONSUM",
	"SBILIFE", "ADANIENT", "ADANIPORTS", "UPL", "LTIM",

	// NIFTY Next 50
	"ADANIGREEN", "AMBUJACEM", "BANKBARODA", "BERGEPAINT", "BIOCON",
	"BOSCHLTD", "CHOLAFIN", "COLPAL", "CONCOR", "DABUR",
	"GAIL", "GODREJCP", "HAVELLS", "ICICIPRULI", "INDIGO",
	"JINDALSTEL", "JUBLFOOD", "LUPIN", "MARICO", "MOTHERSON",
	"MUTHOOTFIN", "NMDC", "NYKAA", "PAGEIND", "PETRONET",
	"PIDILITIND", "PNB", "POLYCAB", "SAIL", "SIEMENS",
	"SRF", "TORNTPHARM", "TRENT", "VEDL", "VOLTAS",
	"ZEEL", "ZOMATO", "BAJAJHLDNG", "ALKEM", "AUBANK",
	"DALBHARAT", "IDFCFIRSTB", "OFSS", "TATAELXSI", "TORNTPOWER",
	"ABBOTINDIA", "MCDOWELL-N", "PGHH", "LICI", "PAYTM",

	// Liquid mid caps and sector leaders
	"POLICYBZR", "NAUKRI", "MPHASIS", "PERSISTENT", "LTTS",
	"COFORGE", "RBLBANK", "FEDERALBNK", "BANDHANBNK", "CANBK",
	"IOC", "NATIONALUM", "MOIL", "IRCTC", "RAILTEL",
	"HAL", "BEL", "BHEL", "SJVN", "RECLTD",
	"PFC", "IRFC", "DIXON", "AMBER", "SOLARINDS",
	"SUZLON", "ADANIPOWER", "TATAPOWER", "M&M", "ASHOKLEY",
	"ESCORTS", "SONACOMS", "BALKRISIND", "APOLLOTYRE", "RAMCOCEM",
	"ACC", "JKCEMENT", "GODREJPROP", "DLF", "PRESTIGE",
	"SOBHA", "BRIGADE", "LODHA", "MAXHEALTH", "FORTIS",
	"THERMAX", "CUMMINSIND", "SCHAEFFLER", "NBCC", "IRCON",
	"KEC", "RVNL", "RITES",
}

// Default returns a copy of the built-in NSE screening universe.
func Default() []string {
	out := make([]string, len(nseUniverse))
	copy(out, nseUniverse)
	return out
}

// FromFile loads a universe from a newline-separated symbol file. Blank lines
// and lines starting with '#' are skipped; symbols are upper-cased and
// deduplicated, preserving first-seen order.
func FromFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open universe file: %w", err)
	}
	defer f.Close()

	seen := make(map[string]bool)
	var symbols []string

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		symbol := strings.ToUpper(line)
		if seen[symbol] {
			continue
		}
		seen[symbol] = true
		symbols = append(symbols, symbol)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read universe file: %w", err)
	}
	if len(symbols) == 0 {
		return nil, fmt.Errorf("universe file %s contains no symbols", path)
	}

	return symbols, nil
}
