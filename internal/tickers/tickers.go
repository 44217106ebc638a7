// Package tickers holds the default NSE symbol universe ingested when no
// symbols are configured.
package tickers

// nifty is ordered as published; the run preserves this order.
var nifty = []string{
	"RELIANCE", "TCS", "HDFCBANK", "ICICIBANK", "BHARTIARTL",
	"INFY", "SBIN", "HINDUNILVR", "ITC", "LT",
	"BAJFINANCE", "HCLTECH", "KOTAKBANK", "MARUTI", "SUNPHARMA",
	"AXISBANK", "ULTRACEMCO", "M&M", "TITAN", "NTPC",
	"ONGC", "ADANIENT", "ASIANPAINT", "POWERGRID", "TATAMOTORS",
	"WIPRO", "BAJAJFINSV", "NESTLEIND", "COALINDIA", "JSWSTEEL",
	"TATASTEEL", "ADANIPORTS", "BAJAJ-AUTO", "TECHM", "GRASIM",
	"HINDALCO", "SBILIFE", "HDFCLIFE", "BRITANNIA", "CIPLA",
	"DRREDDY", "EICHERMOT", "TATACONSUM", "APOLLOHOSP", "DIVISLAB",
	"HEROMOTOCO", "INDUSINDBK", "BPCL", "SHRIRAMFIN", "TRENT",
	"PIDILITIND", "DMART", "HAVELLS", "DABUR", "GODREJCP",
	"SIEMENS", "AMBUJACEM", "DLF", "BANKBARODA", "PNB",
	"CANBK", "IOC", "GAIL", "VEDL", "TATAPOWER",
	"BEL", "HAL", "IRCTC", "LUPIN", "AUROPHARMA",
	"BIOCON", "TORNTPHARM", "ZYDUSLIFE", "MARICO", "COLPAL",
	"BERGEPAINT", "MUTHOOTFIN", "CHOLAFIN", "SRF", "PIIND",
	"MPHASIS", "LTIM", "PERSISTENT", "COFORGE", "NAUKRI",
	"ICICIGI", "ICICIPRULI", "SBICARD", "BANDHANBNK", "IDFCFIRSTB",
	"FEDERALBNK", "AUBANK", "ABB", "CUMMINSIND", "BOSCHLTD",
	"MRF", "ASHOKLEY", "TVSMOTOR", "BHARATFORG", "ESCORTS",
}

// Default returns a copy of the default symbol list
func Default() []string {
	out := make([]string, len(nifty))
	copy(out, nifty)
	return out
}
