package resolve

// builtinAliases maps common colloquial company names to canonical tickers.
// Config can extend this table; it is checked before any scoring runs.
var builtinAliases = map[string]string{
	// Swedish banks
	"svenska handelsbanken":         "SHB A",
	"handelsbanken":                 "SHB A",
	"shb":                           "SHB A",
	"seb":                           "SEB A",
	"skandinaviska enskilda banken": "SEB A",
	"swedbank":                      "SWED A",
	"nordea":                        "NDA SE",
	"nordea bank":                   "NDA SE",
	// Norwegian
	"lea bank": "LEA",
	"lea":      "LEA",
}

// bankAliasTokens trigger bank mode even without the literal word "bank".
var bankAliasTokens = map[string]bool{
	"handelsbanken": true,
	"swedbank":      true,
	"nordea":        true,
	"seb":           true,
}
