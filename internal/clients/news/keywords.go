package news

// Keyword lists used to score headlines. Deliberately coarse: the aggregate
// sentiment is a voting scheme, so precision per headline matters less than
// robustness to phrasing.
var positiveKeywords = []string{
	"surge", "gains", "rally", "bullish", "growth", "positive",
	"boom", "record", "high", "rise", "up", "jumps", "soars",
}

var negativeKeywords = []string{
	"fall", "decline", "bearish", "crash", "loss", "negative",
	"down", "drop", "weak", "concern", "slump", "plunge",
}

// themeKeywords maps sector themes to trigger words in headlines.
var themeKeywords = map[string][]string{
	"technology":      {"tech", " it ", "software"},
	"banking":         {"bank", "finance", "credit"},
	"pharmaceuticals": {"pharma", "drug", "healthcare"},
	"automotive":      {"auto", "car", "vehicle"},
	"energy":          {"oil", "energy", "power"},
}
