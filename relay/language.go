package relay

import "strings"

// The mobile app sends spelled-out language names while the engines
// speak ISO 639-1. Tags already in code form pass through unchanged.
var languageCodes = map[string]string{
	"english":   "en",
	"hindi":     "hi",
	"tamil":     "ta",
	"telugu":    "te",
	"kannada":   "kn",
	"malayalam": "ml",
	"bengali":   "bn",
	"punjabi":   "pa",
	"marathi":   "mr",
	"gujarati":  "gu",
	"urdu":      "ur",
}

// LanguageCode normalizes a client language tag to an ISO code.
// "auto" and "" stay as given; they mean engine auto-detection.
func LanguageCode(tag string) string {
	tag = strings.ToLower(strings.TrimSpace(tag))
	if code, ok := languageCodes[tag]; ok {
		return code
	}
	return tag
}
