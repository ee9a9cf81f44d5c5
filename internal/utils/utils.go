package utils

import (
	"math"
	"strings"
)

// CalculateEntropy computes the Shannon entropy of a string
func CalculateEntropy(s string) float64 {
	if len(s) == 0 {
		return 0
	}

	freqs := make(map[rune]float64)
	for _, r := range s {
		freqs[r]++
	}

	var entropy float64
	total := float64(len(s))
	for _, count := range freqs {
		p := count / total
		entropy -= p * math.Log2(p)
	}

	return entropy
}

// cdnDomains are hosts serving shared libraries rather than application code
var cdnDomains = []string{
	"googleapis.com",
	"gstatic.com",
	"google-analytics.com",
	"googletagmanager.com",
	"doubleclick.net",
	"facebook.net",
	"cdnjs.cloudflare.com",
	"ajax.cloudflare.com",
	"cdn.jsdelivr.net",
	"unpkg.com",
	"code.jquery.com",
	"maxcdn.bootstrapcdn.com",
	"stackpath.bootstrapcdn.com",
	"cdn.bootcss.com",
	"ajax.aspnetcdn.com",
}

var skipFilenames = []string{
	// Analytics & Tracking
	"gtm.js",
	"gtag.js",
	"ga.js",
	"analytics.js",
	"fbevents.js",
	"pixel.js",

	// jQuery / Bootstrap
	"jquery.js",
	"jquery.min.js",
	"jquery-",
	"bootstrap.js",
	"bootstrap.min.js",
	"bootstrap.bundle",

	// Polyfills
	"modernizr",
	"polyfill",
	"html5shiv",
	"respond.min.js",

	// Fonts & widgets
	"fontawesome",
	"font-awesome",
	"platform.twitter",

	// Ads / monitoring
	"googlesyndication",
	"adservice",
	"sentry",
	"newrelic",
	"hotjar",
	"clarity.ms",
}

// ShouldSkipThirdPartyJS reports whether a JS URL is a well-known
// third-party library that is not worth recursing into.
func ShouldSkipThirdPartyJS(rawURL string) bool {
	lowerURL := strings.ToLower(rawURL)

	if strings.Contains(lowerURL, "node_modules") {
		return true
	}

	for _, cdn := range cdnDomains {
		if strings.Contains(lowerURL, cdn) {
			return true
		}
	}

	for _, skip := range skipFilenames {
		if strings.Contains(lowerURL, skip) {
			return true
		}
	}

	return false
}
