package layer

import (
	"math"
	"regexp"
)

const entropyMinLength = 20
const entropyThreshold = 4.5

var urlPattern = regexp.MustCompile(`^https?://`)
var jwtPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+\.[A-Za-z0-9_-]+\.[A-Za-z0-9_-]+$`)
var uuidPattern = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)
var hexHashPattern = regexp.MustCompile(`^[0-9a-fA-F]{32}$|^[0-9a-fA-F]{40}$|^[0-9a-fA-F]{64}$`)
var base64Pattern = regexp.MustCompile(`^[A-Za-z0-9+/]+={0,2}$`)

func isURL(s string) bool {
	return urlPattern.MatchString(s)
}

// isLegitimateHighEntropy reports whether s is a recognized high-entropy
// form that is not a sign of obfuscation: a JWT, a UUID, an MD5/SHA1/SHA256
// hex digest, or a padded (or ≥100-char) base64 string (spec §4.5).
func isLegitimateHighEntropy(s string) bool {
	if jwtPattern.MatchString(s) {
		return true
	}
	if uuidPattern.MatchString(s) {
		return true
	}
	if hexHashPattern.MatchString(s) {
		return true
	}
	if base64Pattern.MatchString(s) {
		if len(s) >= 100 || (len(s)%4 == 0 && (len(s) == 0 || s[len(s)-1] == '=')) {
			return true
		}
	}
	return false
}

// shannonEntropy computes Shannon entropy in bits per character over s's
// byte distribution.
func shannonEntropy(s string) float64 {
	if s == "" {
		return 0
	}
	var counts [256]int
	for i := 0; i < len(s); i++ {
		counts[s[i]]++
	}
	n := float64(len(s))
	var entropy float64
	for _, c := range counts {
		if c == 0 {
			continue
		}
		p := float64(c) / n
		entropy -= p * math.Log2(p)
	}
	return entropy
}
