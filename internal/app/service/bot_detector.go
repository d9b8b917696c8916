package service

import (
	"fmt"
	"regexp"
	"strings"
)

// BotDetector matches client user agents against case-insensitive signatures.
type BotDetector struct {
	patterns []*regexp.Regexp
}

// NewBotDetector compiles the signatures. Each one is a regular expression;
// plain words behave as substring matches.
func NewBotDetector(signatures []string) (*BotDetector, error) {
	d := &BotDetector{patterns: make([]*regexp.Regexp, 0, len(signatures))}
	for _, sig := range signatures {
		sig = strings.TrimSpace(sig)
		if sig == "" {
			continue
		}
		re, err := regexp.Compile("(?i)" + sig)
		if err != nil {
			return nil, fmt.Errorf("bot signature %q: %w", sig, err)
		}
		d.patterns = append(d.patterns, re)
	}
	return d, nil
}

// IsBot reports whether userAgent matches any signature. An empty user agent is never a bot.
func (d *BotDetector) IsBot(userAgent string) bool {
	if d == nil || userAgent == "" {
		return false
	}
	for _, re := range d.patterns {
		if re.MatchString(userAgent) {
			return true
		}
	}
	return false
}
