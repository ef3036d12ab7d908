package orchestrator

import "strings"

// destructivePhrases is the ordered phrase table the confirm gate
// checks against an incoming message, mirroring the Classifier's
// keyword-table shape but for a single yes/no predicate instead of an
// intent. Anything that reads as "wipe state and start over" routes
// through the confirm handshake rather than running immediately.
var destructivePhrases = []string{
	"purge the cache",
	"purge cache",
	"clear the cache",
	"clear cache",
	"wipe the cache",
	"flush the cache",
	"delete all cached",
	"rescan everything",
	"full rescan",
	"force a rescan",
	"re-scan all assets",
	"rescan all assets",
	"reset the inventory",
	"drop all cached results",
}

// LooksDestructive reports whether message matches C9's phrase table.
// It is intentionally simple and order-independent (unlike the
// Classifier's first-match-wins table) since every phrase here carries
// the same consequence — require confirmation — so there is nothing
// to disambiguate between matches.
func LooksDestructive(message string) bool {
	lower := strings.ToLower(message)
	for _, phrase := range destructivePhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}
