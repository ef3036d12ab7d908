package orchestrator

import (
	"regexp"
	"strings"

	"github.com/vigil-eol/advisor/model"
)

// The message extractor mirrors the InventoryCollector's regex ladder
// (inventory.parseOSName/parseSoftwareName) but runs against a whole
// free-form sentence instead of a single "name version" inventory
// string, so the OS patterns are anchored rather than matched against
// the full trimmed line and a generic fallback picks out the first
// "word(s) followed by a number" span.
var (
	msgWindowsServer = regexp.MustCompile(`(?i)(Windows Server)\s+(\d{4})`)
	msgUbuntu        = regexp.MustCompile(`(?i)\b(Ubuntu)\s+(\d+\.\d+)`)
	msgAnchoredOS    = regexp.MustCompile(`(?i)\b(RHEL|Red Hat Enterprise Linux|CentOS|Debian|macOS|Mac OS X)\s+(\d+(?:\.\d+)*)`)
	msgGeneric       = regexp.MustCompile(`([A-Za-z][A-Za-z0-9.+#/ -]*?)\s+v?(\d+(?:\.\d+){0,3})\b`)

	osKeywords = map[string]bool{
		"windows server": true, "ubuntu": true, "rhel": true,
		"red hat enterprise linux": true, "centos": true,
		"debian": true, "macos": true, "mac os x": true,
	}
)

// ExtractAsset pulls the first plausible (name, version) pair out of a
// free-form message, reusing the same extraction ladder inventory rows
// go through. ok is false when nothing resembling a product
// name/version appears in the message.
func ExtractAsset(message string) (model.Asset, bool) {
	trimmed := strings.TrimSpace(message)
	if trimmed == "" {
		return model.Asset{}, false
	}

	if m := msgWindowsServer.FindStringSubmatch(trimmed); m != nil {
		return model.Asset{Name: m[1] + " " + m[2], Kind: model.AssetOS, SourceTag: "message"}, true
	}
	if m := msgUbuntu.FindStringSubmatch(trimmed); m != nil {
		return model.Asset{Name: m[1], Version: m[2], Kind: model.AssetOS, SourceTag: "message"}, true
	}
	if m := msgAnchoredOS.FindStringSubmatch(trimmed); m != nil {
		return model.Asset{Name: m[1], Version: m[2], Kind: model.AssetOS, SourceTag: "message"}, true
	}
	if m := msgGeneric.FindStringSubmatch(trimmed); m != nil {
		name := strings.TrimSpace(m[1])
		kind := model.AssetSoftware
		if osKeywords[strings.ToLower(name)] {
			kind = model.AssetOS
		}
		return model.Asset{Name: name, Version: m[2], Kind: kind, SourceTag: "message"}, true
	}
	return model.Asset{}, false
}
