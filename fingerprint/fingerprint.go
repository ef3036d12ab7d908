// Package fingerprint normalizes loosely-typed software/OS names and
// versions into a stable identity used as both the cache key and the
// single-flight key throughout the system.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"
)

// Kind distinguishes an operating system asset from an application asset.
type Kind string

const (
	KindOS       Kind = "os"
	KindSoftware Kind = "software"
)

// Fingerprint is the normalized (name, version, kind) identity of an
// asset. Two Fingerprints compare equal iff their normalized forms are
// equal; Fingerprints are immutable once constructed.
type Fingerprint struct {
	Name    string
	Version string
	Kind    Kind
}

// Equal reports whether two fingerprints are identical after normalization.
func (f Fingerprint) Equal(other Fingerprint) bool {
	return f.Name == other.Name && f.Version == other.Version && f.Kind == other.Kind
}

// String renders a stable human-readable identity, primarily for logging.
func (f Fingerprint) String() string {
	if f.Version == "" {
		return string(f.Kind) + ":" + f.Name
	}
	return string(f.Kind) + ":" + f.Name + "@" + f.Version
}

// Hex16 returns a 16-character hex digest of the fingerprint, used as the
// cache key suffix (eol/{agent_id}/{hex16}).
func (f Fingerprint) Hex16() string {
	sum := sha256.Sum256([]byte(string(f.Kind) + "\x00" + f.Name + "\x00" + f.Version))
	return hex.EncodeToString(sum[:])[:16]
}

var whitespaceRe = regexp.MustCompile(`\s+`)

// aliases maps normalized-name variants to the canonical product code the
// rest of the system expects to see. Order is irrelevant: lookups are
// exact-match against the folded, collapsed input.
var aliases = map[string]string{
	"sql server":        "mssqlserver",
	"ms sql server":     "mssqlserver",
	"microsoft sql":     "mssqlserver",
	"win server":        "windows server",
	"windows srv":       "windows server",
	"rhel":              "red hat enterprise linux",
	"centos":            "centos",
	"postgres":          "postgresql",
	"postgre":           "postgresql",
	"psql":              "postgresql",
	"node":              "nodejs",
	"node.js":           "nodejs",
	"py":                "python",
}

// Normalizer centralizes the name-folding logic shared by the
// InventoryCollector, the Classifier, and the Orchestrator's message
// extractor, so every caller arrives at the same Fingerprint for the
// same logical asset.
type Normalizer struct{}

// NewNormalizer constructs a Normalizer. It holds no state; a value is
// sufficient but a pointer-returning constructor keeps call sites
// consistent with the rest of the package layout.
func NewNormalizer() *Normalizer {
	return &Normalizer{}
}

// Normalize folds case, collapses whitespace, applies the alias table,
// and returns a Fingerprint. Calling Normalize twice on an already
// normalized input is idempotent.
func (n *Normalizer) Normalize(name, version string, kind Kind) Fingerprint {
	folded := strings.ToLower(strings.TrimSpace(name))
	folded = whitespaceRe.ReplaceAllString(folded, " ")
	if canon, ok := aliases[folded]; ok {
		folded = canon
	}

	v := strings.ToLower(strings.TrimSpace(version))
	v = whitespaceRe.ReplaceAllString(v, " ")

	return Fingerprint{Name: folded, Version: v, Kind: kind}
}

// ProductCode collapses the fingerprint's name+version into the
// hyphenated code form vendor static tables are keyed by, e.g.
// "windows-server-2016", "ubuntu-20.04", "python-3.9". It is a best
// effort transform: vendor providers still apply their own keyed lookup
// and fall back to Supports()-driven matching when this code misses.
func ProductCode(fp Fingerprint) string {
	name := strings.ReplaceAll(fp.Name, " ", "-")
	if fp.Version == "" {
		return name
	}
	return name + "-" + strings.ReplaceAll(fp.Version, " ", "-")
}
