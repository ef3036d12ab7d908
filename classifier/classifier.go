// Package classifier maps a free-form user message to a
// (QueryIntent, TaskType) pair via an ordered keyword/phrase table. It
// is deliberately rule-based rather than a model call: deterministic,
// side-effect free, and the order predicates are tried in is itself
// the contract (internet-search phrases beat EOL phrases beat
// inventory phrases).
package classifier

import "strings"

// QueryIntent is the finite intent space a message can classify into.
type QueryIntent string

const (
	IntentDirectEOL            QueryIntent = "direct_eol"
	IntentInternetEOL          QueryIntent = "internet_eol"
	IntentOSInventory          QueryIntent = "os_inventory"
	IntentSoftwareInventory    QueryIntent = "software_inventory"
	IntentOSEOLGrounded        QueryIntent = "os_eol_grounded"
	IntentSoftwareEOLGrounded  QueryIntent = "software_eol_grounded"
	IntentGeneralEOLGrounded   QueryIntent = "general_eol_grounded"
	IntentUpdatePlanning       QueryIntent = "update_planning"
)

// TaskType groups intents into the orchestrator's execution shape.
type TaskType string

const (
	TaskEOLOnly            TaskType = "EOL_ONLY"
	TaskInternetEOL        TaskType = "INTERNET_EOL"
	TaskInventoryOnly      TaskType = "INVENTORY_ONLY"
	TaskMixedInventoryEOL  TaskType = "MIXED_INVENTORY_EOL"
	TaskUpdatePlanning     TaskType = "UPDATE_PLANNING"
)

// taskForIntent is the fixed (intent, task) mapping every intent
// resolves to.
var taskForIntent = map[QueryIntent]TaskType{
	IntentInternetEOL:         TaskInternetEOL,
	IntentDirectEOL:           TaskEOLOnly,
	IntentOSInventory:         TaskInventoryOnly,
	IntentSoftwareInventory:   TaskInventoryOnly,
	IntentOSEOLGrounded:       TaskMixedInventoryEOL,
	IntentSoftwareEOLGrounded: TaskMixedInventoryEOL,
	IntentGeneralEOLGrounded:  TaskMixedInventoryEOL,
	IntentUpdatePlanning:      TaskUpdatePlanning,
}

type rule struct {
	intent   QueryIntent
	keywords []string
}

// rules is tried in order; the first matching rule wins. Internet
// search phrases are checked first so "search the web for windows
// server 2012 eol" doesn't fall through to direct_eol. The grounded
// intents (os/software/general) are checked next so a message that
// combines an inventory phrase with an EOL phrase, like "review my OS
// inventory for EOL risk", resolves to the grounded intent rather than
// plain direct_eol. Plain EOL phrases are then checked before plain
// inventory phrases — precedence is internet-search beats EOL beats
// inventory — so a message like "what software do I have that's
// reaching EOL soon" still classifies as direct_eol instead of losing
// its EOL intent to the "what software" inventory keyword.
var rules = []rule{
	{IntentInternetEOL, []string{"search the web", "search online", "google it", "look it up online", "web search"}},
	{IntentUpdatePlanning, []string{"upgrade plan", "migration plan", "how should we upgrade", "plan to migrate", "upgrade path"}},
	{IntentOSEOLGrounded, []string{"my os inventory", "our operating systems", "os fleet", "operating system eol", "os eol"}},
	{IntentSoftwareEOLGrounded, []string{"my software inventory", "our software", "software fleet", "software eol"}},
	{IntentGeneralEOLGrounded, []string{"review my inventory", "audit my assets", "what's at risk", "whats at risk", "eol review"}},
	{IntentDirectEOL, []string{"eol", "end of life", "end-of-life", "still supported", "support ended", "when does", "reach end of life"}},
	{IntentOSInventory, []string{"what os", "what operating system", "which os", "list our os", "os do i have", "operating systems do i have"}},
	{IntentSoftwareInventory, []string{"what software", "which software", "list our software", "software do i have"}},
}

// Classify returns the intent/task pair for a message. When no rule
// matches, it defaults to direct_eol/EOL_ONLY — the safest fallback
// since most unmatched messages still name a product.
func Classify(message string) (QueryIntent, TaskType) {
	lower := strings.ToLower(message)
	for _, r := range rules {
		for _, kw := range r.keywords {
			if strings.Contains(lower, kw) {
				return r.intent, taskForIntent[r.intent]
			}
		}
	}
	return IntentDirectEOL, TaskEOLOnly
}
