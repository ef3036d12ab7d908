package classifier_test

import (
	"testing"

	"github.com/vigil-eol/advisor/classifier"
)

func TestClassifyPrecedenceOrder(t *testing.T) {
	cases := []struct {
		name       string
		message    string
		wantIntent classifier.QueryIntent
		wantTask   classifier.TaskType
	}{
		{
			name:       "internet search beats a plain EOL phrase",
			message:    "search the web for windows server 2012 eol",
			wantIntent: classifier.IntentInternetEOL,
			wantTask:   classifier.TaskInternetEOL,
		},
		{
			name:       "upgrade planning phrase",
			message:    "what's our upgrade plan for postgresql 9.6",
			wantIntent: classifier.IntentUpdatePlanning,
			wantTask:   classifier.TaskUpdatePlanning,
		},
		{
			name:       "os inventory plus eol phrase resolves to the grounded intent",
			message:    "review my os inventory for eol risk",
			wantIntent: classifier.IntentOSEOLGrounded,
			wantTask:   classifier.TaskMixedInventoryEOL,
		},
		{
			name:       "software inventory plus eol phrase resolves to the grounded intent",
			message:    "what's the status of our software eol exposure",
			wantIntent: classifier.IntentSoftwareEOLGrounded,
			wantTask:   classifier.TaskMixedInventoryEOL,
		},
		{
			name:       "general grounded phrase",
			message:    "audit my assets for end of life risk",
			wantIntent: classifier.IntentGeneralEOLGrounded,
			wantTask:   classifier.TaskMixedInventoryEOL,
		},
		{
			name:       "plain EOL phrase beats a plain inventory keyword in the same message",
			message:    "what software do i have that's reaching eol soon",
			wantIntent: classifier.IntentDirectEOL,
			wantTask:   classifier.TaskEOLOnly,
		},
		{
			name:       "direct EOL question about a named product",
			message:    "is windows server 2012 still supported",
			wantIntent: classifier.IntentDirectEOL,
			wantTask:   classifier.TaskEOLOnly,
		},
		{
			name:       "plain OS inventory question with no EOL phrase",
			message:    "what os do i have running in production",
			wantIntent: classifier.IntentOSInventory,
			wantTask:   classifier.TaskInventoryOnly,
		},
		{
			name:       "plain software inventory question with no EOL phrase",
			message:    "what software do i have installed",
			wantIntent: classifier.IntentSoftwareInventory,
			wantTask:   classifier.TaskInventoryOnly,
		},
		{
			name:       "unmatched message falls back to direct_eol",
			message:    "ubuntu 18.04",
			wantIntent: classifier.IntentDirectEOL,
			wantTask:   classifier.TaskEOLOnly,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			intent, task := classifier.Classify(tc.message)
			if intent != tc.wantIntent {
				t.Fatalf("message %q: expected intent %s, got %s", tc.message, tc.wantIntent, intent)
			}
			if task != tc.wantTask {
				t.Fatalf("message %q: expected task %s, got %s", tc.message, tc.wantTask, task)
			}
		})
	}
}

func TestClassifyIsDeterministic(t *testing.T) {
	message := "review my os inventory for eol risk"
	intent, task := classifier.Classify(message)
	for i := 0; i < 20; i++ {
		gotIntent, gotTask := classifier.Classify(message)
		if gotIntent != intent || gotTask != task {
			t.Fatalf("expected Classify to be deterministic, got %s/%s then %s/%s", intent, task, gotIntent, gotTask)
		}
	}
}

func TestClassifyIsCaseInsensitive(t *testing.T) {
	intent, task := classifier.Classify("SEARCH THE WEB for Windows Server 2012 EOL")
	if intent != classifier.IntentInternetEOL || task != classifier.TaskInternetEOL {
		t.Fatalf("expected case-insensitive matching, got %s/%s", intent, task)
	}
}
