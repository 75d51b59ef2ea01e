// Package events decouples task mutations from their side effects.
//
// The task service emits a TaskEvent after each successful create or update;
// registered handlers (the notifier among them) react without the service
// knowing who they are.
package events
