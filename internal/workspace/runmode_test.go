package workspace_test

import (
	"testing"

	"curator/internal/workspace"
)

func TestRunModeDefaultsFromConfig(t *testing.T) {
	var mode workspace.RunMode

	mode.ResetFromConfig(workspace.Config{ApprovalRequired: true, IntervalDays: 1, MaxCandidates: 20, PickTopN: 5})
	if mode.EffectiveAuto() {
		t.Fatal("approval_required=true should default to manual")
	}

	mode.ResetFromConfig(workspace.Config{ApprovalRequired: false})
	if !mode.EffectiveAuto() {
		t.Fatal("approval_required=false should default to automatic")
	}
}

func TestRunModeOverrideWinsUntilReset(t *testing.T) {
	var mode workspace.RunMode
	mode.ResetFromConfig(workspace.Config{ApprovalRequired: true})

	mode.Set(true)
	if !mode.EffectiveAuto() {
		t.Fatal("in-session override should win over the persisted default")
	}
	if !mode.Overridden() {
		t.Fatal("expected Overridden to report true after Set")
	}

	// Saving or reloading the config resets the selection to the default.
	mode.ResetFromConfig(workspace.Config{ApprovalRequired: false})
	if mode.Overridden() {
		t.Fatal("reset should clear the override")
	}
	if !mode.EffectiveAuto() {
		t.Fatal("reset with approval_required=false should land on automatic")
	}
}
