package workspace

// RunMode resolves the effective auto/manual decision applied to a single
// pipeline run. The persisted workspace config supplies the default
// (auto when approval is not required); an in-session toggle overrides it
// until the config is reloaded or saved, which resets the selection back
// to the persisted default.
type RunMode struct {
	defaultAuto bool
	override    *bool
}

// ResetFromConfig discards any in-session override and re-derives the
// default from the given config. Call it whenever the config is loaded or
// saved so the operator's last-seen default mode is pre-selected.
func (m *RunMode) ResetFromConfig(cfg Config) {
	m.defaultAuto = !cfg.ApprovalRequired
	m.override = nil
}

// Set records an explicit in-session choice.
func (m *RunMode) Set(auto bool) {
	m.override = &auto
}

// EffectiveAuto returns the mode the next run request should carry.
func (m *RunMode) EffectiveAuto() bool {
	if m.override != nil {
		return *m.override
	}
	return m.defaultAuto
}

// Overridden reports whether the operator toggled the mode this session.
func (m *RunMode) Overridden() bool {
	return m.override != nil
}
