package engine

import "fmt"

// AdvanceStep moves a mission one step forward. Unknown and already
// completed missions are ignored.
func (e *Engine) AdvanceStep(missionID int) {
	defer e.flush()
	e.mu.Lock()
	defer e.mu.Unlock()
	e.advance(missionID)
}

// advance is AdvanceStep for callers that hold e.mu.
func (e *Engine) advance(missionID int) {
	missions, tr, ok := e.missions.Advance(missionID)
	if !ok {
		e.log.Debug("Ignoring advance", "mission_id", missionID)
		return
	}
	e.missions = missions
	m := tr.Mission

	if !tr.Completed {
		e.notify("New objective: " + tr.NextStep.Description)
		e.emit(EventMissionAdvanced, map[string]any{"mission_id": m.ID, "step": m.Step})
		e.log.Info("Mission advanced", "mission_id", m.ID, "step", m.Step)
		return
	}

	// Rewards are granted here and only here: Advance refuses completed
	// missions, so a replay never reaches this point.
	p := e.player.Clone()
	p.Coins += m.RewardCoins
	if m.GemColor != "" {
		p.Gems[m.GemColor] += m.RewardGems
	}
	p, levels := p.WithXP(float64(m.RewardXP) * p.XPBoost)
	e.player = p

	e.notify(fmt.Sprintf("Mission %q completed!", m.Title))
	e.emit(EventMissionCompleted, map[string]any{
		"mission_id": m.ID,
		"coins":      m.RewardCoins,
		"xp":         float64(m.RewardXP) * e.player.XPBoost,
		"gems":       m.RewardGems,
		"gem_color":  m.GemColor,
	})
	e.log.Info("Mission completed", "mission_id", m.ID, "coins", p.Coins, "level", p.Level, "xp", p.XP)

	for _, level := range levels {
		e.notify(fmt.Sprintf("Level up! Level %d", level))
		e.emit(EventPlayerLevelUp, map[string]any{"level": level})
	}

	if tr.Unlocked != nil {
		e.emit(EventMissionUnlocked, map[string]any{"mission_id": tr.Unlocked.ID})
		e.log.Info("Mission unlocked", "mission_id", tr.Unlocked.ID)
	}
}
