package mission

// Transition describes what Advance did to the table.
type Transition struct {
	Mission   Mission // the mission after the change
	Completed bool    // the mission moved into completed
	Unlocked  *Mission
	NextStep  *Step // the new current step when not completed
}

// Advance moves the mission with the given id one step forward and returns
// the new table. Unknown ids and already completed missions leave the table
// untouched and report ok == false, so a replayed completion can never grant
// rewards twice.
//
// Completing a mission sets its step index to len(Steps) and unlocks the
// mission whose id is id+1, but only if that mission is still locked.
func (t Table) Advance(id int) (Table, Transition, bool) {
	i := t.Index(id)
	if i < 0 || t[i].Status == StatusCompleted {
		return t, Transition{}, false
	}

	out := t.Clone()
	m := &out[i]

	if !m.OnLastStep() {
		m.Step++
		next := m.Steps[m.Step]
		return out, Transition{Mission: *m, NextStep: &next}, true
	}

	m.Status = StatusCompleted
	m.Step = len(m.Steps)
	tr := Transition{Mission: *m, Completed: true}

	if j := out.Index(id + 1); j >= 0 && out[j].Status == StatusLocked {
		out[j].Status = StatusAvailable
		unlocked := out[j]
		tr.Unlocked = &unlocked
	}
	tr.Mission = out[i]
	return out, tr, true
}
