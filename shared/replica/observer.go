package replica

import (
	"github.com/SpeedyZooba/blocky-climb/shared/netcomponents"
	"github.com/SpeedyZooba/blocky-climb/shared/netconfig"
)

// Change is the difference between two observed snapshots of a store.
type Change struct {
	StateChanged bool
	OldState     netconfig.MatchState
	NewState     netconfig.MatchState

	PhaseChanged bool
	OldPhase     netconfig.Phase
	NewPhase     netconfig.Phase

	Joined []netconfig.PlayerID
	Left   []netconfig.PlayerID

	// TableChanged is set when any name or ready flag changed.
	TableChanged bool
}

// Empty reports whether nothing was observed to change.
func (c Change) Empty() bool {
	return !c.StateChanged && !c.PhaseChanged && len(c.Joined) == 0 && len(c.Left) == 0 && !c.TableChanged
}

// Observer diffs successive store snapshots. Run it once per tick after the
// store has been written or a snapshot applied; each transition is reported
// exactly once.
type Observer struct {
	primed bool
	state  netconfig.MatchState
	phase  netconfig.Phase
	rows   map[netconfig.PlayerID]tableRow
}

type tableRow struct {
	name  string
	ready bool
}

func (o *Observer) Observe(s *Store) Change {
	m := s.Match()
	rows := make(map[netconfig.PlayerID]tableRow, s.Len())
	s.Each(func(p netcomponents.NetPlayerData) {
		rows[p.ID] = tableRow{name: p.Nickname, ready: p.Ready}
	})

	var c Change
	if !o.primed {
		// first observation reports the initial state as a transition
		c.StateChanged, c.NewState = true, m.State
		c.PhaseChanged, c.NewPhase = true, m.Phase()
		c.TableChanged = true
		c.Joined = s.IDs()
	} else {
		if m.State != o.state {
			c.StateChanged, c.OldState, c.NewState = true, o.state, m.State
		}
		if m.Phase() != o.phase {
			c.PhaseChanged, c.OldPhase, c.NewPhase = true, o.phase, m.Phase()
		}
		for _, id := range s.IDs() {
			prev, ok := o.rows[id]
			if !ok {
				c.Joined = append(c.Joined, id)
				c.TableChanged = true
				continue
			}
			if prev != rows[id] {
				c.TableChanged = true
			}
		}
		for id := range o.rows {
			if _, ok := rows[id]; !ok {
				c.Left = append(c.Left, id)
				c.TableChanged = true
			}
		}
	}

	o.primed = true
	o.state = m.State
	o.phase = m.Phase()
	o.rows = rows
	return c
}
