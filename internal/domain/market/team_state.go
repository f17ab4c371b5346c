package market

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TeamState is the team aggregate state derived from its stream.
type TeamState struct {
	TeamUUID uuid.UUID
	Name     string
	Country  string
	Created  bool
	Balance  decimal.Decimal
	Version  int64
}

func NewTeamState(teamUUID uuid.UUID) *TeamState {
	return &TeamState{TeamUUID: teamUUID, Balance: decimal.Zero}
}

// Apply folds one event into the state. Events that do not concern the team
// still advance the version because they occupy a slot in the stream.
func (s *TeamState) Apply(ev Event) {
	switch e := Deref(ev).(type) {
	case TeamCreated:
		s.Created = true
		s.Name = e.Name
		s.Country = e.Country
	case InitialFundsAllocated:
		s.Balance = s.Balance.Add(e.Amount)
	case FundsTransferred:
		if e.FromUUID == s.TeamUUID {
			s.Balance = s.Balance.Sub(e.Amount)
		}
		if e.ToUUID == s.TeamUUID {
			s.Balance = s.Balance.Add(e.Amount)
		}
	}
	s.Version++
}

// FoldTeam replays events in stream order from an empty state.
func FoldTeam(teamUUID uuid.UUID, events []Event) *TeamState {
	s := NewTeamState(teamUUID)
	for _, ev := range events {
		s.Apply(ev)
	}
	return s
}
