package services

import (
	"math/rand/v2"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	types "github.com/yungbote/transfermarket-backend/internal/domain/market"
)

const (
	minPlayerAge = 18
	maxPlayerAge = 40
)

var (
	rosterFirstNames = []string{
		"Luka", "Giorgi", "Marco", "Diego", "Jonas", "Mateo", "Ali", "Noah", "Kenji", "Ivan",
		"Pedro", "Liam", "Ousmane", "Rafael", "Erik", "Tomas", "Yusuf", "Levan", "Andre", "Karim",
		"Sami", "Hugo", "Nikola", "Bruno", "Felix", "Dani", "Arda", "Otar", "Jules", "Mikel",
	}
	rosterLastNames = []string{
		"Silva", "Kvaratskhelia", "Rossi", "Fernandez", "Muller", "Garcia", "Yilmaz", "Smith", "Tanaka", "Petrov",
		"Costa", "Murphy", "Diallo", "Santos", "Larsen", "Novak", "Demir", "Beridze", "Moreau", "Haddad",
		"Jensen", "Lopez", "Jovanovic", "Alves", "Weber", "Ruiz", "Kaya", "Chikhladze", "Bernard", "Oyarzabal",
	}
	rosterCountries = []string{
		"Georgia", "Italy", "Spain", "Germany", "France", "Brazil", "Argentina", "Portugal",
		"England", "Netherlands", "Turkey", "Japan", "Serbia", "Senegal", "Denmark", "Croatia",
	}
)

// RosterGenerator builds the starting squad of a new team.
type RosterGenerator struct {
	rng *rand.Rand
	now func() time.Time
}

func NewRosterGenerator(rng *rand.Rand) *RosterGenerator {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &RosterGenerator{rng: rng, now: time.Now}
}

// Generate returns counts[pos] players per position, in roster position order,
// each valued at value.
func (g *RosterGenerator) Generate(teamID uuid.UUID, counts map[types.Position]int, value decimal.Decimal) []*types.Player {
	positions := orderedPositions(counts)
	now := g.now().UTC()
	out := make([]*types.Player, 0, len(counts)*6)
	for _, pos := range positions {
		for i := 0; i < counts[pos]; i++ {
			out = append(out, &types.Player{
				ID:          uuid.New(),
				TeamID:      teamID,
				FirstName:   rosterFirstNames[g.rng.IntN(len(rosterFirstNames))],
				LastName:    rosterLastNames[g.rng.IntN(len(rosterLastNames))],
				Country:     rosterCountries[g.rng.IntN(len(rosterCountries))],
				Position:    pos,
				DateOfBirth: g.birthDate(now),
				Value:       types.RoundMoney(value),
			})
		}
	}
	return out
}

// birthDate picks a date that makes the player between minPlayerAge and
// maxPlayerAge years old at now.
func (g *RosterGenerator) birthDate(now time.Time) time.Time {
	age := minPlayerAge + g.rng.IntN(maxPlayerAge-minPlayerAge+1)
	extraDays := g.rng.IntN(364)
	dob := now.AddDate(-age, 0, -extraDays)
	return time.Date(dob.Year(), dob.Month(), dob.Day(), 0, 0, 0, 0, time.UTC)
}

func orderedPositions(counts map[types.Position]int) []types.Position {
	out := make([]types.Position, 0, len(counts))
	seen := map[types.Position]bool{}
	for _, p := range types.Positions() {
		if counts[p] > 0 {
			out = append(out, p)
			seen[p] = true
		}
	}
	var extra []types.Position
	for p, n := range counts {
		if n > 0 && !seen[p] {
			extra = append(extra, p)
		}
	}
	sort.Slice(extra, func(i, j int) bool { return extra[i] < extra[j] })
	return append(out, extra...)
}
