package card

import (
	"gameboard/backend/internal/auth"
	"gameboard/backend/internal/models"
)

// Available is the availability predicate: there is an open slot and email is
// not on the roster. An absent identity is tested as the empty string.
func Available(g models.Game, email string) bool {
	return g.PlayersNeeded > 0 && !g.HasJoined(email)
}

// Apply returns the candidate record for id joining g. PlayersNeeded drops by
// exactly one with no floor. An absent identity adds nothing to the roster but
// still consumes the slot.
func Apply(g models.Game, id auth.Identity) models.Game {
	next := g.Clone()
	next.PlayersNeeded = g.PlayersNeeded - 1
	joined := make([]string, 0, len(g.JoinedPlayers)+1)
	joined = append(joined, g.JoinedPlayers...)
	if id.SignedIn() {
		joined = append(joined, id.Email)
	}
	next.JoinedPlayers = joined
	return next
}
