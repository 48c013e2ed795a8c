package repertoire

import "errors"

var (
	// ErrNoPlayersFound is returned when no override is given and no game names a player.
	ErrNoPlayersFound = errors.New("no players found")
	// ErrEmptyFilteredSet is returned when no game matches the player and color.
	ErrEmptyFilteredSet = errors.New("no games for player and color")
	// ErrEmptyOpeningSet is returned when the filtered games contribute no moves.
	ErrEmptyOpeningSet = errors.New("no opening moves extracted")
	// ErrBuilderSealed is returned when a game is added after Seal.
	ErrBuilderSealed = errors.New("tree builder is sealed")
)
