package repertoire

// PlayerCount is how many header slots name a player.
type PlayerCount struct {
	Name  string
	Count int
}

// CountPlayers tallies every non-empty White and Black header. A name that
// fills both headers of one game is counted twice. The result is ordered by
// first appearance, White before Black within a game.
func CountPlayers(games []Game) []PlayerCount {
	index := make(map[string]int)
	var counts []PlayerCount
	add := func(name string) {
		if name == "" {
			return
		}
		i, ok := index[name]
		if !ok {
			i = len(counts)
			index[name] = i
			counts = append(counts, PlayerCount{Name: name})
		}
		counts[i].Count++
	}
	for _, g := range games {
		add(g.Tag("White"))
		add(g.Tag("Black"))
	}
	return counts
}

// IdentifyPlayer returns override if set, otherwise the most frequent player.
// Ties go to the name seen first.
func IdentifyPlayer(games []Game, override string) (PlayerCount, error) {
	if override != "" {
		return PlayerCount{Name: override}, nil
	}
	counts := CountPlayers(games)
	if len(counts) == 0 {
		return PlayerCount{}, ErrNoPlayersFound
	}
	best := counts[0]
	for _, c := range counts[1:] {
		if c.Count > best.Count {
			best = c
		}
	}
	return best, nil
}

// FilterGames keeps the games where the color's header equals player exactly.
func FilterGames(games []Game, player string, color Color) []Game {
	tag := color.Tag()
	var out []Game
	for _, g := range games {
		if g.Tag(tag) == player {
			out = append(out, g)
		}
	}
	return out
}
