package domain

// GameID identifies one of the in-call minigames.
type GameID string

const (
	GameHeadsup      GameID = "headsup"
	GameTicTacToe    GameID = "tictactoe"
	GameTwoTruthsLie GameID = "twotruthslie"
	GameTrivia       GameID = "trivia"
)

func (g GameID) Valid() bool {
	switch g {
	case GameHeadsup, GameTicTacToe, GameTwoTruthsLie, GameTrivia:
		return true
	}
	return false
}
