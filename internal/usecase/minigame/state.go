package minigame

import (
	"encoding/json"
	"fmt"

	"github.com/duetapp/duet-backend/internal/domain"
)

// State is the tagged union persisted per room: exactly one variant is
// non-nil, selected by GameID. It is decoded once at the protocol
// boundary; handlers only ever see the typed variant.
type State struct {
	GameID domain.GameID `json:"gameId"`

	Headsup   *HeadsupState   `json:"headsup,omitempty"`
	TicTacToe *TicTacToeState `json:"tictactoe,omitempty"`
	TwoTruths *TwoTruthsState `json:"twotruthslie,omitempty"`
	Trivia    *TriviaState    `json:"trivia,omitempty"`
}

func decodeState(raw []byte) (*State, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var s State
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("decode game state: %w", err)
	}
	return &s, nil
}

func encodeState(s *State) ([]byte, error) {
	raw, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode game state: %w", err)
	}
	return raw, nil
}

type HeadsupState struct {
	Players    [2]string `json:"players"`
	Guesser    string    `json:"guesser"`
	Turn       int       `json:"turn"`
	Item       string    `json:"item"`
	UsedItems  []string  `json:"usedItems"`
	NumCorrect int       `json:"numCorrect"`
}

type TicTacToeState struct {
	PlayerX string    `json:"playerX"`
	PlayerO string    `json:"playerO"`
	Board   [9]string `json:"board"`
	Turn    string    `json:"turn"`
	Winner  string    `json:"winner,omitempty"`
	Tie     bool      `json:"tie"`
	Decided bool      `json:"decided"`
}

// Two Truths and a Lie phases.
const (
	PhaseSubmitting = "submitting"
	PhaseGuessing   = "guessing"
	PhaseRevealing  = "revealing"
	PhaseAnswering  = "answering"
)

type TwoTruthsState struct {
	Players    [2]string      `json:"players"`
	Turn       int            `json:"turn"`
	Round      int            `json:"round"`
	Phase      string         `json:"phase"`
	Submitter  string         `json:"submitter"`
	Guesser    string         `json:"guesser"`
	Statements []string       `json:"statements,omitempty"`
	LieIndex   int            `json:"lieIndex"`
	Scores     map[string]int `json:"scores"`
}

type TriviaState struct {
	Players       [2]string      `json:"players"`
	QuestionNum   int            `json:"questionNum"`
	UsedQuestions []int          `json:"usedQuestions"`
	Question      string         `json:"question"`
	Options       []string       `json:"options"`
	CorrectIndex  int            `json:"correctIndex"`
	Answers       map[string]int `json:"answers"`
	Phase         string         `json:"phase"`
	Score         int            `json:"score"`
}

func (s *TriviaState) answered(userID string) bool {
	_, ok := s.Answers[userID]
	return ok
}

func (s *TriviaState) isPlayer(userID string) bool {
	return s.Players[0] == userID || s.Players[1] == userID
}
