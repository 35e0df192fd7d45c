package game

import "errors"

var ErrUnknownGame = errors.New("неизвестный тип игры")

// ForType возвращает генератор для типа игры
func ForType(t Type, roundSeconds int) (Generator, error) {
	switch t {
	case TypeDiceTrading:
		return NewDiceTrading(roundSeconds), nil
	case TypeCardTrading:
		return NewCardTrading(roundSeconds), nil
	case TypeSequence:
		return NewSequenceTest(roundSeconds), nil
	case TypeMemory:
		return NewMemoryTest(roundSeconds), nil
	case TypeMarketMaking:
		return NewMarketMaking(roundSeconds), nil
	default:
		return nil, ErrUnknownGame
	}
}

// ParseDifficulty нормализует сложность, по умолчанию easy
func ParseDifficulty(s string) Difficulty {
	switch Difficulty(s) {
	case DifficultyMedium:
		return DifficultyMedium
	case DifficultyHard:
		return DifficultyHard
	default:
		return DifficultyEasy
	}
}
