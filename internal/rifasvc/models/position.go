package models

import (
	"fmt"
	"strconv"
	"strings"
)

// Position is a purchase payload slot reference before normalization.
// Exactly one of Number or Row/Col is used, depending on the game kind.
type Position struct {
	Number int    `json:"number,omitempty"`
	Row    string `json:"row,omitempty"`
	Col    int    `json:"col,omitempty"`
}

// NormalizePosition produces the canonical position key that anchors
// slot uniqueness. Serialized payloads are never compared directly:
// key-order and formatting differences would make duplicate detection
// fragile, so this key is the only uniqueness anchor.
//
// Numbered games: "N<position>", position in [1, capacity].
// Grid games: "<ROW><col>", row case-folded to a single letter within
// the declared row count, col in [1, cols]. E.g. "c7" -> "C7".
func NormalizePosition(game *Game, pos Position) (string, error) {
	switch game.Kind {
	case GameKindNumbered:
		if pos.Number < 1 || pos.Number > game.Capacity {
			return "", fmt.Errorf("position %d out of range 1..%d", pos.Number, game.Capacity)
		}
		return "N" + strconv.Itoa(pos.Number), nil
	case GameKindGrid:
		row := strings.ToUpper(strings.TrimSpace(pos.Row))
		if len(row) != 1 || row[0] < 'A' || row[0] > 'Z' {
			return "", fmt.Errorf("invalid grid row %q", pos.Row)
		}
		if int(row[0]-'A')+1 > game.GridRows {
			return "", fmt.Errorf("grid row %s out of range A..%c", row, 'A'+byte(game.GridRows-1))
		}
		if pos.Col < 1 || pos.Col > game.GridCols {
			return "", fmt.Errorf("grid column %d out of range 1..%d", pos.Col, game.GridCols)
		}
		return row + strconv.Itoa(pos.Col), nil
	default:
		return "", fmt.Errorf("game kind %s has no positions", game.Kind)
	}
}
