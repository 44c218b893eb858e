package game

import (
	"fmt"
	"math/rand"
)

const (
	// CardSize is the number of cells on a card (5x5 grid).
	CardSize = 25

	// FreeCell is the sentinel stored in the center cell.
	FreeCell = 0

	// freeIndex is the center of the grid in column-major order.
	freeIndex = 12

	columnRange = 15
)

// Card is a 5x5 bingo card stored column-major: index = col*5 + row.
// Column k holds 5 distinct numbers from [15k+1, 15k+15]; the center
// cell is FreeCell.
type Card [CardSize]int

// GenerateCard produces a fresh random card. Each call is independent.
func GenerateCard() Card {
	var card Card
	for col := 0; col < 5; col++ {
		low := col*columnRange + 1
		perm := rand.Perm(columnRange)
		for row := 0; row < 5; row++ {
			card[col*5+row] = low + perm[row]
		}
	}
	card[freeIndex] = FreeCell
	return card
}

// Contains reports whether n is a cell of the card, and at which index.
func (c Card) Contains(n int) (int, bool) {
	for i, v := range c {
		if v == n && i != freeIndex {
			return i, true
		}
	}
	return 0, false
}

// Label formats a drawn number with its column letter, e.g. B7 or O65.
func Label(n int) string {
	const letters = "BINGO"
	if n < 1 || n > 75 {
		return fmt.Sprintf("%d", n)
	}
	return fmt.Sprintf("%c%d", letters[(n-1)/columnRange], n)
}
