package game

import "testing"

func TestGenerateCard_ColumnRanges(t *testing.T) {
	for i := 0; i < 50; i++ {
		card := GenerateCard()

		if card[freeIndex] != FreeCell {
			t.Fatalf("center cell = %d, want free sentinel %d", card[freeIndex], FreeCell)
		}

		for col := 0; col < 5; col++ {
			low, high := col*15+1, col*15+15
			seen := make(map[int]bool)
			for row := 0; row < 5; row++ {
				idx := col*5 + row
				if idx == freeIndex {
					continue
				}
				n := card[idx]
				if n < low || n > high {
					t.Fatalf("column %d cell %d = %d, want in [%d, %d]", col, row, n, low, high)
				}
				if seen[n] {
					t.Fatalf("column %d has duplicate value %d", col, n)
				}
				seen[n] = true
			}
		}
	}
}

func TestGenerateCard_Varies(t *testing.T) {
	first := GenerateCard()
	for i := 0; i < 10; i++ {
		if GenerateCard() != first {
			return
		}
	}
	t.Fatal("10 consecutive cards were identical")
}

func TestCard_Contains(t *testing.T) {
	card := GenerateCard()

	for i, n := range card {
		if i == freeIndex {
			continue
		}
		idx, ok := card.Contains(n)
		if !ok || idx != i {
			t.Fatalf("Contains(%d) = (%d, %v), want (%d, true)", n, idx, ok, i)
		}
	}

	if _, ok := card.Contains(FreeCell); ok {
		t.Error("Contains(FreeCell) = true, want false")
	}
	if _, ok := card.Contains(76); ok {
		t.Error("Contains(76) = true, want false")
	}
}

func TestLabel(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{1, "B1"},
		{15, "B15"},
		{16, "I16"},
		{31, "N31"},
		{46, "G46"},
		{61, "O61"},
		{75, "O75"},
		{0, "0"},
		{76, "76"},
	}
	for _, tt := range tests {
		if got := Label(tt.n); got != tt.want {
			t.Errorf("Label(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}
