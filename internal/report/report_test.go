package report

import (
	"testing"

	"github.com/nsepulse/nsepulse/internal/domain/models"
)

func TestAssumptions_FiveNonEmpty(t *testing.T) {
	if len(Assumptions) != 5 {
		t.Fatalf("expected 5 assumptions, got %d", len(Assumptions))
	}
	for i, a := range Assumptions {
		if a == "" {
			t.Fatalf("assumption %d is empty", i)
		}
	}
}

func TestEmit_DoesNotPanic(t *testing.T) {
	counts := map[models.Category]int{
		models.CategoryFiveX:    1,
		models.CategoryThreeX:   2,
		models.CategoryDelivery: 3,
	}
	Emit("test-run", counts, Quality{BhavFilesRead: 2, VarianceDefaulted: 1})
	Emit("test-run", nil, Quality{})
}
