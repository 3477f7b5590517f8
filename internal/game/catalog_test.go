package game

import (
	"testing"

	"github.com/godfield-crew/KAMIFUDA-backend/internal/models"
)

func TestCatalogSize(t *testing.T) {
	if got := CatalogSize(); got != 54 {
		t.Errorf("CatalogSize() = %d, want 54", got)
	}
}

func TestDefinitionsByKind(t *testing.T) {
	counts := map[models.CardKind]int{
		models.KindWeapon:  15,
		models.KindArmor:   15,
		models.KindMiracle: 12,
		models.KindItem:    12,
	}
	for kind, want := range counts {
		if got := len(DefinitionsByKind(kind)); got != want {
			t.Errorf("DefinitionsByKind(%s) = %d, want %d", kind, got, want)
		}
	}
}

func TestDefinitionByID(t *testing.T) {
	card, ok := DefinitionByID("w001")
	if !ok {
		t.Fatal("DefinitionByID(w001) not found")
	}
	if card.Kind != models.KindWeapon {
		t.Errorf("w001 kind = %s, want weapon", card.Kind)
	}
	if card.Element != models.ElementFire {
		t.Errorf("w001 element = %s, want fire", card.Element)
	}

	if _, ok := DefinitionByID("z999"); ok {
		t.Error("DefinitionByID(z999) should not be found")
	}
}

func TestDefinitionsByElement(t *testing.T) {
	for _, card := range DefinitionsByElement(models.ElementFire) {
		if card.Element != models.ElementFire {
			t.Errorf("card %s element = %s, want fire", card.ID, card.Element)
		}
	}
	if len(DefinitionsByElement(models.ElementFire)) == 0 {
		t.Error("catalog must contain fire cards")
	}
}
