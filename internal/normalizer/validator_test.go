package normalizer

import (
	"testing"

	"apdados/internal/models"
)

func TestValidator_Inspect(t *testing.T) {
	v := NewValidator()

	complete := models.RawRecord{
		Date: "15/03/2022", State: "SP", Sanctions: "Multa", Issuer: "ANPD", Status: "Concluído",
		Penalty: "Multa simples", Value: "R$ 10,00", Convictions: "1", Segment: "Saúde", Law: "LGPD",
		Article: "Art. 46", Description: "Vazamento", Notes: "-", Link: "https://apdados.org/1",
	}

	if issues := v.Inspect(complete); len(issues) != 0 {
		t.Errorf("Inspect(complete) = %v, want no issues", issues)
	}

	broken := complete
	broken.Date = "março de 2022"
	broken.Value = "—"
	broken.State = " "

	issues := v.Inspect(broken)

	want := []Issue{
		{Field: models.FieldDate, Value: "março de 2022", Reason: ReasonMalformed},
		{Field: models.FieldState, Value: " ", Reason: ReasonBlank},
		{Field: models.FieldValue, Value: "—", Reason: ReasonMalformed},
	}

	if len(issues) != len(want) {
		t.Fatalf("Inspect returned %d issues, want %d: %v", len(issues), len(want), issues)
	}

	for i := range want {
		if issues[i] != want[i] {
			t.Errorf("issues[%d] = %+v, want %+v", i, issues[i], want[i])
		}
	}
}
