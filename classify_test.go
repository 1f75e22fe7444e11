package main

import (
	"strings"
	"testing"
)

func TestBuildClassifierPromptIncludesContext(t *testing.T) {
	role := Role{IsStaff: true, Name: "Маша"}
	botCtx := Context{
		StaffNames:  []string{"Маша", "Ира"},
		ClientNames: []string{"Анна", "Марков"},
		Recent: []EventSummary{
			{StaffName: "Ира", WorkType: "✂️ Пошив", Client: "Анна"},
		},
	}

	prompt := buildClassifierPrompt(role, botCtx)

	if !strings.Contains(prompt, "ПОЛЬЗОВАТЕЛЬ: Маша") {
		t.Fatalf("prompt missing user name:\n%s", prompt)
	}
	if strings.Contains(prompt, "(руководитель)") {
		t.Fatal("non-supervisor prompt must not carry the supervisor mark")
	}
	if !strings.Contains(prompt, "КЛИЕНТЫ: Анна, Марков") {
		t.Fatalf("prompt missing clients:\n%s", prompt)
	}
	if !strings.Contains(prompt, "СОТРУДНИКИ: Маша, Ира") {
		t.Fatalf("prompt missing staff:\n%s", prompt)
	}
	if !strings.Contains(prompt, "- Ира: ✂️ Пошив (Анна)") {
		t.Fatalf("prompt missing recent work line:\n%s", prompt)
	}
	for _, wt := range workTypes {
		if !strings.Contains(prompt, wt) {
			t.Fatalf("prompt missing work type %q", wt)
		}
	}
	if !strings.Contains(prompt, `"action": "record|clarify|answer"`) {
		t.Fatalf("prompt missing output schema:\n%s", prompt)
	}
	if !strings.Contains(prompt, "БЕЗ клиента - clarify") {
		t.Fatalf("prompt missing clarify rule:\n%s", prompt)
	}
}

func TestBuildClassifierPromptSupervisorMarkAndRecentLimit(t *testing.T) {
	role := Role{IsSupervisor: true, IsStaff: true, Name: "Шеф"}
	var recent []EventSummary
	for i := 0; i < recentEventLimit; i++ {
		recent = append(recent, EventSummary{StaffName: "Маша", WorkType: "✂️ Пошив"})
	}
	botCtx := Context{ClientNames: defaultKnownClients, Recent: recent}

	prompt := buildClassifierPrompt(role, botCtx)

	if !strings.Contains(prompt, "ПОЛЬЗОВАТЕЛЬ: Шеф (руководитель)") {
		t.Fatalf("prompt missing supervisor mark:\n%s", prompt)
	}
	if got := strings.Count(prompt, "- Маша: ✂️ Пошив"); got != promptRecentLimit {
		t.Fatalf("expected %d recent lines in prompt, got %d", promptRecentLimit, got)
	}
}
