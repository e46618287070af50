package engine

import (
	"strings"
	"testing"
)

func TestVisibility(t *testing.T) {
	schema := Schema{
		Questions: []Question{
			{ID: "smoker", Type: TypeSingle, Options: []string{"Sim", "Não"}},
			{ID: "cigs", Type: TypeNumber},
			{ID: "score", Type: TypeNumber},
			{ID: "high", Type: TypeText},
			{ID: "habits", Type: TypeMultiple, Options: []string{"álcool", "café", "nenhum"}},
			{ID: "alcohol", Type: TypeText},
			{ID: "both", Type: TypeText, ShowWhen: &ShowWhen{QuestionID: "smoker", Operator: OpEq, Value: "Sim"}},
			{ID: "ghost", Type: TypeText},
			{ID: "ghostShow", Type: TypeText, ShowWhen: &ShowWhen{QuestionID: "missing", Operator: OpEq, Value: ""}},
			{ID: "dup", Type: TypeText},
		},
		ConditionalLogic: []ConditionalRule{
			{IfQuestion: "smoker", IfValue: "Sim", ThenShow: []string{"cigs"}},
			{IfQuestion: "score", IfValue: float64(7), ThenShow: []string{"high"}},
			{IfQuestion: "habits", IfValue: []any{"álcool"}, ThenShow: []string{"alcohol"}},
			{IfQuestion: "score", IfValue: []string{"1", "2"}, ThenShow: []string{"both"}},
			{IfQuestion: "missing", IfValue: "x", ThenShow: []string{"ghost"}},
			{IfQuestion: "smoker", IfValue: "Não", ThenShow: []string{"dup"}},
			{IfQuestion: "smoker", IfValue: "Sim", ThenShow: []string{"dup"}},
		},
	}
	vis := NewVisibility(schema)

	tests := []struct {
		name    string
		id      string
		answers AnswerSet
		want    bool
	}{
		{"untargeted always visible", "smoker", AnswerSet{}, true},
		{"scalar rule unanswered", "cigs", AnswerSet{}, false},
		{"scalar rule match", "cigs", AnswerSet{"smoker": Choice("Sim")}, true},
		{"scalar rule miss", "cigs", AnswerSet{"smoker": Choice("Não")}, false},
		{"number compared as string", "high", AnswerSet{"score": Number(7)}, true},
		{"number mismatch", "high", AnswerSet{"score": Number(7.5)}, false},
		{"list rule any element", "alcohol", AnswerSet{"habits": MultiChoice{"café", "álcool"}}, true},
		{"list rule no element", "alcohol", AnswerSet{"habits": MultiChoice{"nenhum"}}, false},
		{"showWhen and rule both hold", "both", AnswerSet{"smoker": Choice("Sim"), "score": Number(2)}, true},
		{"showWhen holds rule fails", "both", AnswerSet{"smoker": Choice("Sim"), "score": Number(5)}, false},
		{"rule holds showWhen fails", "both", AnswerSet{"smoker": Choice("Não"), "score": Number(1)}, false},
		{"rule on missing question", "ghost", AnswerSet{"missing": Text("x")}, false},
		{"showWhen on missing question", "ghostShow", AnswerSet{"missing": Text("")}, false},
		{"first targeting rule wins", "dup", AnswerSet{"smoker": Choice("Não")}, true},
		{"later targeting rule ignored", "dup", AnswerSet{"smoker": Choice("Sim")}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, ok := schema.Question(tt.id)
			if !ok {
				t.Fatalf("unknown question %s", tt.id)
			}
			if got := vis.Visible(q, tt.answers); got != tt.want {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestShowWhenEqWithList(t *testing.T) {
	schema := Schema{Questions: []Question{
		{ID: "a", Type: TypeSingle, Options: []string{"x", "y"}},
		{ID: "b", Type: TypeText, ShowWhen: &ShowWhen{QuestionID: "a", Operator: OpEq, Value: []string{"x", "y"}}},
		{ID: "c", Type: TypeText, ShowWhen: &ShowWhen{QuestionID: "a", Operator: OpIn, Value: "y"}},
	}}
	visible := NewVisibility(schema).Questions(AnswerSet{"a": Choice("y")})
	if len(visible) != 3 {
		t.Fatalf("expected all questions visible, got %v", visible)
	}
}

func TestLint(t *testing.T) {
	schema := Schema{
		Questions: []Question{
			{ID: "a", Type: TypeSingle, Options: []string{"x"}},
			{ID: "a", Type: TypeText},
			{ID: "b", Type: TypeMultiple},
			{ID: "c", Type: TypeText, ShowWhen: &ShowWhen{QuestionID: "zz", Operator: OpEq, Value: "x"}},
		},
		ConditionalLogic: []ConditionalRule{
			{IfQuestion: "a", IfValue: "x", ThenShow: []string{"b"}},
			{IfQuestion: "a", IfValue: "y", ThenShow: []string{"b", "nope"}},
		},
	}
	warnings := strings.Join(schema.Lint(), "\n")
	for _, want := range []string{
		`duplicate question id "a"`,
		`question "b" of type multiple has no options`,
		`showWhen references unknown question "zz"`,
		`shows unknown question "nope"`,
		`question "b" is targeted by rules 0 and 1`,
	} {
		if !strings.Contains(warnings, want) {
			t.Errorf("expected warning %q in:\n%s", want, warnings)
		}
	}

	if w := stressSchema().Lint(); len(w) != 0 {
		t.Fatalf("expected clean schema, got %v", w)
	}
}
