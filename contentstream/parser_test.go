package contentstream

import (
	"testing"

	"github.com/tsawler/scribe/core"
)

func TestParseTextOperations(t *testing.T) {
	input := []byte("BT /F1 12 Tf 72 700 Td (Hello) Tj ET")
	ops, err := Parse(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"BT", "Tf", "Td", "Tj", "ET"}
	if len(ops) != len(want) {
		t.Fatalf("got %d operations, want %d", len(ops), len(want))
	}
	for i, op := range want {
		if ops[i].Operator != op {
			t.Errorf("ops[%d] = %q, want %q", i, ops[i].Operator, op)
		}
	}

	if len(ops[1].Operands) != 2 {
		t.Fatalf("Tf operands = %v", ops[1].Operands)
	}
	if name, ok := ops[1].Operands[0].(core.Name); !ok || name != "F1" {
		t.Errorf("Tf font = %v, want /F1", ops[1].Operands[0])
	}
	if s, ok := ops[3].Operands[0].(core.String); !ok || string(s) != "Hello" {
		t.Errorf("Tj operand = %v, want (Hello)", ops[3].Operands[0])
	}
}

func TestParseTJArray(t *testing.T) {
	ops, err := Parse([]byte("[(He) -120 (llo)] TJ"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ops) != 1 || ops[0].Operator != "TJ" {
		t.Fatalf("ops = %v", ops)
	}
	arr, ok := ops[0].Operands[0].(core.Array)
	if !ok || len(arr) != 3 {
		t.Fatalf("TJ operand = %v, want 3-entry array", ops[0].Operands[0])
	}
}

func TestParseGraphicsState(t *testing.T) {
	ops, err := Parse([]byte("q 1 0 0 1 50 50 cm 0.5 0.25 1 rg Q"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []struct {
		op       string
		operands int
	}{
		{"q", 0}, {"cm", 6}, {"rg", 3}, {"Q", 0},
	}
	if len(ops) != len(want) {
		t.Fatalf("got %d operations, want %d", len(ops), len(want))
	}
	for i, tt := range want {
		if ops[i].Operator != tt.op {
			t.Errorf("ops[%d] = %q, want %q", i, ops[i].Operator, tt.op)
		}
		if len(ops[i].Operands) != tt.operands {
			t.Errorf("ops[%d] operands = %d, want %d", i, len(ops[i].Operands), tt.operands)
		}
	}
}

func TestParseBooleansAndNull(t *testing.T) {
	ops, err := Parse([]byte("true false null op"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ops) != 1 || ops[0].Operator != "op" || len(ops[0].Operands) != 3 {
		t.Fatalf("ops = %v", ops)
	}
}

func TestParseInlineImageSkipped(t *testing.T) {
	input := []byte("q BI /W 2 /H 2 ID \x00\x01\x02\x03 EI Q")
	ops, err := Parse(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, op := range ops {
		if op.Operator == "BI" || op.Operator == "ID" {
			t.Errorf("inline image leaked as operation %q", op.Operator)
		}
	}
	if len(ops) < 2 || ops[0].Operator != "q" || ops[len(ops)-1].Operator != "Q" {
		t.Errorf("surrounding state ops lost: %v", ops)
	}
}

func TestParseEmpty(t *testing.T) {
	ops, err := Parse(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ops) != 0 {
		t.Errorf("got %d operations from empty stream", len(ops))
	}
}

func TestBuilderOutputReparses(t *testing.T) {
	b := NewBuilder()
	b.SaveState().
		FillColor(1, 1, 1).
		Rect(10, 20, 100, 14).
		Fill().
		ClipRect(10, 20, 100, 14).
		BeginText().
		Font("ScrF0", 12).
		FillColor(0, 0, 0).
		TextPos(10, 23).
		ShowText("replacement (text)").
		EndText().
		RestoreState()

	ops, err := Parse(b.Bytes())
	if err != nil {
		t.Fatalf("builder output does not reparse: %v", err)
	}

	var operators []string
	for _, op := range ops {
		operators = append(operators, op.Operator)
	}
	want := []string{"q", "rg", "re", "f", "re", "W", "n", "BT", "Tf", "rg", "Td", "Tj", "ET", "Q"}
	if len(operators) != len(want) {
		t.Fatalf("operators = %v, want %v", operators, want)
	}
	for i := range want {
		if operators[i] != want[i] {
			t.Errorf("operators[%d] = %q, want %q", i, operators[i], want[i])
		}
	}

	// The shown string must round-trip with its parens intact.
	for _, op := range ops {
		if op.Operator == "Tj" {
			if s := op.Operands[0].(core.String); string(s) != "replacement (text)" {
				t.Errorf("Tj string = %q", s)
			}
		}
	}
}

func TestBuilderNumberFormat(t *testing.T) {
	b := NewBuilder()
	b.TextPos(10.5, 20)
	got := string(b.Bytes())
	if got != "10.5 20 Td\n" {
		t.Errorf("got %q, want %q", got, "10.5 20 Td\n")
	}
}
