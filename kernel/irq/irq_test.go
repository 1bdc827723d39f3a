package irq

import "testing"

func TestDispatch(t *testing.T) {
	defer func() {
		for line := Line(0); line < NumLines; line++ {
			HandleIRQ(line, nil)
		}
	}()

	var calls [NumLines]int
	for _, line := range []Line{Timer, Keyboard} {
		line := line
		if err := HandleIRQ(line, func() { calls[line]++ }); err != nil {
			t.Fatal(err)
		}
	}

	if err := HandleIRQ(NumLines, func() {}); err != errInvalidLine {
		t.Fatalf("expected errInvalidLine; got %v", err)
	}

	spuriousBefore := SpuriousCount()

	Dispatch(Keyboard)
	Dispatch(Keyboard)
	Dispatch(Timer)
	Dispatch(Line(5))
	Dispatch(Line(200))

	if calls[Keyboard] != 2 || calls[Timer] != 1 {
		t.Fatalf("expected handler calls [1 2 ...]; got %v", calls)
	}

	if exp, got := spuriousBefore+2, SpuriousCount(); got != exp {
		t.Fatalf("expected spurious count %d; got %d", exp, got)
	}

	HandleIRQ(Keyboard, nil)
	Dispatch(Keyboard)
	if calls[Keyboard] != 2 {
		t.Fatal("expected uninstalled handler not to be invoked")
	}
}
