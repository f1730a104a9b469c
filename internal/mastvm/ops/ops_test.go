package ops

import "testing"

func TestAllOpsHaveInfo(t *testing.T) {
	for op := Op(0); op < opCount; op++ {
		if _, err := op.Info(); err != nil {
			t.Errorf("op %d missing metadata: %v", op, err)
		}
	}
}

func TestUnknownOpString(t *testing.T) {
	unknown := opCount + 1000
	if got := unknown.String(); got == "" {
		t.Error("String() should never return empty")
	}
}

func TestImmediateOps(t *testing.T) {
	cases := map[Op]bool{
		OpPush:     true,
		OpPad:      false,
		OpDup:      true,
		OpAdd:      false,
		OpMpVerify: true,
	}
	for op, want := range cases {
		if got := op.HasImmediate(); got != want {
			t.Errorf("%s.HasImmediate() = %v, want %v", op, got, want)
		}
	}
}
