package iexec

import "testing"

func TestAddFlags8(t *testing.T) {
	tests := []struct {
		a, b           uint8
		wantResult     uint8
		wantCF, wantOF bool
		wantZF, wantSF bool
	}{
		{0, 0, 0, false, false, true, false},
		{0xFF, 1, 0, true, false, true, false},
		{0x7F, 1, 0x80, false, true, false, true},
		{0x80, 0x80, 0, true, true, true, false},
	}
	for _, tc := range tests {
		result, cf, of, zf, sf := addFlags(tc.a, tc.b)
		if result != tc.wantResult || cf != tc.wantCF || of != tc.wantOF || zf != tc.wantZF || sf != tc.wantSF {
			t.Errorf("addFlags(0x%x,0x%x) = (0x%x,cf=%v,of=%v,zf=%v,sf=%v), want (0x%x,cf=%v,of=%v,zf=%v,sf=%v)",
				tc.a, tc.b, result, cf, of, zf, sf, tc.wantResult, tc.wantCF, tc.wantOF, tc.wantZF, tc.wantSF)
		}
	}
}

func TestSubFlags32(t *testing.T) {
	result, cf, of, zf, sf := subFlags(uint32(5), uint32(5))
	if result != 0 || cf || of || !zf || sf {
		t.Errorf("subFlags(5,5) = (%d,cf=%v,of=%v,zf=%v,sf=%v), want (0,false,false,true,false)", result, cf, of, zf, sf)
	}

	result, cf, _, zf, _ = subFlags(uint32(0), uint32(1))
	if result != 0xFFFFFFFF || !cf || zf {
		t.Errorf("subFlags(0,1) = (0x%x,cf=%v,zf=%v), want (0xffffffff,true,false)", result, cf, zf)
	}
}

func TestLogicFlags(t *testing.T) {
	zf, sf := logicFlags(uint32(0))
	if !zf || sf {
		t.Errorf("logicFlags(0) = (zf=%v,sf=%v), want (true,false)", zf, sf)
	}
	zf, sf = logicFlags(uint32(0x80000000))
	if zf || !sf {
		t.Errorf("logicFlags(0x80000000) = (zf=%v,sf=%v), want (false,true)", zf, sf)
	}
}

func TestMaskWidth(t *testing.T) {
	if got := maskWidth(0x1234, 1); got != 0x34 {
		t.Errorf("maskWidth(0x1234,1) = 0x%x, want 0x34", got)
	}
	if got := maskWidth(0x123456, 2); got != 0x3456 {
		t.Errorf("maskWidth(0x123456,2) = 0x%x, want 0x3456", got)
	}
}
