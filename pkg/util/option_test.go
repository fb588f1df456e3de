package util

import "testing"

func Test_Option_01(t *testing.T) {
	some := Some(3)
	none := None[int]()
	//
	if !some.HasValue() || some.IsEmpty() || some.Unwrap() != 3 {
		t.Errorf("expected option holding 3")
	}
	//
	if none.HasValue() || !none.IsEmpty() {
		t.Errorf("expected empty option")
	}
}

func Test_Option_02(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Errorf("expected panic unwrapping empty option")
		}
	}()
	//
	None[string]().Unwrap()
}
