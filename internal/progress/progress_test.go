package progress

import (
	"bytes"
	"testing"
)

func TestNew_Disabled(t *testing.T) {
	var buf bytes.Buffer
	r := New(false, &buf, "embedding")
	if _, ok := r.(Nop); !ok {
		t.Fatalf("New(false) = %T, want Nop", r)
	}
	r.Start(10)
	r.Set(5)
	r.Finish()
	if buf.Len() != 0 {
		t.Errorf("disabled reporter wrote %q", buf.String())
	}
}

func TestBar_WritesProgress(t *testing.T) {
	var buf bytes.Buffer
	r := New(true, &buf, "embedding")
	r.Start(4)
	r.Set(2)
	r.Set(4)
	r.Finish()
	if buf.Len() == 0 {
		t.Error("expected bar output")
	}
}

func TestBar_ZeroTotal(t *testing.T) {
	var buf bytes.Buffer
	r := New(true, &buf, "embedding")
	r.Start(0)
	r.Set(1)
	r.Finish()
	if buf.Len() != 0 {
		t.Errorf("zero total should draw nothing, got %q", buf.String())
	}
}

func TestStartSpinner_Disabled(t *testing.T) {
	var buf bytes.Buffer
	stop := StartSpinner(false, &buf, "indexing")
	stop()
	if buf.Len() != 0 {
		t.Errorf("disabled spinner wrote %q", buf.String())
	}
}

func TestStartSpinner_Stops(t *testing.T) {
	var buf bytes.Buffer
	stop := StartSpinner(true, &buf, "indexing")
	stop()
}
