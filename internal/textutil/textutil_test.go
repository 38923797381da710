package textutil

import (
	"reflect"
	"testing"
)

func TestWords(t *testing.T) {
	got := Words("Don't panic: 42 Ångström units!")
	want := []string{"don't", "panic", "42", "ångström", "units"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Words = %q, want %q", got, want)
	}
}

func TestIsStopword(t *testing.T) {
	if !IsStopword("the") || IsStopword("mitochondria") {
		t.Error("unexpected stopword classification")
	}
}

func TestCollapseSpace(t *testing.T) {
	if got := CollapseSpace("  line one\n\nline\ttwo  "); got != "line one line two" {
		t.Errorf("CollapseSpace = %q", got)
	}
}
