package common

import "testing"

func TestPercentEncode(t *testing.T) {
	cases := map[string]string{
		"Paris":        "Paris",
		"New York":     "New%20York",
		"São Paulo":    "S%C3%A3o%20Paulo",
		"Rock&Roll=1":  "Rock%26Roll%3D1",
		"Frankfurt,DE": "Frankfurt%2CDE",
	}
	for in, want := range cases {
		if got := PercentEncode(in); got != want {
			t.Errorf("PercentEncode(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestQueryStringKeepsOrder(t *testing.T) {
	got := QueryString("q", "New York", "units", "metric", "appid", "k1", "dangling")
	want := "q=New%20York&units=metric&appid=k1"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}
