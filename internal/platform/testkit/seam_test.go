package testkit

import "testing"

var fetchGateway = func() string { return "gateway.pinata.cloud" }

func TestSwapRestores(t *testing.T) {
	t.Run("swapped", func(t *testing.T) {
		Swap(t, &fetchGateway, func() string { return "localhost:8080" })
		if got := fetchGateway(); got != "localhost:8080" {
			t.Fatalf("swapped seam = %q, want %q", got, "localhost:8080")
		}
	})

	if got := fetchGateway(); got != "gateway.pinata.cloud" {
		t.Fatalf("seam not restored after subtest: got %q", got)
	}
}

func TestSwapValue(t *testing.T) {
	attempts := 3
	Swap(t, &attempts, 1)
	if attempts != 1 {
		t.Fatalf("swapped value = %d, want 1", attempts)
	}
}

func TestSerial(t *testing.T) {
	// Two serialized subtests must not observe each other's seam mutations mid-flight.
	for _, name := range []string{"first", "second"} {
		t.Run(name, func(t *testing.T) {
			Serial(t)
			Swap(t, &fetchGateway, func() string { return name })
			if got := fetchGateway(); got != name {
				t.Fatalf("seam = %q, want %q", got, name)
			}
		})
	}
}
