package sbml

import (
	"encoding/json"
	"os"
	"testing"

	"github.com/tenntenn/golden"
)

func TestParseGolden(t *testing.T) {
	tests := []struct {
		in string
	}{
		{"testdata/basic.sb"},
		{"testdata/streaming.sb"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			b, err := os.ReadFile(tt.in)
			if err != nil {
				t.Fatal(err)
			}
			deck := Parse(string(b))
			got, err := json.MarshalIndent(deck, "", "  ")
			if err != nil {
				t.Fatal(err)
			}
			if os.Getenv("UPDATE_GOLDEN") != "" {
				golden.Update(t, "", tt.in, got)
				return
			}
			if diff := golden.Diff(t, "", tt.in, got); diff != "" {
				t.Error(diff)
			}
		})
	}
}
