package utils

import "testing"

func TestMergeLabel(t *testing.T) {
	tests := []struct {
		name     string
		existing Label
		incoming Label
		want     Label
	}{
		{"empty existing", Label{}, NewLabel("A", "recall"), NewLabel("A", "recall")},
		{"append", NewLabel("A", "recall"), NewLabel("B", "recall"), NewLabel("A|B", "recall")},
		{"new source", NewLabel("A", "recall"), NewLabel("B", "filter"), NewLabel("A|B", "recall,filter")},
		{"duplicate value", NewLabel("A|B", "recall"), NewLabel("B", "filter"), NewLabel("A|B", "recall")},
		{"empty incoming", NewLabel("A", "recall"), Label{}, NewLabel("A", "recall")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MergeLabel(tt.existing, tt.incoming); got != tt.want {
				t.Errorf("MergeLabel() = %+v, want %+v", got, tt.want)
			}
		})
	}
}
