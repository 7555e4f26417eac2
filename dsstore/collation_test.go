package dsstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompareKeys(t *testing.T) {
	rec := func(name, code string) Record {
		return Record{FileName: name, Code: code, Value: Bool(true)}
	}

	tests := []struct {
		name string
		a, b Record
		want int
	}{
		{"simple ascending", rec("alpha", "Iloc"), rec("beta", "Iloc"), -1},
		{"case-insensitive equal falls to code", rec("a", "BKGD"), rec("a", "Iloc"), -1},
		{"case-insensitive primary", rec("Beta", "Iloc"), rec("alpha", "Iloc"), 1},
		{"case difference breaks ties by code point", rec("File", "Iloc"), rec("file", "Iloc"), -1},
		{"identical", rec("x", "Iloc"), rec("x", "Iloc"), 0},
		{"unicode beyond ascii", rec("zeta", "Iloc"), rec("é", "Iloc"), -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CompareKeys(tt.a, tt.b)
			switch {
			case tt.want < 0:
				assert.Negative(t, got)
				assert.Positive(t, CompareKeys(tt.b, tt.a), "ordering must be antisymmetric")
			case tt.want > 0:
				assert.Positive(t, got)
			default:
				assert.Zero(t, got)
			}
		})
	}
}
