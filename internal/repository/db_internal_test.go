package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSQLiteDSN(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in     string
		want   string
		memory bool
	}{
		{in: "sqlite://cards.db", want: "file:cards.db?"},
		{in: "file:cards.db?cache=shared", want: "file:cards.db?cache=shared&"},
		{in: ":memory:", want: "file::memory:?", memory: true},
	}
	for _, tt := range tests {
		got, memory := sqliteDSN(tt.in)
		assert.Equal(t, tt.memory, memory, tt.in)
		assert.Equal(t, tt.want+"_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_txlock=immediate", got)
	}
}
