package analyzers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/fileparser/internal/core"
)

func TestRegistered(t *testing.T) {
	tests := []struct {
		ft     core.FileType
		label  string
		strict bool
	}{
		{core.FileTypeSQL, "SQL", false},
		{core.FileTypeJSON, "JSON", true},
		{core.FileTypeText, "TXT", false},
		{core.FileTypeCSV, "CSV", false},
	}

	for _, tt := range tests {
		def, ok := core.Lookup(tt.ft)
		require.True(t, ok, "%s not registered", tt.ft)
		assert.Equal(t, tt.label, def.Info.Label)
		assert.Equal(t, tt.strict, def.Info.StrictUTF8)
		assert.Equal(t, []string{"." + string(tt.ft)}, def.Info.Extensions)
	}
}
