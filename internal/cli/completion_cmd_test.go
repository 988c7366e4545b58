package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompletionScriptsCoverValidShells(t *testing.T) {
	require.Len(t, completionScripts, len(completionCmd.ValidArgs))

	for _, shell := range completionCmd.ValidArgs {
		t.Run(shell, func(t *testing.T) {
			gen, ok := completionScripts[shell]
			require.True(t, ok)

			var buf bytes.Buffer
			require.NoError(t, gen(&buf))
			assert.Contains(t, buf.String(), "pira")
		})
	}
}
