package lineage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitScriptBasic(t *testing.T) {
	raws := SplitScript("SELECT 1; SELECT 2;")
	require := assert.New(t)
	require.Len(raws, 2)
	require.Equal("SELECT 1", raws[0].Text)
	require.Equal(" SELECT 2", raws[1].Text)
}

func TestSplitScriptIgnoresSemicolonsInStringLiterals(t *testing.T) {
	raws := SplitScript(`SELECT 'a;b' AS x;`)
	assert.Len(t, raws, 1)
}

func TestSplitScriptIgnoresSemicolonsInComments(t *testing.T) {
	raws := SplitScript("SELECT 1; -- a;b\nSELECT 2; /* c;d */")
	assert.Len(t, raws, 2)
}

func TestSplitScriptIgnoresSemicolonsInsideParens(t *testing.T) {
	raws := SplitScript("CREATE TABLE t (a INT, b INT); SELECT 1;")
	assert.Len(t, raws, 2)
}

func TestSplitScriptDropsEmptyStatements(t *testing.T) {
	raws := SplitScript("  ;;  SELECT 1;   ;")
	assert.Len(t, raws, 1)
}

func TestSplitScriptEmpty(t *testing.T) {
	assert.Empty(t, SplitScript(""))
	assert.Empty(t, SplitScript("   \n  "))
}
