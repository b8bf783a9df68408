package rewrite

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitTopLevelBasic(t *testing.T) {
	stmts := splitTopLevel(`import { a } from './a';
const x = 1;
export const y = 2;
x + y`)
	require.Len(t, stmts, 4)
	assert.Equal(t, kindImport, stmts[0].kind)
	assert.Equal(t, kindOther, stmts[1].kind)
	assert.Equal(t, kindExportDecl, stmts[2].kind)
	assert.Equal(t, kindOther, stmts[3].kind)
}

func TestSplitTopLevelFunctionDeclNoSemicolon(t *testing.T) {
	stmts := splitTopLevel(`function f(n) { return n + 1; }
f(41)`)
	require.Len(t, stmts, 2)
	assert.Contains(t, stmts[0].text, "function f(n)")
	assert.Equal(t, "f(41)", stmts[1].text)
}

func TestSplitTopLevelIgnoresBracesInStringsAndTemplates(t *testing.T) {
	stmts := splitTopLevel("const s = '{ not a brace }'; const t = `${1 + 1} }`; s")
	require.Len(t, stmts, 3)
}

func TestSplitTopLevelRegexVsDivision(t *testing.T) {
	stmts := splitTopLevel(`const r = /a;b/; const d = 4 / 2; d`)
	require.Len(t, stmts, 3)
}

func TestSplitTopLevelClassDecl(t *testing.T) {
	stmts := splitTopLevel(`export class Foo { bar() { return 1; } }
new Foo().bar()`)
	require.Len(t, stmts, 2)
	assert.Equal(t, kindExportDecl, stmts[0].kind)
}
