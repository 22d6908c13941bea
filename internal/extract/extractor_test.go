package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const asyncHandlerSource = `import requests
from fastapi import FastAPI

app = FastAPI()

@app.get("/users")
async def get_users():
    data = requests.get("https://api.example.com/users")
    return data.json()

def helper():
    return cleanup()
`

func TestExtractAsyncHandler(t *testing.T) {
	unit := Extract("server.py", asyncHandlerSource)
	require.Empty(t, unit.Warnings)

	assert.Equal(t, []string{"requests", "fastapi", "fastapi.FastAPI"}, unit.Imports())

	defs := unit.SignalsOf(KindFunctionDef)
	require.Len(t, defs, 2)
	assert.Equal(t, "get_users", defs[0].Value)
	assert.Equal(t, "helper", defs[1].Value)

	asyncDefs := unit.SignalsOf(KindAsyncFunction)
	require.Len(t, asyncDefs, 1)
	assert.Equal(t, "get_users", asyncDefs[0].Value)
	assert.Equal(t, 7, asyncDefs[0].Line)

	decorators := unit.SignalsOf(KindDecorator)
	require.Len(t, decorators, 1)
	assert.Equal(t, "app.get", decorators[0].Value)
	assert.Equal(t, "get_users", decorators[0].Function, "decorator attaches to the following function")
}

func TestExtractCallSitesRecordEnclosingFunction(t *testing.T) {
	unit := Extract("server.py", asyncHandlerSource)

	calls := unit.SignalsOf(KindCallSite)
	byCallee := map[string]Signal{}
	for _, c := range calls {
		byCallee[c.Value] = c
	}

	require.Contains(t, byCallee, "requests.get")
	assert.Equal(t, "get_users", byCallee["requests.get"].Function)
	assert.Equal(t, 8, byCallee["requests.get"].Line)

	require.Contains(t, byCallee, "cleanup")
	assert.Equal(t, "helper", byCallee["cleanup"].Function)

	require.Contains(t, byCallee, "FastAPI")
	assert.Equal(t, "", byCallee["FastAPI"].Function, "module-level call has no enclosing function")
}

func TestExtractImportForms(t *testing.T) {
	testCases := []struct {
		name     string
		source   string
		expected []string
	}{
		{
			name:     "python import list",
			source:   "import os, langchain\n",
			expected: []string{"os", "langchain"},
		},
		{
			name:     "python import with alias",
			source:   "import streamlit as st\n",
			expected: []string{"streamlit"},
		},
		{
			name:     "python from import with alias",
			source:   "from langchain.chains import RetrievalQA as qa\n",
			expected: []string{"langchain.chains", "langchain.chains.RetrievalQA"},
		},
		{
			name:     "js module import",
			source:   "import { useQuery } from 'react-query'\n",
			expected: []string{"react-query"},
		},
		{
			name:     "js require",
			source:   "const axios = require('axios')\n",
			expected: []string{"axios"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			unit := Extract("unit", tc.source)
			assert.Equal(t, tc.expected, unit.Imports())
		})
	}
}

func TestExtractDegradesOnMalformedInput(t *testing.T) {
	t.Run("stray decorator", func(t *testing.T) {
		unit := Extract("broken.py", "@st.cache_data\nx = 1\n")

		require.Len(t, unit.Warnings, 1)
		assert.Contains(t, unit.Warnings[0], "st.cache_data")

		// the decorator is still recorded, just unattached
		decorators := unit.SignalsOf(KindDecorator)
		require.Len(t, decorators, 1)
		assert.Equal(t, "", decorators[0].Function)
	})

	t.Run("binary content", func(t *testing.T) {
		unit := Extract("blob.bin", string([]byte{0xff, 0xfe, 0x01}))

		require.Len(t, unit.Warnings, 1)
		assert.Contains(t, unit.Warnings[0], "UTF-8")
		assert.Empty(t, unit.Signals, "no fabricated signals for unreadable content")
	})
}

func TestExtractionFailed(t *testing.T) {
	assert.True(t, Extract("blob.bin", string([]byte{0xff, 0xfe, 0x01})).ExtractionFailed(),
		"no signals plus a warning is a failed extraction")
	assert.False(t, Extract("server.py", asyncHandlerSource).ExtractionFailed())
	assert.False(t, Extract("empty.py", "").ExtractionFailed(),
		"a genuinely empty file extracted cleanly")

	partial := Extract("broken.py", "import streamlit\n@st.cache_data\nx = 1\n")
	require.NotEmpty(t, partial.Warnings)
	assert.False(t, partial.ExtractionFailed(), "partial extraction keeps its signals and stays matchable")
}

func TestExtractNestedFunctions(t *testing.T) {
	source := `def outer():
    def inner():
        fetch()
    run()
`
	unit := Extract("nested.py", source)

	byCallee := map[string]Signal{}
	for _, c := range unit.SignalsOf(KindCallSite) {
		byCallee[c.Value] = c
	}
	assert.Equal(t, "inner", byCallee["fetch"].Function)
	assert.Equal(t, "outer", byCallee["run"].Function)

	defs := unit.SignalsOf(KindFunctionDef)
	require.Len(t, defs, 2)
	assert.Equal(t, "outer", defs[1].Function, "inner def records its enclosing function")
}

func TestExtractIsDeterministic(t *testing.T) {
	first := Extract("server.py", asyncHandlerSource)
	second := Extract("server.py", asyncHandlerSource)
	assert.Equal(t, first.Signals, second.Signals)
	assert.Equal(t, first.Warnings, second.Warnings)
}

func TestCacheMemoizesByContent(t *testing.T) {
	cache, err := NewCache(8)
	require.NoError(t, err)

	first := cache.Extract("server.py", asyncHandlerSource)
	second := cache.Extract("server.py", asyncHandlerSource)
	assert.Same(t, first, second, "identical input returns the memoized unit")

	changed := cache.Extract("server.py", asyncHandlerSource+"\nimport os\n")
	assert.NotSame(t, first, changed)

	otherPath := cache.Extract("copy.py", asyncHandlerSource)
	assert.NotSame(t, first, otherPath, "path is part of the cache key")
}
