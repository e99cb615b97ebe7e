package lang

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/indexgraph/codegraph/internal/model"
)

const pythonSample = `import json
from collections import OrderedDict


class Widget(Base):
    def render(self):
        try:
            helper()
            return Builder()
        except ValueError as exc:
            raise RuntimeError("bad")


def helper():
    return 1
`

func TestPythonParser_ExtractsImports(t *testing.T) {
	p := NewPython()
	ext, err := p.Parse(context.Background(), "widget.py", []byte(pythonSample))
	require.NoError(t, err)

	assert.True(t, hasRelation(ext.Relations, "widget.py", "json", model.RelationImports))
	assert.True(t, hasRelation(ext.Relations, "widget.py", "collections", model.RelationImports))
}

func TestPythonParser_ExtractsClassWithInheritanceAndMethod(t *testing.T) {
	p := NewPython()
	ext, err := p.Parse(context.Background(), "widget.py", []byte(pythonSample))
	require.NoError(t, err)

	class, ok := findEntity(ext.Entities, "widget.py::Widget")
	require.True(t, ok, "expected a Widget class entity")
	assert.Equal(t, model.EntityClass, class.Type)
	assert.True(t, hasRelation(ext.Relations, "widget.py::Widget", "Base", model.RelationInherits))

	method, ok := findEntity(ext.Entities, "widget.py::Widget::render")
	require.True(t, ok, "expected render to be scoped under Widget")
	assert.Equal(t, model.EntityMethod, method.Type)
	assert.True(t, hasRelation(ext.Relations, "widget.py::Widget", "widget.py::Widget::render", model.RelationContains))
}

func TestPythonParser_ScansCallsRaisesAndCatches(t *testing.T) {
	p := NewPython()
	ext, err := p.Parse(context.Background(), "widget.py", []byte(pythonSample))
	require.NoError(t, err)

	owner := "widget.py::Widget::render"
	assert.True(t, hasRelation(ext.Relations, owner, "helper", model.RelationCalls))
	assert.True(t, hasRelation(ext.Relations, owner, "Builder", model.RelationCalls))
	assert.True(t, hasRelation(ext.Relations, owner, "Builder", model.RelationInstantiates),
		"calling a capitalized identifier is treated as an instantiation")
	assert.True(t, hasRelation(ext.Relations, owner, "RuntimeError", model.RelationRaises))
	assert.True(t, hasRelation(ext.Relations, owner, "ValueError", model.RelationCatches))
}

func TestPythonParser_ExtractsTopLevelFunction(t *testing.T) {
	p := NewPython()
	ext, err := p.Parse(context.Background(), "widget.py", []byte(pythonSample))
	require.NoError(t, err)

	fn, ok := findEntity(ext.Entities, "widget.py::helper")
	require.True(t, ok)
	assert.Equal(t, model.EntityFunction, fn.Type)
}
