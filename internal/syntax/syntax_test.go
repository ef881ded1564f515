package syntax

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefault_Lookup(t *testing.T) {
	s := Default()

	testCases := []struct {
		name     string
		expected Key
	}{
		{name: "in", expected: KeyIn},
		{name: "-in", expected: KeyResetIn},
		{name: "variables", expected: KeyVariables},
		{name: "-post", expected: KeyResetPost},
		{name: "commands", expected: KeyCommands},
		{name: "build", expected: KeyCustom},
		{name: ".", expected: KeyCustom},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, s.Lookup(tc.name))
		})
	}
}

func TestDefault_Reserved(t *testing.T) {
	s := Default()

	assert.True(t, s.IsScopeReserved("run"))
	assert.True(t, s.IsScopeReserved("tasks"))
	assert.True(t, s.IsScopeReserved("-pre"))
	assert.False(t, s.IsScopeReserved("background"))
	assert.False(t, s.IsScopeReserved("build"))

	assert.True(t, s.IsStateReserved("variables"))
	assert.False(t, s.IsStateReserved("in"))
}

func TestWithName_DoesNotAlias(t *testing.T) {
	base := Default()
	alt := base.WithName(KeyCommands, "cmds")

	assert.Equal(t, KeyCommands, alt.Lookup("cmds"))
	assert.Equal(t, KeyCustom, alt.Lookup("commands"))
	assert.Equal(t, KeyCommands, base.Lookup("commands"))
	assert.Equal(t, "commands", base.Name(KeyCommands))
}

func TestPaths(t *testing.T) {
	s := Default()

	assert.Equal(t, []string{"api", "build"}, s.SplitPath("api:build"))
	assert.Equal(t, "api:build", s.JoinPath("api", "build"))

	name, ok := s.ParseWorkspaceRef(s.WorkspaceRef("api"))
	assert.True(t, ok)
	assert.Equal(t, "api", name)

	_, ok = s.ParseWorkspaceRef("/abs/path")
	assert.False(t, ok)

	v, ok := s.VariableName("$port")
	assert.True(t, ok)
	assert.Equal(t, "port", v)
}
