package uia

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// fakeWalker is a fixed tree for deterministic Find/Tree tests.
type fakeWalker map[uintptr][]*Node

func (w fakeWalker) Children(handle uintptr) []*Node { return w[handle] }

func buildFixture() fakeWalker {
	signIn := &Node{Handle: 10, Name: "Sign In", ControlType: "Button", Visible: true, Enabled: true}
	username := &Node{Handle: 11, Name: "Username", AutomationID: "txtUser", ControlType: "Edit", Visible: true}
	hidden := &Node{Handle: 12, Name: "Hidden Thing", ControlType: "Text", Visible: false}
	return fakeWalker{
		1:  {signIn, username, hidden},
		10: {},
		11: {},
		12: {},
	}
}

func TestFindExactMatch(t *testing.T) {
	a := New(buildFixture())
	matches := a.Find(1, "Sign In", "", 5, 10)
	require.NotEmpty(t, matches)
	require.Equal(t, "Sign In", matches[0].Node.Name)
	require.Equal(t, 1.0, matches[0].Score)
}

func TestFindFuzzyMatch(t *testing.T) {
	a := New(buildFixture())
	matches := a.Find(1, "usernam", "", 5, 10)
	require.NotEmpty(t, matches)
	require.Equal(t, "Username", matches[0].Node.Name)
}

func TestFindControlTypeFilter(t *testing.T) {
	a := New(buildFixture())
	matches := a.Find(1, "Sign In", "Edit", 5, 10)
	require.Empty(t, matches)
}

func TestFindShortQueryRequiresExactOrPrefix(t *testing.T) {
	a := New(buildFixture())
	// "Si" is under the short-query threshold: prefix match should still work.
	matches := a.Find(1, "Si", "", 5, 10)
	require.NotEmpty(t, matches)
	require.Equal(t, "Sign In", matches[0].Node.Name)
}

func TestTreePrunesInvisible(t *testing.T) {
	a := New(buildFixture())
	tree := a.Tree(1, 5, false)
	require.Len(t, tree.Children, 2)
	for _, c := range tree.Children {
		require.NotEqual(t, "Hidden Thing", c.Name)
	}
}

func TestTreeIncludesInvisibleWhenRequested(t *testing.T) {
	a := New(buildFixture())
	tree := a.Tree(1, 5, true)
	require.Len(t, tree.Children, 3)
}

func TestFrameworkDepth(t *testing.T) {
	require.Equal(t, 15, FrameworkDepth("xaml"))
	require.Equal(t, 12, FrameworkDepth("winforms"))
	require.Equal(t, 8, FrameworkDepth("webview"))
	require.Equal(t, 10, FrameworkDepth("unknown"))
}
