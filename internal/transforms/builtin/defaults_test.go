package builtin

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docpost/internal/transforms"
)

func TestDefaultChainResolves(t *testing.T) {
	list, err := Chain(DefaultSettings())
	require.NoError(t, err)

	resolved, err := transforms.Resolve(list)
	require.NoError(t, err)

	var got []string
	for _, tr := range resolved {
		got = append(got, tr.Name())
	}
	assert.Equal(t, []string{
		NameExternalLinks,
		NameHeadingAnchors,
		NameTableWrapper,
		NameCodePreview,
		NameSyntaxHighlight,
		NameCopyButton,
	}, got)
}

func TestChainDisabled(t *testing.T) {
	s := DefaultSettings()
	s.Disabled = []string{NameTableWrapper}
	list, err := Chain(s)
	require.NoError(t, err)
	assert.Len(t, list, 5)

	s.Disabled = []string{"nope"}
	_, err = Chain(s)
	assert.Error(t, err)
}

func TestDisablingADependencyFailsFast(t *testing.T) {
	s := DefaultSettings()
	s.Disabled = []string{NameSyntaxHighlight}
	list, err := Chain(s)
	require.NoError(t, err)

	_, err = transforms.Resolve(list)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"copy_button" depends on missing transform "syntax_highlight"`)
}
