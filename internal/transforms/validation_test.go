package transforms

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docpost/internal/foundation/errors"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		list    []Transformer
		wantErr string
	}{
		{
			name: "valid chain",
			list: []Transformer{
				mock("syntax_highlight", StageHighlight, nil, nil),
				mock("code_preview", StageHighlight, nil, []string{"syntax_highlight"}),
				mock("copy_button", StageDecorate, []string{"syntax_highlight", "code_preview"}, nil),
			},
		},
		{
			name:    "missing after target",
			list:    []Transformer{mock("copy_button", StageDecorate, []string{"syntax_highlight"}, nil)},
			wantErr: `depends on missing transform "syntax_highlight"`,
		},
		{
			name:    "missing before target",
			list:    []Transformer{mock("code_preview", StageHighlight, nil, []string{"syntax_highlight"})},
			wantErr: `requires missing transform "syntax_highlight"`,
		},
		{
			name: "after target in later stage",
			list: []Transformer{
				mock("syntax_highlight", StageDecorate, nil, nil),
				mock("copy_button", StageHighlight, []string{"syntax_highlight"}, nil),
			},
			wantErr: "later stage",
		},
		{
			name: "before target in earlier stage",
			list: []Transformer{
				mock("external_links", StageNormalize, nil, nil),
				mock("late", StageFinalize, nil, []string{"external_links"}),
			},
			wantErr: "earlier stage",
		},
		{
			name:    "invalid stage",
			list:    []Transformer{mock("x", Stage("bogus"), nil, nil)},
			wantErr: "invalid stage",
		},
		{
			name:    "duplicate",
			list:    []Transformer{mock("x", StageEnrich, nil, nil), mock("x", StageEnrich, nil, nil)},
			wantErr: "duplicate",
		},
		{
			name: "cycle",
			list: []Transformer{
				mock("a", StageEnrich, []string{"b"}, nil),
				mock("b", StageEnrich, []string{"a"}, nil),
			},
			wantErr: "circular",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vr := Validate(tt.list)
			if tt.wantErr == "" {
				assert.True(t, vr.Valid, "errors: %v", vr.Errors)
				assert.NoError(t, vr.Err())
				return
			}
			require.False(t, vr.Valid)
			assert.Contains(t, strings.Join(vr.Errors, "\n"), tt.wantErr)
			err := vr.Err()
			require.Error(t, err)
			assert.True(t, errors.HasCategory(err, errors.CategoryValidation))
		})
	}
}

func TestValidate_EmptyIsWarning(t *testing.T) {
	vr := Validate(nil)
	assert.True(t, vr.Valid)
	assert.Len(t, vr.Warnings, 1)
}

func TestResolve(t *testing.T) {
	list := []Transformer{
		mock("copy_button", StageDecorate, []string{"syntax_highlight", "code_preview"}, nil),
		mock("syntax_highlight", StageHighlight, nil, nil),
		mock("code_preview", StageHighlight, nil, []string{"syntax_highlight"}),
		mock("external_links", StageNormalize, nil, nil),
	}
	resolved, err := Resolve(list)
	require.NoError(t, err)
	assert.Equal(t, []string{"external_links", "code_preview", "syntax_highlight", "copy_button"}, names(resolved))
	assertHonorsEdges(t, resolved)
}

// assertHonorsEdges checks every declared edge against positions in list.
func assertHonorsEdges(t *testing.T, list []Transformer) {
	t.Helper()
	pos := make(map[string]int, len(list))
	for i, tr := range list {
		pos[tr.Name()] = i
	}
	for i, tr := range list {
		for _, dep := range tr.Dependencies().MustRunAfter {
			assert.Less(t, pos[dep], i, "%s must run after %s", tr.Name(), dep)
		}
		for _, after := range tr.Dependencies().MustRunBefore {
			assert.Greater(t, pos[after], i, "%s must run before %s", tr.Name(), after)
		}
	}
}
