package integrationtests

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/avery/modules/widget"
	"github.com/vk/avery/record"
)

func TestManifestErrors(t *testing.T) {
	testCases := []struct {
		name       string
		manifest   string
		wantReason error
		wantErr    string
	}{
		{
			name: "expression cycle is rejected at load time",
			manifest: `model "m" {
  virtual "a" {
    expr = "${b}!"
  }
  virtual "b" {
    expr = "${a}?"
  }
}`,
			wantReason: record.ErrVirtualCycle,
			wantErr:    "cycle detected",
		},
		{
			name: "self reference is a cycle",
			manifest: `model "m" {
  virtual "a" {
    expr = a
  }
}`,
			wantReason: record.ErrVirtualCycle,
		},
		{
			name: "unregistered handler",
			manifest: `model "m" {
  virtual "a" {
    handler = "widget.nope"
  }
}`,
			wantReason: record.ErrNonFunctionVirtual,
			wantErr:    `handler "widget.nope" is not registered`,
		},
		{
			name: "declared dependency on an unknown attribute",
			manifest: `model "m" {
  virtual "a" {
    handler    = "widget.label"
    depends_on = ["ghost"]
  }
}`,
			wantReason: record.ErrUnknownDependency,
			wantErr:    `"ghost" is not an attribute of the model`,
		},
		{
			name: "default of the wrong type",
			manifest: `model "m" {
  attribute "tags" {
    type    = list(number)
    default = ["a"]
  }
}`,
			wantReason: record.ErrInvalidDefaults,
		},
		{
			name: "stored and virtual name collide",
			manifest: `model "m" {
  attribute "a" {}
  virtual "a" {
    expr = 1
  }
}`,
			wantReason: record.ErrVirtualNameCollision,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// --- Act ---
			result := runDescribe(t, map[string]string{"models/m.hcl": tc.manifest}, &widget.Module{})

			// --- Assert ---
			require.Error(t, result.Err)
			assert.ErrorIs(t, result.Err, tc.wantReason)
			if tc.wantErr != "" {
				assert.ErrorContains(t, result.Err, tc.wantErr)
			}
			assert.Empty(t, result.Output)
		})
	}
}

func TestDuplicateHandlerPanicsAtStartup(t *testing.T) {
	result := runDescribe(t, map[string]string{"models/m.hcl": `model "m" {}`}, &widget.Module{}, &widget.Module{})

	require.Error(t, result.Err)
	assert.Contains(t, result.Err.Error(), "application startup panicked")
	assert.Contains(t, result.Err.Error(), "virtual handler with name 'widget.label' already registered")
}
