package cmd

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"asset-binder/core/binding"
	"asset-binder/core/binding/bindingtest"
	"asset-binder/feature/materials"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPromptConfirmer(t *testing.T) {
	cfg := bindingtest.NewConfig("Models/hero.fbx", nil, nil)

	tests := []struct {
		name  string
		input string
		want  binding.Resolution
	}{
		{"Keep", "keep\n", binding.ResolutionCommit},
		{"Discard Short", "d\n", binding.ResolutionRevert},
		{"Retry Until Valid", "maybe\n\nKEEP\n", binding.ResolutionCommit},
		{"No Trailing Newline", "discard", binding.ResolutionRevert},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			decision, err := promptConfirmer(strings.NewReader(tt.input), &out).
				ConfirmPendingChanges(context.Background(), cfg)
			require.NoError(t, err)
			assert.Equal(t, tt.want, decision.Resolution)
			assert.False(t, decision.Aborted)
			assert.Contains(t, out.String(), "Models/hero.fbx has unsaved binding changes")
		})
	}

	t.Run("No Answer", func(t *testing.T) {
		_, err := promptConfirmer(strings.NewReader("what\n"), &bytes.Buffer{}).
			ConfirmPendingChanges(context.Background(), cfg)
		assert.ErrorContains(t, err, "no answer")
	})
}

func TestSessionConfirmer_Flags(t *testing.T) {
	cfg := bindingtest.NewConfig("Models/hero.fbx", nil, nil)
	t.Cleanup(func() { keepEdits, discardEdits = false, false })

	keepEdits = true
	decision, err := sessionConfirmer(strings.NewReader(""), &bytes.Buffer{}).
		ConfirmPendingChanges(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, binding.ResolutionCommit, decision.Resolution)

	keepEdits, discardEdits = false, true
	decision, err = sessionConfirmer(strings.NewReader(""), &bytes.Buffer{}).
		ConfirmPendingChanges(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, binding.ResolutionRevert, decision.Resolution)
}

func TestParseSlotRef(t *testing.T) {
	assert.Equal(t, materials.SlotRef{Name: "Body"}, parseSlotRef("Body"))
	assert.Equal(t, materials.SlotRef{Name: "Body", Type: "Material"}, parseSlotRef("Body:Material"))
	assert.Equal(t,
		materials.SlotRef{Name: "Body", Type: "Material", Assembly: "Engine.CoreModule"},
		parseSlotRef("Body:Material:Engine.CoreModule"))
}

func TestBuildDefinition(t *testing.T) {
	body := binding.BindingKey{Name: "Body", Type: "Material", Assembly: "Engine.CoreModule"}
	eyes := binding.BindingKey{Name: "Eyes", Type: "Material", Assembly: "Engine.CoreModule"}

	t.Run("Valid", func(t *testing.T) {
		def, err := buildDefinition("Models/hero.fbx", "via_description", "in_store",
			[]string{"Body:Material:Engine.CoreModule", "Eyes:Material:Engine.CoreModule"},
			[]string{"Eyes=Materials/EyeBlue.mat"})
		require.NoError(t, err)
		assert.Equal(t, binding.ImportModeViaDescription, def.ImportMode)
		assert.Equal(t, binding.LocationInStore, def.Location)
		assert.Equal(t, []binding.BindingKey{body, eyes}, def.Slots)
		assert.Equal(t, []binding.ExternalBinding{{Key: eyes, Ref: "Materials/EyeBlue.mat"}}, def.Bindings)
	})

	tests := []struct {
		name   string
		mode   string
		slots  []string
		binds  []string
		errMsg string
	}{
		{"Bad Mode", "legacy", nil, nil, "unknown import mode"},
		{"Short Slot", "standard", []string{"Body"}, nil, "want name:type:assembly"},
		{"Unknown Slot", "standard", []string{"Body:Material:Engine.CoreModule"}, []string{"Hair=x.mat"}, "exactly one declared slot"},
		{"Empty Ref", "standard", []string{"Body:Material:Engine.CoreModule"}, []string{"Body="}, "invalid binding"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := buildDefinition("Models/hero.fbx", tt.mode, "in_store", tt.slots, tt.binds)
			assert.ErrorContains(t, err, tt.errMsg)
		})
	}
}
