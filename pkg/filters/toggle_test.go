package filters

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToggle(t *testing.T) {
	tests := []struct {
		name   string
		active []string
		id     string
		want   []string
	}{
		{
			name:   "add to empty",
			active: []string{},
			id:     "vintage",
			want:   []string{"vintage"},
		},
		{
			name:   "same exclusive group replaces",
			active: []string{"vintage"},
			id:     "sepia",
			want:   []string{"sepia"},
		},
		{
			name:   "non-exclusive group coexists",
			active: []string{"vintage", "enhance"},
			id:     "dramatic",
			want:   []string{"vintage", "enhance", "dramatic"},
		},
		{
			name:   "toggle active removes without replacement",
			active: []string{"warm", "enhance"},
			id:     "warm",
			want:   []string{"enhance"},
		},
		{
			name:   "other exclusive groups untouched",
			active: []string{"vintage", "warm", "instagram"},
			id:     "cool",
			want:   []string{"vintage", "instagram", "cool"},
		},
		{
			name:   "resolution group is exclusive",
			active: []string{"upscale_2x", "crisp"},
			id:     "upscale_4x",
			want:   []string{"crisp", "upscale_4x"},
		},
		{
			name:   "projector fixes stack",
			active: []string{"keystone_correct", "contrast_boost"},
			id:     "focus_sharpen",
			want:   []string{"keystone_correct", "contrast_boost", "focus_sharpen"},
		},
		{
			name:   "unknown id has no conflicts",
			active: []string{"vintage"},
			id:     "mystery",
			want:   []string{"vintage", "mystery"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, Toggle(tt.active, tt.id))
		})
	}
}

func TestToggle_DoesNotMutateInput(t *testing.T) {
	active := []string{"vintage", "enhance"}
	_ = Toggle(active, "sepia")
	_ = Toggle(active, "enhance")
	require.Equal(t, []string{"vintage", "enhance"}, active)
}

func TestToggle_ExclusiveGroupsHoldAtMostOne(t *testing.T) {
	for _, g := range Groups {
		var members []string
		for _, p := range Catalog {
			if p.Group == g.Name {
				members = append(members, p.ID)
			}
		}
		require.NotEmpty(t, members, g.Name)

		active := []string{}
		for _, id := range members {
			active = Toggle(active, id)
		}

		if g.Exclusive {
			require.Equal(t, []string{members[len(members)-1]}, active, g.Name)
			require.NoError(t, CheckExclusive(active))
		} else {
			require.Equal(t, members, active, g.Name)
		}
	}
}

func TestCatalog_GroupsAndIDs(t *testing.T) {
	seen := map[string]bool{}
	for _, p := range Catalog {
		require.False(t, seen[p.ID], "duplicate id %s", p.ID)
		seen[p.ID] = true
		_, ok := GroupOf(p.ID)
		require.True(t, ok, "preset %s has unknown group %s", p.ID, p.Group)
	}
	require.Len(t, Catalog, 40)

	exclusive := map[string]bool{}
	for _, g := range Groups {
		exclusive[g.Name] = g.Exclusive
	}
	assert.True(t, exclusive[GroupColorStyle])
	assert.True(t, exclusive[GroupTemperature])
	assert.True(t, exclusive[GroupSocialMedia])
	assert.True(t, exclusive[GroupRetro])
	assert.True(t, exclusive[GroupResolution])
	assert.False(t, exclusive[GroupEnhancement])
	assert.False(t, exclusive[GroupCinematic])
	assert.False(t, exclusive[GroupProjectorFix])
}

func TestCheckExclusive(t *testing.T) {
	require.NoError(t, CheckExclusive(nil))
	require.NoError(t, CheckExclusive([]string{"vintage", "warm", "enhance", "dramatic"}))
	require.ErrorIs(t, CheckExclusive([]string{"vintage", "sepia"}), ErrGroupConflict)
	require.ErrorIs(t, CheckExclusive([]string{"nope"}), ErrUnknownPreset)
}

func TestReplaced(t *testing.T) {
	before := []string{"vintage", "enhance"}
	after := Toggle(before, "noir")
	require.Equal(t, []string{"vintage"}, Replaced(before, after))
	require.Empty(t, Replaced(after, Toggle(after, "soft")))
}

func TestLabel(t *testing.T) {
	require.Equal(t, "Black & White", Label("black_white"))
	require.Equal(t, "Ambient Light Remove", Label("ambient_remove"))
	require.Equal(t, "Some New Look", Label("some_new_look"))
}

func TestByGroup(t *testing.T) {
	groups := ByGroup()
	require.Len(t, groups, len(Groups))
	require.Equal(t, GroupColorStyle, groups[0].Group.Name)
	require.Len(t, groups[0].Presets, 8)
	require.Equal(t, GroupResolution, groups[len(groups)-1].Group.Name)
	require.Len(t, groups[len(groups)-1].Presets, 2)

	total := 0
	for _, g := range groups {
		total += len(g.Presets)
	}
	require.Equal(t, len(Catalog), total)
}
