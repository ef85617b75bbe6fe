package tool_test

import (
	"testing"

	"github.com/UnknownOlympus/shooter/internal/config"
	"github.com/UnknownOlympus/shooter/internal/geometry"
	"github.com/UnknownOlympus/shooter/internal/models"
	"github.com/UnknownOlympus/shooter/internal/tool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMachine(t *testing.T, variant tool.Variant) *tool.Machine {
	t.Helper()

	engine := geometry.NewEngine(geometry.WGS84, nil)

	return tool.NewMachine(variant, config.DefaultSettings(), engine, geometry.NewHaversineMeasurer(engine))
}

func kinds(effects []tool.Effect) []tool.EffectKind {
	out := make([]tool.EffectKind, 0, len(effects))
	for _, eff := range effects {
		out = append(out, eff.Kind)
	}
	return out
}

func find(effects []tool.Effect, kind tool.EffectKind) []tool.Effect {
	var out []tool.Effect
	for _, eff := range effects {
		if eff.Kind == kind {
			out = append(out, eff)
		}
	}
	return out
}

func TestMachine_SectorDrag(t *testing.T) {
	origin := geometry.Pt(0, 0)
	north := geometry.Pt(0, 0.001)

	t.Run("press starts a drag", func(t *testing.T) {
		m := newMachine(t, tool.VariantSector)

		snap, effects := m.Press(tool.Snapshot{}, tool.Press(tool.ButtonLeft, tool.Pixel{}, origin))

		assert.Equal(t, tool.PhaseDragging, snap.State.Phase)
		assert.Equal(t, origin, snap.State.Center)
		assert.Equal(t, []tool.EffectKind{tool.EffectClearPreview}, kinds(effects))
	})

	t.Run("non-left press is ignored", func(t *testing.T) {
		m := newMachine(t, tool.VariantSector)

		snap, effects := m.Press(tool.Snapshot{}, tool.Press(tool.ButtonMiddle, tool.Pixel{}, origin))

		assert.True(t, snap.Idle())
		assert.Empty(t, effects)
	})

	t.Run("north drag commits a sector", func(t *testing.T) {
		m := newMachine(t, tool.VariantSector)

		snap, _ := m.Press(tool.Snapshot{}, tool.Press(tool.ButtonLeft, tool.Pixel{}, origin))
		snap, _ = m.Move(snap, tool.Move(tool.Pixel{Y: -40}, north))
		snap, effects := m.Release(snap, tool.Release(tool.ButtonLeft, tool.Pixel{Y: -40}, north))

		require.Len(t, effects, 1)
		require.Equal(t, tool.EffectPrompt, effects[0].Kind)
		prompt := effects[0].Prompt
		assert.Equal(t, tool.PromptSectorID, prompt.Purpose)
		assert.Equal(t, "Input Sector ID", prompt.Title)
		assert.Equal(t, "Input Dummy ID for this sector:", prompt.Label)
		require.NotNil(t, snap.Pending)

		snap, effects = m.ResumePrompt(snap, "  ABC123 ", true)

		assert.True(t, snap.Idle())
		inserts := find(effects, tool.EffectInsert)
		require.Len(t, inserts, 1)
		ins := inserts[0]
		assert.Equal(t, models.LayerSector, ins.Layer)
		assert.Equal(t, "ABC123", ins.Attributes.DummyID)
		assert.Equal(t, "New Sector", ins.Attributes.SectorLabel)
		assert.InDelta(t, 0, ins.Attributes.Azimuth, 1e-6)
		assert.InDelta(t, 111.3, ins.Attributes.RadiusMeters, 0.5)
		assert.InDelta(t, 30, ins.Attributes.BeamwidthDegrees, 0)
		assert.InDelta(t, 0, ins.Attributes.CenterLat, 0)
		assert.InDelta(t, 0, ins.Attributes.CenterLon, 0)
		assert.Equal(t, "#FFFF00", ins.Attributes.LineColor)
		assert.Equal(t, 2, ins.Attributes.LineWidthPx)
		assert.True(t, ins.Attributes.ShowLabel)
		assert.Len(t, ins.Wedge, geometry.DefaultSegments+3)
		assert.True(t, ins.Wedge.Closed())
		assert.Contains(t, kinds(effects), tool.EffectClearPreview)
		assert.Contains(t, kinds(effects), tool.EffectClearOverlay)
	})

	t.Run("default radius when drag radius is off", func(t *testing.T) {
		settings := config.DefaultSettings()
		settings.UseDragRadius = false
		settings.DefaultRadius = 250
		engine := geometry.NewEngine(geometry.WGS84, nil)
		m := tool.NewMachine(tool.VariantSector, settings, engine, geometry.NewHaversineMeasurer(engine))

		snap, _ := m.Press(tool.Snapshot{}, tool.Press(tool.ButtonLeft, tool.Pixel{}, origin))
		snap, _ = m.Release(snap, tool.Release(tool.ButtonLeft, tool.Pixel{}, north))
		_, effects := m.ResumePrompt(snap, "X", true)

		inserts := find(effects, tool.EffectInsert)
		require.Len(t, inserts, 1)
		assert.InDelta(t, 250, inserts[0].Attributes.RadiusMeters, 0)
	})

	t.Run("short drag is discarded", func(t *testing.T) {
		m := newMachine(t, tool.VariantSector)
		near := geometry.Pt(0, 0.00002)

		snap, _ := m.Press(tool.Snapshot{}, tool.Press(tool.ButtonLeft, tool.Pixel{}, origin))
		snap, effects := m.Release(snap, tool.Release(tool.ButtonLeft, tool.Pixel{}, near))

		assert.True(t, snap.Idle())
		assert.Empty(t, find(effects, tool.EffectPrompt))
		assert.Empty(t, find(effects, tool.EffectInsert))
		discards := find(effects, tool.EffectDiscard)
		require.Len(t, discards, 1)
		assert.Equal(t, tool.DiscardShortDrag, discards[0].Message)
	})

	t.Run("cancelled prompt commits nothing", func(t *testing.T) {
		m := newMachine(t, tool.VariantSector)

		snap, _ := m.Press(tool.Snapshot{}, tool.Press(tool.ButtonLeft, tool.Pixel{}, origin))
		snap, _ = m.Release(snap, tool.Release(tool.ButtonLeft, tool.Pixel{}, north))
		snap, effects := m.ResumePrompt(snap, "ABC", false)

		assert.True(t, snap.Idle())
		assert.Empty(t, find(effects, tool.EffectInsert))
		require.Len(t, find(effects, tool.EffectDiscard), 1)
	})

	t.Run("blank answer commits nothing", func(t *testing.T) {
		m := newMachine(t, tool.VariantSector)

		snap, _ := m.Press(tool.Snapshot{}, tool.Press(tool.ButtonLeft, tool.Pixel{}, origin))
		snap, _ = m.Release(snap, tool.Release(tool.ButtonLeft, tool.Pixel{}, north))
		snap, effects := m.ResumePrompt(snap, "   ", true)

		assert.True(t, snap.Idle())
		assert.Empty(t, find(effects, tool.EffectInsert))
	})

	t.Run("events are ignored while a prompt is pending", func(t *testing.T) {
		m := newMachine(t, tool.VariantSector)

		snap, _ := m.Press(tool.Snapshot{}, tool.Press(tool.ButtonLeft, tool.Pixel{}, origin))
		snap, _ = m.Release(snap, tool.Release(tool.ButtonLeft, tool.Pixel{}, north))

		next, effects := m.Press(snap, tool.Press(tool.ButtonLeft, tool.Pixel{}, north))
		assert.Equal(t, snap, next)
		assert.Empty(t, effects)

		next, effects = m.Move(snap, tool.Move(tool.Pixel{X: 10}, north))
		assert.Equal(t, snap, next)
		assert.Empty(t, effects)
	})

	t.Run("release without a drag does nothing", func(t *testing.T) {
		m := newMachine(t, tool.VariantSector)

		snap, effects := m.Release(tool.Snapshot{}, tool.Release(tool.ButtonLeft, tool.Pixel{}, north))

		assert.True(t, snap.Idle())
		assert.Empty(t, effects)
	})
}

func TestMachine_Move(t *testing.T) {
	origin := geometry.Pt(0, 0)

	t.Run("move while idle does nothing", func(t *testing.T) {
		m := newMachine(t, tool.VariantSector)

		_, effects := m.Move(tool.Snapshot{}, tool.Move(tool.Pixel{X: 5}, geometry.Pt(0.001, 0)))

		assert.Empty(t, effects)
	})

	t.Run("preview wedge uses a fixed beamwidth", func(t *testing.T) {
		m := newMachine(t, tool.VariantSector)
		east := geometry.Pt(0.001, 0)

		snap, _ := m.Press(tool.Snapshot{}, tool.Press(tool.ButtonLeft, tool.Pixel{}, origin))
		_, effects := m.Move(snap, tool.Move(tool.Pixel{X: 40}, east))

		previews := find(effects, tool.EffectShowPreview)
		require.Len(t, previews, 1)
		assert.Equal(t, []geometry.Point{origin, east}, previews[0].Line)
		require.NotEmpty(t, previews[0].Wedge)

		first := previews[0].Wedge[1]
		last := previews[0].Wedge[len(previews[0].Wedge)-2]
		assert.InDelta(t, 70, geometry.CalcBearing(origin, first), 1e-6)
		assert.InDelta(t, 110, geometry.CalcBearing(origin, last), 1e-6)

		overlays := find(effects, tool.EffectShowOverlay)
		require.Len(t, overlays, 1)
		assert.InDelta(t, 90, overlays[0].Overlay.Bearing, 1e-6)
		assert.Equal(t, "", overlays[0].Overlay.Snap)
	})

	t.Run("tiny drags show only the line", func(t *testing.T) {
		m := newMachine(t, tool.VariantSector)

		snap, _ := m.Press(tool.Snapshot{}, tool.Press(tool.ButtonLeft, tool.Pixel{}, origin))
		_, effects := m.Move(snap, tool.Move(tool.Pixel{X: 1}, geometry.Pt(0.000001, 0)))

		previews := find(effects, tool.EffectShowPreview)
		require.Len(t, previews, 1)
		assert.Nil(t, previews[0].Wedge)
	})

	t.Run("overlay is throttled by pointer travel", func(t *testing.T) {
		m := newMachine(t, tool.VariantSector)
		at := geometry.Pt(0.001, 0.001)

		snap, _ := m.Press(tool.Snapshot{}, tool.Press(tool.ButtonLeft, tool.Pixel{}, origin))

		snap, effects := m.Move(snap, tool.Move(tool.Pixel{X: 10, Y: 10}, at))
		assert.Len(t, find(effects, tool.EffectShowOverlay), 1)

		snap, effects = m.Move(snap, tool.Move(tool.Pixel{X: 11, Y: 11}, at))
		assert.Empty(t, find(effects, tool.EffectShowOverlay))
		assert.Len(t, find(effects, tool.EffectShowPreview), 1)

		_, effects = m.Move(snap, tool.Move(tool.Pixel{X: 12, Y: 11}, at))
		assert.Len(t, find(effects, tool.EffectShowOverlay), 1)
	})

	t.Run("modifiers snap the bearing", func(t *testing.T) {
		m := newMachine(t, tool.VariantSector)
		// 27 degrees east of north
		at := geometry.Pt(0.000453990, 0.000891007)

		snap, _ := m.KeyDown(tool.Snapshot{}, tool.KeyControl)
		snap, _ = m.Press(snap, tool.Press(tool.ButtonLeft, tool.Pixel{}, origin))
		_, effects := m.Move(snap, tool.Move(tool.Pixel{X: 10}, at))
		overlays := find(effects, tool.EffectShowOverlay)
		require.Len(t, overlays, 1)
		assert.InDelta(t, 25, overlays[0].Overlay.Bearing, 1e-6)
		assert.Equal(t, " (5°)", overlays[0].Overlay.Snap)

		snap, _ = m.KeyDown(snap, tool.KeyShift)
		_, effects = m.Move(snap, tool.Move(tool.Pixel{X: 20}, at))
		overlays = find(effects, tool.EffectShowOverlay)
		require.Len(t, overlays, 1)
		assert.InDelta(t, 30, overlays[0].Overlay.Bearing, 1e-6)
		assert.Equal(t, " (10°)", overlays[0].Overlay.Snap)
		assert.Equal(t, "AZ: 30.0° (10°)\nR: 111.3 m", overlays[0].Overlay.Text())
	})
}

func TestMachine_Site(t *testing.T) {
	center := geometry.Pt(30.5, 50.45)

	t.Run("click authors three sectors", func(t *testing.T) {
		m := newMachine(t, tool.VariantSite)

		snap, effects := m.Press(tool.Snapshot{}, tool.Press(tool.ButtonLeft, tool.Pixel{}, center))
		require.Len(t, effects, 1)
		require.Equal(t, tool.EffectPrompt, effects[0].Kind)
		assert.Equal(t, "Input Site ID", effects[0].Prompt.Title)
		assert.Equal(t, "Input Dummy ID / Site ID:", effects[0].Prompt.Label)

		snap, effects = m.ResumePrompt(snap, "X1", true)

		assert.True(t, snap.Idle())
		inserts := find(effects, tool.EffectInsert)
		require.Len(t, inserts, 3)
		for idx, ins := range inserts {
			assert.Equal(t, models.LayerSite, ins.Layer)
			assert.Equal(t, "X1", ins.Attributes.DummyID)
			assert.Equal(t, []string{"Sector 1", "Sector 2", "Sector 3"}[idx], ins.Attributes.SectorLabel)
			assert.InDelta(t, tool.SiteBearings[idx], ins.Attributes.Azimuth, 0)
			assert.InDelta(t, 100, ins.Attributes.RadiusMeters, 0)
			assert.InDelta(t, 30, ins.Attributes.BeamwidthDegrees, 0)
			assert.InDelta(t, center.Y, ins.Attributes.CenterLat, 0)
			assert.InDelta(t, center.X, ins.Attributes.CenterLon, 0)
			assert.Equal(t, center, ins.Wedge[0])
		}
	})

	t.Run("cancel authors nothing", func(t *testing.T) {
		m := newMachine(t, tool.VariantSite)

		snap, _ := m.Press(tool.Snapshot{}, tool.Press(tool.ButtonLeft, tool.Pixel{}, center))
		snap, effects := m.ResumePrompt(snap, "", false)

		assert.True(t, snap.Idle())
		assert.Empty(t, find(effects, tool.EffectInsert))
	})

	t.Run("site tool ignores motion", func(t *testing.T) {
		m := newMachine(t, tool.VariantSite)

		_, effects := m.Move(tool.Snapshot{}, tool.Move(tool.Pixel{X: 4}, center))

		assert.Empty(t, effects)
	})
}

func TestMachine_Keys(t *testing.T) {
	origin := geometry.Pt(0, 0)

	t.Run("escape cancels a drag", func(t *testing.T) {
		m := newMachine(t, tool.VariantSector)

		snap, _ := m.Press(tool.Snapshot{}, tool.Press(tool.ButtonLeft, tool.Pixel{}, origin))
		snap, effects := m.KeyDown(snap, tool.KeyEscape)

		assert.True(t, snap.Idle())
		assert.Equal(t, []tool.EffectKind{
			tool.EffectClearPreview, tool.EffectClearOverlay, tool.EffectStatus, tool.EffectDiscard,
		}, kinds(effects))
	})

	t.Run("escape while idle only clears", func(t *testing.T) {
		m := newMachine(t, tool.VariantSector)

		_, effects := m.KeyDown(tool.Snapshot{}, tool.KeyEscape)

		assert.Empty(t, find(effects, tool.EffectDiscard))
		assert.Len(t, find(effects, tool.EffectStatus), 1)
	})

	t.Run("escape keeps modifiers", func(t *testing.T) {
		m := newMachine(t, tool.VariantSector)

		snap, _ := m.KeyDown(tool.Snapshot{}, tool.KeyControl)
		snap, _ = m.KeyDown(snap, tool.KeyEscape)

		assert.True(t, snap.Mods.Ctrl)
	})

	t.Run("modifier release", func(t *testing.T) {
		m := newMachine(t, tool.VariantSector)

		snap, _ := m.KeyDown(tool.Snapshot{}, tool.KeyControl)
		snap, _ = m.KeyDown(snap, tool.KeyShift)
		snap, _ = m.KeyUp(snap, tool.KeyControl)

		assert.False(t, snap.Mods.Ctrl)
		assert.True(t, snap.Mods.Shift)

		snap, _ = m.KeyUp(snap, tool.KeyShift)
		assert.Equal(t, tool.Modifiers{}, snap.Mods)
	})

	t.Run("other keys are ignored", func(t *testing.T) {
		m := newMachine(t, tool.VariantSector)

		snap, effects := m.KeyDown(tool.Snapshot{}, tool.KeyOther)

		assert.Equal(t, tool.Snapshot{}, snap)
		assert.Empty(t, effects)
	})
}

func TestMachine_RightClick(t *testing.T) {
	t.Run("right release opens the context menu", func(t *testing.T) {
		m := newMachine(t, tool.VariantSector)
		px := tool.Pixel{X: 12, Y: 34}

		_, effects := m.Release(tool.Snapshot{}, tool.Release(tool.ButtonRight, px, geometry.Pt(1, 1)))

		require.Len(t, effects, 1)
		assert.Equal(t, tool.EffectContextMenu, effects[0].Kind)
		assert.Equal(t, px, effects[0].Pixel)
	})

	t.Run("right release while picking is ignored", func(t *testing.T) {
		m := newMachine(t, tool.VariantSector)
		snap, _ := m.BeginMoveCenter(tool.Snapshot{}, sampleFeature())

		_, effects := m.Release(snap, tool.Release(tool.ButtonRight, tool.Pixel{}, geometry.Pt(1, 1)))

		assert.Empty(t, effects)
	})
}

func sampleFeature() models.Feature {
	return models.Feature{
		ID:    7,
		Layer: models.LayerSector,
		Attributes: models.SectorAttributes{
			SectorLabel:      "New Sector",
			DummyID:          "A1",
			Azimuth:          45,
			RadiusMeters:     200,
			BeamwidthDegrees: 30,
			CenterLat:        0,
			CenterLon:        0,
			LineColor:        models.ColorYellow,
			LineWidthPx:      2,
			ShowLabel:        true,
		},
	}
}

func TestMachine_MoveCenter(t *testing.T) {
	t.Run("pick moves the feature and keeps its shape", func(t *testing.T) {
		m := newMachine(t, tool.VariantSector)
		target := geometry.Pt(1, 1)

		snap, effects := m.BeginMoveCenter(tool.Snapshot{}, sampleFeature())
		assert.Equal(t, tool.PhasePicking, snap.State.Phase)
		statuses := find(effects, tool.EffectStatus)
		require.Len(t, statuses, 1)
		assert.Equal(t, "Click new center on map...", statuses[0].Message)

		snap, effects = m.Press(snap, tool.Press(tool.ButtonLeft, tool.Pixel{}, target))

		assert.True(t, snap.Idle())
		updates := find(effects, tool.EffectUpdate)
		require.Len(t, updates, 1)
		upd := updates[0]
		assert.Equal(t, int64(7), upd.FeatureID)
		assert.Equal(t, target, upd.Wedge[0])
		assert.InDelta(t, 1, *upd.Delta.CenterLat, 0)
		assert.InDelta(t, 1, *upd.Delta.CenterLon, 0)
		assert.Nil(t, upd.Delta.Azimuth)
		assert.Nil(t, upd.Delta.RadiusMeters)
		assert.Nil(t, upd.Delta.BeamwidthDegrees)

		engine := geometry.NewEngine(geometry.WGS84, nil)
		want, err := engine.BuildWedge(geometry.SectorSpec{
			Center: target, Azimuth: 45, RadiusM: 200, BeamwidthDeg: 30,
		}, geometry.DefaultSegments)
		require.NoError(t, err)
		assert.Equal(t, want, upd.Wedge)

		statuses = find(effects, tool.EffectStatus)
		require.Len(t, statuses, 1)
		assert.Empty(t, statuses[0].Message)
	})

	t.Run("escape leaves pick mode", func(t *testing.T) {
		m := newMachine(t, tool.VariantSite)

		snap, _ := m.BeginMoveCenter(tool.Snapshot{}, sampleFeature())
		snap, effects := m.KeyDown(snap, tool.KeyEscape)

		assert.True(t, snap.Idle())
		assert.Len(t, find(effects, tool.EffectDiscard), 1)
	})

	t.Run("pick works for the site tool", func(t *testing.T) {
		m := newMachine(t, tool.VariantSite)

		snap, _ := m.BeginMoveCenter(tool.Snapshot{}, sampleFeature())
		snap, effects := m.Press(snap, tool.Press(tool.ButtonLeft, tool.Pixel{}, geometry.Pt(2, 2)))

		assert.True(t, snap.Idle())
		assert.Len(t, find(effects, tool.EffectUpdate), 1)
		assert.Empty(t, find(effects, tool.EffectPrompt))
	})
}

func TestMachine_Apply(t *testing.T) {
	feature := sampleFeature()

	t.Run("edit snaps and clamps", func(t *testing.T) {
		m := newMachine(t, tool.VariantSector)

		_, effects := m.Apply(tool.Snapshot{}, tool.MenuChoice{
			Action: tool.ActionEdit, Azimuth: 92, Radius: 20004, Beamwidth: 3,
		}, feature)

		require.Len(t, effects, 1)
		upd := effects[0]
		assert.Equal(t, tool.EffectUpdate, upd.Kind)
		assert.Equal(t, "edit", upd.Message)
		assert.InDelta(t, 90, *upd.Delta.Azimuth, 0)
		assert.InDelta(t, config.MaxRadius, *upd.Delta.RadiusMeters, 0)
		assert.InDelta(t, config.MinBeamwidth, *upd.Delta.BeamwidthDegrees, 0)
		assert.NotEmpty(t, upd.Wedge)
	})

	t.Run("coord moves to explicit coordinates", func(t *testing.T) {
		m := newMachine(t, tool.VariantSector)

		_, effects := m.Apply(tool.Snapshot{}, tool.MenuChoice{Action: tool.ActionCoord, Lon: 200, Lat: 45}, feature)

		require.Len(t, effects, 1)
		assert.InDelta(t, 180, *effects[0].Delta.CenterLon, 0)
		assert.InDelta(t, 45, *effects[0].Delta.CenterLat, 0)
		assert.Equal(t, geometry.Pt(180, 45), effects[0].Wedge[0])
	})

	t.Run("colors", func(t *testing.T) {
		m := newMachine(t, tool.VariantSector)

		_, effects := m.Apply(tool.Snapshot{}, tool.MenuChoice{Action: tool.ActionWhite}, feature)
		require.Len(t, effects, 1)
		assert.Equal(t, models.ColorWhite, *effects[0].Delta.LineColor)
		assert.Nil(t, effects[0].Wedge)

		_, effects = m.Apply(tool.Snapshot{}, tool.MenuChoice{Action: tool.ActionYellow}, feature)
		require.Len(t, effects, 1)
		assert.Equal(t, models.ColorYellow, *effects[0].Delta.LineColor)
	})

	t.Run("toggle label", func(t *testing.T) {
		m := newMachine(t, tool.VariantSector)

		_, effects := m.Apply(tool.Snapshot{}, tool.MenuChoice{Action: tool.ActionToggleLabel}, feature)

		require.Len(t, effects, 1)
		assert.False(t, *effects[0].Delta.ShowLabel)
	})

	t.Run("rename prompts then updates the label", func(t *testing.T) {
		m := newMachine(t, tool.VariantSector)

		snap, effects := m.Apply(tool.Snapshot{}, tool.MenuChoice{Action: tool.ActionRename}, feature)
		require.Len(t, effects, 1)
		assert.Equal(t, "New Sector", effects[0].Prompt.Default)

		snap, effects = m.ResumePrompt(snap, "North", true)

		assert.True(t, snap.Idle())
		require.Len(t, effects, 1)
		assert.Equal(t, "North", *effects[0].Delta.SectorLabel)
		assert.Equal(t, int64(7), effects[0].FeatureID)
	})

	t.Run("cancelled rename does nothing", func(t *testing.T) {
		m := newMachine(t, tool.VariantSector)

		snap, _ := m.Apply(tool.Snapshot{}, tool.MenuChoice{Action: tool.ActionRename}, feature)
		snap, effects := m.ResumePrompt(snap, "", false)

		assert.True(t, snap.Idle())
		assert.Empty(t, effects)
	})

	t.Run("delete", func(t *testing.T) {
		m := newMachine(t, tool.VariantSector)

		_, effects := m.Apply(tool.Snapshot{}, tool.MenuChoice{Action: tool.ActionDelete}, feature)

		require.Len(t, effects, 1)
		assert.Equal(t, tool.EffectRemove, effects[0].Kind)
		assert.Equal(t, int64(7), effects[0].FeatureID)
	})

	t.Run("move enters pick mode", func(t *testing.T) {
		m := newMachine(t, tool.VariantSector)

		snap, _ := m.Apply(tool.Snapshot{}, tool.MenuChoice{Action: tool.ActionMove}, feature)

		assert.Equal(t, tool.PhasePicking, snap.State.Phase)
		assert.Equal(t, int64(7), snap.State.Target)
	})

	t.Run("unknown action fails", func(t *testing.T) {
		m := newMachine(t, tool.VariantSector)

		_, effects := m.Apply(tool.Snapshot{}, tool.MenuChoice{Action: "bogus"}, feature)

		require.Len(t, effects, 1)
		assert.ErrorIs(t, effects[0].Err, tool.ErrUnknownAction)
	})
}
