package replay_test

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/Flaque/filet"
	"github.com/UnknownOlympus/shooter/internal/config"
	"github.com/UnknownOlympus/shooter/internal/geometry"
	"github.com/UnknownOlympus/shooter/internal/layer"
	"github.com/UnknownOlympus/shooter/internal/metrics"
	"github.com/UnknownOlympus/shooter/internal/models"
	"github.com/UnknownOlympus/shooter/internal/replay"
	"github.com/UnknownOlympus/shooter/internal/tool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sectorScript = `
name: north drag
variant: sector
viewport:
  origin_x: 0
  origin_y: 0
  scale: 0.00001
answers:
  - text: ABC123
steps:
  - press: {x: 0, y: 0}
  - move: {x: 0, y: -50}
  - move: {x: 0, y: -100}
  - release: {x: 0, y: -100}
`

const siteScript = `
name: site then delete
variant: site
viewport:
  scale: 0.00001
answers:
  - text: X1
steps:
  - press: {x: 0, y: 0}
  - release: {x: 0, y: 0}
  - menu: {x: 0, y: -50, action: delete}
  - menu: {x: 500, y: 500, action: white}
`

type fakeLocator struct {
	coords models.Coordinates
	err    error
}

func (f fakeLocator) Locate(context.Context, string) (*models.Coordinates, error) {
	if f.err != nil {
		return nil, f.err
	}
	c := f.coords
	return &c, nil
}

func newRunner(loc fakeLocator) *replay.Runner {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	engine := geometry.NewEngine(geometry.WGS84, nil)
	m := metrics.NewMetrics(prometheus.NewRegistry())

	return replay.NewRunner(logger, m, config.DefaultSettings(), engine, loc)
}

func newStore() *layer.Store {
	return layer.NewStore(slog.New(slog.NewTextHandler(io.Discard, nil)), nil)
}

func TestLoad(t *testing.T) {
	t.Run("valid file", func(t *testing.T) {
		defer filet.CleanUp(t)
		dir := filet.TmpDir(t, "")
		path := filepath.Join(dir, "session.yaml")
		filet.File(t, path, sectorScript)

		script, err := replay.Load(path)

		require.NoError(t, err)
		assert.Equal(t, "north drag", script.Name)
		assert.Equal(t, tool.VariantSector, script.ToolVariant())
		assert.InDelta(t, 0.00001, script.Viewport.Scale, 0)
		require.Len(t, script.Steps, 4)
		require.NotNil(t, script.Steps[0].Press)
		require.NotNil(t, script.Steps[3].Release)
		assert.Equal(t, -100, script.Steps[3].Release.Y)
		assert.Equal(t, []replay.Answer{{Text: "ABC123"}}, script.Answers)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := replay.Load(filepath.Join(t.TempDir(), "absent.yaml"))

		require.ErrorContains(t, err, "reading script file")
	})
}

func TestParse_Invalid(t *testing.T) {
	cases := map[string]string{
		"unknown variant":  "variant: tower\nviewport: {scale: 1}\nsteps: []\n",
		"zero scale":       "variant: sector\nviewport: {scale: 0}\nsteps: []\n",
		"missing steps":    "variant: sector\nviewport: {scale: 1}\n",
		"two ops per step": "variant: sector\nviewport: {scale: 1}\nsteps:\n  - {press: {x: 1, y: 1}, key_down: ctrl}\n",
		"unknown key":      "variant: sector\nviewport: {scale: 1}\nsteps:\n  - key_down: alt\n",
		"unknown action":   "variant: site\nviewport: {scale: 1}\nsteps:\n  - menu: {x: 1, y: 1, action: explode}\n",
		"fractional pixel": "variant: sector\nviewport: {scale: 1}\nsteps:\n  - press: {x: 1.5, y: 1}\n",
		"empty document":   "",
	}

	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := replay.Parse([]byte(doc))

			require.ErrorIs(t, err, replay.ErrInvalidScript)
		})
	}

	t.Run("broken yaml", func(t *testing.T) {
		_, err := replay.Parse([]byte("variant: [sector"))

		require.ErrorContains(t, err, "parsing script YAML")
	})
}

func TestViewport_ToMap(t *testing.T) {
	v := replay.Viewport{OriginX: 10, OriginY: 20, Scale: 0.5}

	assert.Equal(t, geometry.Pt(10, 20), v.ToMap(tool.Pixel{}))
	assert.Equal(t, geometry.Pt(12, 19), v.ToMap(tool.Pixel{X: 4, Y: 2}))
}

func TestRunner_Run(t *testing.T) {
	ctx := context.Background()

	t.Run("sector drag commits one sector", func(t *testing.T) {
		script, err := replay.Parse([]byte(sectorScript))
		require.NoError(t, err)
		store := newStore()

		report, err := newRunner(fakeLocator{}).Run(ctx, script, store)

		require.NoError(t, err)
		assert.Empty(t, report.Errors)
		assert.Equal(t, 4, report.Steps)
		assert.Equal(t, "idle", report.Phase)
		assert.Equal(t, 1, report.Features[models.LayerSector])

		features, err := store.Features(models.LayerSector)
		require.NoError(t, err)
		require.Len(t, features, 1)
		attrs := features[0].Attributes
		assert.Equal(t, "ABC123", attrs.DummyID)
		assert.InDelta(t, 0, attrs.Azimuth, 1e-9)
		assert.InDelta(t, 111.3, attrs.RadiusMeters, 0.5)
	})

	t.Run("site then delete through the menu", func(t *testing.T) {
		script, err := replay.Parse([]byte(siteScript))
		require.NoError(t, err)
		store := newStore()

		report, err := newRunner(fakeLocator{}).Run(ctx, script, store)

		require.NoError(t, err)
		assert.Equal(t, 2, report.Features[models.LayerSite])
		require.Len(t, report.Errors, 1)
		assert.Contains(t, report.Errors[0], "step 3")
		assert.Contains(t, report.Errors[0], replay.ErrMenuMissed.Error())

		features, err := store.Features(models.LayerSite)
		require.NoError(t, err)
		for _, f := range features {
			assert.NotEqual(t, "Sector 1", f.Attributes.SectorLabel)
		}
	})

	t.Run("locate places a site", func(t *testing.T) {
		script, err := replay.Parse([]byte(`
variant: site
viewport: {scale: 0.00001}
answers: [{text: K1}]
steps:
  - locate: {address: "Kyiv, Khreshchatyk 1"}
`))
		require.NoError(t, err)
		store := newStore()
		loc := fakeLocator{coords: models.Coordinates{Longitude: 30.5234, Latitude: 50.4501}}

		report, err := newRunner(loc).Run(ctx, script, store)

		require.NoError(t, err)
		assert.Empty(t, report.Errors)
		features, err := store.Features(models.LayerSite)
		require.NoError(t, err)
		require.Len(t, features, 3)
		assert.InDelta(t, 30.5234, features[0].Attributes.CenterLon, 0)
		assert.InDelta(t, 50.4501, features[0].Attributes.CenterLat, 0)
	})

	t.Run("coord action takes a located address", func(t *testing.T) {
		script, err := replay.Parse([]byte(`
variant: site
viewport: {scale: 0.00001}
answers: [{text: K1}]
steps:
  - press: {x: 0, y: 0}
  - menu: {x: 0, y: -50, action: coord, address: "Lviv"}
`))
		require.NoError(t, err)
		store := newStore()
		loc := fakeLocator{coords: models.Coordinates{Longitude: 24.03, Latitude: 49.84}}

		report, err := newRunner(loc).Run(ctx, script, store)

		require.NoError(t, err)
		assert.Empty(t, report.Errors)
		features, err := store.Features(models.LayerSite)
		require.NoError(t, err)
		require.Len(t, features, 3)
		assert.InDelta(t, 24.03, features[0].Attributes.CenterLon, 0)
		assert.Equal(t, geometry.Pt(24.03, 49.84), features[0].Geometry[0])
	})

	t.Run("locator failure is recorded", func(t *testing.T) {
		script, err := replay.Parse([]byte(`
variant: site
viewport: {scale: 1}
steps:
  - locate: {address: "nowhere"}
`))
		require.NoError(t, err)

		report, err := newRunner(fakeLocator{err: assert.AnError}).Run(ctx, script, newStore())

		require.NoError(t, err)
		require.Len(t, report.Errors, 1)
		assert.Contains(t, report.Errors[0], "failed to locate")
	})

	t.Run("prompt without an answer", func(t *testing.T) {
		script, err := replay.Parse([]byte(`
variant: site
viewport: {scale: 1}
steps:
  - press: {x: 0, y: 0}
`))
		require.NoError(t, err)

		report, err := newRunner(fakeLocator{}).Run(ctx, script, newStore())

		require.NoError(t, err)
		require.Len(t, report.Errors, 1)
		assert.Contains(t, report.Errors[0], replay.ErrNoAnswer.Error())
		assert.Equal(t, "idle", report.Phase)
	})

	t.Run("menu while picking a center", func(t *testing.T) {
		script, err := replay.Parse([]byte(`
variant: site
viewport: {scale: 0.00001}
answers: [{text: K1}]
steps:
  - press: {x: 0, y: 0}
  - menu: {x: 0, y: -50, action: move}
  - menu: {x: 0, y: -50, action: delete}
  - press: {x: 100, y: 0}
`))
		require.NoError(t, err)
		store := newStore()

		report, err := newRunner(fakeLocator{}).Run(ctx, script, store)

		require.NoError(t, err)
		require.Len(t, report.Errors, 1)
		assert.Contains(t, report.Errors[0], "step 2")
		assert.Contains(t, report.Errors[0], replay.ErrMenuWhilePicking.Error())
		assert.NotContains(t, report.Errors[0], replay.ErrMenuMissed.Error())
		assert.Equal(t, 3, report.Features[models.LayerSite])
		assert.Equal(t, "idle", report.Phase)
	})

	t.Run("cancelled answer commits nothing", func(t *testing.T) {
		script, err := replay.Parse([]byte(`
variant: sector
viewport: {scale: 0.00001}
answers: [{cancel: true}]
steps:
  - press: {x: 0, y: 0}
  - release: {x: 100, y: 0}
`))
		require.NoError(t, err)

		report, err := newRunner(fakeLocator{}).Run(ctx, script, newStore())

		require.NoError(t, err)
		assert.Empty(t, report.Errors)
		assert.Equal(t, 0, report.Features[models.LayerSector])
	})

	t.Run("cancelled context stops the replay", func(t *testing.T) {
		script, err := replay.Parse([]byte(sectorScript))
		require.NoError(t, err)
		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		report, err := newRunner(fakeLocator{}).Run(cancelled, script, newStore())

		require.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 0, report.Steps)
	})
}
