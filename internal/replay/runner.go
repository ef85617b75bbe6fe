package replay

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/UnknownOlympus/shooter/internal/config"
	"github.com/UnknownOlympus/shooter/internal/geometry"
	"github.com/UnknownOlympus/shooter/internal/layer"
	"github.com/UnknownOlympus/shooter/internal/locator"
	"github.com/UnknownOlympus/shooter/internal/metrics"
	"github.com/UnknownOlympus/shooter/internal/models"
	"github.com/UnknownOlympus/shooter/internal/tool"
)

var (
	// ErrNoAnswer is returned when a prompt opens after the scripted answers ran out.
	ErrNoAnswer = errors.New("no scripted answer left")
	// ErrNoLocator is returned when a step needs an address located and no locator is configured.
	ErrNoLocator = errors.New("no locator configured")
	// ErrMenuMissed is returned when a menu step right-clicks on empty map.
	ErrMenuMissed = errors.New("no feature under menu click")
	// ErrMenuWhilePicking is returned when a menu step arrives while the tool
	// waits for a new sector center.
	ErrMenuWhilePicking = errors.New("context menu unavailable while picking a center")
)

// Report summarizes a replay.
type Report struct {
	Name     string         `json:"name"`
	Steps    int            `json:"steps"`
	Features map[string]int `json:"features"`
	Errors   []string       `json:"errors,omitempty"`
	Phase    string         `json:"phase"`
}

// Runner replays scripts against a layer store.
type Runner struct {
	log      *slog.Logger
	metrics  *metrics.Metrics
	settings config.Settings
	engine   *geometry.Engine
	measurer geometry.Measurer
	locator  locator.Locator
}

// NewRunner creates a runner. loc may be nil when scripts do not locate addresses.
func NewRunner(
	log *slog.Logger,
	m *metrics.Metrics,
	settings config.Settings,
	engine *geometry.Engine,
	loc locator.Locator,
) *Runner {
	return &Runner{
		log:      log,
		metrics:  m,
		settings: settings,
		engine:   engine,
		measurer: geometry.NewHaversineMeasurer(engine),
		locator:  loc,
	}
}

// Run plays every step of the script. Step failures are recorded in the
// report and the replay continues; only a cancelled context stops it early.
func (r *Runner) Run(ctx context.Context, script *Script, store *layer.Store) (*Report, error) {
	r.metrics.ActiveSessions.Inc()
	defer r.metrics.ActiveSessions.Dec()

	log := r.log.With("script", script.Name, "variant", script.Variant)
	prompter := &scriptedPrompter{answers: script.Answers}
	menu := &scriptedMenu{}
	machine := tool.NewMachine(script.ToolVariant(), r.settings, r.engine, r.measurer)
	session := tool.NewSession(log, machine, tool.Collaborators{
		Translator: script.Viewport,
		Prompter:   prompter,
		Sink:       store,
		Resolver:   store,
		Menu:       menu,
	}, r.metrics)

	report := &Report{Name: script.Name, Features: map[string]int{}}
	log.InfoContext(ctx, "Replay started", "steps", len(script.Steps))

	for idx, step := range script.Steps {
		if err := ctx.Err(); err != nil {
			return report, fmt.Errorf("replay interrupted at step %d: %w", idx, err)
		}
		report.Steps++

		if err := r.step(ctx, session, menu, step); err != nil {
			log.WarnContext(ctx, "Replay step failed", "step", idx, "error", err)
			report.Errors = append(report.Errors, fmt.Sprintf("step %d: %v", idx, err))
		}
	}

	for _, name := range store.Layers() {
		features, err := store.Features(name)
		if err != nil {
			return report, err
		}
		report.Features[name] = len(features)
	}
	report.Phase = session.Snapshot().State.Phase.String()
	log.InfoContext(ctx, "Replay finished", "errors", len(report.Errors), "features", report.Features)

	return report, nil
}

func (r *Runner) step(ctx context.Context, session *tool.Session, menu *scriptedMenu, step Step) error {
	switch {
	case step.Press != nil:
		return session.Handle(ctx, tool.Press(button(step.Press.Button), pixel(step.Press), geometry.Point{}))
	case step.Move != nil:
		return session.Handle(ctx, tool.Move(pixel(step.Move), geometry.Point{}))
	case step.Release != nil:
		return session.Handle(ctx, tool.Release(button(step.Release.Button), pixel(step.Release), geometry.Point{}))
	case step.KeyDown != "":
		return session.Handle(ctx, tool.KeyDown(key(step.KeyDown)))
	case step.KeyUp != "":
		return session.Handle(ctx, tool.KeyUp(key(step.KeyUp)))
	case step.Menu != nil:
		return r.menu(ctx, session, menu, step.Menu)
	case step.Locate != nil:
		at, err := r.locate(ctx, step.Locate.Address)
		if err != nil {
			return err
		}
		return session.Place(ctx, at)
	default:
		return nil
	}
}

func (r *Runner) menu(ctx context.Context, session *tool.Session, menu *scriptedMenu, step *MenuStep) error {
	if session.Snapshot().State.Phase == tool.PhasePicking {
		return fmt.Errorf("%w at (%d, %d)", ErrMenuWhilePicking, step.X, step.Y)
	}

	choice := tool.MenuChoice{
		Action:    tool.Action(step.Action),
		Azimuth:   step.Azimuth,
		Radius:    step.Radius,
		Beamwidth: step.Beamwidth,
		Lon:       step.Lon,
		Lat:       step.Lat,
	}
	if step.Address != "" {
		at, err := r.locate(ctx, step.Address)
		if err != nil {
			return err
		}
		choice.Lon, choice.Lat = at.X, at.Y
	}

	menu.next = &choice
	px := tool.Pixel{X: step.X, Y: step.Y}
	if err := session.Handle(ctx, tool.Release(tool.ButtonRight, px, geometry.Point{})); err != nil {
		return err
	}
	if menu.next != nil {
		menu.next = nil
		return fmt.Errorf("%w at (%d, %d)", ErrMenuMissed, px.X, px.Y)
	}

	return nil
}

// locate geocodes an address into the working CRS.
func (r *Runner) locate(ctx context.Context, address string) (geometry.Point, error) {
	if r.locator == nil {
		return geometry.Point{}, ErrNoLocator
	}

	coords, err := r.locator.Locate(ctx, address)
	if err != nil {
		return geometry.Point{}, fmt.Errorf("failed to locate %q: %w", address, err)
	}

	return toWorking(r.engine, *coords)
}

func toWorking(engine *geometry.Engine, c models.Coordinates) (geometry.Point, error) {
	p := geometry.Pt(c.Longitude, c.Latitude)
	if engine.CRS().Geographic {
		return p, nil
	}

	out, err := engine.Transformer().FromGeographic(geometry.Ring{p})
	if err != nil {
		return geometry.Point{}, fmt.Errorf("failed to project located point: %w", err)
	}

	return out[0], nil
}

func pixel(p *Pointer) tool.Pixel {
	return tool.Pixel{X: p.X, Y: p.Y}
}

func button(name string) tool.Button {
	switch name {
	case "right":
		return tool.ButtonRight
	case "middle":
		return tool.ButtonMiddle
	default:
		return tool.ButtonLeft
	}
}

func key(name string) tool.Key {
	switch name {
	case "escape":
		return tool.KeyEscape
	case "ctrl":
		return tool.KeyControl
	case "shift":
		return tool.KeyShift
	default:
		return tool.KeyOther
	}
}

// scriptedPrompter answers prompts from the script in order.
type scriptedPrompter struct {
	answers []Answer
}

func (p *scriptedPrompter) PromptText(context.Context, string, string, string) (string, bool, error) {
	if len(p.answers) == 0 {
		return "", false, ErrNoAnswer
	}
	answer := p.answers[0]
	p.answers = p.answers[1:]

	return answer.Text, !answer.Cancel, nil
}

// scriptedMenu returns the choice queued by the current menu step once.
type scriptedMenu struct {
	next *tool.MenuChoice
}

func (m *scriptedMenu) Choose(context.Context, models.Feature) (tool.MenuChoice, bool) {
	if m.next == nil {
		return tool.MenuChoice{}, false
	}
	choice := *m.next
	m.next = nil

	return choice, true
}
