package tool

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/UnknownOlympus/shooter/internal/geometry"
	"github.com/UnknownOlympus/shooter/internal/metrics"
	"github.com/UnknownOlympus/shooter/internal/models"
)

// Translator maps screen pixels to the project CRS.
type Translator interface {
	ToMap(px Pixel) geometry.Point
}

// Prompter asks the operator for a line of text. ok is false on cancel.
type Prompter interface {
	PromptText(ctx context.Context, title, label, def string) (text string, ok bool, err error)
}

// Sink persists features. Every call is atomic and refreshes the layer display.
type Sink interface {
	Insert(ctx context.Context, layer string, ring geometry.Ring, attrs models.SectorAttributes) (int64, error)
	Update(ctx context.Context, id int64, ring geometry.Ring, delta models.AttributeDelta) error
	Remove(ctx context.Context, id int64) error
}

// Resolver finds the topmost feature under a map position across the
// priority layers. ok is false when nothing is hit.
type Resolver interface {
	Resolve(ctx context.Context, at geometry.Point) (f models.Feature, ok bool, err error)
}

// Menu lets the operator pick a context action for a feature. ok is false
// when the menu is dismissed.
type Menu interface {
	Choose(ctx context.Context, f models.Feature) (choice MenuChoice, ok bool)
}

// Canvas renders the transient preview.
type Canvas interface {
	ShowPreview(line []geometry.Point, wedge geometry.Ring)
	ClearPreview()
	ShowOverlay(o Overlay)
	ClearOverlay()
	ShowStatus(msg string)
}

// Collaborators groups what a session talks to. Nil Canvas and Menu are
// replaced with no-op versions.
type Collaborators struct {
	Translator Translator
	Prompter   Prompter
	Sink       Sink
	Resolver   Resolver
	Menu       Menu
	Canvas     Canvas
}

// ErrNoPrompter is returned when a transition needs operator input and no prompter is set.
var ErrNoPrompter = errors.New("prompt requested without a prompter")

// Session drives a Machine from input events and executes its effects.
// It is not safe for concurrent use: events must arrive one at a time.
type Session struct {
	log     *slog.Logger
	machine *Machine
	deps    Collaborators
	metrics *metrics.Metrics
	snap    Snapshot
}

// NewSession creates a session in the idle state.
func NewSession(log *slog.Logger, machine *Machine, deps Collaborators, m *metrics.Metrics) *Session {
	if deps.Canvas == nil {
		deps.Canvas = NopCanvas{}
	}
	if deps.Menu == nil {
		deps.Menu = NopMenu{}
	}

	return &Session{log: log, machine: machine, deps: deps, metrics: m}
}

// Snapshot returns the current transition state.
func (s *Session) Snapshot() Snapshot {
	return s.snap
}

// Handle processes one input event to completion, including any prompt it
// triggers. The returned error reports collaborator failures; the tool is
// always left in a consistent state.
func (s *Session) Handle(ctx context.Context, ev Event) error {
	if s.deps.Translator != nil && (ev.Kind == EventPress || ev.Kind == EventMove || ev.Kind == EventRelease) {
		ev.Map = s.deps.Translator.ToMap(ev.Pixel)
	}

	return s.dispatch(ctx, ev)
}

// Place clicks the left button at a map position, skipping pixel
// translation. Used to drop a site or pick a center at a located address.
func (s *Session) Place(ctx context.Context, at geometry.Point) error {
	if err := s.dispatch(ctx, Press(ButtonLeft, Pixel{}, at)); err != nil {
		return err
	}

	return s.dispatch(ctx, Release(ButtonLeft, Pixel{}, at))
}

func (s *Session) dispatch(ctx context.Context, ev Event) error {
	var effects []Effect
	switch ev.Kind {
	case EventPress:
		s.snap, effects = s.machine.Press(s.snap, ev)
	case EventMove:
		s.snap, effects = s.machine.Move(s.snap, ev)
	case EventRelease:
		s.snap, effects = s.machine.Release(s.snap, ev)
	case EventKeyDown:
		s.snap, effects = s.machine.KeyDown(s.snap, ev.Key)
	case EventKeyUp:
		s.snap, effects = s.machine.KeyUp(s.snap, ev.Key)
	default:
		return nil
	}

	return s.run(ctx, effects)
}

// BeginMoveCenter enters the pick mode for f, as the context menu "move" entry does.
func (s *Session) BeginMoveCenter(ctx context.Context, f models.Feature) error {
	var effects []Effect
	s.snap, effects = s.machine.BeginMoveCenter(s.snap, f)

	return s.run(ctx, effects)
}

// ApplyAction runs a context action on f without going through the menu.
func (s *Session) ApplyAction(ctx context.Context, f models.Feature, choice MenuChoice) error {
	var effects []Effect
	s.snap, effects = s.machine.Apply(s.snap, choice, f)

	return s.run(ctx, effects)
}

func (s *Session) run(ctx context.Context, effects []Effect) error {
	var errs []error
	for _, eff := range effects {
		if err := s.execute(ctx, eff); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

//nolint:cyclop // one case per effect kind
func (s *Session) execute(ctx context.Context, eff Effect) error {
	canvas := s.deps.Canvas

	switch eff.Kind {
	case EffectShowPreview:
		s.metrics.PreviewFrames.Inc()
		canvas.ShowPreview(eff.Line, eff.Wedge)
	case EffectClearPreview:
		canvas.ClearPreview()
	case EffectShowOverlay:
		canvas.ShowOverlay(eff.Overlay)
	case EffectClearOverlay:
		canvas.ClearOverlay()
	case EffectStatus:
		canvas.ShowStatus(eff.Message)
	case EffectPrompt:
		return s.prompt(ctx, eff.Prompt)
	case EffectInsert:
		return s.insert(ctx, eff)
	case EffectUpdate:
		return s.update(ctx, eff)
	case EffectRemove:
		if err := s.deps.Sink.Remove(ctx, eff.FeatureID); err != nil {
			s.metrics.SinkErrors.WithLabelValues("remove").Inc()
			s.log.ErrorContext(ctx, "Failed to remove feature", "feature", eff.FeatureID, "error", err)
			return fmt.Errorf("failed to remove feature %d: %w", eff.FeatureID, err)
		}
		s.metrics.FeatureUpdates.WithLabelValues(eff.Message).Inc()
		s.log.InfoContext(ctx, "Feature removed", "feature", eff.FeatureID)
	case EffectContextMenu:
		return s.contextMenu(ctx, eff.Pixel)
	case EffectDiscard:
		s.metrics.GesturesDiscarded.WithLabelValues(eff.Message).Inc()
		s.log.DebugContext(ctx, "Gesture discarded", "reason", eff.Message)
	case EffectFailure:
		s.metrics.GesturesDiscarded.WithLabelValues("failure").Inc()
		s.log.ErrorContext(ctx, "Gesture failed", "error", eff.Err)
		return eff.Err
	}

	return nil
}

// prompt suspends the current event until the operator answers, then resumes the transition.
func (s *Session) prompt(ctx context.Context, p *PendingPrompt) error {
	if s.deps.Prompter == nil {
		var effects []Effect
		s.snap, effects = s.machine.ResumePrompt(s.snap, "", false)
		return errors.Join(ErrNoPrompter, s.run(ctx, effects))
	}

	start := time.Now()
	text, ok, err := s.deps.Prompter.PromptText(ctx, p.Title, p.Label, p.Default)
	s.metrics.PromptSeconds.WithLabelValues(p.Purpose.String()).Observe(time.Since(start).Seconds())
	if err != nil {
		// treat a broken prompt like a cancel so no partial state survives
		var effects []Effect
		s.snap, effects = s.machine.ResumePrompt(s.snap, "", false)
		s.log.ErrorContext(ctx, "Prompt failed", "purpose", p.Purpose.String(), "error", err)
		return errors.Join(fmt.Errorf("failed to prompt operator: %w", err), s.run(ctx, effects))
	}

	var effects []Effect
	s.snap, effects = s.machine.ResumePrompt(s.snap, text, ok)

	return s.run(ctx, effects)
}

func (s *Session) insert(ctx context.Context, eff Effect) error {
	id, err := s.deps.Sink.Insert(ctx, eff.Layer, eff.Wedge, eff.Attributes)
	if err != nil {
		s.metrics.SinkErrors.WithLabelValues("insert").Inc()
		s.log.ErrorContext(ctx, "Failed to insert sector", "layer", eff.Layer, "error", err)
		return fmt.Errorf("failed to insert sector into %s: %w", eff.Layer, err)
	}

	s.metrics.SectorsCommitted.WithLabelValues(eff.Layer).Inc()
	s.log.InfoContext(ctx, "Sector committed",
		"layer", eff.Layer,
		"feature", id,
		"label", eff.Attributes.SectorLabel,
		"dummy_id", eff.Attributes.DummyID,
		"azimuth", eff.Attributes.Azimuth,
		"radius_m", eff.Attributes.RadiusMeters,
	)

	return nil
}

func (s *Session) update(ctx context.Context, eff Effect) error {
	if err := s.deps.Sink.Update(ctx, eff.FeatureID, eff.Wedge, eff.Delta); err != nil {
		s.metrics.SinkErrors.WithLabelValues("update").Inc()
		s.log.ErrorContext(ctx, "Failed to update feature", "feature", eff.FeatureID, "error", err)
		return fmt.Errorf("failed to update feature %d: %w", eff.FeatureID, err)
	}

	s.metrics.FeatureUpdates.WithLabelValues(eff.Message).Inc()
	s.log.InfoContext(ctx, "Feature updated", "feature", eff.FeatureID, "action", eff.Message)

	return nil
}

// contextMenu resolves the feature under the pixel and runs the chosen action.
// A miss is silently ignored.
func (s *Session) contextMenu(ctx context.Context, px Pixel) error {
	if s.deps.Resolver == nil || s.deps.Translator == nil {
		return nil
	}

	feature, found, err := s.deps.Resolver.Resolve(ctx, s.deps.Translator.ToMap(px))
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to resolve context target", "error", err)
		return fmt.Errorf("failed to resolve context target: %w", err)
	}
	if !found {
		s.log.DebugContext(ctx, "No feature under context click", "x", px.X, "y", px.Y)
		return nil
	}

	choice, ok := s.deps.Menu.Choose(ctx, feature)
	if !ok {
		return nil
	}

	var effects []Effect
	s.snap, effects = s.machine.Apply(s.snap, choice, feature)

	return s.run(ctx, effects)
}

// NopCanvas discards every rendering call.
type NopCanvas struct{}

func (NopCanvas) ShowPreview([]geometry.Point, geometry.Ring) {}
func (NopCanvas) ClearPreview()                               {}
func (NopCanvas) ShowOverlay(Overlay)                         {}
func (NopCanvas) ClearOverlay()                               {}
func (NopCanvas) ShowStatus(string)                           {}

// NopMenu dismisses every menu.
type NopMenu struct{}

func (NopMenu) Choose(context.Context, models.Feature) (MenuChoice, bool) {
	return MenuChoice{}, false
}
