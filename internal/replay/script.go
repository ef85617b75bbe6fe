// Package replay runs scripted authoring sessions. A script is a YAML file
// naming the tool variant, a viewport and the input steps; prompt answers
// and context menu choices are scripted too.
package replay

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/UnknownOlympus/shooter/internal/geometry"
	"github.com/UnknownOlympus/shooter/internal/tool"
	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

//go:embed schema.json
var schemaJSON []byte

// ErrInvalidScript is returned when a script does not match the schema.
var ErrInvalidScript = errors.New("invalid session script")

// Script is a recorded authoring session.
type Script struct {
	Name     string   `yaml:"name"`
	Variant  string   `yaml:"variant"`
	Viewport Viewport `yaml:"viewport"`
	Answers  []Answer `yaml:"answers"`
	Steps    []Step   `yaml:"steps"`
}

// Viewport maps pixels to map units: x grows east, y grows down.
type Viewport struct {
	OriginX float64 `yaml:"origin_x"` // map X of pixel (0, 0)
	OriginY float64 `yaml:"origin_y"` // map Y of pixel (0, 0)
	Scale   float64 `yaml:"scale"`    // map units per pixel
}

// ToMap implements tool.Translator.
func (v Viewport) ToMap(px tool.Pixel) geometry.Point {
	return geometry.Pt(v.OriginX+float64(px.X)*v.Scale, v.OriginY-float64(px.Y)*v.Scale)
}

// Answer is the operator's reply to one prompt.
type Answer struct {
	Text   string `yaml:"text"`
	Cancel bool   `yaml:"cancel"`
}

// Step is one input step. Exactly one field is set.
type Step struct {
	Press   *Pointer    `yaml:"press"`
	Move    *Pointer    `yaml:"move"`
	Release *Pointer    `yaml:"release"`
	KeyDown string      `yaml:"key_down"`
	KeyUp   string      `yaml:"key_up"`
	Menu    *MenuStep   `yaml:"menu"`
	Locate  *LocateStep `yaml:"locate"`
}

// Pointer is a pointer event position. Button defaults to left.
type Pointer struct {
	X      int    `yaml:"x"`
	Y      int    `yaml:"y"`
	Button string `yaml:"button"`
}

// MenuStep right-clicks at a pixel and picks an action for the feature under it.
// Address, when set, is located and used as the coord target.
type MenuStep struct {
	X         int     `yaml:"x"`
	Y         int     `yaml:"y"`
	Action    string  `yaml:"action"`
	Azimuth   float64 `yaml:"azimuth"`
	Radius    float64 `yaml:"radius"`
	Beamwidth float64 `yaml:"beamwidth"`
	Lon       float64 `yaml:"lon"`
	Lat       float64 `yaml:"lat"`
	Address   string  `yaml:"address"`
}

// LocateStep clicks at the position of a located address.
type LocateStep struct {
	Address string `yaml:"address"`
}

// Load reads and validates a script file.
func Load(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading script file: %w", err)
	}

	return Parse(data)
}

// Parse validates a YAML script against the schema and decodes it.
func Parse(data []byte) (*Script, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing script YAML: %w", err)
	}
	if doc == nil {
		return nil, fmt.Errorf("%w: empty document", ErrInvalidScript)
	}

	result, err := gojsonschema.Validate(gojsonschema.NewBytesLoader(schemaJSON), gojsonschema.NewGoLoader(doc))
	if err != nil {
		return nil, fmt.Errorf("validating script: %w", err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			msgs = append(msgs, desc.String())
		}
		return nil, fmt.Errorf("%w: %s", ErrInvalidScript, strings.Join(msgs, "; "))
	}

	var script Script
	if err = yaml.Unmarshal(data, &script); err != nil {
		return nil, fmt.Errorf("decoding script: %w", err)
	}

	return &script, nil
}

// ToolVariant returns the tool variant named by the script.
func (s *Script) ToolVariant() tool.Variant {
	if s.Variant == "site" {
		return tool.VariantSite
	}

	return tool.VariantSector
}
