package models

// Storage field names. Both the database columns and the GeoJSON properties use them.
const (
	FieldSectorID  = "sector_id"
	FieldDummyID   = "dummy_id"
	FieldAzimuth   = "azimuth"
	FieldRadius    = "radius_m"
	FieldBeamwidth = "beamwidth"
	FieldCenterLat = "center_lat"
	FieldCenterLon = "center_lon"
	FieldLineColor = "line_color"
	FieldLineWidth = "line_width"
	FieldShowLabel = "show_label"
)

// Fields lists the storage fields in column order.
var Fields = []string{
	FieldSectorID, FieldDummyID, FieldAzimuth, FieldRadius, FieldBeamwidth,
	FieldCenterLat, FieldCenterLon, FieldLineColor, FieldLineWidth, FieldShowLabel,
}

// Values returns the attribute values in the order of Fields.
func (a SectorAttributes) Values() []any {
	return []any{
		a.SectorLabel, a.DummyID, a.Azimuth, a.RadiusMeters, a.BeamwidthDegrees,
		a.CenterLat, a.CenterLon, a.LineColor, a.LineWidthPx, a.ShowLabel,
	}
}

// Targets returns pointers into a in the order of Fields, for row scanning.
func (a *SectorAttributes) Targets() []any {
	return []any{
		&a.SectorLabel, &a.DummyID, &a.Azimuth, &a.RadiusMeters, &a.BeamwidthDegrees,
		&a.CenterLat, &a.CenterLon, &a.LineColor, &a.LineWidthPx, &a.ShowLabel,
	}
}

// Properties renders the attributes as a field-name keyed map.
func (a SectorAttributes) Properties() map[string]any {
	props := make(map[string]any, len(Fields))
	for i, v := range a.Values() {
		props[Fields[i]] = v
	}

	return props
}

// Changes returns the set fields of the delta as field name / value pairs,
// in the order of Fields.
func (d AttributeDelta) Changes() ([]string, []any) {
	var (
		names  []string
		values []any
	)
	add := func(name string, v any) {
		names = append(names, name)
		values = append(values, v)
	}

	if d.SectorLabel != nil {
		add(FieldSectorID, *d.SectorLabel)
	}
	if d.Azimuth != nil {
		add(FieldAzimuth, *d.Azimuth)
	}
	if d.RadiusMeters != nil {
		add(FieldRadius, *d.RadiusMeters)
	}
	if d.BeamwidthDegrees != nil {
		add(FieldBeamwidth, *d.BeamwidthDegrees)
	}
	if d.CenterLat != nil {
		add(FieldCenterLat, *d.CenterLat)
	}
	if d.CenterLon != nil {
		add(FieldCenterLon, *d.CenterLon)
	}
	if d.LineColor != nil {
		add(FieldLineColor, *d.LineColor)
	}
	if d.ShowLabel != nil {
		add(FieldShowLabel, *d.ShowLabel)
	}

	return names, values
}
