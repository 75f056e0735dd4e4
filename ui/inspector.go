package ui

import (
	"fmt"

	"github.com/pthm-cable/grove/plant"
)

// Component is a named ECS component shown below the module sections.
type Component struct {
	Name  string
	Value any
}

// InspectorData is the selected module and its registry components.
type InspectorData struct {
	Module     *plant.Module
	Components []Component
}

func module(d any) *plant.Module { return d.(InspectorData).Module }

// InspectorSections describes the module and plant sections of the panel.
func InspectorSections() []SectionDescriptor {
	return []SectionDescriptor{
		{
			ID:    "module",
			Title: "Module",
			Fields: []FieldDescriptor{
				{ID: "id", Label: "ID", Widget: WidgetText, TextGetter: func(d any) string {
					m := module(d)
					return fmt.Sprintf("%d.%d", m.Plant().ID, m.ID)
				}},
				{ID: "age", Label: "Age", Widget: WidgetText, Format: "%.1f", Getter: func(d any) float32 {
					return float32(module(d).Age)
				}},
				{ID: "maturity", Label: "Maturity", Widget: WidgetText, Format: "%.1f", Getter: func(d any) float32 {
					return float32(module(d).Maturity)
				}},
				{ID: "vigor", Label: "Vigor", Widget: WidgetBar, Range: FieldRange{Max: 2}, Getter: func(d any) float32 {
					return float32(module(d).Vigor)
				}},
				{ID: "exposure", Label: "Exposure", Widget: WidgetBar, Range: DefaultRange(), Getter: func(d any) float32 {
					return float32(module(d).Exposure)
				}},
				{ID: "children", Label: "Children", Widget: WidgetText, TextGetter: func(d any) string {
					return fmt.Sprintf("%d", len(module(d).Children))
				}},
				{ID: "nodes", Label: "Nodes", Widget: WidgetText, TextGetter: func(d any) string {
					g := module(d).Graph
					return fmt.Sprintf("%d (%d visible)", len(g.Nodes), len(g.Available()))
				}},
				{ID: "shed", Label: "Status", Widget: WidgetText, TextGetter: func(d any) string {
					if module(d).Shed {
						return "shed"
					}
					return "live"
				}},
			},
		},
		{
			ID:    "plant",
			Title: "Plant",
			Fields: []FieldDescriptor{
				{ID: "state", Label: "State", Widget: WidgetText, TextGetter: func(d any) string {
					return module(d).Plant().State.String()
				}},
				{ID: "plant_age", Label: "Age", Widget: WidgetText, Format: "%.0f", Getter: func(d any) float32 {
					return float32(module(d).Plant().Age)
				}},
				{ID: "cap", Label: "Vigor cap", Widget: WidgetText, Format: "%.1f", Getter: func(d any) float32 {
					return float32(module(d).Plant().VigorCap())
				}},
				{ID: "counts", Label: "Modules", Widget: WidgetText, TextGetter: func(d any) string {
					s := module(d).Plant().Stats()
					return fmt.Sprintf("%d (+%d -%d)", s.Modules, s.Spawned, s.Shed)
				}},
			},
		},
	}
}

// Inspector renders the selected module panel.
type Inspector struct {
	renderer *Renderer
	sections []SectionDescriptor
	x, y     int32
	width    int32
}

// NewInspector creates a new inspector panel.
func NewInspector(x, y, width int32) *Inspector {
	return &Inspector{
		renderer: NewRenderer(),
		sections: InspectorSections(),
		x:        x,
		y:        y,
		width:    width,
	}
}

// SetPosition updates the inspector position.
func (ins *Inspector) SetPosition(x, y int32) {
	ins.x = x
	ins.y = y
}

// Draw renders the panel and returns the Y below it.
func (ins *Inspector) Draw(data InspectorData) int32 {
	if data.Module == nil {
		return ins.y
	}
	r := ins.renderer
	padding := r.Theme.Padding
	content := ins.width - padding*2

	height := padding * 2
	for _, sd := range ins.sections {
		height += r.SectionHeight(sd, data)
	}
	for _, c := range data.Components {
		height += r.ComponentHeight(c.Value)
	}
	r.DrawPanel(ins.x, ins.y, ins.width, height)

	y := ins.y + padding
	for _, sd := range ins.sections {
		y = r.DrawSection(ins.x+padding, y, sd, data, content)
	}
	for _, c := range data.Components {
		y = r.DrawComponent(ins.x+padding, y, c.Name, c.Value, content)
	}
	return y
}
