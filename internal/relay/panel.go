package relay

import "github.com/ppiankov/truthguard/internal/model"

// Panel geometry in CSS pixels
const (
	PanelWidth         = 400.0
	PanelMargin        = 20.0
	PanelOffset        = 10.0
	DefaultPanelHeight = 300.0
)

// Rect is a selection's bounding box relative to the viewport
type Rect struct {
	Top    float64
	Bottom float64
	Left   float64
}

// Viewport describes the visible page area
type Viewport struct {
	Width   float64
	Height  float64
	ScrollY float64
}

// Point is a document-relative panel position
type Point struct {
	Left float64
	Top  float64
}

// Position places the panel below the selection, clamped horizontally inside
// the margins and flipped above the selection when it would overflow the
// bottom of the viewport.
func Position(rect Rect, vp Viewport, panelHeight float64) Point {
	left := rect.Left
	top := vp.ScrollY + rect.Bottom + PanelOffset

	if left+PanelWidth > vp.Width-PanelMargin {
		left = vp.Width - PanelWidth - PanelMargin
	}
	if left < PanelMargin {
		left = PanelMargin
	}

	if top+panelHeight > vp.ScrollY+vp.Height-PanelMargin {
		top = vp.ScrollY + rect.Top - panelHeight - PanelOffset
	}

	return Point{Left: left, Top: top}
}

// Panel is the floating result panel's state
type Panel struct {
	Visible bool
	Loading bool
	Result  *model.AnalysisResult
	At      Point
	Height  float64

	anchor Rect
}

// Show anchors the panel to rect and puts it in the loading state
func (p *Panel) Show(rect Rect, vp Viewport) {
	if p.Height <= 0 {
		p.Height = DefaultPanelHeight
	}
	p.anchor = rect
	p.At = Position(rect, vp, p.Height)
	p.Visible = true
	p.Loading = true
	p.Result = nil
}

// Update replaces the loading state with a result
func (p *Panel) Update(result *model.AnalysisResult) {
	p.Loading = false
	p.Result = result
}

// Reposition recomputes the position for a resized viewport; hidden panels are left alone
func (p *Panel) Reposition(vp Viewport) {
	if !p.Visible {
		return
	}
	p.At = Position(p.anchor, vp, p.Height)
}

// Hide closes the panel
func (p *Panel) Hide() {
	p.Visible = false
}
