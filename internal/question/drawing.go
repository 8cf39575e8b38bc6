package question

import "errors"

type DrawingQuestion struct {
	PromptImageURL string `json:"prompt_image_url,omitempty" validate:"omitempty,url"`
	CanvasWidth    int    `json:"canvas_width" validate:"gte=1,lte=4096"`
	CanvasHeight   int    `json:"canvas_height" validate:"gte=1,lte=4096"`
}

type DrawingPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type DrawingStroke struct {
	Color  string         `json:"color,omitempty"`
	Width  float64        `json:"width,omitempty" validate:"gte=0"`
	Points []DrawingPoint `json:"points"`
}

// DrawingResponse carries an uploaded image, raw strokes, or both.
type DrawingResponse struct {
	ImageURL string          `json:"image_url,omitempty" validate:"omitempty,url"`
	Strokes  []DrawingStroke `json:"strokes,omitempty" validate:"dive"`
}

func init() {
	Default.Register(kind[DrawingQuestion, DrawingResponse]{
		typ: Drawing,
		checkR: func(_ *DrawingQuestion, r *DrawingResponse) error {
			if r.ImageURL == "" && len(r.Strokes) == 0 {
				return errors.New("drawing is empty")
			}
			return nil
		},
	})
}
