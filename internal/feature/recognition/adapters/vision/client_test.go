package vision

import (
	"testing"

	visionpb "cloud.google.com/go/vision/v2/apiv1/visionpb"
	"github.com/stretchr/testify/assert"
)

func TestNormalizedBox(t *testing.T) {
	t.Parallel()

	t.Run("success: vertices are reduced to a normalized bounding rectangle", func(t *testing.T) {
		t.Parallel()
		poly := &visionpb.BoundingPoly{
			Vertices: []*visionpb.Vertex{
				{X: 20, Y: 10},
				{X: 60, Y: 10},
				{X: 60, Y: 30},
				{X: 20, Y: 30},
			},
		}

		x, y, w, h := normalizedBox(poly, 200, 100)

		assert.InDelta(t, 0.1, x, 1e-9)
		assert.InDelta(t, 0.1, y, 1e-9)
		assert.InDelta(t, 0.2, w, 1e-9)
		assert.InDelta(t, 0.2, h, 1e-9)
	})

	t.Run("success: rotated quadrilateral uses its outer bounds", func(t *testing.T) {
		t.Parallel()
		poly := &visionpb.BoundingPoly{
			Vertices: []*visionpb.Vertex{
				{X: 50, Y: 0},
				{X: 100, Y: 50},
				{X: 50, Y: 100},
				{X: 0, Y: 50},
			},
		}

		x, y, w, h := normalizedBox(poly, 100, 100)

		assert.Zero(t, x)
		assert.Zero(t, y)
		assert.InDelta(t, 1.0, w, 1e-9)
		assert.InDelta(t, 1.0, h, 1e-9)
	})

	t.Run("success: missing polygon yields a zero box", func(t *testing.T) {
		t.Parallel()
		x, y, w, h := normalizedBox(nil, 100, 100)
		assert.Zero(t, x)
		assert.Zero(t, y)
		assert.Zero(t, w)
		assert.Zero(t, h)
	})
}
