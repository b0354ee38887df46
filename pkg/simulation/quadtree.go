package simulation

// maxQuadDepth bounds subdivision; bodies closer than the deepest cell share a leaf
const maxQuadDepth = 40

// quad is a square cell of a point quadtree. Leaves hold one or more body
// indices; internal cells hold up to four children indexed bottom<<1 | right.
type quad struct {
	x0, y0, x1, y1 float64
	children       [4]*quad
	points         []int

	// accumulated per force
	cx, cy float64
	value  float64
	r      float64
}

func (q *quad) leaf() bool {
	return len(q.points) > 0
}

// buildQuadtree indexes the given bodies by (xs[i], ys[i])
func buildQuadtree(xs, ys []float64) *quad {
	if len(xs) == 0 {
		return nil
	}

	x0, y0, x1, y1 := xs[0], ys[0], xs[0], ys[0]
	for i := range xs {
		x0 = min(x0, xs[i])
		y0 = min(y0, ys[i])
		x1 = max(x1, xs[i])
		y1 = max(y1, ys[i])
	}
	size := max(x1-x0, y1-y0)
	if size <= 0 {
		size = 1
	}
	// pad so bodies on the far edge fall inside the right/bottom cells
	size *= 1 + 1e-9

	idx := make([]int, len(xs))
	for i := range idx {
		idx[i] = i
	}
	return subdivide(xs, ys, idx, x0, y0, x0+size, y0+size, 0)
}

func subdivide(xs, ys []float64, idx []int, x0, y0, x1, y1 float64, depth int) *quad {
	q := &quad{x0: x0, y0: y0, x1: x1, y1: y1}
	if len(idx) == 1 || depth >= maxQuadDepth || coincident(xs, ys, idx) {
		q.points = idx
		return q
	}

	xm, ym := (x0+x1)/2, (y0+y1)/2
	var buckets [4][]int
	for _, i := range idx {
		b := 0
		if xs[i] >= xm {
			b |= 1
		}
		if ys[i] >= ym {
			b |= 2
		}
		buckets[b] = append(buckets[b], i)
	}

	for b, members := range buckets {
		if len(members) == 0 {
			continue
		}
		cx0, cx1 := x0, xm
		if b&1 != 0 {
			cx0, cx1 = xm, x1
		}
		cy0, cy1 := y0, ym
		if b&2 != 0 {
			cy0, cy1 = ym, y1
		}
		q.children[b] = subdivide(xs, ys, members, cx0, cy0, cx1, cy1, depth+1)
	}
	return q
}

func coincident(xs, ys []float64, idx []int) bool {
	for _, i := range idx[1:] {
		if xs[i] != xs[idx[0]] || ys[i] != ys[idx[0]] {
			return false
		}
	}
	return true
}

// visit walks the tree pre-order; returning true skips the cell's children
func (q *quad) visit(fn func(*quad) bool) {
	if q == nil || fn(q) {
		return
	}
	for _, c := range q.children {
		if c != nil {
			c.visit(fn)
		}
	}
}

// visitAfter walks the tree post-order
func (q *quad) visitAfter(fn func(*quad)) {
	if q == nil {
		return
	}
	for _, c := range q.children {
		if c != nil {
			c.visitAfter(fn)
		}
	}
	fn(q)
}
