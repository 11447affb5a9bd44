package trimesh

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Closed test and example shapes. All constructors return valid closed
// 2-manifold meshes wound counterclockwise when seen from outside.

// Octahedron returns a regular octahedron with vertices at distance
// radius from the origin along the coordinate axes.
func Octahedron(radius float64) *Mesh {
	r := radius
	vertices := []r3.Vec{
		{X: r}, {X: -r},
		{Y: r}, {Y: -r},
		{Z: r}, {Z: -r},
	}
	faces := [][3]int{
		{0, 2, 4}, {2, 1, 4}, {1, 3, 4}, {3, 0, 4},
		{2, 0, 5}, {1, 2, 5}, {3, 1, 5}, {0, 3, 5},
	}
	m, err := New(vertices, faces)
	if err != nil {
		panic(err) // static connectivity, cannot fail
	}
	return m
}

// Cylinder returns a closed cylinder of given radius and height centered
// at the origin with its axis on Z. The wall is divided in segments
// vertices around the circumference and rings quads along the axis, and
// the caps are triangle fans around a center vertex. segments must be at
// least 3 and rings at least 1.
func Cylinder(radius, height float64, segments, rings int) *Mesh {
	if segments < 3 || rings < 1 {
		panic("trimesh: cylinder needs at least 3 segments and 1 ring")
	}
	var vertices []r3.Vec
	for i := 0; i <= rings; i++ {
		z := height * (float64(i)/float64(rings) - 0.5)
		for j := 0; j < segments; j++ {
			theta := 2 * math.Pi * float64(j) / float64(segments)
			vertices = append(vertices, r3.Vec{
				X: radius * math.Cos(theta),
				Y: radius * math.Sin(theta),
				Z: z,
			})
		}
	}
	bottom := len(vertices)
	vertices = append(vertices, r3.Vec{Z: -height / 2})
	top := len(vertices)
	vertices = append(vertices, r3.Vec{Z: height / 2})

	ring := func(i, j int) int { return i*segments + j%segments }
	var faces [][3]int
	for i := 0; i < rings; i++ {
		for j := 0; j < segments; j++ {
			a, b := ring(i, j), ring(i, j+1)
			c, d := ring(i+1, j+1), ring(i+1, j)
			faces = append(faces, [3]int{a, b, c}, [3]int{a, c, d})
		}
	}
	for j := 0; j < segments; j++ {
		faces = append(faces,
			[3]int{bottom, ring(0, j+1), ring(0, j)},
			[3]int{top, ring(rings, j), ring(rings, j+1)},
		)
	}
	m, err := New(vertices, faces)
	if err != nil {
		panic(err)
	}
	return m
}

// Sphere returns a UV sphere of given radius centered at the origin.
// segments is the number of vertices per latitude ring and rings the
// number of latitude subdivisions between the poles.
func Sphere(radius float64, segments, rings int) *Mesh {
	if segments < 3 || rings < 2 {
		panic("trimesh: sphere needs at least 3 segments and 2 rings")
	}
	var vertices []r3.Vec
	for i := 1; i < rings; i++ {
		phi := math.Pi * float64(i) / float64(rings)
		for j := 0; j < segments; j++ {
			theta := 2 * math.Pi * float64(j) / float64(segments)
			vertices = append(vertices, r3.Vec{
				X: radius * math.Sin(phi) * math.Cos(theta),
				Y: radius * math.Sin(phi) * math.Sin(theta),
				Z: radius * math.Cos(phi),
			})
		}
	}
	south := len(vertices)
	vertices = append(vertices, r3.Vec{Z: -radius})
	north := len(vertices)
	vertices = append(vertices, r3.Vec{Z: radius})

	ring := func(i, j int) int { return (i-1)*segments + j%segments }
	var faces [][3]int
	for j := 0; j < segments; j++ {
		faces = append(faces,
			[3]int{north, ring(1, j), ring(1, j+1)},
			[3]int{south, ring(rings-1, j+1), ring(rings-1, j)},
		)
	}
	for i := 1; i < rings-1; i++ {
		for j := 0; j < segments; j++ {
			a, b := ring(i, j), ring(i, j+1)
			c, d := ring(i+1, j+1), ring(i+1, j)
			faces = append(faces, [3]int{a, c, b}, [3]int{a, d, c})
		}
	}
	m, err := New(vertices, faces)
	if err != nil {
		panic(err)
	}
	return m
}
