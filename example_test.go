package meshgo_test

import (
	"context"
	"fmt"
	"log"

	"github.com/golang/geo/r3"
	"github.com/hupe1980/meshgo"
	"github.com/hupe1980/meshgo/mesh"
	"github.com/hupe1980/meshgo/snapshot"
)

// Example demonstrates inserting classified points and locating a query.
func Example() {
	ctx := context.Background()
	m, err := meshgo.New[int](mesh.IntCodec{}, meshgo.WithSeed(42))
	if err != nil {
		log.Fatal(err)
	}

	corners := []r3.Vector{
		{X: -0.5, Y: -0.5, Z: -0.5},
		{X: 0.5, Y: -0.5, Z: -0.5},
		{X: 0, Y: 0.5, Z: -0.5},
		{X: 0, Y: 0, Z: 0.5},
	}
	for i, p := range corners {
		if _, err := m.InsertVertex(ctx, p, 0, i); err != nil {
			log.Fatal(err)
		}
	}

	fmt.Println(m.Len())
	fmt.Println(m.Locate(ctx, corners[2]).Type)
	fmt.Println(m.Locate(ctx, r3.Vector{X: 0, Y: -0.1, Z: -0.2}).Type)
	// Output:
	// 4
	// vertex
	// cell
}

// Example_snapshot demonstrates saving and reopening a mesh.
func Example_snapshot() {
	ctx := context.Background()
	m, _ := meshgo.New[int](mesh.IntCodec{}, meshgo.WithSnapshotOptions(func(o *snapshot.Options) {
		o.Compression = snapshot.CompressionZSTD
	}))
	_, _ = m.InsertVertex(ctx, r3.Vector{X: 0.25}, 3, 1)
	_, _ = m.InsertVertex(ctx, r3.Vector{Y: 0.25}, 2, 7)

	store := snapshot.NewMemoryStore()
	if err := m.Save(ctx, store, "meshes/demo.msh"); err != nil {
		log.Fatal(err)
	}

	reopened, err := meshgo.Open[int](ctx, store, "meshes/demo.msh", mesh.IntCodec{})
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(reopened.Len(), reopened.IOSignature())
	// Output: 2 p3+i+i
}
