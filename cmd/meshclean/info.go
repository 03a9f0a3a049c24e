package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/philipparndt/meshclean/pkg/cleaner"
	"github.com/philipparndt/meshclean/pkg/mesh"
	"github.com/philipparndt/meshclean/pkg/meshio"
)

var infoAdjacency string

var infoCmd = &cobra.Command{
	Use:   "info [file]",
	Short: "Report the connected components of a mesh file",
	Long: `Show each connected component of a mesh with its face count, surface area,
volume, area/volume ratio and watertightness, plus which component each
selection method would keep. Nothing is written.`,
	Args: cobra.ExactArgs(1),
	Run:  runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
	infoCmd.Flags().StringVar(&infoAdjacency, "adjacency", "edge", "faces connect when sharing an edge or a vertex")
}

func runInfo(cmd *cobra.Command, args []string) {
	filename := args[0]

	adjacency, err := mesh.ParseAdjacency(infoAdjacency)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	m, err := meshio.Load(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading mesh file: %v\n", err)
		os.Exit(1)
	}

	components := m.Split(adjacency)
	scores := mesh.ScoreAll(components)

	fmt.Println("Mesh Component Report")
	fmt.Println("=====================")
	if m.Name != "" {
		fmt.Printf("Name: %s\n", m.Name)
	}
	fmt.Printf("File: %s\n\n", filename)

	fmt.Println("Mesh Statistics:")
	fmt.Printf("  Vertices: %d\n", m.VertexCount())
	fmt.Printf("  Faces: %d\n", m.FaceCount())
	fmt.Printf("  Components: %d\n\n", len(components))

	if m.VertexCount() > 0 {
		box := m.BoundingBox()
		size := box.Size()

		fmt.Println("Bounding Box:")
		fmt.Printf("  Min: %s\n", box.Min)
		fmt.Printf("  Max: %s\n", box.Max)
		fmt.Printf("  Center: %s\n", box.Center())
		fmt.Printf("  Size: %.6f x %.6f x %.6f units\n\n", size.X, size.Y, size.Z)
	}

	for i, c := range components {
		stats := c.EdgeStats()

		fmt.Printf("Component %d:\n", i)
		fmt.Printf("  Faces: %d\n", c.FaceCount())
		fmt.Printf("  Surface Area: %.6f square units\n", scores[i].SurfaceArea)
		fmt.Printf("  Volume: %.6f cubic units\n", scores[i].Volume)
		if scores[i].Defined && scores[i].Volume > 0 {
			fmt.Printf("  Area/Volume: %.6f\n", scores[i].Ratio())
		} else {
			fmt.Println("  Area/Volume: undefined")
		}
		if stats.Watertight() {
			fmt.Println("  Watertight: yes")
		} else {
			fmt.Printf("  Watertight: no (%d boundary, %d over-shared edges)\n",
				stats.Boundary, stats.OverShared)
		}
		fmt.Println()
	}

	fmt.Println("Selection:")
	for _, method := range []cleaner.Method{cleaner.First, cleaner.Ratio} {
		result, err := cleaner.Clean(m, cleaner.WithMethod(method), cleaner.WithAdjacency(adjacency))
		if err != nil {
			fmt.Printf("  %s: %v\n", method, err)
			continue
		}
		note := ""
		if result.FellBack {
			note = " (fallback, no component has a usable volume)"
		}
		fmt.Printf("  %s keeps component %d (%d faces)%s\n",
			method, result.ChosenIndex, result.Kept.FaceCount(), note)
	}
}
