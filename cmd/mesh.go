/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/brickfem/hex8"
	"github.com/notargets/brickfem/mesh"
)

// MeshCmd represents the mesh command
var MeshCmd = &cobra.Command{
	Use:   "mesh",
	Short: "Report the size of a structured box mesh without solving it",
	Long:  `Report the size of a structured box mesh without solving it`,
	Run: func(cmd *cobra.Command, args []string) {
		var (
			n [3]int
			l [3]float64
		)
		for i, key := range []string{"nx", "ny", "nz"} {
			n[i], _ = cmd.Flags().GetInt(key)
		}
		for i, key := range []string{"lx", "ly", "lz"} {
			l[i], _ = cmd.Flags().GetFloat64(key)
		}
		if _, _, err := RunMesh(os.Stdout, n, r3.Vec{X: l[0], Y: l[1], Z: l[2]}); err != nil {
			fmt.Printf("error: %s\n", err.Error())
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(MeshCmd)
	MeshCmd.Flags().Int("nx", 1, "divisions along x")
	MeshCmd.Flags().Int("ny", 1, "divisions along y")
	MeshCmd.Flags().Int("nz", 1, "divisions along z")
	MeshCmd.Flags().Float64("lx", 1, "length along x")
	MeshCmd.Flags().Float64("ly", 1, "length along y")
	MeshCmd.Flags().Float64("lz", 1, "length along z")
}

func RunMesh(w io.Writer, n [3]int, size r3.Vec) (nNodes, nElements int, err error) {
	elements, err := mesh.Box(r3.Vec{}, size, n[0], n[1], n[2])
	if err != nil {
		return
	}
	nNodes, nElements = len(mesh.Nodes(elements)), len(elements)
	fmt.Fprintf(w, "[%d]\t\t\t\t= Nodes\n", nNodes)
	fmt.Fprintf(w, "[%d]\t\t\t\t= Elements\n", nElements)
	fmt.Fprintf(w, "[%d]\t\t\t\t= Degrees of freedom\n", nNodes*hex8.NDim)
	return
}
