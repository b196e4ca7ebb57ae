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
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/pkg/profile"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/notargets/brickfem/InputParameters"
	"github.com/notargets/brickfem/fem"
	"github.com/notargets/brickfem/output"
	"github.com/notargets/brickfem/solver"
)

// ModelSolve carries the command line settings; non empty values override
// the problem file
type ModelSolve struct {
	InputFile  string
	Solver     string
	Tolerance  float64
	Output     string
	VTK        string
	ProfileDir string
	Verbose    bool
	Parallel   int // goroutines for element work, zero uses all CPUs
}

// SolveCmd represents the solve command
var SolveCmd = &cobra.Command{
	Use:   "solve",
	Short: "Solve a brick model described in a YAML problem file",
	Long: `Solve a brick model described in a YAML problem file, print a summary and
optionally write a YAML result file and a legacy VTK file of the deformed mesh`,
	Run: func(cmd *cobra.Command, args []string) {
		var (
			err error
		)
		ms := &ModelSolve{}
		if ms.InputFile, err = cmd.Flags().GetString("inputConditionsFile"); err != nil {
			panic(err)
		}
		ms.ProfileDir, _ = cmd.Flags().GetString("profile")
		ms.Solver = viper.GetString("solver")
		ms.Tolerance = viper.GetFloat64("tolerance")
		ms.Output = viper.GetString("output")
		ms.VTK = viper.GetString("vtk")
		ms.Verbose = viper.GetBool("verbose")
		ms.Parallel = viper.GetInt("parallel")
		if len(ms.InputFile) == 0 {
			fmt.Printf("error: must supply a problem file (-I, --inputConditionsFile)\n")
			fmt.Printf("Example File:%s\n", exampleFile)
			os.Exit(1)
		}
		if _, err = RunSolve(ms, os.Stdout); err != nil {
			fmt.Printf("error: %s\n", err.Error())
			os.Exit(1)
		}
	},
}

var exampleFile = `
########################################
Title: "Cantilever"
Material: {Name: steel, E: 210000, Nu: 0.3}
Mesh:
  Box: {Origin: [0, 0, 0], Size: [4, 1, 1], Divisions: [8, 2, 2]}
Supports:
  - Plane: {Axis: x, Value: 0}
Loads:
  - Plane: {Axis: x, Value: 4}
    Force: [0, 0, -1000]
    Split: true
Solver: lu # or cholesky
Output: result.yaml
VTK: result.vtk
########################################
`

func init() {
	rootCmd.AddCommand(SolveCmd)
	SolveCmd.Flags().StringP("inputConditionsFile", "I", "", "YAML problem file with material, mesh, supports and loads")
	SolveCmd.Flags().StringP("solver", "s", "", "linear solver, lu or cholesky")
	SolveCmd.Flags().Float64P("tolerance", "t", 0, "distance for matching loads and supports to nodes by position")
	SolveCmd.Flags().StringP("output", "o", "", "YAML result file")
	SolveCmd.Flags().String("vtk", "", "legacy VTK file of the deformed mesh")
	SolveCmd.Flags().String("profile", "", "write a CPU profile into this directory")
	SolveCmd.Flags().BoolP("verbose", "v", false, "print stage timings and the condition number")
	SolveCmd.Flags().IntP("parallel", "n", 0, "goroutines computing element matrices and results, 0 uses all CPUs")
	for _, key := range []string{"solver", "tolerance", "output", "vtk", "verbose", "parallel"} {
		if err := viper.BindPFlag(key, SolveCmd.Flags().Lookup(key)); err != nil {
			panic(err)
		}
	}
}

// RunSolve reads the problem file, solves it and writes the requested
// result files. Result paths from the problem file are relative to it.
func RunSolve(ms *ModelSolve, w io.Writer) (s output.Summary, err error) {
	var (
		data []byte
		ip   = &InputParameters.InputParameters{}
		dir  = filepath.Dir(ms.InputFile)
		kind solver.Kind
	)
	if data, err = ioutil.ReadFile(ms.InputFile); err != nil {
		return
	}
	if err = ip.Parse(data); err != nil {
		return
	}
	relative := func(file string) string {
		if len(file) != 0 && !filepath.IsAbs(file) {
			return filepath.Join(dir, file)
		}
		return file
	}
	ip.Output, ip.VTK = relative(ip.Output), relative(ip.VTK)
	if len(ms.Solver) != 0 {
		ip.Solver = ms.Solver
	}
	if ms.Tolerance != 0 {
		ip.Tolerance = ms.Tolerance
	}
	if len(ms.Output) != 0 {
		ip.Output = ms.Output
	}
	if len(ms.VTK) != 0 {
		ip.VTK = ms.VTK
	}
	ip.Print()

	if kind, err = solver.ParseKind(ip.Solver); err != nil {
		return
	}
	m, err := ip.ToModel(dir)
	if err != nil {
		return
	}
	if len(ms.ProfileDir) != 0 {
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(ms.ProfileDir), profile.Quiet).Stop()
	}
	a, err := fem.NewAnalysis(m, fem.Options{Solver: kind, Condition: ms.Verbose, ParallelDegree: ms.Parallel})
	if err != nil {
		return
	}
	r, err := a.Solve()
	if err != nil {
		return
	}
	s = output.NewSummary(ip.Title, a, r)
	fmt.Fprintf(w, "[%d]\t\t\t\t= Nodes\n", s.NNodes)
	fmt.Fprintf(w, "[%d]\t\t\t\t= Elements\n", s.NElements)
	fmt.Fprintf(w, "%8.5g\t\t= Max displacement, node %d\n", s.MaxDisplacement, s.MaxDisplacementNode)
	vm := s.Stress["von_mises"]
	fmt.Fprintf(w, "%8.5g\t\t= Max von Mises stress\n", vm.Max)
	fmt.Fprintf(w, "%8.3g\t\t= Load imbalance\n", s.Imbalance())
	if ms.Verbose {
		fmt.Fprintf(w, "%8.3g\t\t= Condition number\n", s.Condition)
		for _, st := range a.Stages {
			fmt.Fprintf(w, "%v\t\t= %s\n", st.Elapsed, st.Name)
		}
	}
	if len(ip.Output) != 0 {
		if err = s.WriteYAMLFile(ip.Output); err != nil {
			return
		}
		fmt.Fprintf(w, "Wrote %s\n", ip.Output)
	}
	if len(ip.VTK) != 0 {
		if err = output.WriteVTKFile(ip.VTK, ip.Title, m.Elements, r); err != nil {
			return
		}
		fmt.Fprintf(w, "Wrote %s\n", ip.VTK)
	}
	return
}
