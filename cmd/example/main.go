// Package main walks through the logic grid API: encoding clues onto a
// relation grid, solving with uniqueness checking, enumerating all
// solutions, attaching extra categories, and exporting a grid for the
// online visualizer.
package main

import (
	"context"
	"fmt"
	"log"

	"github.com/dplepage/puztool/pkg/logicgrid"
	"github.com/dplepage/puztool/pkg/solver"
)

func main() {
	fmt.Println("=== Logic Grid Examples ===")
	fmt.Println()

	basicSolve()
	enumeration()
	extraCategories()
	exporting()
}

func newRegistry() *logicgrid.Registry {
	reg, err := logicgrid.NewRegistry([]logicgrid.CategorySpec{
		{Name: "person", Literals: []string{"Ann", "Ben", "Cal"}},
		{Name: "drink", Literals: []string{"Tea", "Coffee", "Juice"}},
		{Name: "pet", Literals: []string{"Cat", "Dog", "Fish"}},
	})
	if err != nil {
		log.Fatal(err)
	}
	return reg
}

// basicSolve encodes a few clues and solves, insisting the clues pin
// down a single solution.
func basicSolve() {
	fmt.Println("1. Basic Solve:")

	grid := logicgrid.NewRelationGrid(newRegistry())
	clues := [][]string{
		{"Ann", "Tea"}, {"Ben", "Coffee"},
		{"Tea", "Cat"}, {"Coffee", "Dog"},
	}
	for _, clue := range clues {
		if err := grid.Require(clue...); err != nil {
			log.Fatal(err)
		}
	}

	model, err := logicgrid.NewConstraintModel(solver.NewGini(), grid)
	if err != nil {
		log.Fatal(err)
	}
	sol, err := logicgrid.NewEnumerator(model).SolveOne(context.Background(), true)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(sol.Table())
}

// enumeration iterates over every solution of an underconstrained grid.
func enumeration() {
	fmt.Println("2. Enumeration:")

	grid := logicgrid.NewRelationGrid(newRegistry())
	if err := grid.Require("Ann", "Tea", "Cat"); err != nil {
		log.Fatal(err)
	}

	model, err := logicgrid.NewConstraintModel(solver.NewGini(), grid)
	if err != nil {
		log.Fatal(err)
	}
	it, err := logicgrid.NewEnumerator(model).Enumerate(10)
	if err != nil {
		log.Fatal(err)
	}
	ctx := context.Background()
	var count int
	for it.Next(ctx) {
		count++
		row := it.Solution().Rows()[1]
		fmt.Printf("   %s drinks %s and keeps a %s\n",
			row.Literals["person"], row.Literals["drink"], row.Literals["pet"])
	}
	if err := it.Err(); err != nil {
		log.Fatal(err)
	}
	fmt.Printf("   %d solutions", count)
	if it.Truncated() {
		fmt.Print(" (truncated)")
	}
	fmt.Println()
	fmt.Println()
}

// extraCategories attaches an integer attribute to every entity and lets
// the solver propagate it through the pairings.
func extraCategories() {
	fmt.Println("3. Extra Categories:")

	grid := logicgrid.NewRelationGrid(newRegistry())
	for _, clue := range [][]string{
		{"Ann", "Tea", "Cat"}, {"Ben", "Coffee", "Dog"},
	} {
		if err := grid.Require(clue...); err != nil {
			log.Fatal(err)
		}
	}

	model, err := logicgrid.NewConstraintModel(solver.NewGini(), grid,
		logicgrid.ExtraCategory{Name: "age", Domain: logicgrid.IntDomain{Low: 30, High: 32, Distinct: true}})
	if err != nil {
		log.Fatal(err)
	}
	sess := model.Session()
	for _, pin := range []struct {
		literal string
		age     int
	}{
		{"Ann", 30}, {"Coffee", 31},
	} {
		v, err := model.XInt("age", pin.literal)
		if err != nil {
			log.Fatal(err)
		}
		if err := model.Add(sess.IntEqConst(v, pin.age)); err != nil {
			log.Fatal(err)
		}
	}

	sol, err := logicgrid.NewEnumerator(model).SolveOne(context.Background(), true)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(sol.Table())
}

// exporting renders a grid, solved or not, as a jsingler.de link.
func exporting() {
	fmt.Println("4. Export:")

	grid := logicgrid.NewRelationGrid(newRegistry())
	if err := grid.Exclude("Ann", "Coffee"); err != nil {
		log.Fatal(err)
	}
	fmt.Printf("   %s\n", grid.ExportLink())
}
