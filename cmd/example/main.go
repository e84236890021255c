package main

import (
	"errors"
	"fmt"

	"github.com/brinklane/reactor"
)

func main() {
	counter := reactor.NewValue(0)
	conn := counter.Connect(func(newValue, old int) {
		fmt.Println("  [VALUE] counter:", old, "->", newValue)
	})
	defer conn.Close()

	doubled := reactor.MapValue(counter, func(v int) int { return v * 2 })
	doubledConn := doubled.Connect(func(newValue, _ int) {
		fmt.Println("  [DERIVED] doubled is now:", newValue)
	})
	defer doubledConn.Close()

	fmt.Println("Updating counter 1 -> 2 -> 2 (no-op) -> 3")
	_ = counter.Update(1)
	_ = counter.Update(2)
	_ = counter.Update(2)
	_ = counter.Update(3)

	fmt.Println("\nRunning two tasks and sequencing their futures...")
	p1 := reactor.NewPromise[string]()
	p2 := reactor.NewPromise[string]()
	go func() { _ = p1.Succeed("first") }()
	go func() { _ = p2.Fail(errors.New("second task failed")) }()

	combined := reactor.Sequence2(p1.Future(), p2.Future())
	combined.OnComplete(func(t reactor.Try[reactor.Pair[string, string]]) {
		if t.IsFailure() {
			fmt.Println("  [FUTURE] sequence failed:", t.Err())
			return
		}
		pair := t.Get()
		fmt.Println("  [FUTURE] sequence succeeded:", pair.First, pair.Second)
	})

	fmt.Println("\nTracking a reactive list...")
	todos := reactor.NewRList[string]()
	todos.Connect(func(ch reactor.ListChange[string]) {
		switch ch.Op {
		case reactor.ListAdded:
			fmt.Println("  [LIST] added at", ch.Index, ":", ch.New)
		case reactor.ListRemoved:
			fmt.Println("  [LIST] removed at", ch.Index, ":", ch.Old)
		}
	})
	_ = todos.Add("write spec")
	_ = todos.Add("implement reactor")
	_, _ = todos.Remove("write spec", func(a, b string) bool { return a == b })
}
