// Package demo is the reference driving application: two coroutines that
// yield a fixed number of times, resumed alternately until both finish.
package demo

import (
	"fmt"
	"io"

	"github.com/webriots/cosched"
)

// Event is one Resume observed by the driver.
type Event struct {
	Name  string
	Value Message
	Alive bool
}

// Runner drives the scenario on a scheduler and writes a transcript to out.
type Runner struct {
	sched *cosched.Scheduler[Message]
	out   io.Writer
}

// NewRunner returns a runner. A nil out discards the transcript.
func NewRunner(sched *cosched.Scheduler[Message], out io.Writer) *Runner {
	if out == nil {
		out = io.Discard
	}
	return &Runner{sched: sched, out: out}
}

type task struct {
	name string
	id   cosched.ID
}

// Run creates func1 (argument 111, two yields) and func2 (argument 222,
// one yield) and resumes them in turn while they are alive.
func (r *Runner) Run() ([]Event, error) {
	func1, err := r.sched.Create(r.func1, Int(111))
	if err != nil {
		return nil, fmt.Errorf("failed to create func1: %w", err)
	}
	func2, err := r.sched.Create(r.func2, Int(222))
	if err != nil {
		return nil, fmt.Errorf("failed to create func2: %w", err)
	}

	tasks := []task{{name: "func1", id: func1}, {name: "func2", id: func2}}
	var events []Event
	for stop := false; !stop; {
		stop = true
		for _, t := range tasks {
			if !r.sched.IsAlive(t.id) {
				continue
			}
			stop = false
			out, err := r.sched.Resume(t.id, Text("resume "+t.name))
			if err != nil {
				return events, fmt.Errorf("failed to resume %v: %w", t.name, err)
			}
			alive := r.sched.IsAlive(t.id)
			fmt.Fprintf(r.out, "%s yield: %v (alive: %v)\n", t.name, out, alive)
			events = append(events, Event{Name: t.name, Value: out, Alive: alive})
		}
	}
	return events, nil
}

func (r *Runner) func1(arg Message) Message {
	fmt.Fprintf(r.out, "func1 started, arg: %v\n", arg)
	in, err := r.sched.Yield(Text("func1 yield 1"))
	if err != nil {
		return Text(err.Error())
	}
	fmt.Fprintf(r.out, "func1 got: %v\n", in)
	in, err = r.sched.Yield(Text("func1 yield 2"))
	if err != nil {
		return Text(err.Error())
	}
	fmt.Fprintf(r.out, "func1 got: %v, stopping\n", in)
	return Text("func1 done")
}

func (r *Runner) func2(arg Message) Message {
	fmt.Fprintf(r.out, "func2 started, arg: %v\n", arg)
	in, err := r.sched.Yield(Text("func2 yield 1"))
	if err != nil {
		return Text(err.Error())
	}
	fmt.Fprintf(r.out, "func2 got: %v, stopping\n", in)
	return Text("func2 done")
}
