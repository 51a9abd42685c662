// Package pipedemo provides `coasync pipedemo`: spawn `cat` through the
// filesystem wrappers' pipe primitive and stream a line through it.
package pipedemo

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/spf13/cobra"

	coascmd "github.com/co-async-go/co-async/cmd"
	"github.com/co-async-go/co-async/fsys"
	"github.com/co-async-go/co-async/ring"
	"github.com/co-async-go/co-async/sched"
	"github.com/co-async-go/co-async/stream"
)

func init() {
	coascmd.Root.AddCommand(commandDefinition)
}

var commandDefinition = &cobra.Command{
	Use:   "pipedemo",
	Short: "Spawn cat and round-trip a line of input through it",
	Long: `pipedemo demonstrates fsys.Pipe and stream.Stream by spawning the
cat(1) process, writing a line to its stdin through an fsys pipe, and
reading the echoed line back from its stdout.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run()
	},
}

func run() error {
	scheduler := sched.NewScheduler(nil)
	r, err := ring.Open(ring.DefaultOptions, scheduler)
	if err != nil {
		return err
	}
	defer r.Close()
	scheduler.SetWaiter(r)

	fsRoot := fsys.NewRoot(r)

	stdinR, stdinW, err := fsRoot.Pipe()
	if err != nil {
		return err
	}
	stdoutR, stdoutW, err := fsRoot.Pipe()
	if err != nil {
		return err
	}

	c := exec.Command("cat")
	c.Stdin = os.NewFile(uintptr(stdinR.Release()), "pipedemo-stdin")
	c.Stdout = os.NewFile(uintptr(stdoutW.Release()), "pipedemo-stdout")
	c.Stderr = os.Stderr
	if err := c.Start(); err != nil {
		return err
	}
	c.Stdin.(*os.File).Close()
	c.Stdout.(*os.File).Close()

	const line = "hello from coasync pipedemo\n"
	task := sched.Spawn(func() (string, error) {
		in := stream.New(stream.NewFileChannel(stdinW), false)
		if err := in.WriteString(line); err != nil {
			return "", err
		}
		if err := in.Flush(); err != nil {
			return "", err
		}
		if err := stdinW.Close(); err != nil {
			return "", err
		}

		out := stream.New(stream.NewFileChannel(stdoutR), false)
		got, err := out.ReadAll()
		return string(got), err
	})

	got, err := sched.Join(scheduler, task)
	if err != nil {
		return err
	}
	if waitErr := c.Wait(); waitErr != nil {
		return waitErr
	}
	fmt.Print(got)
	return nil
}
