package shell

import (
	"fmt"
	"io"
	"strconv"

	"github.com/PapiCZ/kiv_tfs/vfs"
	"github.com/abiosoft/ishell"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func BlockPtrsToStrings(ptrs []vfs.BlockPtr) []string {
	strs := make([]string, 0)
	for _, ptr := range ptrs {
		strs = append(strs, strconv.Itoa(int(ptr)))
	}

	return strs
}

// contextWriter prints through the ishell context, so that output ends
// up wherever the shell writes to.
type contextWriter struct {
	c *ishell.Context
}

func (w contextWriter) Write(p []byte) (int, error) {
	w.c.Print(string(p))
	return len(p), nil
}

func describeError(err error) string {
	s := status.Convert(err)
	switch s.Code() {
	case codes.NotFound:
		return fmt.Sprintf("FILE NOT FOUND (%s)", s.Message())
	case codes.AlreadyExists:
		return fmt.Sprintf("EXIST (%s)", s.Message())
	case codes.ResourceExhausted:
		return fmt.Sprintf("NOT ENOUGH AVAILABLE SPACE (%s)", s.Message())
	case codes.InvalidArgument:
		return fmt.Sprintf("INVALID ARGUMENT (%s)", s.Message())
	case codes.FailedPrecondition:
		return fmt.Sprintf("NOT ALLOWED (%s)", s.Message())
	case codes.OutOfRange:
		return fmt.Sprintf("OUT OF RANGE (%s)", s.Message())
	default:
		return fmt.Sprintf("ERROR (%s)", s.Message())
	}
}

func printError(out io.Writer, err error) {
	fmt.Fprintln(out, failure(describeError(err)))
}

func printResult(out io.Writer, err error) {
	if err != nil {
		printError(out, err)
		return
	}
	fmt.Fprintln(out, "OK")
}

// printRead prints the bytes a read transferred, followed by the error
// that cut it short, if any.
func printRead(out io.Writer, data []byte, err error) {
	if len(data) > 0 || err == nil {
		fmt.Fprintf(out, "%s\n", data)
	}
	if err != nil {
		printError(out, err)
	}
}

func parseDescriptor(out io.Writer, arg string) (vfs.Descriptor, bool) {
	fd, err := strconv.ParseUint(arg, 10, 8)
	if err != nil {
		fmt.Fprintf(out, "expected a file descriptor, got %q\n", arg)
		return vfs.InvalidDescriptor, false
	}
	return vfs.Descriptor(fd), true
}

func parseCount(out io.Writer, arg string) (int, bool) {
	count, err := strconv.Atoi(arg)
	if err != nil || count < 0 {
		fmt.Fprintf(out, "expected a non-negative number, got %q\n", arg)
		return 0, false
	}
	return count, true
}
