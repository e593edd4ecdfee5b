package shell

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/PapiCZ/kiv_tfs/vfs"
	"github.com/PapiCZ/kiv_tfs/vfsapi"
	"github.com/abiosoft/ishell"
	"github.com/fatih/color"
)

// Command is a shell command operating on a file system. Output and
// failures are printed to out; Run never aborts the session.
type Command struct {
	Name    string
	Usage   string
	Help    string
	MinArgs int
	MaxArgs int // -1 means unlimited
	Run     func(fs *vfs.Filesystem, out io.Writer, args []string)
}

var (
	openStatus   = color.New(color.FgGreen).SprintFunc()
	closedStatus = color.New(color.FgCyan).SprintFunc()
	failure      = color.New(color.FgRed).SprintFunc()
)

// Commands lists every shell command. It is filled in init, since load
// refers back to it.
var Commands []Command

func init() {
	Commands = []Command{
		{Name: "format", Usage: "format", Help: "remove all files", Run: Format},
		{Name: "create", Usage: "create NAME", Help: "create and open a new file", MinArgs: 1, MaxArgs: 1, Run: Create},
		{Name: "open", Usage: "open NAME", Help: "open a closed file", MinArgs: 1, MaxArgs: 1, Run: Open},
		{Name: "close", Usage: "close FD", Help: "close an open file", MinArgs: 1, MaxArgs: 1, Run: Close},
		{Name: "size", Usage: "size FD", Help: "print the size of a file", MinArgs: 1, MaxArgs: 1, Run: Size},
		{Name: "seek", Usage: "seek FD OFFSET", Help: "move the cursor of an open file", MinArgs: 2, MaxArgs: 2, Run: Seek},
		{Name: "read", Usage: "read FD COUNT", Help: "read bytes at the cursor of an open file", MinArgs: 2, MaxArgs: 2, Run: Read},
		{Name: "write", Usage: "write FD TEXT...", Help: "write text at the cursor of an open file", MinArgs: 2, MaxArgs: -1, Run: Write},
		{Name: "rm", Usage: "rm NAME", Help: "delete a file by name", MinArgs: 1, MaxArgs: 1, Run: Rm},
		{Name: "delete", Usage: "delete FD", Help: "delete a file by descriptor", MinArgs: 1, MaxArgs: 1, Run: Delete},
		{Name: "cp", Usage: "cp SOURCE DESTINATION", Help: "copy a closed file", MinArgs: 2, MaxArgs: 2, Run: Cp},
		{Name: "mv", Usage: "mv NAME NEW_NAME", Help: "rename a file", MinArgs: 2, MaxArgs: 2, Run: Mv},
		{Name: "exists", Usage: "exists NAME", Help: "check whether a file exists", MinArgs: 1, MaxArgs: 1, Run: Exists},
		{Name: "ls", Usage: "ls", Help: "list files", Run: Ls},
		{Name: "fat", Usage: "fat", Help: "print the allocated storage blocks", Run: Fat},
		{Name: "block", Usage: "block NUMBER", Help: "print the raw content of a storage block", MinArgs: 1, MaxArgs: 1, Run: Block},
		{Name: "df", Usage: "df", Help: "print free storage", Run: Df},
		{Name: "check", Usage: "check", Help: "check file system consistency", Run: Check},
		{Name: "incp", Usage: "incp HOST_PATH NAME", Help: "copy a host file into the file system", MinArgs: 2, MaxArgs: 2, Run: Incp},
		{Name: "outcp", Usage: "outcp NAME HOST_PATH", Help: "copy a file out to the host", MinArgs: 2, MaxArgs: 2, Run: Outcp},
		{Name: "cat", Usage: "cat NAME", Help: "print the content of a closed file", MinArgs: 1, MaxArgs: 1, Run: Cat},
		{Name: "load", Usage: "load HOST_PATH", Help: "run commands from a host file", MinArgs: 1, MaxArgs: 1, Run: Load},
	}
}

// Register adds all commands to an ishell shell. The file system is
// taken from the "fs" value of the shell.
func Register(shell *ishell.Shell) {
	for _, cmd := range Commands {
		shell.AddCmd(&ishell.Cmd{
			Name: cmd.Name,
			Help: cmd.Help,
			Func: func(c *ishell.Context) {
				fs := c.Get("fs").(*vfs.Filesystem)
				cmd.invoke(fs, contextWriter{c: c}, c.Args)
			},
		})
	}
}

func (cmd Command) invoke(fs *vfs.Filesystem, out io.Writer, args []string) {
	if len(args) < cmd.MinArgs || (cmd.MaxArgs >= 0 && len(args) > cmd.MaxArgs) {
		fmt.Fprintf(out, "usage: %s\n", cmd.Usage)
		return
	}
	cmd.Run(fs, out, args)
}

func Format(fs *vfs.Filesystem, out io.Writer, args []string) {
	fs.Init()
	fmt.Fprintln(out, "OK")
}

func Create(fs *vfs.Filesystem, out io.Writer, args []string) {
	fd, err := fs.Create(args[0])
	if err != nil {
		printError(out, err)
		return
	}
	fmt.Fprintf(out, "fd %d\n", fd)
}

func Open(fs *vfs.Filesystem, out io.Writer, args []string) {
	fd, err := fs.Open(args[0])
	if err != nil {
		printError(out, err)
		return
	}
	fmt.Fprintf(out, "fd %d\n", fd)
}

func Close(fs *vfs.Filesystem, out io.Writer, args []string) {
	fd, ok := parseDescriptor(out, args[0])
	if !ok {
		return
	}
	printResult(out, fs.Close(fd))
}

func Size(fs *vfs.Filesystem, out io.Writer, args []string) {
	fd, ok := parseDescriptor(out, args[0])
	if !ok {
		return
	}
	size, err := fs.Size(fd)
	if err != nil {
		printError(out, err)
		return
	}
	fmt.Fprintln(out, size)
}

func Seek(fs *vfs.Filesystem, out io.Writer, args []string) {
	fd, ok := parseDescriptor(out, args[0])
	if !ok {
		return
	}
	offset, ok := parseCount(out, args[1])
	if !ok {
		return
	}
	printResult(out, fs.Seek(fd, offset))
}

func Read(fs *vfs.Filesystem, out io.Writer, args []string) {
	fd, ok := parseDescriptor(out, args[0])
	if !ok {
		return
	}
	count, ok := parseCount(out, args[1])
	if !ok {
		return
	}
	if count > vfs.MaxFileSize {
		count = vfs.MaxFileSize
	}

	data := make([]byte, count)
	n, err := fs.Read(fd, data)
	printRead(out, data[:n], err)
}

func Write(fs *vfs.Filesystem, out io.Writer, args []string) {
	fd, ok := parseDescriptor(out, args[0])
	if !ok {
		return
	}

	n, err := fs.Write(fd, []byte(strings.Join(args[1:], " ")))
	if n > 0 {
		fmt.Fprintf(out, "%d bytes written\n", n)
	}
	printResult(out, err)
}

func Rm(fs *vfs.Filesystem, out io.Writer, args []string) {
	printResult(out, vfsapi.Remove(fs, args[0]))
}

func Delete(fs *vfs.Filesystem, out io.Writer, args []string) {
	fd, ok := parseDescriptor(out, args[0])
	if !ok {
		return
	}
	printResult(out, fs.Delete(fd))
}

func Cp(fs *vfs.Filesystem, out io.Writer, args []string) {
	n, err := fs.Copy(args[0], args[1])
	if err != nil {
		printError(out, err)
		return
	}
	fmt.Fprintf(out, "%d bytes copied\n", n)
}

func Mv(fs *vfs.Filesystem, out io.Writer, args []string) {
	printResult(out, fs.Rename(args[0], args[1]))
}

func Exists(fs *vfs.Filesystem, out io.Writer, args []string) {
	fmt.Fprintln(out, fs.Exists(args[0]))
}

func Ls(fs *vfs.Filesystem, out io.Writer, args []string) {
	files, err := vfsapi.ReadDir(fs)
	if err != nil {
		printError(out, err)
		return
	}

	for _, v := range files {
		status := closedStatus(v.Status())
		if v.IsOpen() {
			status = openStatus(v.Status())
		}
		fmt.Fprintf(out, "%2d %-8s %6d %s [%s]\n", v.Descriptor(), v.Name(), v.Size(), status, strings.Join(BlockPtrsToStrings(v.Blocks()), " "))
	}
}

func Fat(fs *vfs.Filesystem, out io.Writer, args []string) {
	for _, usage := range vfsapi.AllocationMap(fs) {
		owner := usage.Owner
		if owner == "" {
			owner = failure("orphan")
		}
		fmt.Fprintf(out, "%3d -> %-4s %s\n", usage.Block, usage.Next, owner)
	}
}

func Block(fs *vfs.Filesystem, out io.Writer, args []string) {
	b, err := strconv.ParseUint(args[0], 10, 8)
	if err != nil {
		fmt.Fprintf(out, "expected a block number, got %q\n", args[0])
		return
	}
	data, err := fs.ReadBlock(vfs.BlockPtr(b))
	if err != nil {
		printError(out, err)
		return
	}
	fmt.Fprint(out, hex.Dump(data))
}

func Df(fs *vfs.Filesystem, out io.Writer, args []string) {
	free := fs.FreeBlockCount()
	fmt.Fprintf(out, "%d of %d blocks free (%d bytes)\n", free, vfs.DataBlockCount, free*vfs.BlockSize)
}

func Check(fs *vfs.Filesystem, out io.Writer, args []string) {
	if err := vfsapi.FsCheck(fs); err != nil {
		for _, line := range strings.Split(err.Error(), "\n") {
			fmt.Fprintln(out, failure("CORRUPTED"), line)
		}
		return
	}
	fmt.Fprintln(out, "OK")
}

func Incp(fs *vfs.Filesystem, out io.Writer, args []string) {
	srcFile, err := os.Open(args[0])
	if err != nil {
		if os.IsNotExist(err) {
			fmt.Fprintln(out, "FILE NOT FOUND (no such host file)")
		} else {
			fmt.Fprintln(out, failure("ERROR"), err)
		}
		return
	}
	defer func() {
		_ = srcFile.Close()
	}()

	_, err = vfsapi.Import(fs, args[1], srcFile)
	printResult(out, err)
}

func Outcp(fs *vfs.Filesystem, out io.Writer, args []string) {
	if !fs.Exists(args[0]) {
		fmt.Fprintln(out, "FILE NOT FOUND")
		return
	}

	dstFile, err := os.Create(args[1])
	if err != nil {
		fmt.Fprintln(out, failure("ERROR"), err)
		return
	}
	defer func() {
		_ = dstFile.Close()
	}()

	_, err = vfsapi.Export(fs, args[0], dstFile)
	printResult(out, err)
}

func Cat(fs *vfs.Filesystem, out io.Writer, args []string) {
	data, err := vfsapi.ReadAll(fs, args[0])
	if err != nil {
		printError(out, err)
		return
	}
	fmt.Fprintf(out, "%s\n", data)
}

func Load(fs *vfs.Filesystem, out io.Writer, args []string) {
	script, err := os.Open(args[0])
	if err != nil {
		if os.IsNotExist(err) {
			fmt.Fprintln(out, "FILE NOT FOUND (no such host file)")
		} else {
			fmt.Fprintln(out, failure("ERROR"), err)
		}
		return
	}
	defer func() {
		_ = script.Close()
	}()

	if err := RunScript(fs, out, script); err != nil {
		fmt.Fprintln(out, failure("ERROR"), err)
	}
}
