/*
	Command gitjfs is a small kingpin CLI over a FileSystemInstance opened
	against an on-disk repository, adapted from the teacher's cmd/rio/main.go:
	one kingpin.New app, one struct of flag targets, one subcommand per
	operation, dispatched by FullCommand() in Main. A failing operation
	exits with ExitError and prints its gerr.Category to stderr, rather than
	rio's api.WareID-shaped result type, since there is no ware to report
	here.
*/
package main

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/sirupsen/logrus"
	"github.com/warpfork/go-errcat"
	"gopkg.in/alecthomas/kingpin.v2"

	"go.polydawn.net/gitjfs"
	"go.polydawn.net/gitjfs/config"
)

type ExitCode int

const (
	ExitSuccess       ExitCode = 0
	ExitUsage         ExitCode = 1
	ExitNotImplemented ExitCode = 2
	ExitError         ExitCode = 3
)

type baseCLI struct {
	Repo string // path to the repository's .git directory, or a bare repo

	LsCLI struct {
		Root string
		Path string
	}
	CatCLI struct {
		Root string
		Path string
	}
	StatCLI struct {
		Root string
		Path string
	}
	DiffCLI struct {
		RootA string
		RootB string
	}
	RefsCLI struct{}
	GraphCLI struct{}
}

func configureLs(cli *baseCLI, cmd *kingpin.CmdClause) {
	cmd.Arg("root", "Revision token: 40-hex commit id, or refs/... ref").
		Required().StringVar(&cli.LsCLI.Root)
	cmd.Arg("path", "Internal path of the directory to list").
		Default("/").StringVar(&cli.LsCLI.Path)
}

func configureCat(cli *baseCLI, cmd *kingpin.CmdClause) {
	cmd.Arg("root", "Revision token: 40-hex commit id, or refs/... ref").
		Required().StringVar(&cli.CatCLI.Root)
	cmd.Arg("path", "Internal path of the file to read").
		Required().StringVar(&cli.CatCLI.Path)
}

func configureStat(cli *baseCLI, cmd *kingpin.CmdClause) {
	cmd.Arg("root", "Revision token: 40-hex commit id, or refs/... ref").
		Required().StringVar(&cli.StatCLI.Root)
	cmd.Arg("path", "Internal path to stat").
		Default("/").StringVar(&cli.StatCLI.Path)
}

func configureDiff(cli *baseCLI, cmd *kingpin.CmdClause) {
	cmd.Arg("a", "First revision token").
		Required().StringVar(&cli.DiffCLI.RootA)
	cmd.Arg("b", "Second revision token").
		Required().StringVar(&cli.DiffCLI.RootB)
}

func main() {
	exitCode := Main(os.Args, os.Stdin, os.Stdout, os.Stderr)
	os.Exit(int(exitCode))
}

func Main(args []string, stdin io.Reader, stdout, stderr io.Writer) ExitCode {
	logrus.SetLevel(config.GetLogLevel())

	cli := baseCLI{}

	app := kingpin.New("gitjfs", "Read-only logical file system over a git repository")
	app.HelpFlag.Short('h')
	app.UsageWriter(stderr)
	app.ErrorWriter(stderr)

	app.Flag("repo", "Path to the repository's .git directory (or a bare repo)").
		Default(".git").StringVar(&cli.Repo)

	appLs := app.Command("ls", "list a directory's direct children")
	configureLs(&cli, appLs)

	appCat := app.Command("cat", "write a file's content to stdout")
	configureCat(&cli, appCat)

	appStat := app.Command("stat", "print a path's attributes")
	configureStat(&cli, appStat)

	appDiff := app.Command("diff", "print the changes between two commits' trees")
	configureDiff(&cli, appDiff)

	appGraph := app.Command("graph", "dump the commit graph reachable from every ref")

	appRefs := app.Command("refs", "list every ref and the commit it resolves to")

	var termErr error
	app.Terminate(func(status int) {
		termErr = fmt.Errorf("parsing error: %d", status)
	})
	cmd, err := app.Parse(args[1:])
	if err != nil {
		fmt.Fprintln(stderr, err)
		return ExitUsage
	}
	if termErr != nil {
		fmt.Fprintln(stderr, termErr)
		return ExitUsage
	}

	inst, err := gitjfs.Open(cli.Repo)
	if err != nil {
		return reportErr(stderr, err)
	}
	defer inst.Close()

	switch cmd {
	case appLs.FullCommand():
		return reportErr(stderr, executeLs(inst, cli, stdout))
	case appCat.FullCommand():
		return reportErr(stderr, executeCat(inst, cli, stdout))
	case appStat.FullCommand():
		return reportErr(stderr, executeStat(inst, cli, stdout))
	case appDiff.FullCommand():
		return reportErr(stderr, executeDiff(inst, cli, stdout))
	case appGraph.FullCommand():
		return reportErr(stderr, executeGraph(inst, stdout))
	case appRefs.FullCommand():
		return reportErr(stderr, executeRefs(inst, stdout))
	}
	return ExitSuccess
}

func reportErr(stderr io.Writer, err error) ExitCode {
	if err == nil {
		return ExitSuccess
	}
	fmt.Fprintf(stderr, "gitjfs: %s: %s\n", errcat.Category(err), err)
	return ExitError
}

func rootPath(inst *gitjfs.Instance, root, internal string) (gitjfs.Path, error) {
	if len(root) == 0 || root[0] != '/' {
		root = "/" + root
	}
	return inst.GetPath(root, internal)
}

func executeLs(inst *gitjfs.Instance, cli baseCLI, stdout io.Writer) error {
	dir, err := rootPath(inst, cli.LsCLI.Root, cli.LsCLI.Path)
	if err != nil {
		return err
	}
	ds, err := inst.NewDirectoryStream(dir, nil)
	if err != nil {
		return err
	}
	defer ds.Close()
	it, err := ds.Iterator()
	if err != nil {
		return err
	}
	var names []string
	for {
		has, err := it.HasNext()
		if err != nil {
			return err
		}
		if !has {
			break
		}
		e, err := it.Next()
		if err != nil {
			return err
		}
		fn, ok := e.Path.FileName()
		name := e.Path.String()
		if ok {
			name = fn.String()
		}
		names = append(names, fmt.Sprintf("%s\t%s", e.Mode, name))
	}
	sort.Strings(names)
	for _, n := range names {
		fmt.Fprintln(stdout, n)
	}
	return nil
}

func executeCat(inst *gitjfs.Instance, cli baseCLI, stdout io.Writer) error {
	p, err := rootPath(inst, cli.CatCLI.Root, cli.CatCLI.Path)
	if err != nil {
		return err
	}
	ch, err := inst.NewByteChannel(p)
	if err != nil {
		return err
	}
	defer ch.Close()
	_, err = io.Copy(stdout, ch)
	return err
}

func executeStat(inst *gitjfs.Instance, cli baseCLI, stdout io.Writer) error {
	p, err := rootPath(inst, cli.StatCLI.Root, cli.StatCLI.Path)
	if err != nil {
		return err
	}
	attrs, err := inst.ReadAttributes(p)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "size:\t%d\n", attrs.Size)
	fmt.Fprintf(stdout, "modified:\t%s\n", attrs.LastModified)
	fmt.Fprintf(stdout, "regular:\t%v\n", attrs.IsRegularFile)
	fmt.Fprintf(stdout, "directory:\t%v\n", attrs.IsDirectory)
	fmt.Fprintf(stdout, "symlink:\t%v\n", attrs.IsSymbolicLink)
	return nil
}

func executeDiff(inst *gitjfs.Instance, cli baseCLI, stdout io.Writer) error {
	a, err := rootPath(inst, cli.DiffCLI.RootA, "/")
	if err != nil {
		return err
	}
	b, err := rootPath(inst, cli.DiffCLI.RootB, "/")
	if err != nil {
		return err
	}
	changes, err := inst.Diff(a, b)
	if err != nil {
		return err
	}
	for _, c := range changes {
		fmt.Fprintf(stdout, "%s\t%s\t%s\n", c.Type, c.OldPath, c.NewPath)
	}
	return nil
}

func executeGraph(inst *gitjfs.Instance, stdout io.Writer) error {
	g, err := inst.Graph()
	if err != nil {
		return err
	}
	for _, n := range g.Nodes() {
		fmt.Fprintf(stdout, "%s\tparents=%d\tauthor=%s\n", n.Commit.ID, len(n.Parents), n.Commit.Author.Name)
	}
	return nil
}

func executeRefs(inst *gitjfs.Instance, stdout io.Writer) error {
	refs, err := inst.Refs()
	if err != nil {
		return err
	}
	for _, r := range refs {
		fmt.Fprintln(stdout, r)
	}
	return nil
}
