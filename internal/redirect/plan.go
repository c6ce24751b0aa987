package redirect

import (
	"os"
	"sort"

	"golang.org/x/sys/unix"

	"github.com/AlanLuu/alsh/pkg/shellerr"
)

// OpenFiles opens the file backing each Spec and returns it keyed by
// target fd; a later Spec for the same fd replaces an earlier one, with
// both still closed by cleanup. cleanup must always be called, even on
// error, to release any files opened before the failure.
func OpenFiles(specs []Spec) (files map[int]*os.File, cleanup func(), err error) {
	files = make(map[int]*os.File, len(specs))
	var opened []*os.File
	cleanup = func() {
		for _, f := range opened {
			f.Close()
		}
	}
	for _, spec := range specs {
		var f *os.File
		var openErr error
		switch spec.Direction {
		case In:
			f, openErr = os.Open(spec.Path)
		case OutTrunc:
			f, openErr = os.OpenFile(spec.Path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
		case OutAppend:
			f, openErr = os.OpenFile(spec.Path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
		}
		if openErr != nil {
			return files, cleanup, classifyOpenErr(spec.Path, openErr)
		}
		opened = append(opened, f)
		files[spec.FD] = f
	}
	return files, cleanup, nil
}

func classifyOpenErr(path string, err error) error {
	switch {
	case os.IsPermission(err):
		return shellerr.Wrap(shellerr.System, "alsh", path, "permission denied", err)
	case os.IsNotExist(err):
		return shellerr.Wrap(shellerr.System, "alsh", path, "no such file or directory", err)
	default:
		return shellerr.Wrap(shellerr.System, "alsh", path, "cannot open file", err)
	}
}

// Plan dup2-binds a set of files onto real process file descriptors,
// saving the originals so Restore can put them back. Used for builtins,
// which run in-process and have no fork+exec point to hand descriptors
// to directly.
type Plan struct {
	saved map[int]int
}

// Apply binds files[fd] onto descriptor fd for every fd present, in
// ascending fd order for determinism, saving the prior descriptor.
func Apply(files map[int]*os.File) (*Plan, error) {
	fds := make([]int, 0, len(files))
	for fd := range files {
		fds = append(fds, fd)
	}
	sort.Ints(fds)

	p := &Plan{saved: make(map[int]int, len(fds))}
	for _, fd := range fds {
		savedFd, err := unix.Dup(fd)
		if err != nil {
			p.Restore()
			return nil, shellerr.Wrap(shellerr.System, "alsh", "", "failed to save descriptor", err)
		}
		p.saved[fd] = savedFd
		if err := unix.Dup2(int(files[fd].Fd()), fd); err != nil {
			p.Restore()
			return nil, shellerr.Wrap(shellerr.System, "alsh", "", "failed to bind descriptor", err)
		}
	}
	return p, nil
}

// Restore puts back every descriptor Apply displaced.
func (p *Plan) Restore() {
	for fd, savedFd := range p.saved {
		unix.Dup2(savedFd, fd)
		unix.Close(savedFd)
	}
	p.saved = nil
}
