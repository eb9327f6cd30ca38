package platform

import (
	"context"
	"errors"
	"strings"

	"github.com/wingman-panel/wingman/internal/procexec"
)

type fakeRunner struct {
	outputs map[string]string
	errs    map[string]error
	calls   []string
}

func (f *fakeRunner) Run(_ context.Context, c procexec.Command) ([]byte, error) {
	key := c.Name + " " + strings.Join(c.Args, " ")
	f.calls = append(f.calls, key)
	if err, ok := f.errs[key]; ok {
		return nil, err
	}
	if out, ok := f.outputs[key]; ok {
		return []byte(out), nil
	}
	return nil, errors.New("exec: not found")
}

func staticNames(names map[int]string) NameLookup {
	return func(_ context.Context, pid int) (string, error) {
		if n, ok := names[pid]; ok {
			return n, nil
		}
		return "", errors.New("no such process")
	}
}
