// Copyright 2016 Aleksandr Demakin. All rights reserved.

package mapping

import (
	"io/fs"
	"os"
	"strings"

	"github.com/pkg/errors"
)

// link files hold the os id of a mapping, so that it can be found by a path.

func createLink(path string, force bool) (*os.File, error) {
	flag := os.O_WRONLY | os.O_CREATE | os.O_EXCL
	if force {
		flag = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	}
	file, err := os.OpenFile(path, flag, 0644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return nil, errors.Wrapf(ErrLinkExists, "path %q", path)
		}
		return nil, &LinkError{Op: "create", Path: path, Err: err}
	}
	return file, nil
}

func writeLink(file *os.File, id string) error {
	_, err := file.WriteString(id)
	if closeErr := file.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return &LinkError{Op: "write", Path: file.Name(), Err: err}
	}
	return nil
}

func readLink(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", errors.Wrapf(ErrLinkDoesNotExist, "path %q", path)
		}
		return "", &LinkError{Op: "read", Path: path, Err: err}
	}
	id := strings.TrimSpace(string(data))
	if id == "" {
		return "", errors.Wrapf(ErrMappingNotReady, "link file %q is empty", path)
	}
	return id, nil
}

func removeLink(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return &LinkError{Op: "remove", Path: path, Err: err}
	}
	return nil
}
