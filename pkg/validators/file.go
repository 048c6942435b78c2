package validators

import (
	"errors"
	"mime/multipart"
	"net/http"
)

var (
	ErrNoFile          = errors.New("no file provided")
	ErrFileTooLarge    = errors.New("file too large")
	ErrFileNameTooLong = errors.New("file name is too long")
	ErrFileEmptyName   = errors.New("file name can't be empty")
)

// FileValidator checks the multipart header of an upload against maxSize and
// opens it. The caller must close the returned file.
func FileValidator(fh *multipart.FileHeader, maxSize int64) (int, multipart.File, error) {
	if fh == nil {
		return http.StatusBadRequest, nil, ErrNoFile
	}

	if fh.Filename == "" {
		return http.StatusBadRequest, nil, ErrFileEmptyName
	}

	if len(fh.Filename) > maxNameSize {
		return http.StatusBadRequest, nil, ErrFileNameTooLong
	}

	if maxSize > 0 && fh.Size > maxSize {
		return http.StatusRequestEntityTooLarge, nil, ErrFileTooLarge
	}

	f, err := fh.Open()
	if err != nil {
		return http.StatusInternalServerError, nil, err
	}

	return 0, f, nil
}
