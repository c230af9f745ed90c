package upload

import (
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"PolyChat/service/chat"
	"PolyChat/tools/errs"

	"github.com/google/uuid"
)

// Store keeps uploaded files in one directory under random names.
type Store struct {
	dir      string
	maxBytes int64
}

func NewStore(dir string, maxBytes int64) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errs.WrapMsg(err, "create upload dir", "dir", dir)
	}
	return &Store{dir: dir, maxBytes: maxBytes}, nil
}

func (s *Store) Dir() string { return s.dir }

// Save writes fh under a uuid name keeping the original extension.
func (s *Store) Save(fh *multipart.FileHeader) (string, error) {
	if s.maxBytes > 0 && fh.Size > s.maxBytes {
		return "", errs.ErrFileTooLarge.Wrap()
	}
	src, err := fh.Open()
	if err != nil {
		return "", errs.ErrInvalidRequest.WrapMsg(err.Error())
	}
	defer src.Close()

	name := uuid.NewString() + strings.ToLower(filepath.Ext(fh.Filename))
	dst, err := os.OpenFile(filepath.Join(s.dir, name), os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", errs.Wrap(err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		_ = os.Remove(dst.Name())
		return "", errs.Wrap(err)
	}
	if err := dst.Close(); err != nil {
		return "", errs.Wrap(err)
	}
	return name, nil
}

// Describe builds the attachment descriptor of a stored file.
func (s *Store) Describe(fileName string) (*chat.Attachment, error) {
	if fileName == "" || fileName != filepath.Base(fileName) || strings.HasPrefix(fileName, ".") {
		return nil, errs.ErrAttachmentNotFound.Wrap()
	}
	fi, err := os.Stat(filepath.Join(s.dir, fileName))
	if err != nil || fi.IsDir() {
		return nil, errs.ErrAttachmentNotFound.Wrap()
	}
	return &chat.Attachment{
		Type:      "image",
		Extension: filepath.Ext(fileName),
		Size:      fi.Size(),
		FileName:  fileName,
	}, nil
}
