package gstorage

import (
	"context"
	"io"
	"io/ioutil"
	"os"
	"path"
	"path/filepath"
	"time"

	"cloud.google.com/go/storage"
	"github.com/pkg/errors"
	"google.golang.org/api/option"
)

var ErrObjectNotExist = storage.ErrObjectNotExist

const transferTimeout = 50 * time.Second

type GStorage struct {
	storageClient *storage.Client
}

func NewGStorage(credentialsFilePath string) (*GStorage, error) {
	var client *storage.Client
	var err error

	if credentialsFilePath != "" {
		client, err = storage.NewClient(context.Background(), option.WithCredentialsFile(credentialsFilePath))
	} else {
		client, err = storage.NewClient(context.Background())
	}

	if err != nil {
		return nil, errors.Wrap(err, "NewGStorage")
	}

	return &GStorage{storageClient: client}, nil
}

// ObjectName returns where a local file is kept in the bucket.
func ObjectName(prefix, filePath string) string {
	return path.Join(prefix, filepath.Base(filePath))
}

// UploadFile uploads the local file at 'filePath' to 'object' in 'bucket'.
func (gs *GStorage) UploadFile(bucket, object, filePath string) error {
	f, err := os.Open(filePath)
	if err != nil {
		return errors.Wrap(err, "UploadFile")
	}
	defer f.Close()

	ctx, cancel := context.WithTimeout(context.Background(), transferTimeout)
	defer cancel()

	wc := gs.storageClient.Bucket(bucket).Object(object).NewWriter(ctx)
	wc.ContentType = "application/json"
	if _, err = io.Copy(wc, f); err != nil {
		wc.Close()
		return errors.Wrapf(err, "UploadFile: copy to %v", object)
	}
	if err := wc.Close(); err != nil {
		return errors.Wrapf(err, "UploadFile: close %v", object)
	}

	return nil
}

// DownloadFile downloads 'object' into 'destFileName'. ErrObjectNotExist is
// returned unwrapped so callers can check for it.
func (gs *GStorage) DownloadFile(bucket, object, destFileName string) error {
	ctx, cancel := context.WithTimeout(context.Background(), transferTimeout)
	defer cancel()

	rc, err := gs.storageClient.Bucket(bucket).Object(object).NewReader(ctx)
	if err == storage.ErrObjectNotExist {
		return err
	}
	if err != nil {
		return errors.Wrapf(err, "Object(%q).NewReader", object)
	}
	defer rc.Close()

	return errors.Wrap(replaceFile(destFileName, rc), "DownloadFile")
}

// replaceFile writes 'r' to a temp file next to 'destFileName' and renames it
// into place, so a failed copy never leaves a partial file behind.
func replaceFile(destFileName string, r io.Reader) error {
	tmp, err := ioutil.TempFile(filepath.Dir(destFileName), filepath.Base(destFileName)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return errors.Wrap(err, "copy")
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), destFileName)
}

func (gs *GStorage) Close() error {
	return gs.storageClient.Close()
}
