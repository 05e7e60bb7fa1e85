package cloudinarystorage

import (
	"context"
	"io"
	"path/filepath"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	pkgerrors "github.com/pkg/errors"

	"github.com/revelohq/revelo/core"
)

type service struct {
	cld *cloudinary.Cloudinary
}

var _ core.FileStorage = (*service)(nil)

func NewService(conf *core.Config) (*service, error) {
	cld, err := cloudinary.NewFromParams(
		conf.Cloudinary.CloudName,
		conf.Cloudinary.APIKey,
		conf.Cloudinary.APISecret,
	)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "initializing cloudinary")
	}
	return &service{cld: cld}, nil
}

// Upload stores r under folder and returns the served URL. The public
// id is the bare filename; cloudinary suffixes a random tail on
// collisions rather than overwriting.
func (svc *service) Upload(ctx context.Context, folder, filename string, r io.Reader) (string, error) {
	publicID := strings.TrimSuffix(filename, filepath.Ext(filename))

	resp, err := svc.cld.Upload.Upload(ctx, r, uploader.UploadParams{
		Folder:   folder,
		PublicID: publicID,
	})
	if err != nil {
		return "", pkgerrors.Wrap(err, "uploading file")
	}
	return resp.SecureURL, nil
}
